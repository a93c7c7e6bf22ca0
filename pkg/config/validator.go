package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/reward"
)

// Validator validates catalog configuration.
// It ensures all business rules are met before the server starts.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate performs comprehensive validation of the catalog.
// It checks for:
// - At least one stage, product or event exists
// - All stage, product and event IDs are unique within their kind
// - Limit policies, costs, star conditions and rewards are valid
// - Unlock conditions reference existing stages
// - Event-currency prices reference existing events
// - Event-currency rewards reference events that define a currency
// - Event windows end after they start
//
// Returns an error describing the first validation failure encountered.
func (v *Validator) Validate(catalog *Catalog) error {
	if len(catalog.Stages) == 0 && len(catalog.Products) == 0 && len(catalog.Events) == 0 {
		return errors.New("catalog must define at least one stage, product or event")
	}

	// First pass: each entry on its own
	stageIDs := make(map[string]bool)
	for _, stage := range catalog.Stages {
		if err := v.validateStage(stage); err != nil {
			return fmt.Errorf("invalid stage '%s': %w", stage.ID, err)
		}
		if stageIDs[stage.ID] {
			return fmt.Errorf("duplicate stage ID: %s", stage.ID)
		}
		stageIDs[stage.ID] = true
	}

	eventIDs := make(map[string]bool)
	currencyEvents := make(map[string]bool)
	for _, event := range catalog.Events {
		if err := v.validateEvent(event); err != nil {
			return fmt.Errorf("invalid event '%s': %w", event.ID, err)
		}
		if eventIDs[event.ID] {
			return fmt.Errorf("duplicate event ID: %s", event.ID)
		}
		eventIDs[event.ID] = true
		currencyEvents[event.ID] = event.Currency != nil
	}

	productIDs := make(map[string]bool)
	for _, product := range catalog.Products {
		if err := v.validateProduct(product); err != nil {
			return fmt.Errorf("invalid product '%s': %w", product.ID, err)
		}
		if productIDs[product.ID] {
			return fmt.Errorf("duplicate product ID: %s", product.ID)
		}
		productIDs[product.ID] = true
	}

	// Second pass: cross references
	for _, stage := range catalog.Stages {
		required := stage.UnlockConditionStageID
		if required == "" {
			continue
		}
		if required == stage.ID {
			return fmt.Errorf("stage '%s' cannot require itself", stage.ID)
		}
		if !stageIDs[required] {
			return fmt.Errorf("stage '%s' has invalid unlock condition: '%s' does not exist", stage.ID, required)
		}
	}
	for _, stage := range catalog.Stages {
		if err := v.validateEventCost(stage.EntryCost, eventIDs); err != nil {
			return fmt.Errorf("stage '%s' has invalid entry cost: %w", stage.ID, err)
		}
		if err := v.validateEventRewards(stage.FirstClearRewards, currencyEvents); err != nil {
			return fmt.Errorf("stage '%s' has invalid first clear rewards: %w", stage.ID, err)
		}
		if err := v.validateEventRewards(stage.RepeatClearRewards, currencyEvents); err != nil {
			return fmt.Errorf("stage '%s' has invalid repeat clear rewards: %w", stage.ID, err)
		}
	}
	for _, product := range catalog.Products {
		if err := v.validateEventCost(product.Price, eventIDs); err != nil {
			return fmt.Errorf("product '%s' has invalid price: %w", product.ID, err)
		}
		if err := v.validateEventRewards(product.Rewards, currencyEvents); err != nil {
			return fmt.Errorf("product '%s' has invalid rewards: %w", product.ID, err)
		}
	}
	for _, event := range catalog.Events {
		for _, mission := range event.Missions {
			if err := v.validateEventRewards(mission.Rewards, currencyEvents); err != nil {
				return fmt.Errorf("event '%s' mission '%s' has invalid rewards: %w", event.ID, mission.ID, err)
			}
		}
	}

	return nil
}

// validateStage validates a single stage.
func (v *Validator) validateStage(stage *domain.StageDefinition) error {
	if stage.ID == "" {
		return errors.New("stage ID cannot be empty")
	}
	if err := validateLimit(stage.EntryLimitPolicy, stage.EntryLimitCount); err != nil {
		return fmt.Errorf("entry limit: %w", err)
	}
	if err := validateCost(stage.EntryCost); err != nil {
		return fmt.Errorf("entry cost: %w", err)
	}

	for _, day := range stage.AvailableDays {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid available day %d (must be 0-6, Sunday-Saturday)", day)
		}
	}

	if len(stage.StarConditions) > domain.MaxStars {
		return fmt.Errorf("at most %d star conditions allowed, got %d", domain.MaxStars, len(stage.StarConditions))
	}
	for _, cond := range stage.StarConditions {
		if !cond.Type.IsValid() {
			return fmt.Errorf("invalid star condition '%s'", cond.Type)
		}
		if cond.Type == domain.StarConditionTurnLimit && cond.Threshold <= 0 {
			return errors.New("turn_limit threshold must be positive")
		}
	}

	if err := reward.ValidateRewards(stage.FirstClearRewards); err != nil {
		return fmt.Errorf("first clear rewards: %w", err)
	}
	if err := reward.ValidateRewards(stage.RepeatClearRewards); err != nil {
		return fmt.Errorf("repeat clear rewards: %w", err)
	}
	return nil
}

// validateProduct validates a single shop product.
func (v *Validator) validateProduct(product *domain.ProductDefinition) error {
	if product.ID == "" {
		return errors.New("product ID cannot be empty")
	}
	if err := validateLimit(product.LimitPolicy, product.LimitCount); err != nil {
		return fmt.Errorf("purchase limit: %w", err)
	}
	if err := validateCost(product.Price); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	if len(product.Rewards) == 0 {
		return errors.New("product must grant at least one reward")
	}
	if err := reward.ValidateRewards(product.Rewards); err != nil {
		return fmt.Errorf("rewards: %w", err)
	}
	return nil
}

// validateEvent validates a single event.
func (v *Validator) validateEvent(event *domain.EventDefinition) error {
	if event.ID == "" {
		return errors.New("event ID cannot be empty")
	}
	if event.StartTime.IsZero() || event.EndTime.IsZero() {
		return errors.New("start_time and end_time are required")
	}
	if !event.EndTime.After(event.StartTime) {
		return errors.New("end_time must be after start_time")
	}

	if policy := event.Currency; policy != nil {
		if policy.CurrencyID == "" {
			return errors.New("currency_id cannot be empty")
		}
		if policy.GracePeriodDays < 0 {
			return errors.New("grace_period_days cannot be negative")
		}
		if policy.ConversionRate < 0 {
			return errors.New("conversion_rate cannot be negative")
		}
	}

	missionIDs := make(map[string]bool)
	for _, mission := range event.Missions {
		if mission.ID == "" {
			return errors.New("mission ID cannot be empty")
		}
		if missionIDs[mission.ID] {
			return fmt.Errorf("duplicate mission ID: %s", mission.ID)
		}
		missionIDs[mission.ID] = true
		if err := reward.ValidateRewards(mission.Rewards); err != nil {
			return fmt.Errorf("mission '%s' rewards: %w", mission.ID, err)
		}
	}
	return nil
}

// validateEventCost checks that an event-currency cost points at a known event.
func (v *Validator) validateEventCost(cost domain.Cost, eventIDs map[string]bool) error {
	if cost.Kind != domain.CurrencyEvent || cost.IsFree() {
		return nil
	}
	if !eventIDs[cost.EventID] {
		return fmt.Errorf("event '%s' does not exist", cost.EventID)
	}
	return nil
}

// validateEventRewards checks that event-currency grants point at an event
// that defines a currency.
func (v *Validator) validateEventRewards(grants []domain.RewardGrant, currencyEvents map[string]bool) error {
	for _, g := range grants {
		if !g.IsEventCurrency() {
			continue
		}
		hasCurrency, ok := currencyEvents[g.EventID]
		if !ok {
			return fmt.Errorf("event '%s' does not exist", g.EventID)
		}
		if !hasCurrency {
			return fmt.Errorf("event '%s' has no currency", g.EventID)
		}
	}
	return nil
}

func validateLimit(policy domain.LimitPolicy, count int) error {
	if !policy.IsValid() {
		return fmt.Errorf("invalid limit policy '%s' (must be 'none', 'daily', 'weekly', 'monthly', 'permanent' or 'event_period')", policy)
	}
	if count < 0 {
		return errors.New("limit count cannot be negative")
	}
	return nil
}

func validateCost(cost domain.Cost) error {
	if cost.Amount < 0 {
		return errors.New("amount cannot be negative")
	}
	if cost.IsFree() {
		return nil
	}
	if !cost.Kind.IsValid() {
		return fmt.Errorf("unknown currency '%s'", cost.Kind)
	}
	if cost.Kind == domain.CurrencyEvent && cost.EventID == "" {
		return errors.New("event_currency cost requires event_id")
	}
	return nil
}
