// Package eventcurrency converts leftover event-scoped currency into a wallet
// currency once the event's grace period is over.
package eventcurrency

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// EventCatalog resolves event definitions.
type EventCatalog interface {
	GetEventByID(eventID string) *domain.EventDefinition
	GetAllEvents() []*domain.EventDefinition
}

// ConversionResult describes one converted balance.
type ConversionResult struct {
	EventID          string              `json:"event_id"`
	SourceCurrencyID string              `json:"source_currency_id"`
	SourceAmount     int64               `json:"source_amount"`
	TargetCurrency   domain.CurrencyKind `json:"target_currency"`
	TargetAmount     int64               `json:"target_amount"`
	ConversionRate   float64             `json:"conversion_rate"`
}

// Converter converts event currency balances on a player aggregate.
type Converter struct {
	time   *timeauth.Authority
	events EventCatalog
	logger *slog.Logger
}

// NewConverter creates a Converter.
func NewConverter(auth *timeauth.Authority, events EventCatalog, logger *slog.Logger) *Converter {
	return &Converter{
		time:   auth,
		events: events,
		logger: logger,
	}
}

// ConvertExpired converts every balance whose event grace period has fully
// elapsed, plus balances whose own expiry has passed. Converted balances are
// removed, so a second call right after the first returns no results.
func (c *Converter) ConvertExpired(player *domain.PlayerAggregate) []ConversionResult {
	if c.events == nil {
		return nil
	}
	now := c.time.Now()

	var results []ConversionResult
	for _, balance := range append([]domain.EventCurrencyBalance(nil), player.EventCurrency...) {
		event := c.events.GetEventByID(balance.EventID)
		if event == nil || event.Currency == nil || balance.Amount <= 0 {
			continue
		}

		graceOver := !now.Before(event.GracePeriodEnd())
		ownExpiry := !balance.ExpiresAt.IsZero() && !now.Before(balance.ExpiresAt)
		if !graceOver && !ownExpiry {
			continue
		}

		results = append(results, c.convert(player, event, balance))
	}

	if len(results) > 0 {
		c.logger.Info("Event currency converted",
			"player_id", player.PlayerID,
			"conversions", len(results),
		)
	}
	return results
}

// ConvertOne converts the player's balance for one event regardless of the
// grace period, for voluntary early cash-out. It returns nil when the event
// is unknown, has no currency policy, or the player holds no balance.
func (c *Converter) ConvertOne(player *domain.PlayerAggregate, eventID string) *ConversionResult {
	if c.events == nil {
		return nil
	}
	event := c.events.GetEventByID(eventID)
	if event == nil || event.Currency == nil {
		return nil
	}

	balance := player.FindEventCurrency(eventID)
	if balance == nil || balance.Amount <= 0 {
		return nil
	}

	result := c.convert(player, event, *balance)
	c.logger.Info("Event currency cashed out",
		"player_id", player.PlayerID,
		"event_id", eventID,
		"source_amount", result.SourceAmount,
		"target_amount", result.TargetAmount,
	)
	return &result
}

// convert credits floor(amount × rate) of the target currency and removes the balance.
func (c *Converter) convert(player *domain.PlayerAggregate, event *domain.EventDefinition, balance domain.EventCurrencyBalance) ConversionResult {
	policy := event.Currency
	target := ResolveTarget(policy.ConversionTarget)
	amount := ConvertAmount(balance.Amount, policy.ConversionRate)

	switch target {
	case domain.CurrencyGem:
		player.Currency.Gem += amount
	case domain.CurrencyFreeGem:
		player.Currency.FreeGem += amount
	default:
		player.Currency.Gold += amount
	}
	player.RemoveEventCurrency(balance.EventID, balance.CurrencyID)

	return ConversionResult{
		EventID:          event.ID,
		SourceCurrencyID: balance.CurrencyID,
		SourceAmount:     balance.Amount,
		TargetCurrency:   target,
		TargetAmount:     amount,
		ConversionRate:   policy.ConversionRate,
	}
}

// ConvertAmount returns floor(amount × rate) computed in decimal, so a rate
// such as 3.3 applied to 10 yields exactly 33. Negative results floor to 0.
func ConvertAmount(amount int64, rate float64) int64 {
	converted := decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(rate)).Floor().IntPart()
	if converted < 0 {
		return 0
	}
	return converted
}

// ResolveTarget maps a conversion target name to a wallet currency.
// Unrecognized names resolve to gold.
func ResolveTarget(name string) domain.CurrencyKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gem":
		return domain.CurrencyGem
	case "freegem", "free_gem":
		return domain.CurrencyFreeGem
	default:
		return domain.CurrencyGold
	}
}
