package domain

import "time"

// StageDefinition is the immutable catalog entry for a battle stage.
type StageDefinition struct {
	ID               string `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	Enabled          bool   `json:"enabled" yaml:"enabled"`
	ChapterID        string `json:"chapter_id,omitempty" yaml:"chapter_id,omitempty"`
	RecommendedPower int    `json:"recommended_power,omitempty" yaml:"recommended_power,omitempty"`

	// UnlockConditionStageID must be cleared before this stage can be entered.
	UnlockConditionStageID string `json:"unlock_condition_stage_id,omitempty" yaml:"unlock_condition_stage_id,omitempty"`

	// AvailableDays restricts entry to the listed UTC weekdays. Empty means every day.
	AvailableDays []time.Weekday `json:"available_days,omitempty" yaml:"available_days,omitempty"`

	EntryLimitPolicy LimitPolicy `json:"entry_limit_policy" yaml:"entry_limit_policy"`
	EntryLimitCount  int         `json:"entry_limit_count" yaml:"entry_limit_count"`
	EntryCost        Cost        `json:"entry_cost" yaml:"entry_cost"`

	StarConditions     []StarCondition `json:"star_conditions,omitempty" yaml:"star_conditions,omitempty"`
	FirstClearRewards  []RewardGrant   `json:"first_clear_rewards,omitempty" yaml:"first_clear_rewards,omitempty"`
	RepeatClearRewards []RewardGrant   `json:"repeat_clear_rewards,omitempty" yaml:"repeat_clear_rewards,omitempty"`
}

// IsDayRestricted returns true if the stage is only open on some weekdays.
func (s *StageDefinition) IsDayRestricted() bool {
	return len(s.AvailableDays) > 0
}

// IsAvailableOn returns true if the stage is open on the given weekday.
func (s *StageDefinition) IsAvailableOn(day time.Weekday) bool {
	if !s.IsDayRestricted() {
		return true
	}
	for _, d := range s.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// StarCondition is one grading rule for a stage clear.
type StarCondition struct {
	Type      StarConditionType `json:"type" yaml:"type"`
	Threshold int               `json:"threshold,omitempty" yaml:"threshold,omitempty"` // Used by turn_limit
}

// ProductDefinition is the immutable catalog entry for a shop product.
type ProductDefinition struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Enabled     bool          `json:"enabled" yaml:"enabled"`
	Price       Cost          `json:"price" yaml:"price"`
	LimitPolicy LimitPolicy   `json:"limit_policy" yaml:"limit_policy"`
	LimitCount  int           `json:"limit_count" yaml:"limit_count"`
	Rewards     []RewardGrant `json:"rewards" yaml:"rewards"`
}

// EventDefinition is the immutable catalog entry for a time-limited event.
type EventDefinition struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	StartTime time.Time `json:"start_time" yaml:"start_time"`
	EndTime   time.Time `json:"end_time" yaml:"end_time"`

	// Currency is nil for events without a scoped currency.
	Currency *EventCurrencyPolicy `json:"currency,omitempty" yaml:"currency,omitempty"`

	Missions []EventMission `json:"missions,omitempty" yaml:"missions,omitempty"`
}

// EventCurrencyPolicy describes an event-scoped currency and what happens to
// leftover balances after the event ends.
type EventCurrencyPolicy struct {
	CurrencyID      string  `json:"currency_id" yaml:"currency_id"`
	GracePeriodDays int     `json:"grace_period_days" yaml:"grace_period_days"`
	ConversionRate  float64 `json:"conversion_rate" yaml:"conversion_rate"`

	// ConversionTarget names the fallback currency ("gold", "gem", "freegem").
	// Unknown names fall back to gold.
	ConversionTarget string `json:"conversion_target" yaml:"conversion_target"`
}

// EventMission is a catalog mission within an event. Claiming is not served yet.
type EventMission struct {
	ID      string        `json:"id" yaml:"id"`
	Name    string        `json:"name" yaml:"name"`
	Rewards []RewardGrant `json:"rewards,omitempty" yaml:"rewards,omitempty"`
}

// GracePeriodEnd returns the instant the event's grace window closes.
// Events without a currency policy have no grace window.
func (e *EventDefinition) GracePeriodEnd() time.Time {
	if e.Currency == nil {
		return e.EndTime
	}
	return e.EndTime.AddDate(0, 0, e.Currency.GracePeriodDays)
}

// IsActiveAt returns true if now is within [StartTime, EndTime).
func (e *EventDefinition) IsActiveAt(now time.Time) bool {
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// IsInGracePeriodAt returns true if now is within [EndTime, GracePeriodEnd).
func (e *EventDefinition) IsInGracePeriodAt(now time.Time) bool {
	return !now.Before(e.EndTime) && now.Before(e.GracePeriodEnd())
}
