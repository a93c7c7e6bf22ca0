package domain

import "math"

// LimitPolicy defines how often a limited action (a shop purchase or a stage
// entry) may be repeated before its counter resets.
type LimitPolicy string

const (
	// LimitPolicyNone means the action is never limited.
	LimitPolicyNone LimitPolicy = "none"

	// LimitPolicyDaily resets the counter at 00:00 UTC every day.
	LimitPolicyDaily LimitPolicy = "daily"

	// LimitPolicyWeekly resets the counter at 00:00 UTC every Monday.
	LimitPolicyWeekly LimitPolicy = "weekly"

	// LimitPolicyMonthly resets the counter at 00:00 UTC on the 1st of every month.
	LimitPolicyMonthly LimitPolicy = "monthly"

	// LimitPolicyPermanent limits the action for the lifetime of the account.
	LimitPolicyPermanent LimitPolicy = "permanent"

	// LimitPolicyEventPeriod limits the action for the duration of an event.
	// The counter never resets on a calendar cadence; the event window ends it.
	LimitPolicyEventPeriod LimitPolicy = "event_period"
)

// IsValid returns true if the policy is a known limit policy.
func (p LimitPolicy) IsValid() bool {
	switch p {
	case LimitPolicyNone, LimitPolicyDaily, LimitPolicyWeekly, LimitPolicyMonthly,
		LimitPolicyPermanent, LimitPolicyEventPeriod:
		return true
	default:
		return false
	}
}

// IsCalendar returns true for policies whose counter resets on a calendar cadence.
func (p LimitPolicy) IsCalendar() bool {
	return p == LimitPolicyDaily || p == LimitPolicyWeekly || p == LimitPolicyMonthly
}

// CurrencyKind identifies a wallet currency used for costs and rewards.
type CurrencyKind string

const (
	CurrencyGold    CurrencyKind = "gold"
	CurrencyGem     CurrencyKind = "gem"
	CurrencyFreeGem CurrencyKind = "free_gem"
	CurrencyStamina CurrencyKind = "stamina"

	// CurrencyEvent is an event-scoped currency. Costs and currency grants
	// of this kind carry the owning event id.
	CurrencyEvent CurrencyKind = "event_currency"
)

// IsValid returns true if the kind is a known currency kind.
func (k CurrencyKind) IsValid() bool {
	switch k {
	case CurrencyGold, CurrencyGem, CurrencyFreeGem, CurrencyStamina, CurrencyEvent:
		return true
	default:
		return false
	}
}

// IsWallet returns true for currencies stored in the player's main wallet.
func (k CurrencyKind) IsWallet() bool {
	return k == CurrencyGold || k == CurrencyGem || k == CurrencyFreeGem || k == CurrencyStamina
}

// RewardKind defines what a reward grant gives to the player.
type RewardKind string

const (
	// RewardKindCurrency credits a wallet currency. SubjectID is the CurrencyKind.
	RewardKindCurrency RewardKind = "currency"

	// RewardKindItem adds stackable items. SubjectID is the item id.
	RewardKindItem RewardKind = "item"

	// RewardKindCharacter creates one owned character instance per grant.
	// SubjectID is the catalog character id.
	RewardKindCharacter RewardKind = "character"

	// RewardKindPlayerExp adds account experience. SubjectID is unused.
	RewardKindPlayerExp RewardKind = "player_exp"
)

// IsValid returns true if the kind is a known reward kind.
func (k RewardKind) IsValid() bool {
	switch k {
	case RewardKindCurrency, RewardKindItem, RewardKindCharacter, RewardKindPlayerExp:
		return true
	default:
		return false
	}
}

// RewardGrant is one unit of reward to apply to a player.
type RewardGrant struct {
	Kind      RewardKind `json:"kind" yaml:"kind"`
	SubjectID string     `json:"subject_id" yaml:"subject_id"`
	Amount    int64      `json:"amount" yaml:"amount"`
	EventID   string     `json:"event_id,omitempty" yaml:"event_id,omitempty"` // Only for CurrencyEvent grants
}

// IsEventCurrency returns true for a grant of event-scoped currency.
func (g RewardGrant) IsEventCurrency() bool {
	return g.Kind == RewardKindCurrency && CurrencyKind(g.SubjectID) == CurrencyEvent
}

// Cost is a price paid in a single currency.
type Cost struct {
	Kind    CurrencyKind `json:"kind" yaml:"kind"`
	Amount  int64        `json:"amount" yaml:"amount"`
	EventID string       `json:"event_id,omitempty" yaml:"event_id,omitempty"` // Only for CurrencyEvent
}

// IsFree returns true if the cost requires no payment.
func (c Cost) IsFree() bool {
	return c.Amount <= 0
}

// Times returns the cost multiplied by n. ok is false when n is negative or
// the product does not fit in an int64.
func (c Cost) Times(n int) (Cost, bool) {
	amount, ok := MulAmount(c.Amount, n)
	c.Amount = amount
	return c, ok
}

// MulAmount returns amount*n, or false when n is negative or the product
// overflows.
func MulAmount(amount int64, n int) (int64, bool) {
	if n < 0 {
		return 0, false
	}
	if n == 0 || amount == 0 {
		return 0, true
	}
	if amount > math.MaxInt64/int64(n) || amount < math.MinInt64/int64(n) {
		return 0, false
	}
	return amount * int64(n), true
}

// StarConditionType defines a post-clear grading rule.
type StarConditionType string

const (
	// StarConditionClear is achieved by any victory.
	StarConditionClear StarConditionType = "clear"

	// StarConditionTurnLimit is achieved when the stage is cleared within Threshold turns.
	StarConditionTurnLimit StarConditionType = "turn_limit"

	// StarConditionNoCharacterDeath is achieved when no party member died.
	StarConditionNoCharacterDeath StarConditionType = "no_character_death"

	// StarConditionFullHP is achieved when every party member ended at full HP.
	StarConditionFullHP StarConditionType = "full_hp"

	// StarConditionElementAdvantage is graded by the battle system before the
	// clear request is sent. Any victory reported here already satisfied it.
	StarConditionElementAdvantage StarConditionType = "element_advantage"
)

// IsValid returns true if the type is a known star condition.
func (t StarConditionType) IsValid() bool {
	switch t {
	case StarConditionClear, StarConditionTurnLimit, StarConditionNoCharacterDeath,
		StarConditionFullHP, StarConditionElementAdvantage:
		return true
	default:
		return false
	}
}

// MaxStars is the number of star slots per stage.
const MaxStars = 3
