package handler

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
)

// wallet reads and charges costs against a player, applying stamina recovery.
type wallet struct {
	staminaInterval time.Duration
}

// validateCost reports catalog costs the wallet cannot charge.
func (w wallet) validateCost(cost domain.Cost) error {
	if cost.IsFree() {
		return nil
	}
	if !cost.Kind.IsValid() {
		return fmt.Errorf("unknown cost currency '%s'", cost.Kind)
	}
	if cost.Kind == domain.CurrencyEvent && cost.EventID == "" {
		return fmt.Errorf("event currency cost without event id")
	}
	return nil
}

// available returns the balance a cost of this kind would draw from at now.
func (w wallet) available(player *domain.PlayerAggregate, cost domain.Cost, now time.Time) int64 {
	switch cost.Kind {
	case domain.CurrencyStamina:
		stamina, _ := player.Currency.StaminaAt(now, w.staminaInterval)
		return int64(stamina)
	case domain.CurrencyEvent:
		return player.EventCurrencyAmount(cost.EventID)
	default:
		return player.Currency.Available(cost.Kind)
	}
}

// canAfford reports whether the player can pay cost at now.
func (w wallet) canAfford(player *domain.PlayerAggregate, cost domain.Cost, now time.Time) (bool, int64) {
	balance := w.available(player, cost, now)
	if cost.IsFree() {
		return true, balance
	}
	return balance >= cost.Amount, balance
}

// charge deducts cost from the player and returns the (negative) delta.
// Gem costs draw from free gems first. Call only after canAfford.
func (w wallet) charge(player *domain.PlayerAggregate, cost domain.Cost, now time.Time) domain.PlayerDelta {
	player.Currency.RecoverStamina(now, w.staminaInterval)

	var delta domain.PlayerDelta
	if cost.IsFree() {
		return delta
	}

	switch cost.Kind {
	case domain.CurrencyGold:
		delta.Gold = -cost.Amount
	case domain.CurrencyGem:
		fromFree := min(player.Currency.FreeGem, cost.Amount)
		delta.FreeGem = -fromFree
		delta.Gem = -(cost.Amount - fromFree)
	case domain.CurrencyFreeGem:
		delta.FreeGem = -cost.Amount
	case domain.CurrencyStamina:
		delta.Stamina = -int(cost.Amount)
	case domain.CurrencyEvent:
		delta.EventCurrency = []domain.EventCurrencyDelta{{EventID: cost.EventID, Amount: -cost.Amount}}
	}

	player.Apply(delta)
	return delta
}
