// Package reward turns reward grants into a delta on the player aggregate.
package reward

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// DefaultCharacterLevel is the level of a freshly granted character.
const DefaultCharacterLevel = 1

// IDGenerator produces unique instance ids for granted characters.
type IDGenerator func() string

// EventLookup resolves the event that owns an event-scoped currency.
type EventLookup interface {
	GetEventByID(eventID string) *domain.EventDefinition
}

// Engine builds player deltas from reward grants.
type Engine struct {
	time   *timeauth.Authority
	events EventLookup
	newID  IDGenerator
}

// NewEngine creates an Engine. A nil newID uses random UUIDs. With nil events
// every event-currency grant is dropped.
func NewEngine(auth *timeauth.Authority, events EventLookup, newID IDGenerator) *Engine {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Engine{time: auth, events: events, newID: newID}
}

// BuildDelta computes the change the grants would make to player, in grant order.
// Neither grants nor player are modified; apply the result with player.Apply.
//
// Rules:
//   - currency grants accumulate per currency; stamina is clamped so the
//     result never exceeds MaxStamina
//   - item grants for the same id merge into one entry whose NewTotal
//     includes the quantity already owned
//   - every character grant creates one new instance with a unique id
//   - event-currency grants accumulate per event and name the event's
//     currency; grants for unknown events, events without a currency, or
//     events outside [StartTime, GracePeriodEnd) are dropped
//   - player-exp grants accumulate into one value
//   - grants with a non-positive amount are ignored, except characters
func (e *Engine) BuildDelta(grants []domain.RewardGrant, player *domain.PlayerAggregate) domain.PlayerDelta {
	var delta domain.PlayerDelta
	var stamina int64
	itemIndex := make(map[string]int)

	for _, g := range grants {
		if g.Kind != domain.RewardKindCharacter && g.Amount <= 0 {
			continue
		}

		switch g.Kind {
		case domain.RewardKindCurrency:
			switch domain.CurrencyKind(g.SubjectID) {
			case domain.CurrencyGold:
				delta.Gold += g.Amount
			case domain.CurrencyGem:
				delta.Gem += g.Amount
			case domain.CurrencyFreeGem:
				delta.FreeGem += g.Amount
			case domain.CurrencyStamina:
				stamina += g.Amount
			case domain.CurrencyEvent:
				e.addEventCurrency(&delta, g)
			}

		case domain.RewardKindItem:
			if g.SubjectID == "" {
				continue
			}
			if i, ok := itemIndex[g.SubjectID]; ok {
				delta.Items[i].Count += g.Amount
				delta.Items[i].NewTotal += g.Amount
				continue
			}
			itemIndex[g.SubjectID] = len(delta.Items)
			delta.Items = append(delta.Items, domain.ItemDelta{
				ItemID:   g.SubjectID,
				Count:    g.Amount,
				NewTotal: player.ItemCount(g.SubjectID) + g.Amount,
			})

		case domain.RewardKindCharacter:
			if g.SubjectID == "" {
				continue
			}
			delta.Characters = append(delta.Characters, domain.OwnedCharacter{
				InstanceID:  e.newID(),
				CharacterID: g.SubjectID,
				Level:       DefaultCharacterLevel,
				AcquiredAt:  e.time.Now(),
			})

		case domain.RewardKindPlayerExp:
			delta.PlayerExp += g.Amount
		}
	}

	delta.Stamina = clampStamina(stamina, player.Currency)
	return delta
}

func (e *Engine) addEventCurrency(delta *domain.PlayerDelta, g domain.RewardGrant) {
	if e.events == nil || g.EventID == "" {
		return
	}
	event := e.events.GetEventByID(g.EventID)
	if event == nil || event.Currency == nil {
		return
	}
	now := e.time.Now()
	if now.Before(event.StartTime) || !now.Before(event.GracePeriodEnd()) {
		return
	}

	for i := range delta.EventCurrency {
		if delta.EventCurrency[i].EventID == event.ID {
			delta.EventCurrency[i].Amount += g.Amount
			return
		}
	}
	delta.EventCurrency = append(delta.EventCurrency, domain.EventCurrencyDelta{
		EventID:    event.ID,
		CurrencyID: event.Currency.CurrencyID,
		Amount:     g.Amount,
	})
}

// Grant builds the delta for grants and applies it to player.
func (e *Engine) Grant(grants []domain.RewardGrant, player *domain.PlayerAggregate) domain.PlayerDelta {
	delta := e.BuildDelta(grants, player)
	player.Apply(delta)
	return delta
}

func clampStamina(gain int64, wallet domain.Currency) int {
	room := int64(wallet.MaxStamina - wallet.Stamina)
	if room < 0 {
		room = 0
	}
	if gain > room {
		gain = room
	}
	return int(gain)
}

// ValidateRewards checks grants before they are offered to players.
// It rejects unknown kinds, unknown currency ids, event-currency grants
// without an event id, empty item and character ids, and non-positive
// amounts. Player-exp grants carry no subject id and
// are exempt from the amount and id checks.
func ValidateRewards(grants []domain.RewardGrant) error {
	for i, g := range grants {
		if err := validateGrant(g); err != nil {
			return fmt.Errorf("reward %d: %w", i, err)
		}
	}
	return nil
}

func validateGrant(g domain.RewardGrant) error {
	switch g.Kind {
	case domain.RewardKindCurrency:
		if g.IsEventCurrency() {
			if g.EventID == "" {
				return errors.New("event_currency reward requires event_id")
			}
			break
		}
		if !domain.CurrencyKind(g.SubjectID).IsWallet() {
			return fmt.Errorf("unknown currency id '%s'", g.SubjectID)
		}
	case domain.RewardKindItem:
		if g.SubjectID == "" {
			return errors.New("item id cannot be empty")
		}
	case domain.RewardKindCharacter:
		if g.SubjectID == "" {
			return errors.New("character id cannot be empty")
		}
	case domain.RewardKindPlayerExp:
		return nil
	default:
		return fmt.Errorf("unsupported reward kind '%s'", g.Kind)
	}

	if g.Amount <= 0 {
		return fmt.Errorf("%s reward amount must be positive", g.Kind)
	}
	return nil
}
