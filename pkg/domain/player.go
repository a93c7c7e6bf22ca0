package domain

import "time"

// Defaults for a freshly created player.
const (
	DefaultPlayerLevel = 1
	DefaultMaxStamina  = 100
	DefaultGold        = 1000
)

// Currency is the player's main wallet.
// Stamina is kept within [0, MaxStamina]; the total gem balance is derived.
type Currency struct {
	Gold             int64     `json:"gold"`
	Gem              int64     `json:"gem"`      // Paid gems
	FreeGem          int64     `json:"free_gem"` // Gems granted by gameplay
	Stamina          int       `json:"stamina"`
	MaxStamina       int       `json:"max_stamina"`
	StaminaUpdatedAt time.Time `json:"stamina_updated_at"`
}

// TotalGem returns paid plus free gems.
func (c *Currency) TotalGem() int64 {
	return c.Gem + c.FreeGem
}

// Available returns the spendable balance of a wallet currency.
// Gem spending draws from free gems first, so the gem balance is the total.
func (c *Currency) Available(kind CurrencyKind) int64 {
	switch kind {
	case CurrencyGold:
		return c.Gold
	case CurrencyGem:
		return c.TotalGem()
	case CurrencyFreeGem:
		return c.FreeGem
	case CurrencyStamina:
		return int64(c.Stamina)
	default:
		return 0
	}
}

// StaminaAt returns the stamina the wallet would hold at now if one point is
// recovered per interval, together with the instant recovery is counted from.
// The wallet itself is not modified. A non-positive interval disables recovery.
func (c *Currency) StaminaAt(now time.Time, interval time.Duration) (int, time.Time) {
	if interval <= 0 || c.StaminaUpdatedAt.IsZero() || c.Stamina >= c.MaxStamina {
		return c.Stamina, now
	}
	elapsed := now.Sub(c.StaminaUpdatedAt)
	if elapsed <= 0 {
		return c.Stamina, c.StaminaUpdatedAt
	}

	ticks := int(elapsed / interval)
	stamina := c.Stamina + ticks
	if stamina >= c.MaxStamina {
		return c.MaxStamina, now
	}
	return stamina, c.StaminaUpdatedAt.Add(time.Duration(ticks) * interval)
}

// RecoverStamina materializes the stamina recovered up to now.
func (c *Currency) RecoverStamina(now time.Time, interval time.Duration) {
	c.Stamina, c.StaminaUpdatedAt = c.StaminaAt(now, interval)
}

// OwnedCharacter is a unique character instance owned by the player.
// Two copies of the same catalog character are two distinct instances.
type OwnedCharacter struct {
	InstanceID  string    `json:"instance_id"`
	CharacterID string    `json:"character_id"`
	Level       int       `json:"level"`
	AcquiredAt  time.Time `json:"acquired_at"`
}

// OwnedItem is a stack of items.
type OwnedItem struct {
	ItemID string `json:"item_id"`
	Count  int64  `json:"count"`
}

// CounterRecord tracks usage of a recurring limit (purchases or stage entries).
// A zero ResetTime means the counter never resets (permanent, none and event-period policies).
type CounterRecord struct {
	SubjectID      string    `json:"subject_id"`
	Count          int       `json:"count"`
	LastActionTime time.Time `json:"last_action_time"`
	ResetTime      time.Time `json:"reset_time"`
}

// BattleSession links a validated stage entry to the single clear call that consumes it.
type BattleSession struct {
	SessionID string    `json:"session_id"`
	StageID   string    `json:"stage_id"`
	PartyIDs  []string  `json:"party_ids"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// IsExpired returns true if the session is older than ttl at now.
// A non-positive ttl means sessions never expire.
func (s *BattleSession) IsExpired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return !now.Before(s.CreatedAt.Add(ttl))
}

// StageClearInfo is the best-known result for one stage.
// ClearCount never decreases and stars are only ever turned on.
type StageClearInfo struct {
	StageID        string         `json:"stage_id"`
	IsCleared      bool           `json:"is_cleared"`
	Stars          [MaxStars]bool `json:"stars"`
	BestTurnCount  int            `json:"best_turn_count"`
	ClearCount     int            `json:"clear_count"`
	FirstClearedAt time.Time      `json:"first_cleared_at"`
}

// StarCount returns the number of stars earned.
func (s *StageClearInfo) StarCount() int {
	n := 0
	for _, on := range s.Stars {
		if on {
			n++
		}
	}
	return n
}

// EventProgress is the player's per-event state.
type EventProgress struct {
	EventID         string    `json:"event_id"`
	HasVisited      bool      `json:"has_visited"`
	FirstVisitTime  time.Time `json:"first_visit_time"`
	ClaimedMissions []string  `json:"claimed_missions,omitempty"`
}

// EventCurrencyBalance is the player's balance of one event-scoped currency.
// A zero ExpiresAt means the balance has no expiry of its own and is governed
// by the event's grace period.
type EventCurrencyBalance struct {
	EventID    string    `json:"event_id"`
	CurrencyID string    `json:"currency_id"`
	Amount     int64     `json:"amount"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PlayerAggregate is one player's complete persisted state. It owns every
// nested record; handlers mutate it in place once all validations passed.
//
// Pointers returned by the Find* helpers point into the aggregate's slices
// and are only valid until the corresponding collection is modified.
type PlayerAggregate struct {
	PlayerID  string    `json:"player_id"`
	Version   int64     `json:"version"`
	Level     int       `json:"level"`
	Exp       int64     `json:"exp"`
	Currency  Currency  `json:"currency"`
	CreatedAt time.Time `json:"created_at"`

	Characters      []OwnedCharacter       `json:"characters"`
	Items           []OwnedItem            `json:"items"`
	StageProgress   []StageClearInfo       `json:"stage_progress"`
	PurchaseRecords []CounterRecord        `json:"purchase_records"`
	EntryRecords    []CounterRecord        `json:"entry_records"`
	BattleSessions  []BattleSession        `json:"battle_sessions"`
	EventProgress   []EventProgress        `json:"event_progress"`
	EventCurrency   []EventCurrencyBalance `json:"event_currency"`
}

// NewPlayerAggregate creates the starting state for a new player.
func NewPlayerAggregate(playerID string, now time.Time) *PlayerAggregate {
	return &PlayerAggregate{
		PlayerID:  playerID,
		Level:     DefaultPlayerLevel,
		CreatedAt: now,
		Currency: Currency{
			Gold:             DefaultGold,
			Stamina:          DefaultMaxStamina,
			MaxStamina:       DefaultMaxStamina,
			StaminaUpdatedAt: now,
		},
	}
}

// FindStageClear returns the clear info for a stage, or nil if never cleared or attempted.
func (p *PlayerAggregate) FindStageClear(stageID string) *StageClearInfo {
	for i := range p.StageProgress {
		if p.StageProgress[i].StageID == stageID {
			return &p.StageProgress[i]
		}
	}
	return nil
}

// IsStageCleared returns true if the stage has been cleared at least once.
func (p *PlayerAggregate) IsStageCleared(stageID string) bool {
	info := p.FindStageClear(stageID)
	return info != nil && info.IsCleared
}

// SetStageClear inserts or replaces the clear info for info.StageID.
func (p *PlayerAggregate) SetStageClear(info StageClearInfo) {
	if existing := p.FindStageClear(info.StageID); existing != nil {
		*existing = info
		return
	}
	p.StageProgress = append(p.StageProgress, info)
}

// FindPurchaseRecord returns the purchase counter for a product, or nil.
func (p *PlayerAggregate) FindPurchaseRecord(productID string) *CounterRecord {
	return findRecord(p.PurchaseRecords, productID)
}

// SetPurchaseRecord inserts or replaces the purchase counter for rec.SubjectID.
func (p *PlayerAggregate) SetPurchaseRecord(rec CounterRecord) {
	p.PurchaseRecords = setRecord(p.PurchaseRecords, rec)
}

// FindEntryRecord returns the entry counter for a stage, or nil.
func (p *PlayerAggregate) FindEntryRecord(stageID string) *CounterRecord {
	return findRecord(p.EntryRecords, stageID)
}

// SetEntryRecord inserts or replaces the entry counter for rec.SubjectID.
func (p *PlayerAggregate) SetEntryRecord(rec CounterRecord) {
	p.EntryRecords = setRecord(p.EntryRecords, rec)
}

func findRecord(records []CounterRecord, subjectID string) *CounterRecord {
	for i := range records {
		if records[i].SubjectID == subjectID {
			return &records[i]
		}
	}
	return nil
}

func setRecord(records []CounterRecord, rec CounterRecord) []CounterRecord {
	if existing := findRecord(records, rec.SubjectID); existing != nil {
		*existing = rec
		return records
	}
	return append(records, rec)
}

// FindBattleSession returns the session with the given id, or nil.
func (p *PlayerAggregate) FindBattleSession(sessionID string) *BattleSession {
	for i := range p.BattleSessions {
		if p.BattleSessions[i].SessionID == sessionID {
			return &p.BattleSessions[i]
		}
	}
	return nil
}

// PruneBattleSessions drops sessions that are inactive or expired at now.
// It returns the number of sessions removed.
func (p *PlayerAggregate) PruneBattleSessions(now time.Time, ttl time.Duration) int {
	kept := p.BattleSessions[:0]
	for _, s := range p.BattleSessions {
		if s.IsActive && !s.IsExpired(now, ttl) {
			kept = append(kept, s)
		}
	}
	removed := len(p.BattleSessions) - len(kept)
	p.BattleSessions = kept
	return removed
}

// ItemCount returns the owned quantity of an item.
func (p *PlayerAggregate) ItemCount(itemID string) int64 {
	for _, item := range p.Items {
		if item.ItemID == itemID {
			return item.Count
		}
	}
	return 0
}

// SetItemCount sets the owned quantity of an item, adding the stack if missing.
func (p *PlayerAggregate) SetItemCount(itemID string, count int64) {
	for i := range p.Items {
		if p.Items[i].ItemID == itemID {
			p.Items[i].Count = count
			return
		}
	}
	p.Items = append(p.Items, OwnedItem{ItemID: itemID, Count: count})
}

// FindEventProgress returns the player's progress for an event, or nil.
func (p *PlayerAggregate) FindEventProgress(eventID string) *EventProgress {
	for i := range p.EventProgress {
		if p.EventProgress[i].EventID == eventID {
			return &p.EventProgress[i]
		}
	}
	return nil
}

// SetEventProgress inserts or replaces the progress for progress.EventID.
func (p *PlayerAggregate) SetEventProgress(progress EventProgress) {
	if existing := p.FindEventProgress(progress.EventID); existing != nil {
		*existing = progress
		return
	}
	p.EventProgress = append(p.EventProgress, progress)
}

// FindEventCurrency returns the first balance held for an event, or nil.
func (p *PlayerAggregate) FindEventCurrency(eventID string) *EventCurrencyBalance {
	for i := range p.EventCurrency {
		if p.EventCurrency[i].EventID == eventID {
			return &p.EventCurrency[i]
		}
	}
	return nil
}

// EventCurrencyAmount returns the balance held for an event, or 0.
func (p *PlayerAggregate) EventCurrencyAmount(eventID string) int64 {
	if b := p.FindEventCurrency(eventID); b != nil {
		return b.Amount
	}
	return 0
}

// RemoveEventCurrency deletes the balance for the event and currency.
func (p *PlayerAggregate) RemoveEventCurrency(eventID, currencyID string) {
	kept := p.EventCurrency[:0]
	for _, b := range p.EventCurrency {
		if b.EventID == eventID && b.CurrencyID == currencyID {
			continue
		}
		kept = append(kept, b)
	}
	p.EventCurrency = kept
}
