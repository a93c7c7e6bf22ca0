package domain

// ItemDelta is the net change to one item stack.
type ItemDelta struct {
	ItemID   string `json:"item_id"`
	Count    int64  `json:"count"`     // Quantity added by this change
	NewTotal int64  `json:"new_total"` // Owned quantity after the change
}

// EventCurrencyDelta is the net change to an event-scoped balance.
// CurrencyID is set on grants so a missing balance can be opened.
type EventCurrencyDelta struct {
	EventID    string `json:"event_id"`
	CurrencyID string `json:"currency_id,omitempty"`
	Amount     int64  `json:"amount"`
}

// PlayerDelta is the computed net change to a player aggregate. Currency
// fields are signed: costs are negative, rewards positive.
type PlayerDelta struct {
	Gold          int64                `json:"gold"`
	Gem           int64                `json:"gem"`
	FreeGem       int64                `json:"free_gem"`
	Stamina       int                  `json:"stamina"`
	PlayerExp     int64                `json:"player_exp"`
	Items         []ItemDelta          `json:"items,omitempty"`
	Characters    []OwnedCharacter     `json:"characters,omitempty"`
	EventCurrency []EventCurrencyDelta `json:"event_currency,omitempty"`
}

// IsEmpty returns true if the delta changes nothing.
func (d *PlayerDelta) IsEmpty() bool {
	return d.Gold == 0 && d.Gem == 0 && d.FreeGem == 0 && d.Stamina == 0 &&
		d.PlayerExp == 0 && len(d.Items) == 0 && len(d.Characters) == 0 &&
		len(d.EventCurrency) == 0
}

// Merge folds other into d. Item entries for the same id are combined and keep
// the later NewTotal.
func (d *PlayerDelta) Merge(other PlayerDelta) {
	d.Gold += other.Gold
	d.Gem += other.Gem
	d.FreeGem += other.FreeGem
	d.Stamina += other.Stamina
	d.PlayerExp += other.PlayerExp
	for _, item := range other.Items {
		merged := false
		for i := range d.Items {
			if d.Items[i].ItemID == item.ItemID {
				d.Items[i].Count += item.Count
				d.Items[i].NewTotal = item.NewTotal
				merged = true
				break
			}
		}
		if !merged {
			d.Items = append(d.Items, item)
		}
	}
	d.Characters = append(d.Characters, other.Characters...)
	d.EventCurrency = append(d.EventCurrency, other.EventCurrency...)
}

// Apply writes the delta into the aggregate. Item totals are taken from
// NewTotal, so a delta must be applied to the state it was built from.
// Event-currency entries adjust the balance held for the event; a positive
// entry carrying a currency id opens the balance when none is held.
func (p *PlayerAggregate) Apply(d PlayerDelta) {
	p.Currency.Gold += d.Gold
	p.Currency.Gem += d.Gem
	p.Currency.FreeGem += d.FreeGem
	p.Currency.Stamina += d.Stamina
	if p.Currency.Stamina < 0 {
		p.Currency.Stamina = 0
	}
	p.Exp += d.PlayerExp

	for _, item := range d.Items {
		p.SetItemCount(item.ItemID, item.NewTotal)
	}
	p.Characters = append(p.Characters, d.Characters...)

	for _, ec := range d.EventCurrency {
		if b := p.FindEventCurrency(ec.EventID); b != nil {
			b.Amount += ec.Amount
			continue
		}
		if ec.Amount > 0 && ec.CurrencyID != "" {
			p.EventCurrency = append(p.EventCurrency, EventCurrencyBalance{
				EventID:    ec.EventID,
				CurrencyID: ec.CurrencyID,
				Amount:     ec.Amount,
			})
		}
	}
}
