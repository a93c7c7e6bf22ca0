package reward

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

var testNow = time.Date(2025, 10, 17, 14, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	n := 0
	return NewEngine(timeauth.New(timeauth.NewFixedClock(testNow)), testEvents, func() string {
		n++
		return fmt.Sprintf("inst-%d", n)
	})
}

type eventMap map[string]*domain.EventDefinition

func (m eventMap) GetEventByID(eventID string) *domain.EventDefinition {
	return m[eventID]
}

var testEvents = eventMap{
	"ev_live": {
		ID:        "ev_live",
		StartTime: testNow.AddDate(0, 0, -1),
		EndTime:   testNow.AddDate(0, 0, 6),
		Currency:  &domain.EventCurrencyPolicy{CurrencyID: "star_shard", GracePeriodDays: 3},
	},
	"ev_grace": {
		ID:        "ev_grace",
		StartTime: testNow.AddDate(0, 0, -10),
		EndTime:   testNow.AddDate(0, 0, -1),
		Currency:  &domain.EventCurrencyPolicy{CurrencyID: "leaf", GracePeriodDays: 3},
	},
	"ev_closed": {
		ID:        "ev_closed",
		StartTime: testNow.AddDate(0, 0, -20),
		EndTime:   testNow.AddDate(0, 0, -10),
		Currency:  &domain.EventCurrencyPolicy{CurrencyID: "ember", GracePeriodDays: 3},
	},
	"ev_upcoming": {
		ID:        "ev_upcoming",
		StartTime: testNow.AddDate(0, 0, 2),
		EndTime:   testNow.AddDate(0, 0, 9),
		Currency:  &domain.EventCurrencyPolicy{CurrencyID: "frost"},
	},
	"ev_plain": {
		ID:        "ev_plain",
		StartTime: testNow.AddDate(0, 0, -1),
		EndTime:   testNow.AddDate(0, 0, 6),
	},
}

func eventCurrencyGrant(eventID string, amount int64) domain.RewardGrant {
	return domain.RewardGrant{
		Kind:      domain.RewardKindCurrency,
		SubjectID: string(domain.CurrencyEvent),
		EventID:   eventID,
		Amount:    amount,
	}
}

func newTestPlayer() *domain.PlayerAggregate {
	return domain.NewPlayerAggregate("player-1", testNow)
}

func TestBuildDelta_ItemStacking(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()
	player.SetItemCount("X", 10)

	grants := []domain.RewardGrant{
		{Kind: domain.RewardKindItem, SubjectID: "X", Amount: 3},
		{Kind: domain.RewardKindItem, SubjectID: "Y", Amount: 1},
		{Kind: domain.RewardKindItem, SubjectID: "X", Amount: 2},
	}

	delta := engine.BuildDelta(grants, player)

	require.Len(t, delta.Items, 2)
	assert.Equal(t, domain.ItemDelta{ItemID: "X", Count: 5, NewTotal: 15}, delta.Items[0])
	assert.Equal(t, domain.ItemDelta{ItemID: "Y", Count: 1, NewTotal: 1}, delta.Items[1])
	assert.Equal(t, int64(10), player.ItemCount("X"), "BuildDelta must not modify the player")

	player.Apply(delta)
	assert.Equal(t, int64(15), player.ItemCount("X"))
	assert.Equal(t, int64(1), player.ItemCount("Y"))
}

func TestBuildDelta_Currency(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()
	player.Currency.Stamina = 90
	player.Currency.MaxStamina = 100

	grants := []domain.RewardGrant{
		{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 100},
		{Kind: domain.RewardKindCurrency, SubjectID: "gem", Amount: 5},
		{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 50},
		{Kind: domain.RewardKindCurrency, SubjectID: "free_gem", Amount: 7},
		{Kind: domain.RewardKindCurrency, SubjectID: "stamina", Amount: 8},
		{Kind: domain.RewardKindCurrency, SubjectID: "stamina", Amount: 8},
	}

	delta := engine.BuildDelta(grants, player)

	assert.Equal(t, int64(150), delta.Gold)
	assert.Equal(t, int64(5), delta.Gem)
	assert.Equal(t, int64(7), delta.FreeGem)
	assert.Equal(t, 10, delta.Stamina, "stamina clamps at max")

	player.Apply(delta)
	assert.Equal(t, 100, player.Currency.Stamina)
	assert.Equal(t, int64(12), player.Currency.TotalGem())
}

func TestBuildDelta_StaminaAlreadyOverMax(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()
	player.Currency.Stamina = 120

	delta := engine.BuildDelta([]domain.RewardGrant{
		{Kind: domain.RewardKindCurrency, SubjectID: "stamina", Amount: 5},
	}, player)

	assert.Equal(t, 0, delta.Stamina)
}

func TestBuildDelta_Characters(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()

	grants := []domain.RewardGrant{
		{Kind: domain.RewardKindCharacter, SubjectID: "char_knight", Amount: 1},
		{Kind: domain.RewardKindCharacter, SubjectID: "char_knight", Amount: 1},
	}

	delta := engine.BuildDelta(grants, player)

	require.Len(t, delta.Characters, 2)
	assert.Equal(t, "char_knight", delta.Characters[0].CharacterID)
	assert.Equal(t, "char_knight", delta.Characters[1].CharacterID)
	assert.NotEqual(t, delta.Characters[0].InstanceID, delta.Characters[1].InstanceID)
	assert.Equal(t, testNow, delta.Characters[0].AcquiredAt)
	assert.Equal(t, DefaultCharacterLevel, delta.Characters[0].Level)
}

func TestBuildDelta_DefaultIDsAreUnique(t *testing.T) {
	engine := NewEngine(timeauth.New(timeauth.NewFixedClock(testNow)), nil, nil)

	delta := engine.BuildDelta([]domain.RewardGrant{
		{Kind: domain.RewardKindCharacter, SubjectID: "char_a", Amount: 1},
		{Kind: domain.RewardKindCharacter, SubjectID: "char_a", Amount: 1},
	}, newTestPlayer())

	require.Len(t, delta.Characters, 2)
	assert.NotEmpty(t, delta.Characters[0].InstanceID)
	assert.NotEqual(t, delta.Characters[0].InstanceID, delta.Characters[1].InstanceID)
}

func TestBuildDelta_PlayerExpAndIgnoredGrants(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()

	grants := []domain.RewardGrant{
		{Kind: domain.RewardKindPlayerExp, Amount: 30},
		{Kind: domain.RewardKindPlayerExp, Amount: 20},
		{Kind: domain.RewardKindPlayerExp, Amount: -5},
		{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 0},
		{Kind: domain.RewardKindItem, SubjectID: "X", Amount: -1},
		{Kind: domain.RewardKindCurrency, SubjectID: "diamond", Amount: 10},
	}

	delta := engine.BuildDelta(grants, player)

	assert.Equal(t, int64(50), delta.PlayerExp)
	assert.Equal(t, int64(0), delta.Gold)
	assert.Empty(t, delta.Items)

	player.Apply(delta)
	assert.Equal(t, int64(50), player.Exp)
}

func TestBuildDelta_EventCurrency(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()

	delta := engine.BuildDelta([]domain.RewardGrant{
		eventCurrencyGrant("ev_live", 30),
		eventCurrencyGrant("ev_grace", 5),
		eventCurrencyGrant("ev_live", 12),
		eventCurrencyGrant("ev_closed", 100),
		eventCurrencyGrant("ev_upcoming", 100),
		eventCurrencyGrant("ev_plain", 100),
		eventCurrencyGrant("ev_missing", 100),
		eventCurrencyGrant("", 100),
	}, player)

	assert.Equal(t, []domain.EventCurrencyDelta{
		{EventID: "ev_live", CurrencyID: "star_shard", Amount: 42},
		{EventID: "ev_grace", CurrencyID: "leaf", Amount: 5},
	}, delta.EventCurrency)
	assert.Empty(t, player.EventCurrency, "BuildDelta must not modify the player")

	player.Apply(delta)
	require.Len(t, player.EventCurrency, 2)
	assert.Equal(t, domain.EventCurrencyBalance{EventID: "ev_live", CurrencyID: "star_shard", Amount: 42}, player.EventCurrency[0])
	assert.Equal(t, int64(5), player.EventCurrencyAmount("ev_grace"))

	engine.Grant([]domain.RewardGrant{eventCurrencyGrant("ev_live", 8)}, player)
	assert.Equal(t, int64(50), player.EventCurrencyAmount("ev_live"))
	assert.Len(t, player.EventCurrency, 2, "existing balances are credited, not duplicated")
}

func TestBuildDelta_EventCurrencyWithoutLookup(t *testing.T) {
	engine := NewEngine(timeauth.New(timeauth.NewFixedClock(testNow)), nil, nil)

	delta := engine.BuildDelta([]domain.RewardGrant{eventCurrencyGrant("ev_live", 30)}, newTestPlayer())

	assert.True(t, delta.IsEmpty())
}

func TestBuildDelta_Empty(t *testing.T) {
	delta := newTestEngine().BuildDelta(nil, newTestPlayer())
	assert.True(t, delta.IsEmpty())
}

func TestGrant(t *testing.T) {
	engine := newTestEngine()
	player := newTestPlayer()
	gold := player.Currency.Gold

	delta := engine.Grant([]domain.RewardGrant{
		{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 25},
		{Kind: domain.RewardKindCharacter, SubjectID: "char_mage", Amount: 1},
	}, player)

	assert.Equal(t, int64(25), delta.Gold)
	assert.Equal(t, gold+25, player.Currency.Gold)
	require.Len(t, player.Characters, 1)
	assert.Equal(t, "inst-1", player.Characters[0].InstanceID)
}

func TestValidateRewards(t *testing.T) {
	tests := []struct {
		name    string
		grants  []domain.RewardGrant
		wantErr string
	}{
		{
			name: "valid grants",
			grants: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 1},
				{Kind: domain.RewardKindItem, SubjectID: "potion", Amount: 2},
				{Kind: domain.RewardKindCharacter, SubjectID: "char_a", Amount: 1},
				{Kind: domain.RewardKindPlayerExp, Amount: 10},
			},
		},
		{
			name:   "player exp with empty subject and zero amount",
			grants: []domain.RewardGrant{{Kind: domain.RewardKindPlayerExp}},
		},
		{
			name:    "unknown currency",
			grants:  []domain.RewardGrant{{Kind: domain.RewardKindCurrency, SubjectID: "diamond", Amount: 1}},
			wantErr: "unknown currency id 'diamond'",
		},
		{
			name:   "event currency with event id",
			grants: []domain.RewardGrant{eventCurrencyGrant("ev_live", 10)},
		},
		{
			name:    "event currency without event id",
			grants:  []domain.RewardGrant{{Kind: domain.RewardKindCurrency, SubjectID: "event_currency", Amount: 1}},
			wantErr: "event_currency reward requires event_id",
		},
		{
			name:    "non-positive event currency amount",
			grants:  []domain.RewardGrant{eventCurrencyGrant("ev_live", 0)},
			wantErr: "currency reward amount must be positive",
		},
		{
			name:    "empty item id",
			grants:  []domain.RewardGrant{{Kind: domain.RewardKindItem, Amount: 1}},
			wantErr: "item id cannot be empty",
		},
		{
			name:    "empty character id",
			grants:  []domain.RewardGrant{{Kind: domain.RewardKindCharacter, Amount: 1}},
			wantErr: "character id cannot be empty",
		},
		{
			name:    "non-positive item amount",
			grants:  []domain.RewardGrant{{Kind: domain.RewardKindItem, SubjectID: "potion", Amount: 0}},
			wantErr: "item reward amount must be positive",
		},
		{
			name:    "unknown kind",
			grants:  []domain.RewardGrant{{Kind: "title", SubjectID: "t", Amount: 1}},
			wantErr: "unsupported reward kind 'title'",
		},
		{
			name: "reports index",
			grants: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 1},
				{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: -1},
			},
			wantErr: "reward 1:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRewards(tt.grants)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
