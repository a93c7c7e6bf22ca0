package eventcurrency

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

var testNow = time.Date(2025, 10, 17, 14, 0, 0, 0, time.UTC)

type stubEvents map[string]*domain.EventDefinition

func (s stubEvents) GetEventByID(eventID string) *domain.EventDefinition {
	return s[eventID]
}

func (s stubEvents) GetAllEvents() []*domain.EventDefinition {
	out := make([]*domain.EventDefinition, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	return out
}

func newTestConverter(events stubEvents) (*Converter, *timeauth.FixedClock) {
	clock := timeauth.NewFixedClock(testNow)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConverter(timeauth.New(clock), events, logger), clock
}

func testEvents() stubEvents {
	return stubEvents{
		// Ended 10 days ago with a 7 day grace period: eligible.
		"ev_over": {
			ID:        "ev_over",
			StartTime: testNow.AddDate(0, 0, -30),
			EndTime:   testNow.AddDate(0, 0, -10),
			Currency: &domain.EventCurrencyPolicy{
				CurrencyID: "medal", GracePeriodDays: 7, ConversionRate: 3.3, ConversionTarget: "gold",
			},
		},
		// Ended 2 days ago with a 7 day grace period: still in grace.
		"ev_grace": {
			ID:        "ev_grace",
			StartTime: testNow.AddDate(0, 0, -20),
			EndTime:   testNow.AddDate(0, 0, -2),
			Currency: &domain.EventCurrencyPolicy{
				CurrencyID: "token", GracePeriodDays: 7, ConversionRate: 0.5, ConversionTarget: "freegem",
			},
		},
		"ev_gem": {
			ID:        "ev_gem",
			StartTime: testNow.AddDate(0, 0, -20),
			EndTime:   testNow.AddDate(0, 0, -1),
			Currency: &domain.EventCurrencyPolicy{
				CurrencyID: "shard", GracePeriodDays: 0, ConversionRate: 1, ConversionTarget: "GEM",
			},
		},
		"ev_plain": {
			ID:        "ev_plain",
			StartTime: testNow.AddDate(0, 0, -20),
			EndTime:   testNow.AddDate(0, 0, -15),
		},
	}
}

func TestConvertExpired(t *testing.T) {
	converter, _ := newTestConverter(testEvents())
	player := domain.NewPlayerAggregate("p1", testNow)
	player.Currency.Gold = 0
	player.EventCurrency = []domain.EventCurrencyBalance{
		{EventID: "ev_over", CurrencyID: "medal", Amount: 10},
		{EventID: "ev_grace", CurrencyID: "token", Amount: 40},
		{EventID: "ev_gem", CurrencyID: "shard", Amount: 7},
		{EventID: "ev_plain", CurrencyID: "x", Amount: 5},
	}

	results := converter.ConvertExpired(player)

	require.Len(t, results, 2)
	assert.Equal(t, ConversionResult{
		EventID: "ev_over", SourceCurrencyID: "medal", SourceAmount: 10,
		TargetCurrency: domain.CurrencyGold, TargetAmount: 33, ConversionRate: 3.3,
	}, results[0])
	assert.Equal(t, "ev_gem", results[1].EventID)
	assert.Equal(t, domain.CurrencyGem, results[1].TargetCurrency)

	assert.Equal(t, int64(33), player.Currency.Gold)
	assert.Equal(t, int64(7), player.Currency.Gem)
	assert.Nil(t, player.FindEventCurrency("ev_over"))
	assert.Nil(t, player.FindEventCurrency("ev_gem"))
	assert.Equal(t, int64(40), player.EventCurrencyAmount("ev_grace"))
	assert.Equal(t, int64(5), player.EventCurrencyAmount("ev_plain"))
}

func TestConvertExpired_Idempotent(t *testing.T) {
	converter, _ := newTestConverter(testEvents())
	player := domain.NewPlayerAggregate("p1", testNow)
	player.EventCurrency = []domain.EventCurrencyBalance{
		{EventID: "ev_over", CurrencyID: "medal", Amount: 10},
	}

	first := converter.ConvertExpired(player)
	gold := player.Currency.Gold
	second := converter.ConvertExpired(player)

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Equal(t, gold, player.Currency.Gold)
}

func TestConvertExpired_GraceBoundary(t *testing.T) {
	events := testEvents()
	converter, clock := newTestConverter(events)
	player := domain.NewPlayerAggregate("p1", testNow)
	player.EventCurrency = []domain.EventCurrencyBalance{
		{EventID: "ev_grace", CurrencyID: "token", Amount: 41},
	}

	graceEnd := events["ev_grace"].GracePeriodEnd()
	clock.Set(graceEnd.Add(-time.Second))
	assert.Empty(t, converter.ConvertExpired(player))

	clock.Set(graceEnd)
	results := converter.ConvertExpired(player)
	require.Len(t, results, 1)
	assert.Equal(t, int64(20), results[0].TargetAmount)
	assert.Equal(t, domain.CurrencyFreeGem, results[0].TargetCurrency)
	assert.Equal(t, int64(20), player.Currency.FreeGem)
}

func TestConvertExpired_ZeroBalanceAndOwnExpiry(t *testing.T) {
	converter, _ := newTestConverter(testEvents())
	player := domain.NewPlayerAggregate("p1", testNow)
	player.Currency.Gold = 0
	player.EventCurrency = []domain.EventCurrencyBalance{
		{EventID: "ev_over", CurrencyID: "medal", Amount: 0},
		{EventID: "ev_grace", CurrencyID: "token", Amount: 10, ExpiresAt: testNow.Add(-time.Minute)},
	}

	results := converter.ConvertExpired(player)

	require.Len(t, results, 1)
	assert.Equal(t, "ev_grace", results[0].EventID)
	assert.Equal(t, int64(5), player.Currency.FreeGem)
}

func TestConvertOne(t *testing.T) {
	converter, _ := newTestConverter(testEvents())
	player := domain.NewPlayerAggregate("p1", testNow)
	player.EventCurrency = []domain.EventCurrencyBalance{
		{EventID: "ev_grace", CurrencyID: "token", Amount: 9},
	}

	result := converter.ConvertOne(player, "ev_grace")
	require.NotNil(t, result)
	assert.Equal(t, int64(4), result.TargetAmount)
	assert.Equal(t, int64(4), player.Currency.FreeGem)
	assert.Nil(t, player.FindEventCurrency("ev_grace"))

	assert.Nil(t, converter.ConvertOne(player, "ev_grace"), "balance already removed")
	assert.Nil(t, converter.ConvertOne(player, "missing"))
	assert.Nil(t, converter.ConvertOne(player, "ev_plain"))
}

func TestConvertExpired_NilCatalog(t *testing.T) {
	converter, _ := newTestConverter(nil)
	converter.events = nil
	player := domain.NewPlayerAggregate("p1", testNow)
	player.EventCurrency = []domain.EventCurrencyBalance{{EventID: "ev_over", Amount: 10}}

	assert.Empty(t, converter.ConvertExpired(player))
	assert.Nil(t, converter.ConvertOne(player, "ev_over"))
}

func TestConvertAmount(t *testing.T) {
	tests := []struct {
		amount int64
		rate   float64
		want   int64
	}{
		{10, 3.3, 33},
		{3, 0.1, 0},
		{10, 0.1, 1},
		{7, 1, 7},
		{99, 0.333, 32},
		{5, -1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertAmount(tt.amount, tt.rate), "%d x %v", tt.amount, tt.rate)
	}
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, domain.CurrencyGold, ResolveTarget("gold"))
	assert.Equal(t, domain.CurrencyGem, ResolveTarget("Gem"))
	assert.Equal(t, domain.CurrencyFreeGem, ResolveTarget("freegem"))
	assert.Equal(t, domain.CurrencyFreeGem, ResolveTarget("free_gem"))
	assert.Equal(t, domain.CurrencyGold, ResolveTarget("crystal"))
	assert.Equal(t, domain.CurrencyGold, ResolveTarget(""))
}
