package handler

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/limit"
	"github.com/AccelByte/extend-rpg-localserver/pkg/reward"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// testNow is a Friday.
var testNow = time.Date(2025, 10, 17, 14, 0, 0, 0, time.UTC)

type testEnv struct {
	clock   *timeauth.FixedClock
	auth    *timeauth.Authority
	limits  *limit.Validator
	rewards *reward.Engine
	logger  *slog.Logger
}

func newTestEnv() *testEnv {
	clock := timeauth.NewFixedClock(testNow)
	auth := timeauth.New(clock)
	return &testEnv{
		clock:   clock,
		auth:    auth,
		limits:  limit.NewValidator(auth),
		rewards: reward.NewEngine(auth, nil, sequence("inst")),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (e *testEnv) stageHandler(stages StageCatalog, opts StageOptions) *StageHandler {
	if opts.NewSessionID == nil {
		opts.NewSessionID = sequence("session")
	}
	return NewStageHandler(e.auth, e.limits, e.rewards, stages, opts, e.logger)
}

func (e *testEnv) shopHandler(products ProductCatalog) *ShopHandler {
	return NewShopHandler(e.auth, e.limits, e.rewards, products, ShopOptions{}, e.logger)
}

func (e *testEnv) eventHandler(events EventCatalog) *EventHandler {
	return NewEventHandler(e.auth, events, e.logger)
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newTestPlayer() *domain.PlayerAggregate {
	return domain.NewPlayerAggregate("player-1", testNow)
}

// fakeCatalog serves fixed definitions for all three handler catalogs.
type fakeCatalog struct {
	stages   map[string]*domain.StageDefinition
	products map[string]*domain.ProductDefinition
	events   []*domain.EventDefinition
}

func (c *fakeCatalog) GetStageByID(stageID string) *domain.StageDefinition {
	return c.stages[stageID]
}

func (c *fakeCatalog) GetProductByID(productID string) *domain.ProductDefinition {
	return c.products[productID]
}

func (c *fakeCatalog) GetEventByID(eventID string) *domain.EventDefinition {
	for _, e := range c.events {
		if e.ID == eventID {
			return e
		}
	}
	return nil
}

func (c *fakeCatalog) GetAllEvents() []*domain.EventDefinition {
	return c.events
}

// mockStageCatalog records catalog lookups.
type mockStageCatalog struct {
	mock.Mock
}

func (m *mockStageCatalog) GetStageByID(stageID string) *domain.StageDefinition {
	args := m.Called(stageID)
	stage, _ := args.Get(0).(*domain.StageDefinition)
	return stage
}

func stageFixtures() *fakeCatalog {
	stages := []*domain.StageDefinition{
		{
			ID:               "stage_1",
			Name:             "Forest Gate",
			Enabled:          true,
			EntryLimitPolicy: domain.LimitPolicyNone,
			EntryCost:        domain.Cost{Kind: domain.CurrencyStamina, Amount: 10},
			StarConditions: []domain.StarCondition{
				{Type: domain.StarConditionClear},
				{Type: domain.StarConditionTurnLimit, Threshold: 10},
				{Type: domain.StarConditionNoCharacterDeath},
			},
			FirstClearRewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "gem", Amount: 50},
			},
			RepeatClearRewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 100},
				{Kind: domain.RewardKindItem, SubjectID: "potion", Amount: 1},
			},
		},
		{
			ID:                     "stage_2",
			Enabled:                true,
			UnlockConditionStageID: "stage_1",
			EntryLimitPolicy:       domain.LimitPolicyNone,
		},
		{
			ID:               "stage_limited",
			Enabled:          true,
			EntryLimitPolicy: domain.LimitPolicyDaily,
			EntryLimitCount:  3,
		},
		{
			ID:      "stage_disabled",
			Enabled: false,
		},
		{
			ID:            "stage_weekend",
			Enabled:       true,
			AvailableDays: []time.Weekday{time.Saturday, time.Sunday},
		},
		{
			ID:                     "stage_locked_weekend",
			Enabled:                true,
			UnlockConditionStageID: "stage_1",
			AvailableDays:          []time.Weekday{time.Saturday},
		},
		{
			ID:        "stage_expensive",
			Enabled:   true,
			EntryCost: domain.Cost{Kind: domain.CurrencyStamina, Amount: 500},
		},
		{
			ID:        "stage_gem",
			Enabled:   true,
			EntryCost: domain.Cost{Kind: domain.CurrencyGem, Amount: 30},
		},
		{
			ID:      "stage_broken",
			Enabled: true,
			RepeatClearRewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "diamond", Amount: 1},
			},
		},
	}

	c := &fakeCatalog{stages: map[string]*domain.StageDefinition{}}
	for _, s := range stages {
		c.stages[s.ID] = s
	}
	return c
}

func productFixtures() *fakeCatalog {
	products := []*domain.ProductDefinition{
		{
			ID:          "potion_pack",
			Enabled:     true,
			Price:       domain.Cost{Kind: domain.CurrencyGold, Amount: 100},
			LimitPolicy: domain.LimitPolicyDaily,
			LimitCount:  3,
			Rewards: []domain.RewardGrant{
				{Kind: domain.RewardKindItem, SubjectID: "potion", Amount: 2},
			},
		},
		{
			ID:          "hero_bundle",
			Enabled:     true,
			Price:       domain.Cost{Kind: domain.CurrencyGem, Amount: 30},
			LimitPolicy: domain.LimitPolicyNone,
			Rewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCharacter, SubjectID: "char_knight", Amount: 1},
				{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: 10},
			},
		},
		{
			ID:          "event_box",
			Enabled:     true,
			Price:       domain.Cost{Kind: domain.CurrencyEvent, Amount: 50, EventID: "ev_summer"},
			LimitPolicy: domain.LimitPolicyPermanent,
			LimitCount:  1,
			Rewards: []domain.RewardGrant{
				{Kind: domain.RewardKindItem, SubjectID: "summer_box", Amount: 1},
			},
		},
		{
			ID:          "gem_crate",
			Enabled:     true,
			Price:       domain.Cost{Kind: domain.CurrencyGold, Amount: 100},
			LimitPolicy: domain.LimitPolicyNone,
			Rewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "gem", Amount: 1},
			},
		},
		{
			ID:          "gold_jackpot",
			Enabled:     true,
			Price:       domain.Cost{Kind: domain.CurrencyGold, Amount: 1},
			LimitPolicy: domain.LimitPolicyNone,
			Rewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "gold", Amount: math.MaxInt64 / 2},
			},
		},
		{
			ID:      "retired_pack",
			Enabled: false,
			Price:   domain.Cost{Kind: domain.CurrencyGold, Amount: 999999},
		},
		{
			ID:      "broken_pack",
			Enabled: true,
			Rewards: []domain.RewardGrant{
				{Kind: domain.RewardKindCurrency, SubjectID: "diamond", Amount: 1},
			},
		},
	}

	c := &fakeCatalog{products: map[string]*domain.ProductDefinition{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func eventFixtures() *fakeCatalog {
	policy := func() *domain.EventCurrencyPolicy {
		return &domain.EventCurrencyPolicy{
			CurrencyID:       "medal",
			GracePeriodDays:  7,
			ConversionRate:   1,
			ConversionTarget: "gold",
		}
	}
	return &fakeCatalog{
		events: []*domain.EventDefinition{
			{
				ID:        "ev_active",
				Name:      "Harvest Festival",
				StartTime: testNow.AddDate(0, 0, -5),
				EndTime:   testNow.AddDate(0, 0, 3),
				Currency:  policy(),
			},
			{
				ID:        "ev_grace",
				Name:      "Summer Splash",
				StartTime: testNow.AddDate(0, 0, -20),
				EndTime:   testNow.AddDate(0, 0, -2),
				Currency:  policy(),
			},
			{
				ID:        "ev_over",
				StartTime: testNow.AddDate(0, 0, -60),
				EndTime:   testNow.AddDate(0, 0, -30),
				Currency:  policy(),
			},
			{
				ID:        "ev_future",
				StartTime: testNow.AddDate(0, 0, 2),
				EndTime:   testNow.AddDate(0, 0, 10),
			},
		},
	}
}
