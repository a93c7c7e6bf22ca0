package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"
	"github.com/AccelByte/extend-rpg-localserver/pkg/limit"
	"github.com/AccelByte/extend-rpg-localserver/pkg/reward"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// DefaultSessionTTL is how long a battle session stays claimable after entry.
const DefaultSessionTTL = 30 * time.Minute

// StageCatalog resolves stage definitions.
type StageCatalog interface {
	GetStageByID(stageID string) *domain.StageDefinition
}

// StageOptions tunes a StageHandler.
type StageOptions struct {
	// SessionTTL bounds the time between EnterStage and ClearStage.
	// Zero uses DefaultSessionTTL; a negative value disables expiry.
	SessionTTL time.Duration

	// StaminaRecoveryInterval is the time to recover one stamina point.
	// Zero disables recovery.
	StaminaRecoveryInterval time.Duration

	// NewSessionID generates battle session ids. Defaults to random UUIDs.
	NewSessionID func() string
}

// StageHandler handles stage entry and stage clear requests.
type StageHandler struct {
	time       *timeauth.Authority
	limits     *limit.Validator
	rewards    *reward.Engine
	stages     StageCatalog
	wallet     wallet
	sessionTTL time.Duration
	newID      func() string
	logger     *slog.Logger
}

// NewStageHandler creates a StageHandler.
func NewStageHandler(
	auth *timeauth.Authority,
	limits *limit.Validator,
	rewards *reward.Engine,
	stages StageCatalog,
	opts StageOptions,
	logger *slog.Logger,
) *StageHandler {
	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	newID := opts.NewSessionID
	if newID == nil {
		newID = uuid.NewString
	}

	return &StageHandler{
		time:       auth,
		limits:     limits,
		rewards:    rewards,
		stages:     stages,
		wallet:     wallet{staminaInterval: opts.StaminaRecoveryInterval},
		sessionTTL: ttl,
		newID:      newID,
		logger:     logger,
	}
}

// EnterStage validates an entry and opens a battle session.
//
// Validations run in this order and the first failure is reported: stage
// exists, stage enabled, prerequisite cleared, open today, entry limit, party
// non-empty, entry cost affordable. Nothing is modified unless all pass.
func (h *StageHandler) EnterStage(player *domain.PlayerAggregate, req EnterStageRequest) EnterStageResponse {
	now := h.time.Now()

	stage, remaining, gameErr := h.validateEntry(player, req, now)
	if gameErr != nil {
		h.logger.Debug("Stage entry rejected",
			"player_id", player.PlayerID,
			"stage_id", req.StageID,
			"error_code", gameErr.Code.String(),
			"reason", gameErr.Message,
		)
		return EnterStageResponse{Response: failed(gameErr), RemainingEntries: remaining}
	}

	delta := h.wallet.charge(player, stage.EntryCost, now)

	record := h.limits.UpdateRecord(stage.ID, stage.EntryLimitPolicy, player.FindEntryRecord(stage.ID))
	player.SetEntryRecord(record)

	player.PruneBattleSessions(now, h.sessionTTL)
	session := domain.BattleSession{
		SessionID: h.newID(),
		StageID:   stage.ID,
		PartyIDs:  append([]string(nil), req.PartyIDs...),
		CreatedAt: now,
		IsActive:  true,
	}
	player.BattleSessions = append(player.BattleSessions, session)

	h.logger.Info("Stage entered",
		"player_id", player.PlayerID,
		"stage_id", stage.ID,
		"session_id", session.SessionID,
		"entry_count", record.Count,
	)

	return EnterStageResponse{
		Response:         succeeded(),
		SessionID:        session.SessionID,
		EntryRecord:      &record,
		RemainingEntries: h.limits.Remaining(stage.EntryLimitPolicy, stage.EntryLimitCount, &record),
		Delta:            delta,
	}
}

func (h *StageHandler) validateEntry(player *domain.PlayerAggregate, req EnterStageRequest, now time.Time) (*domain.StageDefinition, int, *errors.GameError) {
	if h.stages == nil {
		return nil, 0, errors.ErrServerError("stage catalog not configured", nil)
	}

	stage := h.stages.GetStageByID(req.StageID)
	if stage == nil {
		return nil, 0, errors.ErrStageNotFound(req.StageID)
	}
	if !stage.Enabled {
		return nil, 0, errors.ErrStageDisabled(stage.ID)
	}
	if stage.UnlockConditionStageID != "" && !player.IsStageCleared(stage.UnlockConditionStageID) {
		return nil, 0, errors.ErrStagePrerequisite(stage.ID, stage.UnlockConditionStageID)
	}
	if !stage.IsAvailableOn(now.Weekday()) {
		return nil, 0, errors.ErrNotAvailableToday(stage.ID)
	}

	allowed, remaining := h.limits.CanProceed(stage.EntryLimitPolicy, stage.EntryLimitCount, player.FindEntryRecord(stage.ID))
	if !allowed {
		return nil, remaining, errors.ErrEntryLimitExceeded(stage.ID, stage.EntryLimitCount)
	}

	if err := validateParty(req.PartyIDs); err != nil {
		return nil, remaining, err
	}

	if err := h.wallet.validateCost(stage.EntryCost); err != nil {
		return nil, remaining, errors.ErrServerError("invalid entry cost for stage "+stage.ID, err)
	}
	if ok, available := h.wallet.canAfford(player, stage.EntryCost, now); !ok {
		return nil, remaining, errors.ErrInsufficientCost(string(stage.EntryCost.Kind), stage.EntryCost.Amount, available)
	}

	return stage, remaining, nil
}

func validateParty(partyIDs []string) *errors.GameError {
	if len(partyIDs) == 0 {
		return errors.ErrInvalidParty("party is empty")
	}
	for _, id := range partyIDs {
		if strings.TrimSpace(id) == "" {
			return errors.ErrInvalidParty("party contains an empty character id")
		}
	}
	return nil
}

// ClearStage consumes a battle session and grades the result.
//
// The session must exist, be active and not be expired. It is deactivated
// on both victory and defeat. A defeat succeeds with an empty clear info and
// no rewards.
func (h *StageHandler) ClearStage(player *domain.PlayerAggregate, req ClearStageRequest) ClearStageResponse {
	now := h.time.Now()

	stage, gameErr := h.validateClear(player, req, now)
	if gameErr != nil {
		h.logger.Debug("Stage clear rejected",
			"player_id", player.PlayerID,
			"session_id", req.SessionID,
			"error_code", gameErr.Code.String(),
			"reason", gameErr.Message,
		)
		return ClearStageResponse{Response: failed(gameErr)}
	}

	session := player.FindBattleSession(req.SessionID)
	session.IsActive = false

	if !req.IsVictory {
		h.logger.Info("Stage lost",
			"player_id", player.PlayerID,
			"stage_id", stage.ID,
			"session_id", req.SessionID,
		)
		return ClearStageResponse{
			Response:  succeeded(),
			ClearInfo: domain.StageClearInfo{StageID: stage.ID},
		}
	}

	stars := EvaluateStars(stage.StarConditions, req)

	var prev domain.StageClearInfo
	if existing := player.FindStageClear(stage.ID); existing != nil {
		prev = *existing
	}
	isFirstClear := !prev.IsCleared
	info := mergeClear(prev, stage.ID, stars, req.TurnCount, now)
	player.SetStageClear(info)

	rewards := clearRewards(stage, isFirstClear)
	delta := h.rewards.Grant(rewards, player)

	h.logger.Info("Stage cleared",
		"player_id", player.PlayerID,
		"stage_id", stage.ID,
		"session_id", req.SessionID,
		"first_clear", isFirstClear,
		"stars", info.StarCount(),
		"clear_count", info.ClearCount,
	)

	return ClearStageResponse{
		Response:      succeeded(),
		ClearInfo:     info,
		StarsAchieved: stars,
		IsFirstClear:  isFirstClear,
		Rewards:       rewards,
		Delta:         delta,
	}
}

func (h *StageHandler) validateClear(player *domain.PlayerAggregate, req ClearStageRequest, now time.Time) (*domain.StageDefinition, *errors.GameError) {
	if h.stages == nil {
		return nil, errors.ErrServerError("stage catalog not configured", nil)
	}

	session := player.FindBattleSession(req.SessionID)
	switch {
	case session == nil:
		return nil, errors.ErrInvalidBattleSession(req.SessionID, "session not found")
	case !session.IsActive:
		return nil, errors.ErrInvalidBattleSession(req.SessionID, "session already used")
	case session.IsExpired(now, h.sessionTTL):
		return nil, errors.ErrInvalidBattleSession(req.SessionID, "session expired")
	}

	stage := h.stages.GetStageByID(session.StageID)
	if stage == nil {
		return nil, errors.ErrStageNotFound(session.StageID)
	}

	if req.IsVictory {
		prevCleared := player.IsStageCleared(stage.ID)
		if err := reward.ValidateRewards(clearRewards(stage, !prevCleared)); err != nil {
			return nil, errors.ErrServerError("invalid clear rewards for stage "+stage.ID, err)
		}
	}
	return stage, nil
}

// EvaluateStars grades a victory against up to MaxStars conditions in
// catalog order. A stage without conditions awards a single clear star.
func EvaluateStars(conditions []domain.StarCondition, result ClearStageRequest) [domain.MaxStars]bool {
	var stars [domain.MaxStars]bool
	if !result.IsVictory {
		return stars
	}
	if len(conditions) == 0 {
		stars[0] = true
		return stars
	}

	for i, cond := range conditions {
		if i >= domain.MaxStars {
			break
		}
		stars[i] = starAchieved(cond, result)
	}
	return stars
}

func starAchieved(cond domain.StarCondition, result ClearStageRequest) bool {
	switch cond.Type {
	case domain.StarConditionClear:
		return true
	case domain.StarConditionTurnLimit:
		return result.TurnCount <= cond.Threshold
	case domain.StarConditionNoCharacterDeath:
		return result.NoDeath
	case domain.StarConditionFullHP:
		return result.AllFullHP
	case domain.StarConditionElementAdvantage:
		// The battle simulation enforces element matchups before reporting a victory.
		return true
	default:
		return false
	}
}

// mergeClear folds one victory into the best-known clear info.
// Stars are only turned on and the best turn count only improves.
func mergeClear(prev domain.StageClearInfo, stageID string, stars [domain.MaxStars]bool, turnCount int, now time.Time) domain.StageClearInfo {
	info := prev
	info.StageID = stageID
	if !info.IsCleared {
		info.IsCleared = true
		info.FirstClearedAt = now
	}
	for i := range info.Stars {
		info.Stars[i] = info.Stars[i] || stars[i]
	}
	if turnCount > 0 && (info.BestTurnCount == 0 || turnCount < info.BestTurnCount) {
		info.BestTurnCount = turnCount
	}
	info.ClearCount++
	return info
}

func clearRewards(stage *domain.StageDefinition, firstClear bool) []domain.RewardGrant {
	var grants []domain.RewardGrant
	if firstClear {
		grants = append(grants, stage.FirstClearRewards...)
	}
	return append(grants, stage.RepeatClearRewards...)
}
