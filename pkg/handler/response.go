// Package handler implements the request handlers of the local server: each
// call validates a player action against the player aggregate and catalog
// data, applies the mutation only when every validation passed, and returns
// a typed response.
//
// Handlers assume exclusive access to the aggregate for the duration of a
// call; callers serialize requests per player.
package handler

import (
	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"
)

// Response carries the outcome shared by every handler response.
type Response struct {
	IsSuccess bool        `json:"is_success"`
	ErrorCode errors.Code `json:"error_code"`
	Message   string      `json:"message,omitempty"`
}

// Err returns the failure as an error, or nil on success.
func (r Response) Err() error {
	if r.IsSuccess {
		return nil
	}
	return errors.NewGameError(r.ErrorCode, r.Message, nil)
}

func succeeded() Response {
	return Response{IsSuccess: true, ErrorCode: errors.CodeNone}
}

func failed(err *errors.GameError) Response {
	return Response{
		IsSuccess: false,
		ErrorCode: err.Code,
		Message:   err.Message,
	}
}

// EnterStageRequest asks to start a battle on a stage with a party.
type EnterStageRequest struct {
	StageID  string   `json:"stage_id"`
	PartyIDs []string `json:"party_ids"`
}

// EnterStageResponse returns the battle session created for the entry.
type EnterStageResponse struct {
	Response
	SessionID        string                `json:"session_id,omitempty"`
	EntryRecord      *domain.CounterRecord `json:"entry_record,omitempty"`
	RemainingEntries int                   `json:"remaining_entries"`
	Delta            domain.PlayerDelta    `json:"delta"`
}

// ClearStageRequest reports the outcome of a battle session.
type ClearStageRequest struct {
	SessionID string `json:"session_id"`
	IsVictory bool   `json:"is_victory"`
	TurnCount int    `json:"turn_count"`
	NoDeath   bool   `json:"no_death"`
	AllFullHP bool   `json:"all_full_hp"`
}

// ClearStageResponse returns the graded result and the rewards granted.
type ClearStageResponse struct {
	Response
	ClearInfo     domain.StageClearInfo `json:"clear_info"`
	StarsAchieved [domain.MaxStars]bool `json:"stars_achieved"`
	IsFirstClear  bool                  `json:"is_first_clear"`
	Rewards       []domain.RewardGrant  `json:"rewards,omitempty"`
	Delta         domain.PlayerDelta    `json:"delta"`
}

// PurchaseRequest asks to buy quantity units of a product.
type PurchaseRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PurchaseResponse returns the granted rewards and the updated purchase counter.
type PurchaseResponse struct {
	Response
	ProductID      string                `json:"product_id"`
	Rewards        []domain.RewardGrant  `json:"rewards,omitempty"`
	Delta          domain.PlayerDelta    `json:"delta"`
	PurchaseRecord *domain.CounterRecord `json:"purchase_record,omitempty"`
	Remaining      int                   `json:"remaining"`
}

// GetActiveEventsRequest lists open events.
type GetActiveEventsRequest struct {
	IncludeGracePeriod bool `json:"include_grace_period"`
}

// EventSummary is one listed event annotated with the player's state.
type EventSummary struct {
	EventID               string `json:"event_id"`
	Name                  string `json:"name"`
	RemainingDays         int    `json:"remaining_days"`
	IsInGracePeriod       bool   `json:"is_in_grace_period"`
	HasClaimableReward    bool   `json:"has_claimable_reward"`
	ClaimableMissionCount int    `json:"claimable_mission_count"`
	HasVisited            bool   `json:"has_visited"`
	HasEventCurrency      bool   `json:"has_event_currency"`
}

// GetActiveEventsResponse lists running events and, on request, events in their grace window.
type GetActiveEventsResponse struct {
	Response
	ActiveEvents      []EventSummary `json:"active_events"`
	GracePeriodEvents []EventSummary `json:"grace_period_events,omitempty"`
}

// VisitEventRequest marks an event as seen.
type VisitEventRequest struct {
	EventID string `json:"event_id"`
}

// VisitEventResponse returns the player's progress for the event.
type VisitEventResponse struct {
	Response
	Progress   domain.EventProgress `json:"event_progress"`
	FirstVisit bool                 `json:"first_visit"`
}

// ClaimEventMissionRequest asks to claim a completed event mission.
type ClaimEventMissionRequest struct {
	EventID   string `json:"event_id"`
	MissionID string `json:"mission_id"`
}

// ClaimEventMissionResponse returns the rewards of a claimed mission.
type ClaimEventMissionResponse struct {
	Response
	ClaimedRewards []domain.RewardGrant `json:"claimed_rewards,omitempty"`
	Delta          domain.PlayerDelta   `json:"delta"`
}
