package handler

import (
	"log/slog"

	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// EventCatalog resolves event definitions.
type EventCatalog interface {
	GetEventByID(eventID string) *domain.EventDefinition
	GetAllEvents() []*domain.EventDefinition
}

// EventHandler serves event listing, visits and mission claims.
type EventHandler struct {
	time   *timeauth.Authority
	events EventCatalog
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(auth *timeauth.Authority, events EventCatalog, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		time:   auth,
		events: events,
		logger: logger,
	}
}

// GetActiveEvents lists running events in catalog order and, when requested,
// events whose currency grace window is still open. It always succeeds; an
// unconfigured catalog yields empty lists.
func (h *EventHandler) GetActiveEvents(player *domain.PlayerAggregate, req GetActiveEventsRequest) GetActiveEventsResponse {
	resp := GetActiveEventsResponse{
		Response:     succeeded(),
		ActiveEvents: []EventSummary{},
	}
	if h.events == nil {
		return resp
	}

	now := h.time.Now()
	for _, event := range h.events.GetAllEvents() {
		switch {
		case event.IsActiveAt(now):
			resp.ActiveEvents = append(resp.ActiveEvents, h.summarize(player, event, false))
		case req.IncludeGracePeriod && event.IsInGracePeriodAt(now):
			resp.GracePeriodEvents = append(resp.GracePeriodEvents, h.summarize(player, event, true))
		}
	}
	return resp
}

func (h *EventHandler) summarize(player *domain.PlayerAggregate, event *domain.EventDefinition, inGrace bool) EventSummary {
	closesAt := event.EndTime
	if inGrace {
		closesAt = event.GracePeriodEnd()
	}

	summary := EventSummary{
		EventID:          event.ID,
		Name:             event.Name,
		RemainingDays:    h.time.RemainingDays(closesAt),
		IsInGracePeriod:  inGrace,
		HasEventCurrency: player.EventCurrencyAmount(event.ID) > 0,
	}
	if progress := player.FindEventProgress(event.ID); progress != nil {
		summary.HasVisited = progress.HasVisited
	}
	// ClaimableMissionCount stays zero until mission progress is tracked.
	summary.HasClaimableReward = summary.ClaimableMissionCount > 0
	return summary
}

// VisitEvent marks an event as visited. Repeated visits succeed without
// changing the first visit time.
func (h *EventHandler) VisitEvent(player *domain.PlayerAggregate, req VisitEventRequest) VisitEventResponse {
	now := h.time.Now()

	event, gameErr := h.openEvent(req.EventID)
	if gameErr != nil {
		h.logger.Debug("Event visit rejected",
			"player_id", player.PlayerID,
			"event_id", req.EventID,
			"error_code", gameErr.Code.String(),
		)
		return VisitEventResponse{Response: failed(gameErr)}
	}

	if progress := player.FindEventProgress(event.ID); progress != nil && progress.HasVisited {
		return VisitEventResponse{Response: succeeded(), Progress: *progress}
	}

	progress := domain.EventProgress{EventID: event.ID}
	if existing := player.FindEventProgress(event.ID); existing != nil {
		progress = *existing
	}
	progress.HasVisited = true
	progress.FirstVisitTime = now
	player.SetEventProgress(progress)

	h.logger.Info("Event visited",
		"player_id", player.PlayerID,
		"event_id", event.ID,
	)
	return VisitEventResponse{Response: succeeded(), Progress: progress, FirstVisit: true}
}

// ClaimEventMission is reserved for the mission system and rejects every claim.
func (h *EventHandler) ClaimEventMission(player *domain.PlayerAggregate, req ClaimEventMissionRequest) ClaimEventMissionResponse {
	h.logger.Debug("Event mission claim rejected",
		"player_id", player.PlayerID,
		"event_id", req.EventID,
		"mission_id", req.MissionID,
	)
	return ClaimEventMissionResponse{Response: failed(errors.ErrMissionSystemNotImplemented())}
}

// openEvent resolves an event that is running or within its grace window.
func (h *EventHandler) openEvent(eventID string) (*domain.EventDefinition, *errors.GameError) {
	if h.events == nil {
		return nil, errors.ErrServerError("event catalog not configured", nil)
	}
	event := h.events.GetEventByID(eventID)
	if event == nil {
		return nil, errors.ErrEventNotFound(eventID)
	}
	now := h.time.Now()
	if !event.IsActiveAt(now) && !event.IsInGracePeriodAt(now) {
		return nil, errors.ErrEventExpired(eventID)
	}
	return event, nil
}
