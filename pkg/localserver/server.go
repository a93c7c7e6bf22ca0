// Package localserver runs the game handlers against persisted player state.
//
// Every request is serialized per player id: the aggregate is loaded (new
// players start from domain defaults), event currency past its grace period
// is converted, the handler runs, and the aggregate is saved when the handler
// reports success or a conversion happened.
package localserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AccelByte/extend-rpg-localserver/pkg/cache"
	"github.com/AccelByte/extend-rpg-localserver/pkg/domain"
	"github.com/AccelByte/extend-rpg-localserver/pkg/errors"
	"github.com/AccelByte/extend-rpg-localserver/pkg/eventcurrency"
	"github.com/AccelByte/extend-rpg-localserver/pkg/handler"
	"github.com/AccelByte/extend-rpg-localserver/pkg/limit"
	"github.com/AccelByte/extend-rpg-localserver/pkg/repository"
	"github.com/AccelByte/extend-rpg-localserver/pkg/reward"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// Options tunes a Server.
type Options struct {
	// SessionTTL bounds the time between EnterStage and ClearStage.
	// Zero uses handler.DefaultSessionTTL; a negative value disables expiry.
	SessionTTL time.Duration

	// StaminaRecoveryInterval is the time to recover one stamina point.
	// Zero disables recovery.
	StaminaRecoveryInterval time.Duration

	// NewID generates battle session and character instance ids.
	// Defaults to random UUIDs.
	NewID func() string
}

// Server is the request facade over the handlers and the player store.
type Server struct {
	time      *timeauth.Authority
	catalog   cache.CatalogCache
	players   repository.PlayerRepository
	stages    *handler.StageHandler
	shop      *handler.ShopHandler
	events    *handler.EventHandler
	converter *eventcurrency.Converter
	locks     *playerLocks
	closeFn   func() error
	logger    *slog.Logger
}

// NewServer wires the handlers over catalog and players.
func NewServer(
	auth *timeauth.Authority,
	catalog cache.CatalogCache,
	players repository.PlayerRepository,
	opts Options,
	logger *slog.Logger,
) *Server {
	limits := limit.NewValidator(auth)
	rewards := reward.NewEngine(auth, catalog, opts.NewID)

	return &Server{
		time:    auth,
		catalog: catalog,
		players: players,
		stages: handler.NewStageHandler(auth, limits, rewards, catalog, handler.StageOptions{
			SessionTTL:              opts.SessionTTL,
			StaminaRecoveryInterval: opts.StaminaRecoveryInterval,
			NewSessionID:            opts.NewID,
		}, logger),
		shop: handler.NewShopHandler(auth, limits, rewards, catalog, handler.ShopOptions{
			StaminaRecoveryInterval: opts.StaminaRecoveryInterval,
		}, logger),
		events:    handler.NewEventHandler(auth, catalog, logger),
		converter: eventcurrency.NewConverter(auth, catalog, logger),
		locks:     newPlayerLocks(),
		logger:    logger,
	}
}

// Close releases the player store connection, if any.
func (s *Server) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Time returns the server's time authority.
func (s *Server) Time() *timeauth.Authority {
	return s.time
}

// ReloadCatalog re-reads the catalog file. On error the current catalog stays in use.
func (s *Server) ReloadCatalog() error {
	if err := s.catalog.Reload(); err != nil {
		s.logger.Error("Catalog reload failed", "error", err)
		return err
	}
	return nil
}

// LoginResponse reports the player state after login housekeeping.
type LoginResponse struct {
	handler.Response
	Player      *domain.PlayerAggregate          `json:"player"`
	Conversions []eventcurrency.ConversionResult `json:"conversions,omitempty"`
	NewPlayer   bool                             `json:"new_player"`
}

// Login loads or creates the player and converts event currency whose grace
// period is over.
func (s *Server) Login(ctx context.Context, playerID string) (LoginResponse, error) {
	if err := validatePlayerID(playerID); err != nil {
		return LoginResponse{}, err
	}

	unlock := s.locks.lock(playerID)
	defer unlock()

	player, isNew, err := s.load(ctx, playerID)
	if err != nil {
		return LoginResponse{}, err
	}

	conversions := s.converter.ConvertExpired(player)
	if isNew || len(conversions) > 0 {
		if err := s.save(ctx, player); err != nil {
			return LoginResponse{}, err
		}
	}

	s.logger.Info("Player logged in",
		"player_id", playerID,
		"new_player", isNew,
		"conversions", len(conversions),
	)

	return LoginResponse{
		Response:    handler.Response{IsSuccess: true},
		Player:      player,
		Conversions: conversions,
		NewPlayer:   isNew,
	}, nil
}

// GetPlayer returns the stored aggregate, or the defaults a new player would
// start with. Nothing is saved.
func (s *Server) GetPlayer(ctx context.Context, playerID string) (*domain.PlayerAggregate, error) {
	if err := validatePlayerID(playerID); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(playerID)
	defer unlock()

	player, _, err := s.load(ctx, playerID)
	return player, err
}

// EnterStage validates and records a stage entry.
func (s *Server) EnterStage(ctx context.Context, playerID string, req handler.EnterStageRequest) (handler.EnterStageResponse, error) {
	return mutate(ctx, s, playerID, "enter_stage", func(p *domain.PlayerAggregate) handler.EnterStageResponse {
		return s.stages.EnterStage(p, req)
	})
}

// ClearStage settles a battle session.
func (s *Server) ClearStage(ctx context.Context, playerID string, req handler.ClearStageRequest) (handler.ClearStageResponse, error) {
	return mutate(ctx, s, playerID, "clear_stage", func(p *domain.PlayerAggregate) handler.ClearStageResponse {
		return s.stages.ClearStage(p, req)
	})
}

// Purchase buys a shop product.
func (s *Server) Purchase(ctx context.Context, playerID string, req handler.PurchaseRequest) (handler.PurchaseResponse, error) {
	return mutate(ctx, s, playerID, "purchase", func(p *domain.PlayerAggregate) handler.PurchaseResponse {
		return s.shop.Purchase(p, req)
	})
}

// VisitEvent records the player's visit to an event.
func (s *Server) VisitEvent(ctx context.Context, playerID string, req handler.VisitEventRequest) (handler.VisitEventResponse, error) {
	return mutate(ctx, s, playerID, "visit_event", func(p *domain.PlayerAggregate) handler.VisitEventResponse {
		return s.events.VisitEvent(p, req)
	})
}

// ClaimEventMission claims a mission reward.
func (s *Server) ClaimEventMission(ctx context.Context, playerID string, req handler.ClaimEventMissionRequest) (handler.ClaimEventMissionResponse, error) {
	return mutate(ctx, s, playerID, "claim_event_mission", func(p *domain.PlayerAggregate) handler.ClaimEventMissionResponse {
		return s.events.ClaimEventMission(p, req)
	})
}

// GetActiveEvents lists the events open to the player. Nothing is saved.
func (s *Server) GetActiveEvents(ctx context.Context, playerID string, req handler.GetActiveEventsRequest) (handler.GetActiveEventsResponse, error) {
	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return handler.GetActiveEventsResponse{}, err
	}
	return s.events.GetActiveEvents(player, req), nil
}

// CashOutRequest asks to convert an event's currency before its grace period ends.
type CashOutRequest struct {
	EventID string `json:"event_id"`
}

// CashOutResponse reports a voluntary event-currency conversion.
type CashOutResponse struct {
	handler.Response
	Conversion *eventcurrency.ConversionResult `json:"conversion,omitempty"`
}

// CashOutEventCurrency converts the player's whole balance for one event.
func (s *Server) CashOutEventCurrency(ctx context.Context, playerID string, req CashOutRequest) (CashOutResponse, error) {
	return mutate(ctx, s, playerID, "cash_out_event_currency", func(p *domain.PlayerAggregate) CashOutResponse {
		event := s.catalog.GetEventByID(req.EventID)
		if event == nil {
			return CashOutResponse{Response: rejected(errors.ErrEventNotFound(req.EventID))}
		}
		if event.Currency == nil {
			return CashOutResponse{Response: rejected(errors.ErrInsufficientCurrency(req.EventID, 1, 0))}
		}

		result := s.converter.ConvertOne(p, req.EventID)
		if result == nil {
			return CashOutResponse{Response: rejected(errors.ErrInsufficientCurrency(event.Currency.CurrencyID, 1, 0))}
		}
		return CashOutResponse{Response: handler.Response{IsSuccess: true}, Conversion: result}
	})
}

// outcome is implemented by every response embedding handler.Response.
type outcome interface {
	Err() error
}

// mutate runs fn on the player's aggregate under the player's lock and saves
// the aggregate when fn succeeds. Expired event currency is converted before
// fn runs so it can never be spent after its grace period.
func mutate[R outcome](ctx context.Context, s *Server, playerID, op string, fn func(*domain.PlayerAggregate) R) (R, error) {
	var zero R
	if err := validatePlayerID(playerID); err != nil {
		return zero, err
	}

	unlock := s.locks.lock(playerID)
	defer unlock()

	player, _, err := s.load(ctx, playerID)
	if err != nil {
		return zero, err
	}

	conversions := s.converter.ConvertExpired(player)

	resp := fn(player)
	if rejectErr := resp.Err(); rejectErr != nil {
		s.logger.Debug("Request rejected",
			"op", op,
			"player_id", playerID,
			"error_code", errors.CodeOf(rejectErr).String(),
		)
		if len(conversions) > 0 {
			if err := s.save(ctx, player); err != nil {
				return zero, err
			}
		}
		return resp, nil
	}

	if err := s.save(ctx, player); err != nil {
		return zero, err
	}
	return resp, nil
}

// load returns the stored aggregate, or a new one when the player is unknown.
func (s *Server) load(ctx context.Context, playerID string) (*domain.PlayerAggregate, bool, error) {
	player, err := s.players.Load(ctx, playerID)
	if err != nil {
		s.logger.Error("Failed to load player", "player_id", playerID, "error", err)
		return nil, false, fmt.Errorf("failed to load player %s: %w", playerID, err)
	}
	if player == nil {
		return domain.NewPlayerAggregate(playerID, s.time.Now()), true, nil
	}
	return player, false, nil
}

func (s *Server) save(ctx context.Context, player *domain.PlayerAggregate) error {
	if err := s.players.Save(ctx, player); err != nil {
		s.logger.Error("Failed to save player",
			"player_id", player.PlayerID,
			"version", player.Version,
			"error", err,
		)
		return fmt.Errorf("failed to save player %s: %w", player.PlayerID, err)
	}
	return nil
}

func rejected(err *errors.GameError) handler.Response {
	return handler.Response{
		IsSuccess: false,
		ErrorCode: err.Code,
		Message:   err.Message,
	}
}

func validatePlayerID(playerID string) error {
	if strings.TrimSpace(playerID) == "" {
		return fmt.Errorf("player id is required")
	}
	return nil
}
