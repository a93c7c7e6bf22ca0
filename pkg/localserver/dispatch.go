package localserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// Operation names accepted by Dispatch.
const (
	OpLogin                = "login"
	OpGetPlayer            = "get_player"
	OpEnterStage           = "enter_stage"
	OpClearStage           = "clear_stage"
	OpPurchase             = "purchase"
	OpGetActiveEvents      = "get_active_events"
	OpVisitEvent           = "visit_event"
	OpClaimEventMission    = "claim_event_mission"
	OpCashOutEventCurrency = "cash_out_event_currency"
)

type operation func(ctx context.Context, s *Server, playerID string, payload json.RawMessage) (any, error)

var operations = map[string]operation{
	OpLogin: func(ctx context.Context, s *Server, playerID string, _ json.RawMessage) (any, error) {
		return s.Login(ctx, playerID)
	},
	OpGetPlayer: func(ctx context.Context, s *Server, playerID string, _ json.RawMessage) (any, error) {
		return s.GetPlayer(ctx, playerID)
	},
	OpEnterStage:           bind(OpEnterStage, (*Server).EnterStage),
	OpClearStage:           bind(OpClearStage, (*Server).ClearStage),
	OpPurchase:             bind(OpPurchase, (*Server).Purchase),
	OpGetActiveEvents:      bind(OpGetActiveEvents, (*Server).GetActiveEvents),
	OpVisitEvent:           bind(OpVisitEvent, (*Server).VisitEvent),
	OpClaimEventMission:    bind(OpClaimEventMission, (*Server).ClaimEventMission),
	OpCashOutEventCurrency: bind(OpCashOutEventCurrency, (*Server).CashOutEventCurrency),
}

// bind adapts a typed Server method to an operation that decodes its request
// from JSON. An empty payload decodes to the zero request.
func bind[Req, Resp any](name string, method func(*Server, context.Context, string, Req) (Resp, error)) operation {
	return func(ctx context.Context, s *Server, playerID string, payload json.RawMessage) (any, error) {
		var req Req
		if len(bytes.TrimSpace(payload)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(payload))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				return nil, fmt.Errorf("failed to decode %s request: %w", name, err)
			}
		}
		return method(s, ctx, playerID, req)
	}
}

// Operations returns the operation names accepted by Dispatch, sorted.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch decodes a JSON request for op, runs it for playerID and returns the
// JSON-encoded response. Game-rule failures are encoded in the response; the
// returned error is reserved for unknown operations, malformed payloads, and
// persistence failures.
func (s *Server) Dispatch(ctx context.Context, playerID, op string, payload json.RawMessage) ([]byte, error) {
	run, ok := operations[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation '%s'", op)
	}

	resp, err := run(ctx, s, playerID, payload)
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s response: %w", op, err)
	}
	return out, nil
}

