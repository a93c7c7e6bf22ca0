package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGameError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *GameError
		wantMsg string
	}{
		{
			name: "error without wrapped error",
			err: &GameError{
				Code:    CodeStageNotFound,
				Message: "stage not found: stage_1",
				Err:     nil,
			},
			wantMsg: "STAGE_NOT_FOUND: stage not found: stage_1",
		},
		{
			name: "error with wrapped error",
			err: &GameError{
				Code:    CodeServerError,
				Message: "server error: stage catalog not configured",
				Err:     errors.New("nil catalog"),
			},
			wantMsg: "SERVER_ERROR: server error: stage catalog not configured: nil catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.wantMsg {
				t.Errorf("GameError.Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}

func TestGameError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	err := &GameError{
		Code:    CodeServerError,
		Message: "test error",
		Err:     originalErr,
	}

	unwrapped := err.Unwrap()
	if unwrapped != originalErr {
		t.Errorf("Unwrap() returned %v, want %v", unwrapped, originalErr)
	}
}

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeNone, "NONE"},
		{CodeServerError, "SERVER_ERROR"},
		{CodeDatabaseError, "DATABASE_ERROR"},
		{CodeVersionConflict, "VERSION_CONFLICT"},
		{CodeEntryLimitExceeded, "ENTRY_LIMIT_EXCEEDED"},
		{CodeInsufficientCurrency, "INSUFFICIENT_CURRENCY"},
		{CodeMissionSystemNotImplemented, "MISSION_SYSTEM_NOT_IMPLEMENTED"},
		{Code(42), "UNKNOWN_42"},
	}

	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", int(tt.code), got, tt.want)
		}
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *GameError
		wantCode Code
		contains string
	}{
		{"stage not found", ErrStageNotFound("stage_9"), CodeStageNotFound, "stage_9"},
		{"stage disabled", ErrStageDisabled("stage_2"), CodeStageLocked, "stage_2"},
		{"stage prerequisite", ErrStagePrerequisite("stage_2", "stage_1"), CodeStageLocked, "stage_1"},
		{"not available today", ErrNotAvailableToday("stage_sun"), CodeNotAvailableToday, "stage_sun"},
		{"entry limit", ErrEntryLimitExceeded("stage_limited", 3), CodeEntryLimitExceeded, "limit: 3"},
		{"invalid party", ErrInvalidParty("party is empty"), CodeInvalidParty, "party is empty"},
		{"insufficient cost", ErrInsufficientCost("stamina", 10, 4), CodeInsufficientCost, "required: 10"},
		{"invalid session", ErrInvalidBattleSession("s-1", "already consumed"), CodeInvalidBattleSession, "already consumed"},
		{"product not found", ErrProductNotFound("p-1"), CodeProductNotFound, "p-1"},
		{"product disabled", ErrProductDisabled("p-2"), CodeProductDisabled, "p-2"},
		{"limit exceeded", ErrLimitExceeded("p-3", 0), CodeLimitExceeded, "remaining: 0"},
		{"quantity too large", ErrQuantityTooLarge("p-4", 5000, 99), CodeLimitExceeded, "maximum of 99"},
		{"insufficient currency", ErrInsufficientCurrency("gold", 100, 50), CodeInsufficientCurrency, "available: 50"},
		{"event not found", ErrEventNotFound("ev-1"), CodeEventNotFound, "ev-1"},
		{"event expired", ErrEventExpired("ev-2"), CodeEventExpired, "ev-2"},
		{"mission placeholder", ErrMissionSystemNotImplemented(), CodeMissionSystemNotImplemented, "missions"},
		{"database error", ErrDatabaseError("save player", errors.New("conn reset")), CodeDatabaseError, "save player"},
		{"version conflict", ErrVersionConflict("player-1", 4), CodeVersionConflict, "expected version 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if !strings.Contains(tt.err.Message, tt.contains) {
				t.Errorf("Message should contain %q, got %q", tt.contains, tt.err.Message)
			}
		})
	}
}

func TestErrServerError(t *testing.T) {
	originalErr := errors.New("catalog missing")
	err := ErrServerError("shop catalog not configured", originalErr)

	if err.Code != CodeServerError {
		t.Errorf("Code = %v, want %v", err.Code, CodeServerError)
	}

	if err.Err != originalErr {
		t.Errorf("Wrapped error = %v, want %v", err.Err, originalErr)
	}
}

func TestNewGameError(t *testing.T) {
	message := "test message"
	originalErr := errors.New("wrapped error")

	err := NewGameError(CodeEventExpired, message, originalErr)

	if err.Code != CodeEventExpired {
		t.Errorf("Code = %v, want %v", err.Code, CodeEventExpired)
	}

	if err.Message != message {
		t.Errorf("Message = %v, want %v", err.Message, message)
	}

	if err.Err != originalErr {
		t.Errorf("Wrapped error = %v, want %v", err.Err, originalErr)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != CodeNone {
		t.Errorf("CodeOf(nil) = %v, want %v", got, CodeNone)
	}

	wrapped := fmt.Errorf("enter stage: %w", ErrStageNotFound("stage_x"))
	if got := CodeOf(wrapped); got != CodeStageNotFound {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, CodeStageNotFound)
	}

	if got := CodeOf(errors.New("boom")); got != CodeServerError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, CodeServerError)
	}
}

func TestErrorWrapping(t *testing.T) {
	originalErr := errors.New("catalog lookup failed")
	gameErr := ErrServerError("lookup", originalErr)

	if !errors.Is(gameErr, originalErr) {
		t.Error("errors.Is should recognize wrapped error")
	}

	var target *GameError
	if !errors.As(fmt.Errorf("outer: %w", gameErr), &target) {
		t.Fatal("errors.As should find GameError")
	}
	if target.Code != CodeServerError {
		t.Errorf("Code = %v, want %v", target.Code, CodeServerError)
	}
}
