package errors

import (
	"errors"
	"fmt"
)

// Code is the numeric error code carried by every handler response.
// Codes are part of the request/response contract and must stay stable.
type Code int

// Error codes for the local server.
const (
	CodeNone Code = 0

	// Configuration errors (a required collaborator is not wired or catalog data is broken)
	CodeServerError Code = 1

	// Persistence errors (never produced by request handlers)
	CodeDatabaseError   Code = 2
	CodeVersionConflict Code = 3

	// Stage errors
	CodeStageNotFound        Code = 1001
	CodeStageLocked          Code = 1002
	CodeInsufficientCost     Code = 1003
	CodeEntryLimitExceeded   Code = 1004
	CodeInvalidParty         Code = 1005
	CodeNotAvailableToday    Code = 1006
	CodeInvalidBattleSession Code = 1007

	// Shop errors
	CodeProductNotFound      Code = 2001
	CodeProductDisabled      Code = 2002
	CodeLimitExceeded        Code = 2003
	CodeInsufficientCurrency Code = 2004

	// Event errors
	CodeEventNotFound               Code = 3001
	CodeEventExpired                Code = 3002
	CodeMissionSystemNotImplemented Code = 3003
	CodeMissionNotFound             Code = 3004
	CodeMissionNotCompleted         Code = 3005
	CodeMissionAlreadyClaimed       Code = 3006
)

var codeNames = map[Code]string{
	CodeNone:                        "NONE",
	CodeServerError:                 "SERVER_ERROR",
	CodeDatabaseError:               "DATABASE_ERROR",
	CodeVersionConflict:             "VERSION_CONFLICT",
	CodeStageNotFound:               "STAGE_NOT_FOUND",
	CodeStageLocked:                 "STAGE_LOCKED",
	CodeInsufficientCost:            "INSUFFICIENT_COST",
	CodeEntryLimitExceeded:          "ENTRY_LIMIT_EXCEEDED",
	CodeInvalidParty:                "INVALID_PARTY",
	CodeNotAvailableToday:           "NOT_AVAILABLE_TODAY",
	CodeInvalidBattleSession:        "INVALID_BATTLE_SESSION",
	CodeProductNotFound:             "PRODUCT_NOT_FOUND",
	CodeProductDisabled:             "PRODUCT_DISABLED",
	CodeLimitExceeded:               "LIMIT_EXCEEDED",
	CodeInsufficientCurrency:        "INSUFFICIENT_CURRENCY",
	CodeEventNotFound:               "EVENT_NOT_FOUND",
	CodeEventExpired:                "EVENT_EXPIRED",
	CodeMissionSystemNotImplemented: "MISSION_SYSTEM_NOT_IMPLEMENTED",
	CodeMissionNotFound:             "MISSION_NOT_FOUND",
	CodeMissionNotCompleted:         "MISSION_NOT_COMPLETED",
	CodeMissionAlreadyClaimed:       "MISSION_ALREADY_CLAIMED",
}

// String returns the stable name of the code.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_%d", int(c))
}

// GameError represents a rejected request.
type GameError struct {
	Code    Code
	Message string
	Err     error
}

func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// NewGameError creates a new GameError.
func NewGameError(code Code, message string, err error) *GameError {
	return &GameError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first GameError in err's chain.
// A nil error yields CodeNone; any other error yields CodeServerError.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr.Code
	}
	return CodeServerError
}

// Configuration errors

// ErrServerError reports a wiring or catalog-data defect. The message is kept
// generic; the cause is available through Unwrap for logging.
func ErrServerError(reason string, err error) *GameError {
	return &GameError{
		Code:    CodeServerError,
		Message: fmt.Sprintf("server error: %s", reason),
		Err:     err,
	}
}

// Persistence errors

// ErrDatabaseError wraps database errors.
func ErrDatabaseError(operation string, err error) *GameError {
	return &GameError{
		Code:    CodeDatabaseError,
		Message: fmt.Sprintf("database error during %s", operation),
		Err:     err,
	}
}

// ErrVersionConflict returns an error when a player was saved by someone else
// since it was loaded.
func ErrVersionConflict(playerID string, version int64) *GameError {
	return &GameError{
		Code:    CodeVersionConflict,
		Message: fmt.Sprintf("player %s was modified concurrently (expected version %d)", playerID, version),
	}
}

// Stage errors

// ErrStageNotFound returns an error when a stage id is not in the catalog.
func ErrStageNotFound(stageID string) *GameError {
	return &GameError{
		Code:    CodeStageNotFound,
		Message: fmt.Sprintf("stage not found: %s", stageID),
	}
}

// ErrStageDisabled returns an error when a stage is switched off in the catalog.
func ErrStageDisabled(stageID string) *GameError {
	return &GameError{
		Code:    CodeStageLocked,
		Message: fmt.Sprintf("stage is not open: %s", stageID),
	}
}

// ErrStagePrerequisite returns an error when the unlock stage has not been cleared.
func ErrStagePrerequisite(stageID, requiredStageID string) *GameError {
	return &GameError{
		Code:    CodeStageLocked,
		Message: fmt.Sprintf("stage %s is locked: clear %s first", stageID, requiredStageID),
	}
}

// ErrNotAvailableToday returns an error when a day-restricted stage is closed today.
func ErrNotAvailableToday(stageID string) *GameError {
	return &GameError{
		Code:    CodeNotAvailableToday,
		Message: fmt.Sprintf("stage %s is not available today", stageID),
	}
}

// ErrEntryLimitExceeded returns an error when the stage entry limit is used up.
func ErrEntryLimitExceeded(stageID string, limit int) *GameError {
	return &GameError{
		Code:    CodeEntryLimitExceeded,
		Message: fmt.Sprintf("entry limit reached for stage %s (limit: %d)", stageID, limit),
	}
}

// ErrInvalidParty returns an error for an empty or malformed party.
func ErrInvalidParty(reason string) *GameError {
	return &GameError{
		Code:    CodeInvalidParty,
		Message: fmt.Sprintf("invalid party: %s", reason),
	}
}

// ErrInsufficientCost returns an error when the stage entry cost cannot be paid.
func ErrInsufficientCost(kind string, required, available int64) *GameError {
	return &GameError{
		Code:    CodeInsufficientCost,
		Message: fmt.Sprintf("not enough %s to enter (required: %d, available: %d)", kind, required, available),
	}
}

// ErrInvalidBattleSession returns an error for an unknown, consumed or expired session.
func ErrInvalidBattleSession(sessionID, reason string) *GameError {
	return &GameError{
		Code:    CodeInvalidBattleSession,
		Message: fmt.Sprintf("invalid battle session %s: %s", sessionID, reason),
	}
}

// Shop errors

// ErrProductNotFound returns an error when a product id is not in the catalog.
func ErrProductNotFound(productID string) *GameError {
	return &GameError{
		Code:    CodeProductNotFound,
		Message: fmt.Sprintf("product not found: %s", productID),
	}
}

// ErrProductDisabled returns an error when a product is not on sale.
func ErrProductDisabled(productID string) *GameError {
	return &GameError{
		Code:    CodeProductDisabled,
		Message: fmt.Sprintf("product is not on sale: %s", productID),
	}
}

// ErrLimitExceeded returns an error when the purchase limit is used up.
func ErrLimitExceeded(productID string, remaining int) *GameError {
	return &GameError{
		Code:    CodeLimitExceeded,
		Message: fmt.Sprintf("purchase limit reached for %s (remaining: %d)", productID, remaining),
	}
}

// ErrQuantityTooLarge returns an error when one purchase asks for more units
// than a single request may buy.
func ErrQuantityTooLarge(productID string, quantity, maxQuantity int) *GameError {
	return &GameError{
		Code:    CodeLimitExceeded,
		Message: fmt.Sprintf("quantity %d for %s exceeds the per-purchase maximum of %d", quantity, productID, maxQuantity),
	}
}

// ErrInsufficientCurrency returns an error when the price cannot be paid.
func ErrInsufficientCurrency(kind string, required, available int64) *GameError {
	return &GameError{
		Code:    CodeInsufficientCurrency,
		Message: fmt.Sprintf("not enough %s (required: %d, available: %d)", kind, required, available),
	}
}

// Event errors

// ErrEventNotFound returns an error when an event id is not in the catalog.
func ErrEventNotFound(eventID string) *GameError {
	return &GameError{
		Code:    CodeEventNotFound,
		Message: fmt.Sprintf("event not found: %s", eventID),
	}
}

// ErrEventExpired returns an error when an event is outside its active and grace windows.
func ErrEventExpired(eventID string) *GameError {
	return &GameError{
		Code:    CodeEventExpired,
		Message: fmt.Sprintf("event is not open: %s", eventID),
	}
}

// ErrMissionSystemNotImplemented is returned by every mission claim until missions are served.
func ErrMissionSystemNotImplemented() *GameError {
	return &GameError{
		Code:    CodeMissionSystemNotImplemented,
		Message: "event missions are not available yet",
	}
}
