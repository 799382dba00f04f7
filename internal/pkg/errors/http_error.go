package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is one of the closed set of codes the core ever returns.
type ErrorCode string

const (
	ErrInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrInvalidBet          ErrorCode = "INVALID_BET"
	ErrFeatureDisabled     ErrorCode = "FEATURE_DISABLED"
	ErrInsufficientFunds   ErrorCode = "INSUFFICIENT_FUNDS"
	ErrRoundInProgress     ErrorCode = "ROUND_IN_PROGRESS"
	ErrIdempotencyConflict ErrorCode = "IDEMPOTENCY_CONFLICT"
	ErrRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrMaintenance         ErrorCode = "MAINTENANCE"
	ErrInternalError       ErrorCode = "INTERNAL_ERROR"
	ErrNotImplemented      ErrorCode = "NOT_IMPLEMENTED"
)

var httpStatus = map[ErrorCode]int{
	ErrInvalidRequest:      http.StatusBadRequest,
	ErrInvalidBet:          http.StatusBadRequest,
	ErrFeatureDisabled:     http.StatusConflict,
	ErrInsufficientFunds:   http.StatusPaymentRequired,
	ErrRoundInProgress:     http.StatusConflict,
	ErrIdempotencyConflict: http.StatusConflict,
	ErrRateLimitExceeded:   http.StatusTooManyRequests,
	ErrMaintenance:         http.StatusServiceUnavailable,
	ErrInternalError:       http.StatusInternalServerError,
	ErrNotImplemented:      http.StatusNotImplemented,
}

var recoverable = map[ErrorCode]bool{
	ErrInvalidRequest:      false,
	ErrInvalidBet:          false,
	ErrFeatureDisabled:     false,
	ErrInsufficientFunds:   true,
	ErrRoundInProgress:     true,
	ErrIdempotencyConflict: false,
	ErrRateLimitExceeded:   true,
	ErrMaintenance:         true,
	ErrInternalError:       true,
	ErrNotImplemented:      false,
}

// GameError is the single error type every orchestrator path returns.
// Its shape mirrors the protocol error block exactly: code, message and
// whether the caller may usefully retry.
type GameError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status the transport layer should send.
func (e *GameError) StatusCode() int {
	return httpStatus[e.Code]
}

// Recoverable reports whether the caller may retry the same request.
func (e *GameError) Recoverable() bool {
	return recoverable[e.Code]
}

// New builds a GameError for code with message.
func New(code ErrorCode, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// Wrap builds a GameError for code, carrying the underlying cause.
func Wrap(code ErrorCode, message string, err error) *GameError {
	return &GameError{Code: code, Message: message, Err: err}
}

// Constructors, one per taxonomy entry.

func InvalidRequest(message string) *GameError {
	return New(ErrInvalidRequest, message)
}

func InvalidBet(message string) *GameError {
	return New(ErrInvalidBet, message)
}

func FeatureDisabled(message string) *GameError {
	return New(ErrFeatureDisabled, message)
}

func InsufficientFunds(message string) *GameError {
	return New(ErrInsufficientFunds, message)
}

func RoundInProgress() *GameError {
	return New(ErrRoundInProgress, "a spin is already in progress for this player")
}

func IdempotencyConflict() *GameError {
	return New(ErrIdempotencyConflict, "client request id reused with a different payload")
}

func RateLimitExceeded(message string) *GameError {
	return New(ErrRateLimitExceeded, message)
}

func Maintenance(message string) *GameError {
	return New(ErrMaintenance, message)
}

func InternalError(message string, err error) *GameError {
	return Wrap(ErrInternalError, message, err)
}

func NotImplemented(message string) *GameError {
	return New(ErrNotImplemented, message)
}
