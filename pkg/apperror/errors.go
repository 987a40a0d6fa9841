package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"` // Gateway-provided detail, safe to expose
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Caller input (VAL) ----

// Validation returns a 400 error with a human-readable reason.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrMissingFields() *AppError {
	return New("VAL_001", "Phone and amount are required.", http.StatusBadRequest)
}

func ErrAmountTooLow() *AppError {
	return New("VAL_002", "Amount must be at least 1", http.StatusBadRequest)
}

// ---- Gateway credential (AUTH) ----

func ErrCredentialFetch(err error) *AppError {
	return Wrap("AUTH_001", "Failed to obtain gateway access token", http.StatusBadGateway, err)
}

// ---- Gateway push / query (GW) ----

// ErrGatewayRejected reports a synchronous rejection: the gateway answered
// 2xx but put a nonzero response code in the body.
func ErrGatewayRejected(code, description string) *AppError {
	e := New("GW_001", "Payment request rejected by gateway", http.StatusBadGateway)
	e.Details = fmt.Sprintf("%s: %s", code, description)
	return e
}

func ErrGatewayUnreachable(err error) *AppError {
	return Wrap("GW_002", "Payment gateway unreachable", http.StatusBadGateway, err)
}

func ErrGatewayResponse(err error) *AppError {
	return Wrap("GW_003", "Unexpected response from payment gateway", http.StatusBadGateway, err)
}

// ErrGatewayUnauthorized marks a 401-class rejection so callers can force a
// credential refresh and retry once.
func ErrGatewayUnauthorized() *AppError {
	return New("GW_401", "Gateway rejected access token", http.StatusBadGateway)
}

// ---- Downstream forward (FWD) ----

// ErrForwardFailed is only ever logged; the gateway has already been acked.
func ErrForwardFailed(err error) *AppError {
	return Wrap("FWD_001", "Failed to forward result to wallet service", http.StatusBadGateway, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
