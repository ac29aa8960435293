// Package errors provides custom error types for the mybudget API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Remote ledger errors.
var (
	ErrLedgerUnauthorized   = &AppError{Code: "LEDGER_UNAUTHORIZED", Message: "Ledger API token is missing or invalid", StatusCode: http.StatusBadGateway}
	ErrLedgerUnavailable    = &AppError{Code: "LEDGER_UNAVAILABLE", Message: "The remote ledger could not be reached", StatusCode: http.StatusBadGateway}
	ErrLedgerDecoding       = &AppError{Code: "LEDGER_DECODING", Message: "The remote ledger returned a malformed response", StatusCode: http.StatusBadGateway}
	ErrLedgerPartialFailure = &AppError{Code: "LEDGER_PARTIAL_FAILURE", Message: "The remote ledger reported per-item errors", StatusCode: http.StatusBadGateway}
	ErrTokenNotConfigured   = &AppError{Code: "TOKEN_NOT_CONFIGURED", Message: "No ledger API token configured", StatusCode: http.StatusPreconditionFailed}
)

// Sync errors.
var (
	ErrSyncInFlight     = &AppError{Code: "SYNC_IN_FLIGHT", Message: "A sync is already in progress", StatusCode: http.StatusConflict}
	ErrPeriodMisaligned = &AppError{Code: "PERIOD_MISALIGNED", Message: "The selected dates do not match a valid ledger budgeting period", StatusCode: http.StatusUnprocessableEntity}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrEmptyPayee          = &AppError{Code: "EMPTY_PAYEE", Message: "Payee must not be empty", StatusCode: http.StatusBadRequest}
	ErrZeroAmount          = &AppError{Code: "ZERO_AMOUNT", Message: "Amount must not be zero", StatusCode: http.StatusBadRequest}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
)
