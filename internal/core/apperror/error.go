// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation              = "VALIDATION_ERROR"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeInvalidQuantity         = "INVALID_QUANTITY"
	CodeInvalidUnit             = "INVALID_UNIT"
	CodeInvalidConversionFactor = "INVALID_CONVERSION_FACTOR"
	CodeMissingCounterparty     = "MISSING_COUNTERPARTY"

	// Business rule violations (422)
	CodeBusinessRule      = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeNegativeStock     = "NEGATIVE_STOCK"
	CodeRecordInactive    = "RECORD_INACTIVE"

	// Concurrency (409, retryable)
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the standard error type for the service.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidQuantity is returned when a stock operation carries a zero or
// negative quantity.
func NewInvalidQuantity(quantity string) *AppError {
	return &AppError{
		Code:       CodeInvalidQuantity,
		Message:    "Quantity must be strictly positive",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"quantity": quantity},
	}
}

// NewInvalidUnit is returned when a quantity is expressed in a unit the
// product cannot convert to its base unit.
func NewInvalidUnit(productID, unitID any) *AppError {
	return &AppError{
		Code:       CodeInvalidUnit,
		Message:    "Unit is not convertible to the product base unit",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"product_id": productID, "unit_id": unitID},
	}
}

// NewInvalidConversionFactor is returned when a product declares an
// alternative unit with a non-positive conversion factor.
func NewInvalidConversionFactor(factor int64) *AppError {
	return &AppError{
		Code:       CodeInvalidConversionFactor,
		Message:    "Conversion factor must be a positive integer",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"factor": factor},
	}
}

// NewMissingCounterparty is returned when a movement kind requires a
// counterparty that was not supplied.
func NewMissingCounterparty(kind string) *AppError {
	return &AppError{
		Code:       CodeMissingCounterparty,
		Message:    fmt.Sprintf("Movement kind %q requires a counterparty", kind),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"kind": kind},
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewNegativeStock signals an internal invariant breach: a stock adjustment
// would drive the on-hand balance below zero despite the feasibility checks.
func NewNegativeStock(productID string) *AppError {
	return &AppError{
		Code:       CodeNegativeStock,
		Message:    "Stock adjustment would result in negative balance",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"product_id": productID},
	}
}

// NewRecordInactive is returned when an edit targets a deactivated record.
// Deactivation is terminal; inactive records are read-only.
func NewRecordInactive(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeRecordInactive,
		Message:    fmt.Sprintf("%s is inactive and cannot be modified", entity),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewConcurrencyConflict creates a retryable concurrency error (optimistic
// lock failure, serialization failure, deadlock).
func NewConcurrencyConflict(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrencyConflict,
		Message:    "Record was modified by another user. Please retry.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsCode checks whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsConcurrencyConflict checks if error is CodeConcurrencyConflict
func IsConcurrencyConflict(err error) bool {
	return IsCode(err, CodeConcurrencyConflict)
}
