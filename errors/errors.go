package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode identifies an application error
type ErrorCode string

const (
	// Auth errors
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	ErrCodeMissingToken ErrorCode = "MISSING_TOKEN"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Reservation errors
	ErrCodeInvalidRange      ErrorCode = "INVALID_RANGE"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalidStatus     ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeInvalidResource   ErrorCode = "INVALID_RESOURCE"
	ErrCodeInvalidAmount     ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidPhone      ErrorCode = "INVALID_PHONE"
	ErrCodeCapacityExceeded  ErrorCode = "CAPACITY_EXCEEDED"

	// Import errors
	ErrCodeBatchInvalid ErrorCode = "BATCH_INVALID"
	ErrCodeBadWorkbook  ErrorCode = "BAD_WORKBOOK"

	// Database errors
	ErrCodeDBError    ErrorCode = "DB_ERROR"
	ErrCodeDBNotFound ErrorCode = "DB_NOT_FOUND"

	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeRequiredField ErrorCode = "REQUIRED_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Transport errors
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
)

// AppError is an application error carrying a code and a user-facing message
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
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

// NewAppError creates a new AppError
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsAppError reports whether err is (or wraps) an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts the AppError from err
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// InvalidRangeError reports a date range whose end is not after its start.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s must be after start %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

// ConflictError lists the resources that were not available for the requested range.
// It is a recoverable outcome: the caller can retry with other resources or dates.
type ConflictError struct {
	ResourceType string
	Resources    []string
	// ReservationIDs are the existing reservations that block the request.
	ReservationIDs []uint
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s not available: %s", e.ResourceType, strings.Join(e.Resources, ", "))
}

// RowError is one problem found while validating a spreadsheet row.
type RowError struct {
	Sheet     string `json:"sheet"`
	RowNumber int    `json:"rowNumber"`
	Field     string `json:"fieldOrReason"`
	Message   string `json:"message"`
	Data      string `json:"offendingData"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d, %s: %s (%q)", e.Sheet, e.RowNumber, e.Field, e.Message, e.Data)
}

// NetworkError wraps a transport failure. Callers may retry it manually.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrEventNotFound       = errors.New("event reservation not found")
	ErrNotLinked           = errors.New("room is not linked to an event")
	ErrNotARoom            = errors.New("reservation is not a room reservation")
	ErrNotAnEvent          = errors.New("reservation is not an event reservation")
	ErrResourceBusy        = errors.New("resource is locked by another request")

	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
	ErrInvalidFormat   = errors.New("invalid format")
)
