package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes. 1xxx are validation outcomes expected in normal operation,
// 2xxx are concurrency races, 3xxx are upstream collaborator faults.
const (
	ErrUnknownDepartment ErrorCode = iota + 1000
	ErrInvalidTransition
	ErrIncompleteRequest
	ErrDateNotAvailable
	ErrInvalidSlot
	ErrSlotAlreadyBooked
	ErrNotFound
)

const (
	ErrConflict ErrorCode = iota + 2000
)

const (
	ErrUnavailable ErrorCode = iota + 3000
	ErrStorage
)

// StatusCode maps the error to an HTTP status for the error middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrUnknownDepartment, ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidTransition, ErrIncompleteRequest, ErrDateNotAvailable, ErrInvalidSlot:
		return http.StatusUnprocessableEntity
	case ErrSlotAlreadyBooked, ErrConflict:
		return http.StatusConflict
	case ErrUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Expected reports whether the error is a normal user-facing validation
// outcome rather than a system failure.
func (e *AppError) Expected() bool {
	return e.Code >= 1000 && e.Code < 2000
}

// Error constructors

func UnknownDepartment(id string) *AppError {
	return &AppError{
		Code:    ErrUnknownDepartment,
		Message: fmt.Sprintf("unknown department: %s", id),
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid transition from %s to %s", from, to),
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

func IncompleteRequest(message string) *AppError {
	return &AppError{
		Code:    ErrIncompleteRequest,
		Message: message,
	}
}

func DateNotAvailable(message string) *AppError {
	return &AppError{
		Code:    ErrDateNotAvailable,
		Message: message,
	}
}

func InvalidSlot(slot string) *AppError {
	return &AppError{
		Code:    ErrInvalidSlot,
		Message: fmt.Sprintf("invalid time slot: %s", slot),
	}
}

func SlotAlreadyBooked() *AppError {
	return &AppError{
		Code:    ErrSlotAlreadyBooked,
		Message: "slot already booked",
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func Unavailable(err error) *AppError {
	return &AppError{
		Code:    ErrUnavailable,
		Message: "upstream feed unavailable",
		Err:     err,
	}
}

func Storage(err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: "storage failure",
		Err:     err,
	}
}

// Is reports whether err is an *AppError carrying the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
