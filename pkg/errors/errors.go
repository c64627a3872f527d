package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"flightline/pkg/model"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeForbidden        = "FORBIDDEN"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInvalidInterval  = "INVALID_INTERVAL"
	CodeDurationExceeded = "DURATION_EXCEEDED"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeSlotUnavailable  = "SLOT_UNAVAILABLE"
	CodeInvalidState     = "INVALID_STATE"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// StoreUnavailable marks a persistence failure the caller may retry.
func StoreUnavailable(err error) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    "booking store is temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// InvalidInterval rejects a time range whose start is not strictly before its end.
func InvalidInterval(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInterval,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// DurationExceeded rejects a booking longer than the policy's maximum.
func DurationExceeded(requested, max string) *AppError {
	return &AppError{
		Code:       CodeDurationExceeded,
		Message:    fmt.Sprintf("booking duration %s exceeds the maximum of %s", requested, max),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"requested": requested,
			"max":       max,
		},
	}
}

// ResourceNotFound rejects a booking referencing an unknown aircraft or instructor.
func ResourceNotFound(ref model.ResourceRef) *AppError {
	return &AppError{
		Code:       CodeResourceNotFound,
		Message:    fmt.Sprintf("%s %s does not exist", ref.Kind, ref.ID),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"resource_kind": string(ref.Kind),
			"resource_id":   ref.ID,
		},
	}
}

// SlotUnavailable reports an overlap with an existing booking on a resource.
func SlotUnavailable(ref model.ResourceRef, conflictingBookingID string) *AppError {
	return &AppError{
		Code:       CodeSlotUnavailable,
		Message:    fmt.Sprintf("time slot is not available: %s is already booked", ref.Kind),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"resource_kind":          string(ref.Kind),
			"resource_id":            ref.ID,
			"conflicting_booking_id": conflictingBookingID,
		},
	}
}

// SlotContended reports that another in-flight request currently holds the
// advisory lock for one of the requested resources.
func SlotContended(ref model.ResourceRef) *AppError {
	return &AppError{
		Code:       CodeSlotUnavailable,
		Message:    "time slot is currently being booked by another request",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"resource_kind": string(ref.Kind),
			"resource_id":   ref.ID,
		},
	}
}

// BookingImmutable rejects edits to a booking in a terminal status.
func BookingImmutable(current string) *AppError {
	return &AppError{
		Code:       CodeInvalidState,
		Message:    fmt.Sprintf("booking in status %q can no longer be modified", current),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"current_status": current,
		},
	}
}

// InvalidState rejects a status transition the booking state machine forbids.
func InvalidState(current, requested string) *AppError {
	return &AppError{
		Code:       CodeInvalidState,
		Message:    fmt.Sprintf("booking in status %q cannot move to %q", current, requested),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"current_status":   current,
			"requested_status": requested,
		},
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
