package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reglet-dev/facet/domain/entities"
	domainerrors "github.com/reglet-dev/facet/domain/errors"
)

// ErrNoHandler is matched by NoHandlerError.
var ErrNoHandler = errors.New("no handler for module")

// NoHandlerError is returned when a capability routes to a module the
// router has no handler for.
type NoHandlerError struct {
	Module     entities.ModuleID
	Capability entities.CapabilityID
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("capability %s routes to %s, which has no handler", e.Capability, e.Module)
}

func (e *NoHandlerError) Is(target error) bool {
	return target == ErrNoHandler
}

// PanicError carries a panic recovered from a handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	switch v := e.Value.(type) {
	case error:
		return "panic: " + v.Error()
	case string:
		return "panic: " + v
	default:
		return "panic recovered"
	}
}

// ErrorResponse represents a structured error that can be returned as JSON
// to callers that cannot receive Go errors, such as wasm guests.
type ErrorResponse struct {
	// Error is a machine-readable error type identifier (e.g., "NOT_FOUND", "INTERNAL_ERROR").
	Error string `json:"error"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Code is a numeric error code (e.g., 400, 500).
	Code int `json:"code"`

	// Detail is set for registry errors and handler errors that carry an
	// *entities.ErrorDetail.
	Detail *entities.ErrorDetail `json:"detail,omitempty"`
}

// ToJSON serializes the ErrorResponse to JSON bytes.
func (e ErrorResponse) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return data
}

// NewErrorResponse classifies err.
func NewErrorResponse(err error) ErrorResponse {
	resp := classify(err)
	if d := domainerrors.ToErrorDetail(err); d != nil && d.Type != "internal" {
		resp.Detail = d
	}
	return resp
}

func classify(err error) ErrorResponse {
	var panicErr *PanicError
	switch {
	case errors.Is(err, domainerrors.ErrCapabilityNotRegistered):
		return ErrorResponse{Error: "NOT_FOUND", Message: err.Error(), Code: 404}
	case errors.Is(err, ErrNoHandler):
		return ErrorResponse{Error: "UNAVAILABLE", Message: err.Error(), Code: 503}
	case errors.As(err, &panicErr):
		return ErrorResponse{Error: "INTERNAL_ERROR", Message: err.Error(), Code: 500}
	}
	return ErrorResponse{Error: "HANDLER_ERROR", Message: err.Error(), Code: 500}
}

// NewValidationError creates an error response for bad input.
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{Error: "VALIDATION_ERROR", Message: message, Code: 400}
}
