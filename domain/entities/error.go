package entities

import "fmt"

// ErrorDetail is the serializable form of a registry error. It travels in
// dispatch error responses and is what errors.ToErrorDetail produces.
//
// Type is one of "state", "validation", "empty", "config", "source" or
// "internal". Code narrows it, for example "capability_already_registered".
type ErrorDetail struct {
	Type     string         `json:"type"`
	Code     string         `json:"code,omitempty"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
	NotFound bool           `json:"not_found,omitempty"`

	// Wrapped is the detail of the underlying error, if any.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`
}

// NewErrorDetail creates an ErrorDetail of the given type.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: errorType, Message: message}
}

// WithCode sets the code and returns e.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

// WithDetails sets the details and returns e.
func (e *ErrorDetail) WithDetails(details map[string]any) *ErrorDetail {
	e.Details = details
	return e
}

func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = e.Type + ": " + msg
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

func (e *ErrorDetail) Unwrap() error {
	if e == nil || e.Wrapped == nil {
		return nil
	}
	return e.Wrapped
}
