// Package errors provides the domain error types of the registry and the
// reconciliation engine. Every type supports errors.Is against the package
// sentinels and errors.As against the concrete type.
package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/facet/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Sentinels matched by the typed errors' Is methods.
var (
	ErrCapabilityAlreadyRegistered = stdErrors.New("capability already registered")
	ErrCapabilityNotRegistered     = stdErrors.New("capability not registered")
	ErrNoOpReplace                 = stdErrors.New("replace targets the current owner")
	ErrInvalidModule               = stdErrors.New("invalid module")
	ErrInvalidCut                  = stdErrors.New("invalid cut")
	ErrImmutableCapability         = stdErrors.New("capability is immutable")
	ErrFilterConflict              = stdErrors.New("filter conflict")
	ErrEmptyResult                 = stdErrors.New("nothing to do")
	ErrManifest                    = stdErrors.New("invalid manifest")
)

// DetailedError is implemented by errors that can describe themselves as a
// structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// Code returns the machine-readable code of err, or "internal".
func Code(err error) string {
	d := ToErrorDetail(err)
	if d == nil {
		return ""
	}
	if d.Code == "" {
		return d.Type
	}
	return d.Code
}

// CapabilityAlreadyRegisteredError is returned when ADD targets a bound capability.
type CapabilityAlreadyRegisteredError struct {
	Capability entities.CapabilityID
	Owner      entities.ModuleID
}

func (e *CapabilityAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("capability %s already registered to %s", e.Capability, e.Owner)
}

func (e *CapabilityAlreadyRegisteredError) Is(target error) bool {
	return target == ErrCapabilityAlreadyRegistered
}

// ToErrorDetail implements DetailedError.
func (e *CapabilityAlreadyRegisteredError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "state", Code: "capability_already_registered"}
}

// CapabilityNotRegisteredError is returned when REPLACE or REMOVE targets an
// unbound capability, and by the router for unrouted calls.
type CapabilityNotRegisteredError struct {
	Capability entities.CapabilityID
}

func (e *CapabilityNotRegisteredError) Error() string {
	return fmt.Sprintf("capability %s not registered", e.Capability)
}

func (e *CapabilityNotRegisteredError) Is(target error) bool {
	return target == ErrCapabilityNotRegistered
}

// ToErrorDetail implements DetailedError.
func (e *CapabilityNotRegisteredError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "state", Code: "capability_not_registered", NotFound: true}
}

// NoOpReplaceError is returned when REPLACE targets the capability's current owner.
type NoOpReplaceError struct {
	Capability entities.CapabilityID
	Module     entities.ModuleID
}

func (e *NoOpReplaceError) Error() string {
	return fmt.Sprintf("replace of %s is a no-op: already owned by %s", e.Capability, e.Module)
}

func (e *NoOpReplaceError) Is(target error) bool {
	return target == ErrNoOpReplace
}

// ToErrorDetail implements DetailedError.
func (e *NoOpReplaceError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "state", Code: "noop_replace"}
}

// ImmutableCapabilityError is returned when REPLACE or REMOVE targets a
// capability owned by the registry itself.
type ImmutableCapabilityError struct {
	Capability entities.CapabilityID
}

func (e *ImmutableCapabilityError) Error() string {
	return fmt.Sprintf("capability %s belongs to the registry and cannot be changed", e.Capability)
}

func (e *ImmutableCapabilityError) Is(target error) bool {
	return target == ErrImmutableCapability
}

// ToErrorDetail implements DetailedError.
func (e *ImmutableCapabilityError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "state", Code: "immutable_capability"}
}

// InvalidModuleError is returned when a module reference has the wrong kind
// for the requested action or is not a well-formed id.
type InvalidModuleError struct {
	Module entities.ModuleRef
	Action entities.Action
	Reason string
}

func (e *InvalidModuleError) Error() string {
	if e.Action.Valid() {
		return fmt.Sprintf("invalid module %s for %s: %s", e.Module, e.Action, e.Reason)
	}
	return fmt.Sprintf("invalid module %s: %s", e.Module, e.Reason)
}

func (e *InvalidModuleError) Is(target error) bool {
	return target == ErrInvalidModule
}

// ToErrorDetail implements DetailedError.
func (e *InvalidModuleError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "invalid_module"}
}

// InvalidCutError is returned for a structurally broken cut: unknown action,
// no capabilities, or a malformed capability id.
type InvalidCutError struct {
	Cut    entities.Cut
	Reason string
}

func (e *InvalidCutError) Error() string {
	return fmt.Sprintf("invalid cut %s: %s", e.Cut, e.Reason)
}

func (e *InvalidCutError) Is(target error) bool {
	return target == ErrInvalidCut
}

// ToErrorDetail implements DetailedError.
func (e *InvalidCutError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "invalid_cut"}
}

// BatchError reports the first cut of a batch that failed validation.
// No cut of the batch was applied.
type BatchError struct {
	Err        error
	Cut        entities.Cut
	Index      int
	Capability entities.CapabilityID
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch rejected at cut %d (%s): %v", e.Index, e.Cut, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *BatchError) ToErrorDetail() *entities.ErrorDetail {
	inner := ToErrorDetail(e.Err)
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    inner.Type,
		Code:    inner.Code,
		Wrapped: inner,
		Details: map[string]any{"index": e.Index, "capability": e.Capability.String()},
	}
}

// FilterConflictError is returned when a module appears in both the only and
// the exclude list of one filter set.
type FilterConflictError struct {
	Kind    entities.Kind
	Modules []entities.ModuleRef
}

func (e *FilterConflictError) Error() string {
	names := make([]string, len(e.Modules))
	for i, m := range e.Modules {
		names[i] = m.String()
	}
	if e.Kind != "" {
		return fmt.Sprintf("%s filters list %s in both only and exclude", e.Kind, strings.Join(names, ", "))
	}
	return fmt.Sprintf("filters list %s in both only and exclude", strings.Join(names, ", "))
}

func (e *FilterConflictError) Is(target error) bool {
	return target == ErrFilterConflict
}

// ToErrorDetail implements DetailedError.
func (e *FilterConflictError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: "filter_conflict"}
}

// EmptyResultError is returned by strict planning when a diff kind
// produced no cuts.
type EmptyResultError struct {
	Kind entities.Kind
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s: nothing to do", e.Kind)
}

func (e *EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult
}

// ToErrorDetail implements DetailedError.
func (e *EmptyResultError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "empty", Code: "empty_" + string(e.Kind)}
}

// ManifestError represents a manifest that failed to load or validate.
type ManifestError struct {
	Err   error
	Field string
}

func (e *ManifestError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("manifest validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("manifest validation failed: %v", e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

func (e *ManifestError) Is(target error) bool {
	return target == ErrManifest
}

// ToErrorDetail implements DetailedError.
func (e *ManifestError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// SourceError reports a capability enumeration failure for one module.
type SourceError struct {
	Err    error
	Module string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("enumerating capabilities of %s failed: %v", e.Module, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SourceError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "source", Code: e.Module}
}
