package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/domain/entities"
)

var (
	capA = entities.DeriveCapabilityID("a")
	capB = entities.DeriveCapabilityID("b")
)

func TestTypedErrors_IsSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
		message  string
	}{
		{
			name:     "already registered",
			err:      &CapabilityAlreadyRegisteredError{Capability: capA, Owner: "m1"},
			sentinel: ErrCapabilityAlreadyRegistered,
			code:     "capability_already_registered",
			message:  fmt.Sprintf("capability %s already registered to m1", capA),
		},
		{
			name:     "not registered",
			err:      &CapabilityNotRegisteredError{Capability: capA},
			sentinel: ErrCapabilityNotRegistered,
			code:     "capability_not_registered",
			message:  fmt.Sprintf("capability %s not registered", capA),
		},
		{
			name:     "no-op replace",
			err:      &NoOpReplaceError{Capability: capA, Module: "m1"},
			sentinel: ErrNoOpReplace,
			code:     "noop_replace",
			message:  fmt.Sprintf("replace of %s is a no-op: already owned by m1", capA),
		},
		{
			name:     "immutable",
			err:      &ImmutableCapabilityError{Capability: capA},
			sentinel: ErrImmutableCapability,
			code:     "immutable_capability",
		},
		{
			name:     "invalid module with action",
			err:      &InvalidModuleError{Module: entities.WildcardModule, Action: entities.ActionAdd, Reason: "wildcard is only valid in filters"},
			sentinel: ErrInvalidModule,
			code:     "invalid_module",
			message:  "invalid module * for add: wildcard is only valid in filters",
		},
		{
			name:     "invalid module without action",
			err:      &InvalidModuleError{Module: entities.NullModule, Reason: "empty"},
			sentinel: ErrInvalidModule,
			code:     "invalid_module",
			message:  "invalid module <null>: empty",
		},
		{
			name:     "invalid cut",
			err:      &InvalidCutError{Cut: entities.RemoveCut(), Reason: "no capabilities"},
			sentinel: ErrInvalidCut,
			code:     "invalid_cut",
			message:  "invalid cut REMOVE(<null>,{}): no capabilities",
		},
		{
			name:     "filter conflict",
			err:      &FilterConflictError{Kind: entities.KindRemovals, Modules: []entities.ModuleRef{entities.Module("m1"), entities.WildcardModule}},
			sentinel: ErrFilterConflict,
			code:     "filter_conflict",
			message:  "removals filters list m1, * in both only and exclude",
		},
		{
			name:     "empty result",
			err:      &EmptyResultError{Kind: entities.KindAdditions},
			sentinel: ErrEmptyResult,
			code:     "empty_additions",
			message:  "additions: nothing to do",
		},
		{
			name:     "manifest",
			err:      &ManifestError{Field: "version", Err: errors.New("bad")},
			sentinel: ErrManifest,
			code:     "version",
			message:  "manifest validation failed for field 'version': bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.code, Code(tt.err))
			if tt.message != "" {
				assert.Equal(t, tt.message, tt.err.Error())
			}

			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.code, Code(wrapped))

			for _, other := range []error{ErrCapabilityAlreadyRegistered, ErrCapabilityNotRegistered, ErrEmptyResult} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestBatchError(t *testing.T) {
	inner := &CapabilityAlreadyRegisteredError{Capability: capB, Owner: "m1"}
	err := &BatchError{
		Err:        inner,
		Cut:        entities.AddCut("m2", capA, capB),
		Index:      1,
		Capability: capB,
	}

	assert.ErrorIs(t, err, ErrCapabilityAlreadyRegistered)
	var target *CapabilityAlreadyRegisteredError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, entities.ModuleID("m1"), target.Owner)
	assert.Contains(t, err.Error(), "batch rejected at cut 1")

	detail := err.ToErrorDetail()
	assert.Equal(t, "state", detail.Type)
	assert.Equal(t, "capability_already_registered", detail.Code)
	assert.Equal(t, 1, detail.Details["index"])
	assert.Equal(t, capB.String(), detail.Details["capability"])
	require.NotNil(t, detail.Wrapped)
	assert.Equal(t, inner.Error(), detail.Wrapped.Message)
}

func TestManifestError(t *testing.T) {
	base := errors.New("boom")
	err := &ManifestError{Err: base}
	assert.Equal(t, "manifest validation failed: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.ErrorIs(t, err, ErrManifest)
	assert.Equal(t, "config", Code(err))
}

func TestSourceError(t *testing.T) {
	base := errors.New("no such file")
	err := &SourceError{Module: "payments", Err: base}
	assert.Equal(t, "enumerating capabilities of payments failed: no such file", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "payments", Code(err))
}

func TestToErrorDetail(t *testing.T) {
	assert.Nil(t, ToErrorDetail(nil))
	assert.Equal(t, "", Code(nil))

	plain := ToErrorDetail(errors.New("plain"))
	assert.Equal(t, "internal", plain.Type)
	assert.Equal(t, "internal", Code(errors.New("plain")))

	detail := entities.NewErrorDetail("state", "already there").WithCode("x")
	assert.Same(t, detail, ToErrorDetail(fmt.Errorf("wrap: %w", detail)))
	assert.Equal(t, "state: already there [x]", detail.Error())
}
