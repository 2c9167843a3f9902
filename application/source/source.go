// Package source turns manifest module specs into capability sets.
package source

import (
	"context"
	"fmt"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
	"github.com/reglet-dev/facet/domain/ports"
)

// StaticSource returns the capabilities listed inline in a module spec.
type StaticSource struct{}

var _ ports.CapabilitySource = StaticSource{}

// Capabilities parses spec.Capabilities.
func (StaticSource) Capabilities(_ context.Context, spec entities.ModuleSpec) ([]entities.CapabilityID, error) {
	caps, err := spec.StaticCapabilities()
	if err != nil {
		return nil, &errors.SourceError{Module: spec.ID, Err: err}
	}
	return caps, nil
}

// MultiSource unions the inline capabilities of a spec with those
// enumerated from its wasm module.
type MultiSource struct {
	static ports.CapabilitySource
	wasm   ports.CapabilitySource
}

var _ ports.CapabilitySource = (*MultiSource)(nil)

// NewMultiSource creates a MultiSource. wasm may be nil, in which case
// specs naming a wasm module fail.
func NewMultiSource(wasm ports.CapabilitySource) *MultiSource {
	return &MultiSource{static: StaticSource{}, wasm: wasm}
}

// Capabilities returns the inline capabilities followed by the wasm ones
// not already listed.
func (m *MultiSource) Capabilities(ctx context.Context, spec entities.ModuleSpec) ([]entities.CapabilityID, error) {
	caps, err := m.static.Capabilities(ctx, spec)
	if err != nil {
		return nil, err
	}
	if spec.Wasm == "" {
		return caps, nil
	}
	if m.wasm == nil {
		return nil, &errors.SourceError{Module: spec.ID, Err: fmt.Errorf("wasm modules are not supported")}
	}
	fromWasm, err := m.wasm.Capabilities(ctx, spec)
	if err != nil {
		return nil, err
	}
	return entities.UnionCapabilities(caps, fromWasm), nil
}

// Descriptors resolves every module spec of m into a descriptor, in
// manifest order.
func Descriptors(ctx context.Context, src ports.CapabilitySource, m *entities.Manifest) ([]entities.ModuleDescriptor, error) {
	out := make([]entities.ModuleDescriptor, 0, len(m.Modules))
	for _, spec := range m.Modules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		caps, err := src.Capabilities(ctx, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, entities.NewModuleDescriptor(entities.ModuleID(spec.ID), caps...))
	}
	return out, nil
}
