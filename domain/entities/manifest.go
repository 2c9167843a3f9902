package entities

import "fmt"

// Manifest is the declarative desired state of a registry.
// Identifiers are kept in their text form so the document can be validated
// against its JSON schema before anything is parsed.
type Manifest struct {
	Version string          `json:"version" yaml:"version" validate:"required,semver" jsonschema:"description=Manifest format version"`
	Self    string          `json:"self,omitempty" yaml:"self,omitempty" validate:"omitempty,moduleid" jsonschema:"description=Reserved id of the registry itself"`
	Modules []ModuleSpec    `json:"modules" yaml:"modules" validate:"dive"`
	Filters ManifestFilters `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// ModuleSpec declares one desired module and where its capabilities come from.
type ModuleSpec struct {
	ID           string          `json:"id" yaml:"id" validate:"required,moduleid"`
	Capabilities []string        `json:"capabilities,omitempty" yaml:"capabilities,omitempty" validate:"required_without=Wasm,dive,capid"`
	Wasm         string          `json:"wasm,omitempty" yaml:"wasm,omitempty" validate:"required_without=Capabilities" jsonschema:"description=Path to a WebAssembly module whose exports are enumerated"`
	Exports      *ExportSelector `json:"exports,omitempty" yaml:"exports,omitempty"`
}

// ExportSelector narrows the exports enumerated from a wasm module. Patterns
// are doublestar globs with "/" as the separator; an empty Include selects
// every export.
type ExportSelector struct {
	Include []string `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// ManifestFilters holds the per-kind filters of a manifest.
type ManifestFilters struct {
	Add     ManifestFilterSet `json:"add,omitempty" yaml:"add,omitempty"`
	Replace ManifestFilterSet `json:"replace,omitempty" yaml:"replace,omitempty"`
	Remove  ManifestFilterSet `json:"remove,omitempty" yaml:"remove,omitempty"`
}

// ManifestFilterSet is the text form of a FilterSet.
type ManifestFilterSet struct {
	Only    []ManifestFilter `json:"only,omitempty" yaml:"only,omitempty" validate:"dive"`
	Exclude []ManifestFilter `json:"exclude,omitempty" yaml:"exclude,omitempty" validate:"dive"`
}

// ManifestFilter is the text form of a Filter. Module "*" is the wildcard.
type ManifestFilter struct {
	Module       string   `json:"module" yaml:"module" validate:"required,moduleref"`
	Capabilities []string `json:"capabilities" yaml:"capabilities" validate:"min=1,dive,capid" jsonschema:"minItems=1"`
}

// SelfID returns the declared registry self id, if any.
func (m *Manifest) SelfID() (ModuleID, bool) {
	if m.Self == "" {
		return "", false
	}
	return ModuleID(m.Self), true
}

// StaticCapabilities parses the capabilities listed inline.
func (s ModuleSpec) StaticCapabilities() ([]CapabilityID, error) {
	return parseCapabilities(s.Capabilities)
}

// KindFilters converts the text filters into their typed form.
func (f ManifestFilters) KindFilters() (KindFilters, error) {
	var (
		kf  KindFilters
		err error
	)
	if kf.Add, err = f.Add.filterSet(); err != nil {
		return kf, fmt.Errorf("filters.add: %w", err)
	}
	if kf.Replace, err = f.Replace.filterSet(); err != nil {
		return kf, fmt.Errorf("filters.replace: %w", err)
	}
	if kf.Remove, err = f.Remove.filterSet(); err != nil {
		return kf, fmt.Errorf("filters.remove: %w", err)
	}
	return kf, nil
}

func (s ManifestFilterSet) filterSet() (FilterSet, error) {
	only, err := convertFilters(s.Only)
	if err != nil {
		return FilterSet{}, fmt.Errorf("only: %w", err)
	}
	exclude, err := convertFilters(s.Exclude)
	if err != nil {
		return FilterSet{}, fmt.Errorf("exclude: %w", err)
	}
	return FilterSet{Only: only, Exclude: exclude}, nil
}

func convertFilters(in []ManifestFilter) ([]Filter, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Filter, 0, len(in))
	for i, f := range in {
		ref, err := ParseModuleRef(f.Module)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		if ref.IsNull() {
			return nil, fmt.Errorf("[%d]: filter module cannot be %s", i, ref)
		}
		caps, err := parseCapabilities(f.Capabilities)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, NewFilter(ref, caps...))
	}
	return out, nil
}

func parseCapabilities(raw []string) ([]CapabilityID, error) {
	out := make([]CapabilityID, 0, len(raw))
	for _, s := range raw {
		id, err := ParseCapabilityID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return UniqueCapabilities(out), nil
}
