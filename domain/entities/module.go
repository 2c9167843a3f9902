package entities

import (
	"fmt"
	"strings"
)

const (
	nullModuleText     = "<null>"
	wildcardModuleText = "*"
)

// ModuleID identifies a concrete implementation module.
type ModuleID string

// Validate checks that the id is usable as a concrete module.
func (m ModuleID) Validate() error {
	s := string(m)
	switch {
	case strings.TrimSpace(s) == "":
		return fmt.Errorf("module id is empty")
	case s != strings.TrimSpace(s):
		return fmt.Errorf("module id %q has surrounding whitespace", s)
	case s == nullModuleText || s == wildcardModuleText:
		return fmt.Errorf("module id %q is reserved", s)
	}
	return nil
}

// RefKind tags a ModuleRef.
type RefKind uint8

const (
	// RefNull means "unregistered". It is the zero value.
	RefNull RefKind = iota

	// RefConcrete carries a ModuleID.
	RefConcrete

	// RefWildcard matches any module inside filters.
	RefWildcard
)

// ModuleRef is a module reference that keeps "unregistered" and
// "matches anything" apart instead of overloading one sentinel id.
type ModuleRef struct {
	id   ModuleID
	kind RefKind
}

var (
	// NullModule denotes the absence of a module.
	NullModule = ModuleRef{kind: RefNull}

	// WildcardModule matches every module in a filter entry.
	WildcardModule = ModuleRef{kind: RefWildcard}
)

// Module returns a concrete reference to id.
func Module(id ModuleID) ModuleRef {
	return ModuleRef{kind: RefConcrete, id: id}
}

// ParseModuleRef parses the text form: "*", "<null>" or a module id.
func ParseModuleRef(s string) (ModuleRef, error) {
	switch strings.TrimSpace(s) {
	case wildcardModuleText:
		return WildcardModule, nil
	case nullModuleText:
		return NullModule, nil
	}
	id := ModuleID(strings.TrimSpace(s))
	if err := id.Validate(); err != nil {
		return ModuleRef{}, err
	}
	return Module(id), nil
}

// Kind returns the tag.
func (r ModuleRef) Kind() RefKind { return r.kind }

// ID returns the module id and whether the reference is concrete.
func (r ModuleRef) ID() (ModuleID, bool) {
	return r.id, r.kind == RefConcrete
}

// IsNull reports whether r is NullModule.
func (r ModuleRef) IsNull() bool { return r.kind == RefNull }

// IsWildcard reports whether r is WildcardModule.
func (r ModuleRef) IsWildcard() bool { return r.kind == RefWildcard }

// IsConcrete reports whether r names a module.
func (r ModuleRef) IsConcrete() bool { return r.kind == RefConcrete }

// Is reports whether r is the concrete reference to id.
func (r ModuleRef) Is(id ModuleID) bool {
	return r.kind == RefConcrete && r.id == id
}

func (r ModuleRef) String() string {
	switch r.kind {
	case RefConcrete:
		return string(r.id)
	case RefWildcard:
		return wildcardModuleText
	default:
		return nullModuleText
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r ModuleRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ModuleRef) UnmarshalText(text []byte) error {
	ref, err := ParseModuleRef(string(text))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ModuleDescriptor is one desired module and the capabilities it implements.
type ModuleDescriptor struct {
	ID           ModuleID       `json:"id" yaml:"id"`
	Capabilities []CapabilityID `json:"capabilities" yaml:"capabilities"`
}

// NewModuleDescriptor builds a descriptor, dropping duplicate capabilities.
func NewModuleDescriptor(id ModuleID, caps ...CapabilityID) ModuleDescriptor {
	return ModuleDescriptor{ID: id, Capabilities: UniqueCapabilities(caps)}
}

// Provides reports whether the descriptor lists c.
func (d ModuleDescriptor) Provides(c CapabilityID) bool {
	return ContainsCapability(d.Capabilities, c)
}

// ModuleEntry is one row of a registry enumeration.
type ModuleEntry struct {
	ID           ModuleID       `json:"id" yaml:"id"`
	Capabilities []CapabilityID `json:"capabilities" yaml:"capabilities"`
}
