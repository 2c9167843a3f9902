package entities

// Filter scopes a diff to a module (or every module, via WildcardModule)
// and a set of capabilities.
type Filter struct {
	Module       ModuleRef      `json:"module" yaml:"module"`
	Capabilities []CapabilityID `json:"capabilities" yaml:"capabilities"`
}

// NewFilter builds a filter entry.
func NewFilter(module ModuleRef, caps ...CapabilityID) Filter {
	return Filter{Module: module, Capabilities: UniqueCapabilities(caps)}
}

// Matches reports whether the entry covers (module, c).
func (f Filter) Matches(module ModuleRef, c CapabilityID) bool {
	if f.Module != module && !f.Module.IsWildcard() {
		return false
	}
	return ContainsCapability(f.Capabilities, c)
}

// FilterSet is the only/exclude pair applied to one diff kind.
type FilterSet struct {
	Only    []Filter `json:"only,omitempty" yaml:"only,omitempty"`
	Exclude []Filter `json:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// IsEmpty reports whether no scoping is configured.
func (fs FilterSet) IsEmpty() bool {
	return len(fs.Only) == 0 && len(fs.Exclude) == 0
}

// KindFilters holds an independent FilterSet per diff kind.
type KindFilters struct {
	Add     FilterSet `json:"add" yaml:"add"`
	Replace FilterSet `json:"replace" yaml:"replace"`
	Remove  FilterSet `json:"remove" yaml:"remove"`
}

// For returns the FilterSet of kind k.
func (kf KindFilters) For(k Kind) FilterSet {
	switch k {
	case KindAdditions:
		return kf.Add
	case KindReplacements:
		return kf.Replace
	case KindRemovals:
		return kf.Remove
	}
	return FilterSet{}
}
