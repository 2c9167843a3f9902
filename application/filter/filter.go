// Package filter decides which (module, capability) pairs a diff may touch.
//
// A FilterSet carries an "only" list and an "exclude" list. When only is
// non-empty it is an allow list and exclude is ignored; otherwise exclude is
// a deny list. An empty set lets everything through.
package filter

import (
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/errors"
)

// Passes reports whether (module, c) is in scope for fs.
func Passes(fs entities.FilterSet, module entities.ModuleRef, c entities.CapabilityID) bool {
	switch {
	case len(fs.Only) > 0:
		return matchAny(fs.Only, module, c)
	case len(fs.Exclude) > 0:
		return !matchAny(fs.Exclude, module, c)
	default:
		return true
	}
}

func matchAny(entries []entities.Filter, module entities.ModuleRef, c entities.CapabilityID) bool {
	for _, f := range entries {
		if f.Matches(module, c) {
			return true
		}
	}
	return false
}

// Validate fails with *errors.FilterConflictError when a module reference,
// the wildcard included, appears in both lists of fs.
func Validate(fs entities.FilterSet) error {
	if len(fs.Only) == 0 || len(fs.Exclude) == 0 {
		return nil
	}

	excluded := make(map[entities.ModuleRef]struct{}, len(fs.Exclude))
	for _, f := range fs.Exclude {
		excluded[f.Module] = struct{}{}
	}

	var shared []entities.ModuleRef
	seen := make(map[entities.ModuleRef]struct{})
	for _, f := range fs.Only {
		if _, ok := excluded[f.Module]; !ok {
			continue
		}
		if _, dup := seen[f.Module]; dup {
			continue
		}
		seen[f.Module] = struct{}{}
		shared = append(shared, f.Module)
	}

	if len(shared) > 0 {
		return &errors.FilterConflictError{Modules: shared}
	}
	return nil
}

// ValidateKinds runs Validate on the filter set of every kind and tags the
// first conflict with its kind.
func ValidateKinds(kf entities.KindFilters) error {
	for _, k := range entities.Kinds() {
		if err := Validate(kf.For(k)); err != nil {
			if conflict, ok := err.(*errors.FilterConflictError); ok {
				conflict.Kind = k
			}
			return err
		}
	}
	return nil
}
