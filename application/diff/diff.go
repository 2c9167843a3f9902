// Package diff computes the cuts that move a registry towards a desired set
// of modules, one action kind at a time.
//
// Every function is pure: it reads a ports.RegistryView that must not
// change during the call and returns the cuts together with a flag telling
// whether anything was produced. Cut order follows the order of the desired
// descriptors and their capabilities.
package diff

import (
	"github.com/reglet-dev/facet/application/filter"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// Additions emits ADD cuts for desired capabilities that are unbound.
func Additions(view ports.RegistryView, desired []entities.ModuleDescriptor, fs entities.FilterSet) ([]entities.Cut, bool) {
	return Run(entities.KindAdditions, view, desired, fs)
}

// Replacements emits REPLACE cuts for desired capabilities currently bound
// to another module.
func Replacements(view ports.RegistryView, desired []entities.ModuleDescriptor, fs entities.FilterSet) ([]entities.Cut, bool) {
	return Run(entities.KindReplacements, view, desired, fs)
}

// Removals emits one REMOVE cut for bound capabilities no desired module
// provides. The filter is evaluated against the wildcard module since the
// current owner is being dropped.
func Removals(view ports.RegistryView, desired []entities.ModuleDescriptor, fs entities.FilterSet) ([]entities.Cut, bool) {
	return Run(entities.KindRemovals, view, desired, fs)
}

// Run computes the cuts of one kind. An unknown kind produces nothing.
func Run(kind entities.Kind, view ports.RegistryView, desired []entities.ModuleDescriptor, fs entities.FilterSet) ([]entities.Cut, bool) {
	self, hasSelf := view.Self()
	isSelf := func(id entities.ModuleID) bool { return hasSelf && id == self }

	var cuts []entities.Cut
	switch kind {
	case entities.KindAdditions, entities.KindReplacements:
		for _, d := range desired {
			if isSelf(d.ID) || d.ID.Validate() != nil {
				continue
			}
			target := entities.Module(d.ID)

			var caps []entities.CapabilityID
			for _, c := range d.Capabilities {
				if c.IsZero() || !wanted(kind, view.ModuleFor(c), d.ID, isSelf) {
					continue
				}
				if filter.Passes(fs, target, c) {
					caps = append(caps, c)
				}
			}
			if len(caps) > 0 {
				cuts = append(cuts, entities.NewCut(target, kind.Action(), caps...))
			}
		}

	case entities.KindRemovals:
		keep := make(map[entities.CapabilityID]struct{})
		for _, d := range desired {
			for _, c := range d.Capabilities {
				keep[c] = struct{}{}
			}
		}

		var caps []entities.CapabilityID
		for _, e := range view.Modules() {
			if isSelf(e.ID) {
				continue
			}
			for _, c := range e.Capabilities {
				if _, ok := keep[c]; ok {
					continue
				}
				if filter.Passes(fs, entities.WildcardModule, c) {
					caps = append(caps, c)
				}
			}
		}
		if len(caps) > 0 {
			cuts = append(cuts, entities.RemoveCut(caps...))
		}
	}

	return cuts, len(cuts) > 0
}

// wanted applies the per-kind ownership rule to the current owner of a
// desired capability.
func wanted(kind entities.Kind, owner entities.ModuleRef, target entities.ModuleID, isSelf func(entities.ModuleID) bool) bool {
	switch kind {
	case entities.KindAdditions:
		return owner.IsNull()
	case entities.KindReplacements:
		id, bound := owner.ID()
		return bound && id != target && !isSelf(id)
	}
	return false
}
