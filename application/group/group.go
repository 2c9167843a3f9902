// Package group merges raw cut lists into one cut per (target, action) and
// reports capabilities claimed by more than one merged cut.
package group

import "github.com/reglet-dev/facet/domain/entities"

type key struct {
	target entities.ModuleRef
	action entities.Action
}

// Group merges cuts sharing a target and action, in first-seen order, with
// duplicate capabilities dropped. For every capability present in two or
// more merged cuts it returns one warning per cut containing it. Warnings
// are ordered by the merged cut and then by capability.
func Group(cuts []entities.Cut) ([]entities.Cut, []entities.ConflictWarning) {
	if len(cuts) == 0 {
		return nil, nil
	}

	index := make(map[key]int)
	var merged []entities.Cut
	for _, c := range cuts {
		k := key{target: c.Target, action: c.Action}
		if i, ok := index[k]; ok {
			merged[i].Capabilities = entities.UnionCapabilities(merged[i].Capabilities, c.Capabilities)
			continue
		}
		index[k] = len(merged)
		merged = append(merged, entities.NewCut(c.Target, c.Action, c.Capabilities...))
	}

	claims := make(map[entities.CapabilityID]int)
	for _, c := range merged {
		for _, id := range c.Capabilities {
			claims[id]++
		}
	}

	var warnings []entities.ConflictWarning
	for _, c := range merged {
		for _, id := range c.Capabilities {
			if claims[id] < 2 {
				continue
			}
			warnings = append(warnings, entities.ConflictWarning{
				Capability: id,
				Module:     c.Target,
				Action:     c.Action,
			})
		}
	}
	return merged, warnings
}
