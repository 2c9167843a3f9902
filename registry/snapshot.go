package registry

import (
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// Snapshot is an immutable copy of a registry's contents taken at one
// point in time. Diffing against a Snapshot never blocks Apply.
type Snapshot struct {
	forward map[entities.CapabilityID]entities.ModuleID
	entries []entities.ModuleEntry
	self    entities.ModuleID
	hasSelf bool
}

var _ ports.RegistryView = (*Snapshot)(nil)

// NewSnapshot builds a snapshot from enumerated entries, e.g. ones fetched
// from a remote registry. A capability listed under two modules keeps the
// first owner.
func NewSnapshot(entries []entities.ModuleEntry, self entities.ModuleID, hasSelf bool) *Snapshot {
	s := &Snapshot{
		forward: make(map[entities.CapabilityID]entities.ModuleID),
		self:    self,
		hasSelf: hasSelf,
	}
	for _, e := range entries {
		var caps []entities.CapabilityID
		for _, c := range e.Capabilities {
			if _, dup := s.forward[c]; dup {
				continue
			}
			s.forward[c] = e.ID
			caps = append(caps, c)
		}
		if len(caps) > 0 {
			s.entries = append(s.entries, entities.ModuleEntry{ID: e.ID, Capabilities: caps})
		}
	}
	return s
}

// ModuleFor returns the owner of c at snapshot time.
func (s *Snapshot) ModuleFor(c entities.CapabilityID) entities.ModuleRef {
	if m, ok := s.forward[c]; ok {
		return entities.Module(m)
	}
	return entities.NullModule
}

// Modules returns a copy of the enumerated entries.
func (s *Snapshot) Modules() []entities.ModuleEntry {
	out := make([]entities.ModuleEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = entities.ModuleEntry{ID: e.ID, Capabilities: append([]entities.CapabilityID(nil), e.Capabilities...)}
	}
	return out
}

// Self returns the registry's reserved self id at snapshot time.
func (s *Snapshot) Self() (entities.ModuleID, bool) {
	return s.self, s.hasSelf
}

// Len returns the number of bound capabilities.
func (s *Snapshot) Len() int {
	return len(s.forward)
}
