package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reglet-dev/facet/domain/entities"
)

// recordingT collects assertion failures instead of failing the test.
type recordingT struct {
	failures []string
}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

// mapView is a view whose forward and reverse sides are set independently.
type mapView struct {
	forward map[entities.CapabilityID]entities.ModuleID
	entries []entities.ModuleEntry
}

func (v mapView) ModuleFor(c entities.CapabilityID) entities.ModuleRef {
	if m, ok := v.forward[c]; ok {
		return entities.Module(m)
	}
	return entities.NullModule
}

func (v mapView) Modules() []entities.ModuleEntry { return v.entries }
func (v mapView) Self() (entities.ModuleID, bool) { return "", false }
func (v mapView) Len() int { return len(v.forward) }

func TestAssertConsistent(t *testing.T) {
	a, b := Cap("a"), Cap("b")

	tests := []struct {
		name   string
		view   mapView
		failed bool
	}{
		{
			name: "consistent",
			view: mapView{
				forward: map[entities.CapabilityID]entities.ModuleID{a: "m1", b: "m2"},
				entries: []entities.ModuleEntry{{ID: "m1", Capabilities: []entities.CapabilityID{a}}, {ID: "m2", Capabilities: []entities.CapabilityID{b}}},
			},
		},
		{
			name: "forward entry whose owner is not enumerated",
			view: mapView{
				forward: map[entities.CapabilityID]entities.ModuleID{a: "m1", b: "ghost"},
				entries: []entities.ModuleEntry{{ID: "m1", Capabilities: []entities.CapabilityID{a}}},
			},
			failed: true,
		},
		{
			name: "enumerated capability with another forward owner",
			view: mapView{
				forward: map[entities.CapabilityID]entities.ModuleID{a: "m2"},
				entries: []entities.ModuleEntry{{ID: "m1", Capabilities: []entities.CapabilityID{a}}},
			},
			failed: true,
		},
		{
			name: "capability listed under two modules",
			view: mapView{
				forward: map[entities.CapabilityID]entities.ModuleID{a: "m1"},
				entries: []entities.ModuleEntry{{ID: "m1", Capabilities: []entities.CapabilityID{a}}, {ID: "m2", Capabilities: []entities.CapabilityID{a}}},
			},
			failed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingT{}
			AssertConsistent(rec, tt.view)
			assert.Equal(t, tt.failed, len(rec.failures) > 0, "failures: %v", rec.failures)
		})
	}
}
