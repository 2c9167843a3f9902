// Package testutil provides common test utilities and assertions for registry tests
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// Cap derives a stable capability id from a short name, so tests can talk
// about capabilities "a", "b", ... instead of hex literals.
func Cap(name string) entities.CapabilityID {
	return entities.DeriveCapabilityID(name)
}

// Caps maps Cap over names.
func Caps(names ...string) []entities.CapabilityID {
	out := make([]entities.CapabilityID, len(names))
	for i, n := range names {
		out[i] = Cap(n)
	}
	return out
}

// CountedView is a registry view that also reports how many capabilities
// are bound. Both registry.Registry and registry.Snapshot satisfy it.
type CountedView interface {
	ports.RegistryView
	Len() int
}

// AssertConsistent checks that the forward and reverse views of a registry
// agree: every enumerated capability resolves to the module listing it and
// appears under exactly one module, and no bound capability is missing from
// the enumeration.
func AssertConsistent(t assert.TestingT, view CountedView) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	seen := make(map[entities.CapabilityID]entities.ModuleID)
	modules := make(map[entities.ModuleID]struct{})
	for _, e := range view.Modules() {
		_, dup := modules[e.ID]
		assert.False(t, dup, "module %s enumerated twice", e.ID)
		modules[e.ID] = struct{}{}

		assert.NotEmpty(t, e.Capabilities, "module %s enumerated with no capabilities", e.ID)
		for _, c := range e.Capabilities {
			if prev, ok := seen[c]; ok {
				assert.Failf(t, "capability listed twice", "%s under %s and %s", c, prev, e.ID)
			}
			seen[c] = e.ID
			assert.Equal(t, entities.Module(e.ID), view.ModuleFor(c), "forward entry of %s", c)
		}
	}
	assert.Equal(t, view.Len(), len(seen), "bound capabilities missing from the enumeration")
}

// AssertCapabilitiesMatch compares capability sets ignoring order.
func AssertCapabilitiesMatch(t *testing.T, expected, actual []entities.CapabilityID, msgAndArgs ...interface{}) {
	t.Helper()
	assert.ElementsMatch(t, expected, actual, msgAndArgs...)
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}
