package group_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/application/group"
	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/internal/testutil"
)

var (
	capX = testutil.Cap("x")
	capY = testutil.Cap("y")
	capZ = testutil.Cap("z")
)

func TestGroup_Empty(t *testing.T) {
	cuts, warnings := group.Group(nil)
	assert.Empty(t, cuts)
	assert.Empty(t, warnings)
}

func TestGroup_UnionSameKey(t *testing.T) {
	cuts, warnings := group.Group([]entities.Cut{
		entities.AddCut("m", capX),
		entities.AddCut("m", capY),
	})

	assert.Equal(t, []entities.Cut{entities.AddCut("m", capX, capY)}, cuts)
	assert.Empty(t, warnings)
}

func TestGroup_UnionDropsDuplicates(t *testing.T) {
	cuts, warnings := group.Group([]entities.Cut{
		entities.AddCut("m", capX, capY),
		entities.AddCut("m", capY, capZ),
		entities.AddCut("m", capX),
	})

	assert.Equal(t, []entities.Cut{entities.AddCut("m", capX, capY, capZ)}, cuts)
	assert.Empty(t, warnings, "a capability repeated within one merged cut is not a conflict")
}

func TestGroup_DifferentActionConflicts(t *testing.T) {
	cuts, warnings := group.Group([]entities.Cut{
		entities.AddCut("m", capX),
		entities.RemoveCut(capX),
	})

	require.Len(t, cuts, 2)
	assert.Equal(t, entities.AddCut("m", capX), cuts[0])
	assert.Equal(t, entities.RemoveCut(capX), cuts[1])

	assert.Equal(t, []entities.ConflictWarning{
		{Capability: capX, Module: entities.Module("m"), Action: entities.ActionAdd},
		{Capability: capX, Module: entities.NullModule, Action: entities.ActionRemove},
	}, warnings)
}

func TestGroup_DifferentModulesConflict(t *testing.T) {
	cuts, warnings := group.Group([]entities.Cut{
		entities.AddCut("m1", capX, capY),
		entities.AddCut("m2", capY),
		entities.AddCut("m1", capZ),
	})

	assert.Equal(t, []entities.Cut{
		entities.AddCut("m1", capX, capY, capZ),
		entities.AddCut("m2", capY),
	}, cuts)
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, capY, w.Capability)
	}
	assert.Equal(t, entities.Module("m1"), warnings[0].Module)
	assert.Equal(t, entities.Module("m2"), warnings[1].Module)
}

func TestGroup_DoesNotAliasInput(t *testing.T) {
	in := []entities.Cut{entities.AddCut("m", capX), entities.AddCut("m", capY)}
	_, _ = group.Group(in)
	assert.Equal(t, []entities.CapabilityID{capX}, in[0].Capabilities)
}
