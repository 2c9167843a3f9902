package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/internal/testutil"
	"github.com/reglet-dev/facet/registry"
)

func TestSnapshot_IsolatedFromLaterApply(t *testing.T) {
	ctx := context.Background()
	reg := registry.MustNew(registry.WithSelf("self"))
	require.NoError(t, reg.Apply(ctx, []entities.Cut{entities.AddCut("m1", capA, capB)}))

	snap := reg.Snapshot()
	require.NoError(t, reg.Apply(ctx, []entities.Cut{
		entities.RemoveCut(capA),
		entities.AddCut("m2", capC),
	}))

	assert.Equal(t, entities.Module("m1"), snap.ModuleFor(capA))
	assert.Equal(t, entities.NullModule, snap.ModuleFor(capC))
	assert.Equal(t, 2, snap.Len())
	self, ok := snap.Self()
	assert.True(t, ok)
	assert.Equal(t, entities.ModuleID("self"), self)
	testutil.AssertConsistent(t, snap)
}

func TestSnapshot_ModulesReturnsCopy(t *testing.T) {
	reg := registry.MustNew(registry.WithSeed([]entities.ModuleEntry{
		{ID: "m1", Capabilities: []entities.CapabilityID{capA}},
	}))
	snap := reg.Snapshot()

	mods := snap.Modules()
	mods[0].Capabilities[0] = capD

	assert.Equal(t, []entities.CapabilityID{capA}, snap.Modules()[0].Capabilities)
}

func TestNewSnapshot_FirstOwnerWins(t *testing.T) {
	snap := registry.NewSnapshot([]entities.ModuleEntry{
		{ID: "m1", Capabilities: []entities.CapabilityID{capA, capB}},
		{ID: "m2", Capabilities: []entities.CapabilityID{capB}},
		{ID: "m3", Capabilities: []entities.CapabilityID{capC}},
	}, "", false)

	assert.Equal(t, entities.Module("m1"), snap.ModuleFor(capB))
	assert.Equal(t, 3, snap.Len())

	mods := snap.Modules()
	require.Len(t, mods, 2, "m2 is left with nothing and is not enumerated")
	assert.Equal(t, entities.ModuleID("m1"), mods[0].ID)
	assert.Equal(t, entities.ModuleID("m3"), mods[1].ID)
	testutil.AssertConsistent(t, snap)
}
