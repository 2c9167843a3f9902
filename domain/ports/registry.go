package ports

import (
	"context"

	"github.com/reglet-dev/facet/domain/entities"
)

// RegistryView is the read-only view of a registry the differ works from.
// Implementations must return data that does not change during a diff.
type RegistryView interface {
	// ModuleFor returns the owner of c, or entities.NullModule if unbound.
	ModuleFor(c entities.CapabilityID) entities.ModuleRef

	// Modules enumerates every module with a non-empty capability set.
	Modules() []entities.ModuleEntry

	// Self returns the registry's reserved self id, if it has one.
	Self() (entities.ModuleID, bool)
}

// BatchSink commits an ordered list of cuts atomically or rejects it whole.
type BatchSink interface {
	Apply(ctx context.Context, cuts []entities.Cut) error
}
