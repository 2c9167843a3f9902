package ports

import (
	"context"

	"github.com/reglet-dev/facet/domain/entities"
)

// CapabilitySource enumerates the capabilities a module declares.
type CapabilitySource interface {
	// Capabilities returns the finite capability set of the module spec.
	Capabilities(ctx context.Context, spec entities.ModuleSpec) ([]entities.CapabilityID, error)
}
