package ports

import "github.com/reglet-dev/facet/domain/entities"

// StateStore persists registry contents between runs.
type StateStore interface {
	// Load returns the stored entries.
	// Returns an empty slice (not an error) if nothing was stored yet.
	Load() ([]entities.ModuleEntry, error)

	// Save replaces the stored entries.
	Save(entries []entities.ModuleEntry) error

	// Path returns the location of the backing store (for user messaging).
	Path() string
}
