package ports

import "github.com/reglet-dev/facet/domain/entities"

// NoticeHandler receives the non-fatal reports of a preview.
// Implementations can log, collect metrics, or surface them to a user.
type NoticeHandler interface {
	// OnNotice is called for each diff kind that had nothing to do.
	OnNotice(notice entities.Notice)

	// OnConflict is called for each capability claimed by several cuts.
	OnConflict(warning entities.ConflictWarning)
}
