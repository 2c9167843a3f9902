package ports

import (
	"time"

	"github.com/reglet-dev/facet/domain/entities"
)

// MetricsRecorder observes registry and planner activity.
type MetricsRecorder interface {
	BatchApplied(cuts int, took time.Duration)
	BatchRejected(code string)
	KindPlanned(kind entities.Kind, cuts int)
	ConflictsObserved(n int)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

var _ MetricsRecorder = NopRecorder{}

func (NopRecorder) BatchApplied(int, time.Duration) {}
func (NopRecorder) BatchRejected(string)            {}
func (NopRecorder) KindPlanned(entities.Kind, int)  {}
func (NopRecorder) ConflictsObserved(int)           {}
