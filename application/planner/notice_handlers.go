package planner

import (
	"log/slog"

	"github.com/reglet-dev/facet/domain/entities"
	"github.com/reglet-dev/facet/domain/ports"
)

// Ensure implementations satisfy the interface.
var _ ports.NoticeHandler = (*SlogNoticeHandler)(nil)
var _ ports.NoticeHandler = (*NopNoticeHandler)(nil)

// SlogNoticeHandler logs notices at info level and conflicts at warn level.
type SlogNoticeHandler struct {
	logger *slog.Logger
}

// NewSlogNoticeHandler returns a handler writing to l, or slog.Default if l is nil.
func NewSlogNoticeHandler(l *slog.Logger) *SlogNoticeHandler {
	if l == nil {
		l = slog.Default()
	}
	return &SlogNoticeHandler{logger: l}
}

func (h *SlogNoticeHandler) OnNotice(n entities.Notice) {
	h.logger.Info(n.Message, "kind", n.Kind)
}

func (h *SlogNoticeHandler) OnConflict(w entities.ConflictWarning) {
	h.logger.Warn("capability claimed by several cuts",
		"capability", w.Capability, "module", w.Module, "action", w.Action)
}

// NopNoticeHandler does nothing.
type NopNoticeHandler struct{}

func (h *NopNoticeHandler) OnNotice(entities.Notice) {}

func (h *NopNoticeHandler) OnConflict(entities.ConflictWarning) {}
