package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/audit"
)

type recorder struct {
	repo audit.Repository
}

// NewRecorder wraps the repository as an audit.Recorder. Failed writes
// are logged and swallowed.
func NewRecorder(repo audit.Repository) audit.Recorder {
	return &recorder{repo: repo}
}

func (r *recorder) Record(ctx context.Context, entry audit.Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		slog.Error("audit write failed",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}
