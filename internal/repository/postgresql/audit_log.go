package postgresql

import (
	"context"

	"github.com/hrleave/leave-backend-go/internal/domain/audit"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
)

type auditLogRepositoryImpl struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Repository {
	return &auditLogRepositoryImpl{db: db}
}

// Create implements audit.Repository. Inserts only; the table has no
// update or delete path.
func (r *auditLogRepositoryImpl) Create(ctx context.Context, entry audit.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, detail, created_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		entry.Detail, entry.CreatedAt,
	)
	return err
}

// ListByEntity implements audit.Repository. Newest first.
func (r *auditLogRepositoryImpl) ListByEntity(ctx context.Context, entityType, entityID string) ([]audit.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, actor_id, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
	`

	rows, err := q.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID,
			&e.Detail, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
