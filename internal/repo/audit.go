package repo

import (
	"context"
	"database/sql"

	"github.com/kreyolab/formations/internal/models"
)

// AuditRepo persists append-only audit log entries.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Log records an audit entry. action is create|update|delete; changes is a
// JSON object describing the mutation.
func (r *AuditRepo) Log(ctx context.Context, action, tableName string, recordID int, changes string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (action, table_name, record_id, changes) VALUES ($1, $2, $3, $4)`,
		action, tableName, recordID, changes,
	)
	return err
}

// List returns recent audit entries, newest first.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, action, table_name, record_id, COALESCE(changes::text, ''), created_at FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.TableName, &e.RecordID, &e.Changes, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
