package models

import "time"

// AuditEntry represents one audit log row. Changes holds a JSON object
// describing the mutation, e.g. {"status": "scheduled → published", "published_at": "..."}.
type AuditEntry struct {
	ID        int       `json:"id"`
	Action    string    `json:"action"` // create, update, delete
	TableName string    `json:"table_name"`
	RecordID  int       `json:"record_id"`
	Changes   string    `json:"changes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
