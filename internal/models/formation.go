package models

import "time"

// Formation statuses. Only scheduled formations are picked up by the publish sweep.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is one of the known formation statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Formation is a training course managed through the admin API.
// ScheduledPublishAt is non-nil only while Status == scheduled; it is cleared
// on every transition away from scheduled. PublishedAt is set exactly once,
// when the formation transitions to published.
type Formation struct {
	ID                 int        `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Status             string     `json:"status"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at,omitempty"`
	ScheduledTimezone  string     `json:"scheduled_timezone,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
