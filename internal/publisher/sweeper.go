// Package publisher holds the authoritative publication sweep: the idempotent
// operation that flips due scheduled formations to published. Both trigger
// paths (the cron tick and the on-demand HTTP endpoint) call the same Sweep.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/kreyolab/formations/internal/metrics"
	"github.com/kreyolab/formations/internal/repo"
)

// AuditTable is the table name recorded on publish audit entries.
const AuditTable = "formations"

// PublishedItem describes one formation published by a sweep.
type PublishedItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_time"`
	PublishedAt time.Time `json:"published_at"`
}

// Result summarizes one sweep invocation.
type Result struct {
	Count     int             `json:"count"`
	Published []PublishedItem `json:"published"`
}

// Sweeper publishes due formations. Safe to invoke concurrently: the per-row
// conditional update in FormationRepo.Publish makes a racing invoker's write
// a no-op, so an item is published at most once.
type Sweeper struct {
	formations *repo.FormationRepo
	audit      *repo.AuditRepo
	clock      clockwork.Clock
}

// NewSweeper returns a Sweeper using the given repos and clock.
func NewSweeper(formations *repo.FormationRepo, audit *repo.AuditRepo, clock clockwork.Clock) *Sweeper {
	return &Sweeper{formations: formations, audit: audit, clock: clock}
}

// Sweep selects every scheduled formation whose publish instant has passed and
// publishes each one, earliest due first. A failed selection aborts the whole
// invocation; a failed per-item write is logged and skipped so the rest of the
// batch still publishes. Audit entries are best-effort: a failed audit insert
// is a warning, the publish stands.
func (s *Sweeper) Sweep(ctx context.Context) (Result, error) {
	now := s.clock.Now().UTC()

	due, err := s.formations.ListDue(ctx, now)
	if err != nil {
		metrics.IncSweep("error")
		return Result{}, fmt.Errorf("list due formations: %w", err)
	}
	if len(due) == 0 {
		metrics.IncSweep("ok")
		return Result{Published: []PublishedItem{}}, nil
	}

	result := Result{Published: []PublishedItem{}}
	for _, d := range due {
		publishedAt := s.clock.Now().UTC()
		won, err := s.formations.Publish(ctx, d.ID, publishedAt)
		if err != nil {
			slog.Error("publish formation failed, continuing sweep",
				"formation_id", d.ID,
				"title", d.Title,
				"error", err)
			continue
		}
		if !won {
			// Another invoker (cron tick, HTTP trigger, or a viewer's
			// auto-trigger) got there first.
			slog.Info("formation already published by concurrent invoker",
				"formation_id", d.ID)
			continue
		}

		metrics.IncPublished()
		s.writeAudit(ctx, d.ID, publishedAt)

		result.Published = append(result.Published, PublishedItem{
			ID:          d.ID,
			Title:       d.Title,
			ScheduledAt: d.ScheduledAt,
			PublishedAt: publishedAt,
		})
		result.Count++
	}

	metrics.IncSweep("ok")
	return result, nil
}

func (s *Sweeper) writeAudit(ctx context.Context, formationID int, publishedAt time.Time) {
	changes, _ := json.Marshal(map[string]string{
		"status":       "scheduled → published",
		"published_at": publishedAt.Format(time.RFC3339),
	})
	if err := s.audit.Log(ctx, "update", AuditTable, formationID, string(changes)); err != nil {
		slog.Warn("audit write failed after publish",
			"formation_id", formationID,
			"error", err)
	}
}
