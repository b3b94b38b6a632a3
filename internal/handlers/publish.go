package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/kreyolab/formations/internal/publisher"
	"github.com/kreyolab/formations/internal/repo"
	"github.com/kreyolab/formations/internal/timezone"
)

// DefaultRescheduleMinutes is how far in the future the reschedule test helper
// pushes a formation when the request omits minutes.
const DefaultRescheduleMinutes = 2

// PublishHandler exposes the on-demand trigger path into the publication sweep
// and the reschedule test helper.
type PublishHandler struct {
	Sweeper *publisher.Sweeper
	Repo    *repo.FormationRepo
	Clock   clockwork.Clock
	// DefaultTimezone is the example zone used when a reschedule request
	// omits the timezone.
	DefaultTimezone string
}

// PublishDue runs the publication sweep immediately. Same logic as the cron
// tick; exists so an administrator can force publication without waiting for
// the next tick. Per-item failures are swallowed by the sweep; only a
// selection-level failure surfaces as 500.
func (h *PublishHandler) PublishDue(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sweeper.Sweep(r.Context())
	if err != nil {
		JSONErrorDetails(w, "failed to fetch due formations", err.Error(), http.StatusInternalServerError)
		return
	}

	message := "no formations due"
	if res.Count > 0 {
		message = fmt.Sprintf("published %d formation(s)", res.Count)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":   message,
		"count":     res.Count,
		"published": res.Published,
	})
}

// Reschedule pushes a formation's publication a few minutes into the future.
// Test helper for exercising the countdown and sweep path without waiting for
// a real date. Body (optional): {"minutes": 2, "timezone": "America/Port-au-Prince"}.
func (h *PublishHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid formation id", http.StatusBadRequest)
		return
	}

	input := struct {
		Minutes  int    `json:"minutes"`
		Timezone string `json:"timezone"`
	}{Minutes: DefaultRescheduleMinutes, Timezone: h.DefaultTimezone}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && err != io.EOF {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Minutes <= 0 {
		JSONValidationError(w, "validation failed",
			map[string]string{"minutes": "must be a positive number"}, http.StatusBadRequest)
		return
	}
	if err := timezone.Validate(input.Timezone); err != nil {
		JSONValidationError(w, "validation failed",
			map[string]string{"timezone": "unknown IANA timezone"}, http.StatusBadRequest)
		return
	}

	at := h.Clock.Now().UTC().Add(time.Duration(input.Minutes) * time.Minute)
	f, err := h.Repo.Schedule(r.Context(), id, at, input.Timezone)
	if err != nil {
		JSONErrorDetails(w, "failed to reschedule formation", err.Error(), http.StatusInternalServerError)
		return
	}
	if f == nil {
		JSONError(w, "formation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":                   f.ID,
		"title":                f.Title,
		"status":               f.Status,
		"scheduled_publish_at": f.ScheduledPublishAt,
		"scheduled_timezone":   f.ScheduledTimezone,
	})
}
