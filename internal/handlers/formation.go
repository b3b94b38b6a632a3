package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kreyolab/formations/internal/models"
	"github.com/kreyolab/formations/internal/repo"
	"github.com/kreyolab/formations/internal/timezone"
)

// FormationHandler handles formation CRUD and scheduling commands.
type FormationHandler struct {
	Repo *repo.FormationRepo
	// DefaultTimezone is used when a scheduling request omits the timezone.
	DefaultTimezone string
}

// ListFormations returns paginated formations (query: limit, offset).
func (h *FormationHandler) ListFormations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// GetFormation returns one formation by id.
func (h *FormationHandler) GetFormation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid formation id", http.StatusBadRequest)
		return
	}

	f, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if f == nil {
		JSONError(w, "formation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

// CreateFormation creates a new draft formation. Body: {"title": "...", "description": "..."}.
func (h *FormationHandler) CreateFormation(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		JSONValidationError(w, "validation failed", map[string]string{"title": "required"}, http.StatusBadRequest)
		return
	}

	f, err := h.Repo.Create(r.Context(), input.Title, input.Description)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(f)
}

// UpdateFormation updates title and description. Body: {"title": "...", "description": "..."}.
func (h *FormationHandler) UpdateFormation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid formation id", http.StatusBadRequest)
		return
	}

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		JSONValidationError(w, "validation failed", map[string]string{"title": "required"}, http.StatusBadRequest)
		return
	}

	if err := h.Repo.Update(r.Context(), id, input.Title, input.Description); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	f, _ := h.Repo.GetByID(r.Context(), id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

// DeleteFormation deletes a formation.
func (h *FormationHandler) DeleteFormation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid formation id", http.StatusBadRequest)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ScheduleFormation schedules a formation to publish at a local wall-clock
// time. Body: {"local_datetime": "2026-02-24T10:00", "timezone": "America/Port-au-Prince"}.
// The wall-clock time is interpreted in the given timezone and stored as an
// absolute UTC instant.
func (h *FormationHandler) ScheduleFormation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid formation id", http.StatusBadRequest)
		return
	}

	var input struct {
		LocalDatetime string `json:"local_datetime"`
		Timezone      string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	tz := input.Timezone
	if tz == "" {
		tz = h.DefaultTimezone
	}

	utcInstant := timezone.LocalToUTC(input.LocalDatetime, tz)
	if utcInstant == "" {
		JSONValidationError(w, "validation failed",
			map[string]string{"local_datetime": "must be yyyy-mm-ddThh:mm"}, http.StatusBadRequest)
		return
	}
	at, _ := time.Parse(time.RFC3339, utcInstant)

	f, err := h.Repo.Schedule(r.Context(), id, at, tz)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if f == nil {
		JSONError(w, "formation not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

// UnscheduleFormation moves a scheduled formation back to another status and
// clears its scheduling fields. Body: {"status": "draft"} (default draft).
func (h *FormationHandler) UnscheduleFormation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid formation id", http.StatusBadRequest)
		return
	}

	input := struct {
		Status string `json:"status"`
	}{Status: models.StatusDraft}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			JSONError(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}
	if input.Status == models.StatusScheduled || !models.ValidStatus(input.Status) {
		JSONValidationError(w, "validation failed",
			map[string]string{"status": "must be draft, published or archived"}, http.StatusBadRequest)
		return
	}

	if err := h.Repo.Unschedule(r.Context(), id, input.Status); err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	f, _ := h.Repo.GetByID(r.Context(), id)
	if f == nil {
		JSONError(w, "formation not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}
