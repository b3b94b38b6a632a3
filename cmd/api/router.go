package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kreyolab/formations/internal/config"
	"github.com/kreyolab/formations/internal/handlers"
	"github.com/kreyolab/formations/internal/middleware"
	"github.com/kreyolab/formations/internal/publisher"
	"github.com/kreyolab/formations/internal/repo"
)

// newRouter builds the full API router over the given database. All
// dependencies are constructed here so tests can run the real routing stack
// against a mock database.
func newRouter(database *sql.DB, cfg config.Config) chi.Router {
	formationRepo := repo.NewFormationRepo(database)
	auditRepo := repo.NewAuditRepo(database)
	editorRepo := repo.NewEditorRepo(database)
	clock := clockwork.NewRealClock()
	sweeper := publisher.NewSweeper(formationRepo, auditRepo, clock)

	formationH := &handlers.FormationHandler{Repo: formationRepo, DefaultTimezone: cfg.DefaultTimezone}
	publishH := &handlers.PublishHandler{
		Sweeper:         sweeper,
		Repo:            formationRepo,
		Clock:           clock,
		DefaultTimezone: cfg.DefaultTimezone,
	}
	auditH := &handlers.AuditHandler{Repo: auditRepo}
	authH := &handlers.AuthHandler{
		Editors:     editorRepo,
		Secret:      []byte(cfg.JWTSecret),
		TokenExpiry: time.Duration(cfg.JWTExpireHours) * time.Hour,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/auth/login", authH.Login)

	// Published content is readable without a token.
	r.Get("/formations", formationH.ListFormations)
	r.Get("/formations/{id}", formationH.GetFormation)

	// Mutations require an editor token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWT([]byte(cfg.JWTSecret)))

		r.Post("/formations", formationH.CreateFormation)
		r.Put("/formations/{id}", formationH.UpdateFormation)
		r.Delete("/formations/{id}", formationH.DeleteFormation)
		r.Post("/formations/{id}/schedule", formationH.ScheduleFormation)
		r.Post("/formations/{id}/unschedule", formationH.UnscheduleFormation)

		r.Post("/publish-due", publishH.PublishDue)
		r.Post("/reschedule/{id}", publishH.Reschedule)

		r.Get("/audit", auditH.ListAudit)
	})

	return r
}
