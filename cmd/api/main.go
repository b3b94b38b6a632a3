package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/kreyolab/formations/internal/config"
	"github.com/kreyolab/formations/internal/db"
	"github.com/kreyolab/formations/internal/publisher"
	"github.com/kreyolab/formations/internal/repo"
	"github.com/kreyolab/formations/internal/scheduler"
)

func main() {
	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg.LogFormat)

	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	migrateURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err := db.Run(migrateURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := ensureAdminEditor(database, cfg); err != nil {
		log.Fatalf("Failed to bootstrap admin editor: %v", err)
	}

	// Background sweep: the authoritative publication path, running whether
	// or not any client is watching a countdown.
	formationRepo := repo.NewFormationRepo(database)
	auditRepo := repo.NewAuditRepo(database)
	sweeper := publisher.NewSweeper(formationRepo, auditRepo, clockwork.NewRealClock())
	cronRunner, err := scheduler.Start(sweeper, cfg.SweepCron)
	if err != nil {
		log.Fatalf("Failed to start publication sweep: %v", err)
	}
	defer cronRunner.Stop()

	r := newRouter(database, cfg)
	slog.Info("starting server", "port", cfg.Port, "sweep_cron", cfg.SweepCron)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

// ensureAdminEditor creates the bootstrap editor account when it does not
// exist yet, so a fresh deployment can log in to the back office.
func ensureAdminEditor(database *sql.DB, cfg config.Config) error {
	editors := repo.NewEditorRepo(database)
	_, err := editors.GetByUsername(context.Background(), cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	if _, err := editors.Create(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}
	slog.Info("created bootstrap editor", "username", cfg.AdminUsername)
	return nil
}

func setupLogger(format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}
