package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/kreyolab/formations/internal/models"
)

// formationColumns is the canonical select list for formation rows.
const formationColumns = `id, title, description, status, scheduled_publish_at, COALESCE(scheduled_timezone, ''), published_at, created_at, updated_at`

// FormationRepo persists formations.
type FormationRepo struct {
	DB *sql.DB
}

// NewFormationRepo returns a new FormationRepo.
func NewFormationRepo(db *sql.DB) *FormationRepo {
	return &FormationRepo{DB: db}
}

// DueFormation is the slice of a formation the publish sweep needs.
type DueFormation struct {
	ID          int
	Title       string
	ScheduledAt time.Time
}

func scanFormation(row interface{ Scan(...any) error }) (*models.Formation, error) {
	f := &models.Formation{}
	err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Status,
		&f.ScheduledPublishAt, &f.ScheduledTimezone, &f.PublishedAt,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Count returns the total number of formations.
func (r *FormationRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM formations").Scan(&n)
	return n, err
}

// List returns formations, most recent first. limit/offset for pagination.
func (r *FormationRepo) List(ctx context.Context, limit, offset int) ([]models.Formation, error) {
	query := `
		SELECT ` + formationColumns + `
		FROM formations
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Formation
	for rows.Next() {
		f, err := scanFormation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

// GetByID returns one formation by id, or nil when it does not exist.
func (r *FormationRepo) GetByID(ctx context.Context, id int) (*models.Formation, error) {
	query := `
		SELECT ` + formationColumns + `
		FROM formations
		WHERE id = $1
	`
	f, err := scanFormation(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create inserts a new draft formation and returns it with id set.
func (r *FormationRepo) Create(ctx context.Context, title, description string) (*models.Formation, error) {
	query := `
		INSERT INTO formations (title, description, status)
		VALUES ($1, $2, 'draft')
		RETURNING ` + formationColumns + `
	`
	return scanFormation(r.DB.QueryRowContext(ctx, query, title, description))
}

// Update updates title and description for the given id.
func (r *FormationRepo) Update(ctx context.Context, id int, title, description string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE formations SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`,
		title, description, id,
	)
	return err
}

// Delete removes a formation by id.
func (r *FormationRepo) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM formations WHERE id = $1`, id)
	return err
}

// Schedule moves a formation into the scheduled state: scheduled_publish_at is
// set to the absolute instant, the display timezone is recorded, and any prior
// published_at is cleared. Returns the updated formation, or nil when the id
// does not exist.
func (r *FormationRepo) Schedule(ctx context.Context, id int, at time.Time, tz string) (*models.Formation, error) {
	query := `
		UPDATE formations
		SET status = 'scheduled',
		    scheduled_publish_at = $1,
		    scheduled_timezone = $2,
		    published_at = NULL,
		    updated_at = NOW()
		WHERE id = $3
		RETURNING ` + formationColumns + `
	`
	f, err := scanFormation(r.DB.QueryRowContext(ctx, query, at.UTC(), tz, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Unschedule moves a formation out of the scheduled state into newStatus and
// clears the scheduling fields, maintaining the invariant that
// scheduled_publish_at is non-null only while status is scheduled.
func (r *FormationRepo) Unschedule(ctx context.Context, id int, newStatus string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE formations
		 SET status = $1, scheduled_publish_at = NULL, scheduled_timezone = NULL, updated_at = NOW()
		 WHERE id = $2`,
		newStatus, id,
	)
	return err
}

// ListDue returns scheduled formations whose publish instant has passed,
// earliest due first.
func (r *FormationRepo) ListDue(ctx context.Context, now time.Time) ([]DueFormation, error) {
	query := `
		SELECT id, title, scheduled_publish_at
		FROM formations
		WHERE status = 'scheduled'
		  AND scheduled_publish_at IS NOT NULL
		  AND scheduled_publish_at <= $1
		ORDER BY scheduled_publish_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []DueFormation
	for rows.Next() {
		var d DueFormation
		if err := rows.Scan(&d.ID, &d.Title, &d.ScheduledAt); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// Publish flips one formation from scheduled to published. The update
// re-asserts status = 'scheduled' so a racing sweep or trigger touching the
// same row becomes a no-op; the returned bool reports whether this caller won
// the transition.
func (r *FormationRepo) Publish(ctx context.Context, id int, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE formations
		 SET status = 'published',
		     published_at = $1,
		     updated_at = $1,
		     scheduled_publish_at = NULL
		 WHERE id = $2 AND status = 'scheduled'`,
		at.UTC(), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
