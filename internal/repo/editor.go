package repo

import (
	"context"
	"database/sql"

	"github.com/kreyolab/formations/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// EditorRepo persists admin back-office accounts.
type EditorRepo struct {
	db *sql.DB
}

// NewEditorRepo returns a new EditorRepo.
func NewEditorRepo(db *sql.DB) *EditorRepo {
	return &EditorRepo{db: db}
}

// GetByUsername returns the editor with the given username.
func (r *EditorRepo) GetByUsername(ctx context.Context, username string) (*models.Editor, error) {
	e := &models.Editor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, COALESCE(password_hash, '') FROM editors WHERE username = $1`,
		username,
	).Scan(&e.ID, &e.Username, &e.PasswordHash)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new editor. The password is stored as a bcrypt hash.
func (r *EditorRepo) Create(ctx context.Context, username, password string) (*models.Editor, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	e := &models.Editor{}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO editors (username, password_hash) VALUES ($1, $2) RETURNING id, username`,
		username, string(hash),
	).Scan(&e.ID, &e.Username)
	if err != nil {
		return nil, err
	}
	return e, nil
}
