package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"geostrat/internal/api"
)

var _ Repository = (*SQLiteUserRepository)(nil)

// SQLiteUserRepository is the embedded-store backing. Ids are assigned here
// because SQLite has no uuid generator.
type SQLiteUserRepository struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB, logger *slog.Logger) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		logger: logger,
		db:     db,
	}
}

func (r *SQLiteUserRepository) Create(ctx context.Context, username, email string) (*User, error) {
	if verr := validateNewUser(username, email); verr != nil {
		return nil, verr
	}
	u := User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	query := `INSERT INTO users (id, username, email, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, u.ID.String(), u.Username, u.Email, u.CreatedAt); err != nil {
		if field := sqliteUniqueViolationField(err); field != "" {
			return nil, &api.ConflictError{Field: field, Message: field + " already exists"}
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &u, nil
}

func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, email, created_at FROM users WHERE username = ?`
	var (
		u  User
		id string
	)
	err := r.db.QueryRowContext(ctx, query, username).Scan(&id, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in store: %w", err)
	}
	return &u, nil
}

func sqliteUniqueViolationField(err error) string {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return ""
	}
	if strings.Contains(msg, "users.email") {
		return "email"
	}
	return "username"
}
