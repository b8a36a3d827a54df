package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"geostrat/internal/api"
)

var _ Repository = (*PostgresUserRepository)(nil)

// Repository persists user records. Username and email are globally unique.
type Repository interface {
	Create(ctx context.Context, username, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type PostgresUserRepository struct {
	logger *slog.Logger
	db     api.PGXQuerier
}

func NewPostgresUserRepository(db api.PGXQuerier, logger *slog.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresUserRepository) Create(ctx context.Context, username, email string) (*User, error) {
	if verr := validateNewUser(username, email); verr != nil {
		return nil, verr
	}
	query := `
        INSERT INTO users (username, email)
        VALUES ($1, $2)
        RETURNING id, username, email, created_at
    `
	var u User
	err := r.db.QueryRow(ctx, query, username, email).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if conflict := uniqueViolationField(err); conflict != "" {
			return nil, &api.ConflictError{Field: conflict, Message: conflict + " already exists"}
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
        SELECT id, username, email, created_at
        FROM users
        WHERE username = $1
    `
	var u User
	err := r.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// uniqueViolationField maps a Postgres unique violation to the offending field.
func uniqueViolationField(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return ""
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return "email"
	default:
		return "username"
	}
}
