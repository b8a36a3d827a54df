package item

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"geostrat/internal/api"
)

var _ Repository = (*PostgresItemRepository)(nil)

// Repository is the persistence contract for strategic items.
type Repository interface {
	Create(ctx context.Context, p Payload) (*Item, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	// List returns items newest first, optionally filtered by creator.
	// An empty createdBy means no filter.
	List(ctx context.Context, createdBy string) ([]Item, error)
	Update(ctx context.Context, id uuid.UUID, p Payload) (*Item, error)
	Delete(ctx context.Context, id uuid.UUID) (*Item, error)
	ListCreators(ctx context.Context) ([]string, error)
}

type PostgresItemRepository struct {
	logger *slog.Logger
	db     api.PGXQuerier
}

func NewPostgresItemRepository(db api.PGXQuerier, logger *slog.Logger) *PostgresItemRepository {
	return &PostgresItemRepository{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresItemRepository) Create(ctx context.Context, p Payload) (*Item, error) {
	query := `
        INSERT INTO strategic_items (name, description, created_by)
        VALUES ($1, $2, $3)
        RETURNING id, name, description, created_by, created_at
    `
	var it Item
	err := r.db.QueryRow(ctx, query, p.Name, p.Description, p.CreatedBy).Scan(
		&it.ID, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return &it, nil
}

func (r *PostgresItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := `
        SELECT id, name, description, created_by, created_at
        FROM strategic_items
        WHERE id = $1
    `
	var it Item
	err := r.db.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return &it, nil
}

func (r *PostgresItemRepository) List(ctx context.Context, createdBy string) ([]Item, error) {
	query := `
        SELECT id, name, description, created_by, created_at
        FROM strategic_items
    `
	args := []any{}
	if createdBy != "" {
		query += ` WHERE created_by = $1`
		args = append(args, createdBy)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading item rows: %w", err)
	}
	return items, nil
}

func (r *PostgresItemRepository) Update(ctx context.Context, id uuid.UUID, p Payload) (*Item, error) {
	query := `
        UPDATE strategic_items
        SET name = $2, description = $3, created_by = $4
        WHERE id = $1
        RETURNING id, name, description, created_by, created_at
    `
	var it Item
	err := r.db.QueryRow(ctx, query, id, p.Name, p.Description, p.CreatedBy).Scan(
		&it.ID, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &it, nil
}

func (r *PostgresItemRepository) Delete(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := `
        DELETE FROM strategic_items
        WHERE id = $1
        RETURNING id, name, description, created_by, created_at
    `
	var it Item
	err := r.db.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	return &it, nil
}

func (r *PostgresItemRepository) ListCreators(ctx context.Context) ([]string, error) {
	query := `
        SELECT DISTINCT created_by
        FROM strategic_items
        WHERE created_by <> ''
        ORDER BY created_by ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list creators: %w", err)
	}
	defer rows.Close()

	creators := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan creator row: %w", err)
		}
		creators = append(creators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading creator rows: %w", err)
	}
	return creators, nil
}
