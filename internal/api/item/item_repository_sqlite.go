package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"geostrat/internal/api"
)

var _ Repository = (*SQLiteItemRepository)(nil)

// SQLiteItemRepository is the embedded-store backing of Repository. Ids and
// creation timestamps are assigned here rather than by the database.
type SQLiteItemRepository struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewSQLiteItemRepository(db *sql.DB, logger *slog.Logger) *SQLiteItemRepository {
	return &SQLiteItemRepository{
		logger: logger,
		db:     db,
	}
}

func (r *SQLiteItemRepository) Create(ctx context.Context, p Payload) (*Item, error) {
	it := Item{
		ID:          uuid.New(),
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	query := `
        INSERT INTO strategic_items (id, name, description, created_by, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	if _, err := r.db.ExecContext(ctx, query, it.ID.String(), it.Name, it.Description, it.CreatedBy, it.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return &it, nil
}

func (r *SQLiteItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	query := `
        SELECT id, name, description, created_by, created_at
        FROM strategic_items
        WHERE id = ?
    `
	return r.scanOne(r.db.QueryRowContext(ctx, query, id.String()))
}

func (r *SQLiteItemRepository) List(ctx context.Context, createdBy string) ([]Item, error) {
	query := `
        SELECT id, name, description, created_by, created_at
        FROM strategic_items
    `
	args := []any{}
	if createdBy != "" {
		query += ` WHERE created_by = ?`
		args = append(args, createdBy)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var (
			it Item
			id string
		)
		if err := rows.Scan(&id, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if it.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid item id in store: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading item rows: %w", err)
	}
	return items, nil
}

func (r *SQLiteItemRepository) Update(ctx context.Context, id uuid.UUID, p Payload) (*Item, error) {
	query := `
        UPDATE strategic_items
        SET name = ?, description = ?, created_by = ?
        WHERE id = ?
    `
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.CreatedBy, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return nil, api.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteItemRepository) Delete(ctx context.Context, id uuid.UUID) (*Item, error) {
	it, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM strategic_items WHERE id = ?`, id.String()); err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	return it, nil
}

func (r *SQLiteItemRepository) ListCreators(ctx context.Context) ([]string, error) {
	query := `
        SELECT DISTINCT created_by
        FROM strategic_items
        WHERE created_by <> ''
        ORDER BY created_by ASC
    `
	rows, err := r.db.QueryContext(ctx, query)
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

func (r *SQLiteItemRepository) scanOne(row *sql.Row) (*Item, error) {
	var (
		it Item
		id string
	)
	err := row.Scan(&id, &it.Name, &it.Description, &it.CreatedBy, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	if it.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid item id in store: %w", err)
	}
	return &it, nil
}
