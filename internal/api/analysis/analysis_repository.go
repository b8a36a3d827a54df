package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"geostrat/internal/api"
)

var _ Repository = (*PostgresAnalysisRepository)(nil)

// Repository reads the analysis time series.
type Repository interface {
	// ListSince returns records with year >= startYear, year ascending.
	ListSince(ctx context.Context, startYear int) ([]Record, error)
}

type PostgresAnalysisRepository struct {
	logger *slog.Logger
	db     api.PGXQuerier
}

func NewPostgresAnalysisRepository(db api.PGXQuerier, logger *slog.Logger) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAnalysisRepository) ListSince(ctx context.Context, startYear int) ([]Record, error) {
	query := `
        SELECT year, trade, defense, alliances
        FROM analysis_data
        WHERE year >= $1
        ORDER BY year ASC
    `
	rows, err := r.db.Query(ctx, query, startYear)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis data: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Year, &rec.Trade, &rec.Defense, &rec.Alliances); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading analysis rows: %w", err)
	}
	return records, nil
}
