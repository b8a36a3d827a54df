package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

var _ Repository = (*SQLiteAnalysisRepository)(nil)

type SQLiteAnalysisRepository struct {
	logger *slog.Logger
	db     *sql.DB
}

func NewSQLiteAnalysisRepository(db *sql.DB, logger *slog.Logger) *SQLiteAnalysisRepository {
	return &SQLiteAnalysisRepository{
		logger: logger,
		db:     db,
	}
}

func (r *SQLiteAnalysisRepository) ListSince(ctx context.Context, startYear int) ([]Record, error) {
	query := `
        SELECT year, trade, defense, alliances
        FROM analysis_data
        WHERE year >= ?
        ORDER BY year ASC
    `
	rows, err := r.db.QueryContext(ctx, query, startYear)
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
