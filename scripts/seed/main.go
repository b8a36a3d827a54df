// Command seed populates the configured store with a starter data set:
// a handful of accounts, a few strategic items and a decade of analysis
// figures. Safe to re-run; existing rows are left untouched.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	database "geostrat/app/db"
	"geostrat/config"
)

type seedUser struct {
	Username string
	Email    string
}

type seedItem struct {
	Name        string
	Description string
	CreatedBy   string
}

var seedUsers = []seedUser{
	{Username: "admin", Email: "admin@example.com"},
	{Username: "researcher", Email: "researcher@example.com"},
	{Username: "analyst", Email: "analyst@example.com"},
	{Username: "editor", Email: "editor@example.com"},
}

var seedItems = []seedItem{
	{
		Name:        "Quad Alliance",
		Description: "Strategic partnership between India, USA, Japan, and Australia focusing on Indo-Pacific security cooperation.",
		CreatedBy:   "admin",
	},
	{
		Name:        "BRICS",
		Description: "Economic cooperation bloc of Brazil, Russia, India, China, and South Africa with expanding membership.",
		CreatedBy:   "admin",
	},
	{
		Name:        "Chabahar Port",
		Description: "Strategic port development project in Iran providing India access to Afghanistan and Central Asia.",
		CreatedBy:   "admin",
	},
}

type analysisRow struct {
	Year      int
	Trade     float64
	Defense   float64
	Alliances float64
}

// seedAnalysis builds ten years of figures ending at the current year,
// with a trade dip in years four and five of the window.
func seedAnalysis(currentYear int) []analysisRow {
	rows := make([]analysisRow, 0, 10)
	for i := 0; i < 10; i++ {
		trade := 50 + float64(i)*5
		if i == 3 || i == 4 {
			trade -= 10
		}
		rows = append(rows, analysisRow{
			Year:      currentYear - 9 + i,
			Trade:     trade,
			Defense:   20 + float64(i)*2.5,
			Alliances: 5 + float64(i)*0.8,
		})
	}
	return rows
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch cfg.Repositories.Driver {
	case "", "postgres":
		if err := seedPostgres(ctx, &cfg, logger); err != nil {
			logger.Error("Seeding failed", slog.Any("error", err))
			os.Exit(1)
		}
	case "sqlite":
		if err := seedSQLite(ctx, &cfg, logger); err != nil {
			logger.Error("Seeding failed", slog.Any("error", err))
			os.Exit(1)
		}
	default:
		logger.Error("Unknown repositories driver", slog.String("driver", cfg.Repositories.Driver))
		os.Exit(1)
	}

	logger.Info("Seeding complete")
}

func seedPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	defer pool.Close()

	return seedPool(ctx, pool, logger)
}

func seedPool(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	for _, u := range seedUsers {
		_, err := pool.Exec(ctx, `
            INSERT INTO users (username, email)
            VALUES ($1, $2)
            ON CONFLICT (username) DO NOTHING
        `, u.Username, u.Email)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}
	logger.Info("Seeded users", slog.Int("count", len(seedUsers)))

	for _, it := range seedItems {
		_, err := pool.Exec(ctx, `
            INSERT INTO strategic_items (name, description, created_by)
            SELECT $1, $2, $3
            WHERE NOT EXISTS (SELECT 1 FROM strategic_items WHERE name = $1)
        `, it.Name, it.Description, it.CreatedBy)
		if err != nil {
			return fmt.Errorf("seed item %q: %w", it.Name, err)
		}
	}
	logger.Info("Seeded items", slog.Int("count", len(seedItems)))

	rows := seedAnalysis(time.Now().UTC().Year())
	for _, row := range rows {
		_, err := pool.Exec(ctx, `
            INSERT INTO analysis_data (year, trade, defense, alliances)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (year) DO NOTHING
        `, row.Year, row.Trade, row.Defense, row.Alliances)
		if err != nil {
			return fmt.Errorf("seed analysis year %d: %w", row.Year, err)
		}
	}
	logger.Info("Seeded analysis data", slog.Int("years", len(rows)))
	return nil
}

func seedSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.InitSQLite(ctx, cfg.Repositories.SQLite.Path, logger)
	if err != nil {
		return fmt.Errorf("sqlite init: %w", err)
	}
	defer db.Close()

	return seedDB(ctx, db, logger)
}

func seedDB(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	now := time.Now().UTC()
	for _, u := range seedUsers {
		_, err := db.ExecContext(ctx, `
            INSERT OR IGNORE INTO users (id, username, email, created_at)
            VALUES (?, ?, ?, ?)
        `, uuid.New().String(), u.Username, u.Email, now)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}
	logger.Info("Seeded users", slog.Int("count", len(seedUsers)))

	for _, it := range seedItems {
		_, err := db.ExecContext(ctx, `
            INSERT INTO strategic_items (id, name, description, created_by, created_at)
            SELECT ?, ?, ?, ?, ?
            WHERE NOT EXISTS (SELECT 1 FROM strategic_items WHERE name = ?)
        `, uuid.New().String(), it.Name, it.Description, it.CreatedBy, now, it.Name)
		if err != nil {
			return fmt.Errorf("seed item %q: %w", it.Name, err)
		}
	}
	logger.Info("Seeded items", slog.Int("count", len(seedItems)))

	rows := seedAnalysis(now.Year())
	for _, row := range rows {
		_, err := db.ExecContext(ctx, `
            INSERT OR IGNORE INTO analysis_data (year, trade, defense, alliances)
            VALUES (?, ?, ?, ?)
        `, row.Year, row.Trade, row.Defense, row.Alliances)
		if err != nil {
			return fmt.Errorf("seed analysis year %d: %w", row.Year, err)
		}
	}
	logger.Info("Seeded analysis data", slog.Int("years", len(rows)))
	return nil
}
