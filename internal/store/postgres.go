// PostgreSQL-backed store, mirroring the SQLite schema.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/calorico-bot/calorico/internal/models"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL at the DSN and applies
// migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Postgres store ready")
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveProfile(p models.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile %d: %w", p.UserID, err)
	}
	_, err = s.db.Exec(`INSERT INTO profiles (user_id, profile, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = NOW()`,
		p.UserID, string(doc))
	if err != nil {
		slog.Error("PostgresStore SaveProfile failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to save profile %d: %w", p.UserID, err)
	}
	return nil
}

func (s *PostgresStore) LoadProfile(userID int64) (models.Profile, error) {
	var doc string
	err := s.db.QueryRow(`SELECT profile FROM profiles WHERE user_id = $1`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore LoadProfile failed", "error", err, "userID", userID)
		return models.Profile{}, fmt.Errorf("failed to load profile %d: %w", userID, err)
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return models.Profile{}, fmt.Errorf("unmarshal profile %d: %w", userID, err)
	}
	return p, nil
}

func (s *PostgresStore) ListProfiles() ([]models.Profile, error) {
	rows, err := s.db.Query(`SELECT profile FROM profiles`)
	if err != nil {
		slog.Error("PostgresStore ListProfiles query failed", "error", err)
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		var p models.Profile
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("unmarshal profile row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AppendFoodLog(userID int64, e models.EatenEntry) error {
	_, err := s.db.Exec(`INSERT INTO food_log (user_id, day, description, calories) VALUES ($1, $2, $3, $4)`,
		userID, e.Day, e.Description, e.Calories)
	if err != nil {
		slog.Error("PostgresStore AppendFoodLog failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to insert food log entry for %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) QueryFoodLog(userID int64, day string) ([]models.EatenEntry, error) {
	rows, err := s.db.Query(`SELECT description, calories, day FROM food_log WHERE user_id = $1 AND day = $2 ORDER BY id`,
		userID, day)
	if err != nil {
		slog.Error("PostgresStore QueryFoodLog query failed", "error", err, "userID", userID)
		return nil, fmt.Errorf("failed to query food log for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []models.EatenEntry
	for rows.Next() {
		var e models.EatenEntry
		if err := rows.Scan(&e.Description, &e.Calories, &e.Day); err != nil {
			return nil, fmt.Errorf("failed to scan food log row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate food log rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SaveDaySummary(userID int64, sum models.DaySummary) error {
	doc, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal day summary for %d: %w", userID, err)
	}
	_, err = s.db.Exec(`INSERT INTO day_summaries (user_id, day, summary) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO UPDATE SET summary = EXCLUDED.summary`,
		userID, sum.Day, string(doc))
	if err != nil {
		slog.Error("PostgresStore SaveDaySummary failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to save day summary for %d: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) LoadDaySummary(userID int64, day string) (models.DaySummary, error) {
	var doc string
	err := s.db.QueryRow(`SELECT summary FROM day_summaries WHERE user_id = $1 AND day = $2`, userID, day).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.DaySummary{}, ErrNotFound
	}
	if err != nil {
		slog.Error("PostgresStore LoadDaySummary failed", "error", err, "userID", userID)
		return models.DaySummary{}, fmt.Errorf("failed to load day summary for %d: %w", userID, err)
	}
	var sum models.DaySummary
	if err := json.Unmarshal([]byte(doc), &sum); err != nil {
		return models.DaySummary{}, fmt.Errorf("unmarshal day summary for %d: %w", userID, err)
	}
	return sum, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
