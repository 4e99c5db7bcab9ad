// SQLite-backed store. Profiles are stored as one JSON document per
// user; the food log is relational so day queries stay cheap.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/calorico-bot/calorico/internal/models"
)

// DefaultDirPermissions defines the default permissions for database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at the
// DSN path and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("SQLite store ready", "path", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveProfile(p models.Profile) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile %d: %w", p.UserID, err)
	}
	_, err = s.db.Exec(`INSERT INTO profiles (user_id, profile, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET profile = excluded.profile, updated_at = CURRENT_TIMESTAMP`,
		p.UserID, string(doc))
	if err != nil {
		slog.Error("SQLiteStore SaveProfile failed", "error", err, "userID", p.UserID)
		return fmt.Errorf("failed to save profile %d: %w", p.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) LoadProfile(userID int64) (models.Profile, error) {
	var doc string
	err := s.db.QueryRow(`SELECT profile FROM profiles WHERE user_id = ?`, userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore LoadProfile failed", "error", err, "userID", userID)
		return models.Profile{}, fmt.Errorf("failed to load profile %d: %w", userID, err)
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return models.Profile{}, fmt.Errorf("unmarshal profile %d: %w", userID, err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProfiles() ([]models.Profile, error) {
	rows, err := s.db.Query(`SELECT profile FROM profiles`)
	if err != nil {
		slog.Error("SQLiteStore ListProfiles query failed", "error", err)
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

func (s *SQLiteStore) AppendFoodLog(userID int64, e models.EatenEntry) error {
	_, err := s.db.Exec(`INSERT INTO food_log (user_id, day, description, calories) VALUES (?, ?, ?, ?)`,
		userID, e.Day, e.Description, e.Calories)
	if err != nil {
		slog.Error("SQLiteStore AppendFoodLog failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to insert food log entry for %d: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) QueryFoodLog(userID int64, day string) ([]models.EatenEntry, error) {
	rows, err := s.db.Query(`SELECT description, calories, day FROM food_log WHERE user_id = ? AND day = ? ORDER BY id`,
		userID, day)
	if err != nil {
		slog.Error("SQLiteStore QueryFoodLog query failed", "error", err, "userID", userID)
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

func (s *SQLiteStore) SaveDaySummary(userID int64, sum models.DaySummary) error {
	doc, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal day summary for %d: %w", userID, err)
	}
	_, err = s.db.Exec(`INSERT INTO day_summaries (user_id, day, summary) VALUES (?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET summary = excluded.summary`,
		userID, sum.Day, string(doc))
	if err != nil {
		slog.Error("SQLiteStore SaveDaySummary failed", "error", err, "userID", userID)
		return fmt.Errorf("failed to save day summary for %d: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) LoadDaySummary(userID int64, day string) (models.DaySummary, error) {
	var doc string
	err := s.db.QueryRow(`SELECT summary FROM day_summaries WHERE user_id = ? AND day = ?`, userID, day).Scan(&doc)
	if err == sql.ErrNoRows {
		return models.DaySummary{}, ErrNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore LoadDaySummary failed", "error", err, "userID", userID)
		return models.DaySummary{}, fmt.Errorf("failed to load day summary for %d: %w", userID, err)
	}
	var sum models.DaySummary
	if err := json.Unmarshal([]byte(doc), &sum); err != nil {
		return models.DaySummary{}, fmt.Errorf("unmarshal day summary for %d: %w", userID, err)
	}
	return sum, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
