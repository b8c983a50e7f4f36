package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"minesweeper/pkg/models"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteDB is an embedded store for local runs and tests
type SQLiteDB struct {
	db *sql.DB
}

// Ensure SQLiteDB implements Database interface
var _ Database = (*SQLiteDB)(nil)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_fid INTEGER NOT NULL,
		username TEXT NOT NULL,
		difficulty TEXT NOT NULL CHECK (difficulty IN ('easy', 'medium', 'hard')),
		time INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (user_fid, difficulty)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_scores_difficulty_time ON scores(difficulty, time ASC);`,
	`CREATE INDEX IF NOT EXISTS idx_scores_user_fid ON scores(user_fid);`,
}

// NewSQLiteDB opens or creates the database file at path. ":memory:" gives a
// private in-memory database.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: writers serialize and an in-memory database stays alive
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Opened SQLite database at %s", path)

	return &SQLiteDB{db: db}, nil
}

// AutoMigrate creates the scores table and its indexes
func (s *SQLiteDB) AutoMigrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// SubmitScore reads the stored best and writes the new time inside one
// transaction.
func (s *SQLiteDB) SubmitScore(ctx context.Context, fid int64, username string, difficulty models.Difficulty, seconds int) (*models.SubmitResult, error) {
	if err := validateScore(fid, username, difficulty, seconds); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now())

	var current int
	err = tx.QueryRowContext(ctx,
		`SELECT time FROM scores WHERE user_fid = ? AND difficulty = ?`,
		fid, string(difficulty)).Scan(&current)

	isNewBest := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scores (user_fid, username, difficulty, time, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			fid, username, string(difficulty), seconds, now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert score: %w", err)
		}
		isNewBest = true
	case err != nil:
		return nil, fmt.Errorf("failed to read current score: %w", err)
	case seconds < current:
		_, err = tx.ExecContext(ctx,
			`UPDATE scores SET username = ?, time = ?, created_at = ?, updated_at = ? WHERE user_fid = ? AND difficulty = ?`,
			username, seconds, now, now, fid, string(difficulty))
		if err != nil {
			return nil, fmt.Errorf("failed to update score: %w", err)
		}
		isNewBest = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit score: %w", err)
	}

	return &models.SubmitResult{IsNewBest: isNewBest}, nil
}

// TopScores retrieves the fastest times for a difficulty
func (s *SQLiteDB) TopScores(ctx context.Context, difficulty models.Difficulty, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_fid, username, time, created_at
		FROM scores
		WHERE difficulty = ?
		ORDER BY time ASC, id ASC
		LIMIT ?`, string(difficulty), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry models.LeaderboardEntry
		var createdAt string
		if err := rows.Scan(&entry.UserFID, &entry.Username, &entry.Time, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

// UserScores retrieves the best time of a user per difficulty
func (s *SQLiteDB) UserScores(ctx context.Context, fid int64) (map[models.Difficulty]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT difficulty, time FROM scores WHERE user_fid = ?`, fid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user scores: %w", err)
	}
	defer rows.Close()

	return scanUserScores(rows)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
