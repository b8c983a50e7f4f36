package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"minesweeper/pkg/models"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// PostgresDB wraps the database connection and implements Database interface
type PostgresDB struct {
	db *sql.DB
}

// Ensure PostgresDB implements Database interface
var _ Database = (*PostgresDB)(nil)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS scores (
		id BIGSERIAL PRIMARY KEY,
		user_fid BIGINT NOT NULL,
		username VARCHAR(255) NOT NULL,
		difficulty VARCHAR(10) NOT NULL CONSTRAINT chk_scores_difficulty CHECK (difficulty IN ('easy', 'medium', 'hard')),
		time INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_scores_user_difficulty ON scores (user_fid, difficulty)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_difficulty_time ON scores (difficulty, time ASC)`,
	`CREATE INDEX IF NOT EXISTS idx_scores_user_fid ON scores (user_fid)`,
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(dsn string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Successfully connected to PostgreSQL database")

	return &PostgresDB{db: db}, nil
}

// AutoMigrate creates the scores table and its indexes
func (p *PostgresDB) AutoMigrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// SubmitScore stores a best time with a conditional upsert
func (p *PostgresDB) SubmitScore(ctx context.Context, fid int64, username string, difficulty models.Difficulty, seconds int) (*models.SubmitResult, error) {
	if err := validateScore(fid, username, difficulty, seconds); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO scores (user_fid, username, difficulty, time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_fid, difficulty)
		DO UPDATE SET
			username = EXCLUDED.username,
			time = EXCLUDED.time,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
		WHERE scores.time > EXCLUDED.time`

	result, err := p.db.ExecContext(ctx, query, fid, username, string(difficulty), seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to submit score: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read submit result: %w", err)
	}

	return &models.SubmitResult{IsNewBest: affected > 0}, nil
}

// TopScores retrieves the fastest times for a difficulty
func (p *PostgresDB) TopScores(ctx context.Context, difficulty models.Difficulty, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT user_fid, username, time, created_at
		FROM scores
		WHERE difficulty = $1
		ORDER BY time ASC, id ASC
		LIMIT $2`

	rows, err := p.db.QueryContext(ctx, query, string(difficulty), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserFID, &entry.Username, &entry.Time, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}

// UserScores retrieves the best time of a user per difficulty
func (p *PostgresDB) UserScores(ctx context.Context, fid int64) (map[models.Difficulty]int, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT difficulty, time FROM scores WHERE user_fid = $1`, fid)
	if err != nil {
		return nil, fmt.Errorf("failed to get user scores: %w", err)
	}
	defer rows.Close()

	return scanUserScores(rows)
}

func scanUserScores(rows *sql.Rows) (map[models.Difficulty]int, error) {
	best := make(map[models.Difficulty]int)
	for rows.Next() {
		var difficulty string
		var seconds int
		if err := rows.Scan(&difficulty, &seconds); err != nil {
			return nil, fmt.Errorf("failed to scan user score: %w", err)
		}
		best[models.Difficulty(difficulty)] = seconds
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user scores: %w", err)
	}

	return best, nil
}
