package database

import (
	"context"
	"errors"
	"fmt"

	"minesweeper/internal/config"
	"minesweeper/pkg/models"
)

// ErrInvalidScore is returned for a score that must not be stored
var ErrInvalidScore = errors.New("invalid score")

// Database defines the interface for leaderboard storage
type Database interface {
	// SubmitScore stores seconds as the best time of fid on difficulty unless
	// an equal or faster time is already stored.
	SubmitScore(ctx context.Context, fid int64, username string, difficulty models.Difficulty, seconds int) (*models.SubmitResult, error)

	// TopScores returns the fastest times, ties broken by insertion order
	TopScores(ctx context.Context, difficulty models.Difficulty, limit int) ([]models.LeaderboardEntry, error)

	// UserScores returns the best time of fid per difficulty
	UserScores(ctx context.Context, fid int64) (map[models.Difficulty]int, error)

	// Schema management
	AutoMigrate(ctx context.Context) error

	// Connection management
	Close() error
}

// New opens the store selected by cfg.Driver
func New(cfg config.DatabaseConfig) (Database, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLiteDB(cfg.SQLitePath)
	case config.DriverGorm:
		return NewGormDB(cfg.DSN())
	case config.DriverPostgres:
		return NewPostgresDB(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func validateScore(fid int64, username string, difficulty models.Difficulty, seconds int) error {
	if !difficulty.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidScore, models.ErrInvalidDifficulty)
	}
	if fid <= 0 || username == "" {
		return fmt.Errorf("%w: missing user", ErrInvalidScore)
	}
	if seconds <= 0 {
		return fmt.Errorf("%w: time must be positive, got %d", ErrInvalidScore, seconds)
	}
	return nil
}
