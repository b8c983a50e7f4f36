package database

import (
	"context"
	"fmt"
	"time"

	"minesweeper/pkg/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormDB wraps the GORM database connection and implements Database interface
type GormDB struct {
	db *gorm.DB
}

// Ensure GormDB implements Database interface
var _ Database = (*GormDB)(nil)

// NewGormDB creates a new GORM database connection
func NewGormDB(dsn string) (*GormDB, error) {
	// Configure GORM logger
	gormLogger := logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL database with GORM")

	return &GormDB{db: db}, nil
}

// AutoMigrate runs database migrations
func (g *GormDB) AutoMigrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&models.GormScore{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

// Close closes the database connection
func (g *GormDB) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SubmitScore upserts the best time in one statement. The conflict update
// only applies when the new time is strictly faster, so the affected row
// count tells whether this is a new best.
func (g *GormDB) SubmitScore(ctx context.Context, fid int64, username string, difficulty models.Difficulty, seconds int) (*models.SubmitResult, error) {
	if err := validateScore(fid, username, difficulty, seconds); err != nil {
		return nil, err
	}

	score := &models.GormScore{
		UserFID:    fid,
		Username:   username,
		Difficulty: string(difficulty),
		Time:       seconds,
	}

	result := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_fid"}, {Name: "difficulty"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "time", "created_at", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "scores.time > EXCLUDED.time"},
		}},
	}).Create(score)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to submit score: %w", result.Error)
	}

	return &models.SubmitResult{IsNewBest: result.RowsAffected > 0}, nil
}

// TopScores retrieves the fastest times for a difficulty
func (g *GormDB) TopScores(ctx context.Context, difficulty models.Difficulty, limit int) ([]models.LeaderboardEntry, error) {
	var scores []models.GormScore
	result := g.db.WithContext(ctx).
		Where("difficulty = ?", string(difficulty)).
		Order("time ASC").
		Order("id ASC").
		Limit(limit).
		Find(&scores)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", result.Error)
	}

	entries := make([]models.LeaderboardEntry, 0, len(scores))
	for i := range scores {
		entries = append(entries, scores[i].ToLeaderboardEntry())
	}
	return entries, nil
}

// UserScores retrieves the best time of a user per difficulty
func (g *GormDB) UserScores(ctx context.Context, fid int64) (map[models.Difficulty]int, error) {
	var scores []models.GormScore
	result := g.db.WithContext(ctx).
		Select("difficulty", "time").
		Where("user_fid = ?", fid).
		Find(&scores)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get user scores: %w", result.Error)
	}

	best := make(map[models.Difficulty]int, len(scores))
	for _, s := range scores {
		best[models.Difficulty(s.Difficulty)] = s.Time
	}
	return best, nil
}

// GetDB returns the underlying GORM database instance
func (g *GormDB) GetDB() *gorm.DB {
	return g.db
}
