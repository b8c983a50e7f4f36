package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minesweeper/internal/cache"
	"minesweeper/internal/config"
	"minesweeper/internal/database"
	"minesweeper/pkg/models"

	log "github.com/sirupsen/logrus"
)

// Service reads and writes best times, keeping the optional leaderboard cache
// in step with the store.
type Service struct {
	db    database.Database
	cache cache.Cache
	ttl   time.Duration
	limit int
}

// NewService creates a leaderboard service. redisCache may be nil.
func NewService(db database.Database, redisCache cache.Cache, cfg config.LeaderboardConfig) *Service {
	return &Service{
		db:    db,
		cache: redisCache,
		ttl:   time.Duration(cfg.CacheTTL) * time.Second,
		limit: cfg.MaxEntries,
	}
}

// Limit returns the number of entries served per leaderboard
func (s *Service) Limit() int {
	return s.limit
}

// Submit records a finished game
func (s *Service) Submit(ctx context.Context, player models.Player, difficulty models.Difficulty, seconds int) (*models.SubmitResult, error) {
	result, err := s.db.SubmitScore(ctx, player.FID, player.Username, difficulty, seconds)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"fid":        player.FID,
		"difficulty": difficulty,
		"time":       seconds,
		"new_best":   result.IsNewBest,
	}).Info("Score submitted")

	if result.IsNewBest && s.cache != nil && s.ttl > 0 {
		if err := s.cache.InvalidateLeaderboard(ctx, difficulty); err != nil {
			log.WithError(err).Warnf("Failed to invalidate %s leaderboard cache", difficulty)
		}
	}

	return result, nil
}

// Top returns the fastest times for difficulty, from cache when possible
func (s *Service) Top(ctx context.Context, difficulty models.Difficulty) ([]models.LeaderboardEntry, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidDifficulty, difficulty)
	}

	useCache := s.cache != nil && s.ttl > 0
	if useCache {
		entries, err := s.cache.GetLeaderboard(ctx, difficulty)
		if err == nil {
			return entries, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.WithError(err).Warnf("Failed to read %s leaderboard cache", difficulty)
		}
	}

	entries, err := s.db.TopScores(ctx, difficulty, s.limit)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cache.SetLeaderboard(ctx, difficulty, entries, s.ttl); err != nil {
			log.WithError(err).Warnf("Failed to cache %s leaderboard", difficulty)
		}
	}

	return entries, nil
}

// UserBest returns the best time of fid per difficulty
func (s *Service) UserBest(ctx context.Context, fid int64) (map[models.Difficulty]int, error) {
	return s.db.UserScores(ctx, fid)
}
