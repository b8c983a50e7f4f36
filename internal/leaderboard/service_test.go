package leaderboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"minesweeper/internal/cache"
	"minesweeper/internal/config"
	"minesweeper/internal/database"
	"minesweeper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is a map-backed cache.Cache for tests
type memoryCache struct {
	mu          sync.Mutex
	boards      map[models.Difficulty][]models.LeaderboardEntry
	invalidated []models.Difficulty
}

var _ cache.Cache = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{boards: make(map[models.Difficulty][]models.LeaderboardEntry)}
}

func (m *memoryCache) SetLeaderboard(_ context.Context, d models.Difficulty, entries []models.LeaderboardEntry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards[d] = entries
	return nil
}

func (m *memoryCache) GetLeaderboard(_ context.Context, d models.Difficulty) ([]models.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, ok := m.boards[d]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return entries, nil
}

func (m *memoryCache) InvalidateLeaderboard(_ context.Context, d models.Difficulty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.boards, d)
	m.invalidated = append(m.invalidated, d)
	return nil
}

func (m *memoryCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (m *memoryCache) Get(context.Context, string, interface{}) error                { return cache.ErrCacheMiss }
func (m *memoryCache) Delete(context.Context, string) error                          { return nil }
func (m *memoryCache) Exists(context.Context, string) bool                           { return false }
func (m *memoryCache) Close() error                                                  { return nil }

func newService(t *testing.T, c cache.Cache) (*Service, database.Database) {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.AutoMigrate(context.Background()))

	return NewService(db, c, config.LeaderboardConfig{CacheTTL: 60, MaxEntries: 3}), db
}

func TestService_Top(t *testing.T) {
	ctx := context.Background()

	t.Run("Serves from cache until a new best invalidates it", func(t *testing.T) {
		mc := newMemoryCache()
		svc, db := newService(t, mc)
		_, err := svc.Submit(ctx, models.Player{FID: 1, Username: "alice"}, models.DifficultyEasy, 40)
		require.NoError(t, err)

		// Given: a first read fills the cache
		top, err := svc.Top(ctx, models.DifficultyEasy)
		require.NoError(t, err)
		require.Len(t, top, 1)

		// When: the store changes behind the cache
		_, err = db.SubmitScore(ctx, 2, "bob", models.DifficultyEasy, 20)
		require.NoError(t, err)

		// Then: the cached copy is served
		top, err = svc.Top(ctx, models.DifficultyEasy)
		require.NoError(t, err)
		assert.Len(t, top, 1)

		// When: a new best goes through the service
		result, err := svc.Submit(ctx, models.Player{FID: 1, Username: "alice"}, models.DifficultyEasy, 10)
		require.NoError(t, err)
		assert.True(t, result.IsNewBest)

		// Then: the cache is refreshed
		top, err = svc.Top(ctx, models.DifficultyEasy)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, "alice", top[0].Username)
		assert.Equal(t, []models.Difficulty{models.DifficultyEasy, models.DifficultyEasy}, mc.invalidated)
	})

	t.Run("Slower times leave the cache alone", func(t *testing.T) {
		mc := newMemoryCache()
		svc, _ := newService(t, mc)
		player := models.Player{FID: 1, Username: "alice"}
		_, err := svc.Submit(ctx, player, models.DifficultyHard, 40)
		require.NoError(t, err)

		result, err := svc.Submit(ctx, player, models.DifficultyHard, 41)

		require.NoError(t, err)
		assert.False(t, result.IsNewBest)
		assert.Len(t, mc.invalidated, 1)
	})

	t.Run("Limits entries and works without a cache", func(t *testing.T) {
		svc, _ := newService(t, nil)
		for i := int64(1); i <= 5; i++ {
			_, err := svc.Submit(ctx, models.Player{FID: i, Username: "p"}, models.DifficultyMedium, int(100-i))
			require.NoError(t, err)
		}

		top, err := svc.Top(ctx, models.DifficultyMedium)

		require.NoError(t, err)
		assert.Len(t, top, 3)
		assert.Equal(t, 95, top[0].Time)
		assert.Equal(t, 3, svc.Limit())
	})

	t.Run("Rejects unknown difficulty", func(t *testing.T) {
		svc, _ := newService(t, nil)

		_, err := svc.Top(ctx, "expert")

		assert.ErrorIs(t, err, models.ErrInvalidDifficulty)
	})
}

func TestService_UserBest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)
	player := models.Player{FID: 8, Username: "dora"}
	_, err := svc.Submit(ctx, player, models.DifficultyEasy, 30)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, player, models.DifficultyHard, 300)
	require.NoError(t, err)

	best, err := svc.UserBest(ctx, 8)

	require.NoError(t, err)
	assert.Equal(t, map[models.Difficulty]int{
		models.DifficultyEasy: 30,
		models.DifficultyHard: 300,
	}, best)
}
