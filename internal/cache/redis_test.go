package cache

import (
	"testing"
	"time"

	"minesweeper/pkg/models"
	"minesweeper/testing/suite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_Leaderboard(t *testing.T) {
	ctx, st := suite.NewRedis(t)
	c := NewRedisCacheFromClient(st.Redis)

	t.Run("Miss before anything is cached", func(t *testing.T) {
		_, err := c.GetLeaderboard(ctx, models.DifficultyHard)

		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Round trip and invalidate", func(t *testing.T) {
		// Given: a cached leaderboard
		entries := []models.LeaderboardEntry{
			{UserFID: 1, Username: "alice", Time: 12, CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
			{UserFID: 2, Username: "bob", Time: 15, CreatedAt: time.Date(2025, 1, 3, 3, 4, 5, 0, time.UTC)},
		}
		require.NoError(t, c.SetLeaderboard(ctx, models.DifficultyEasy, entries, time.Minute))

		// When: it is read back
		got, err := c.GetLeaderboard(ctx, models.DifficultyEasy)

		// Then: the entries match and other difficulties are untouched
		require.NoError(t, err)
		assert.Equal(t, entries, got)
		assert.True(t, c.Exists(ctx, "leaderboard:easy"))
		assert.False(t, c.Exists(ctx, "leaderboard:medium"))

		require.NoError(t, c.InvalidateLeaderboard(ctx, models.DifficultyEasy))
		_, err = c.GetLeaderboard(ctx, models.DifficultyEasy)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Entries expire", func(t *testing.T) {
		require.NoError(t, c.SetLeaderboard(ctx, models.DifficultyMedium, nil, 50*time.Millisecond))

		require.Eventually(t, func() bool {
			return !c.Exists(ctx, "leaderboard:medium")
		}, 2*time.Second, 20*time.Millisecond)
	})
}
