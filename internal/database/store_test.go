package database

import (
	"context"
	"sync"
	"testing"

	"minesweeper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore runs the leaderboard behaviour every implementation shares
func testStore(t *testing.T, ctx context.Context, newDB func(t *testing.T) Database) {
	t.Run("First score is a new best", func(t *testing.T) {
		db := newDB(t)

		result, err := db.SubmitScore(ctx, 1, "alice", models.DifficultyEasy, 42)

		require.NoError(t, err)
		assert.True(t, result.IsNewBest)
		scores, err := db.UserScores(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, map[models.Difficulty]int{models.DifficultyEasy: 42}, scores)
	})

	t.Run("Only a strictly faster time replaces the best", func(t *testing.T) {
		db := newDB(t)
		_, err := db.SubmitScore(ctx, 1, "alice", models.DifficultyEasy, 42)
		require.NoError(t, err)

		// Slower
		result, err := db.SubmitScore(ctx, 1, "alice", models.DifficultyEasy, 50)
		require.NoError(t, err)
		assert.False(t, result.IsNewBest)

		// Tie
		result, err = db.SubmitScore(ctx, 1, "alice", models.DifficultyEasy, 42)
		require.NoError(t, err)
		assert.False(t, result.IsNewBest)

		// Faster, under a new name
		result, err = db.SubmitScore(ctx, 1, "alice2", models.DifficultyEasy, 30)
		require.NoError(t, err)
		assert.True(t, result.IsNewBest)

		top, err := db.TopScores(ctx, models.DifficultyEasy, 10)
		require.NoError(t, err)
		require.Len(t, top, 1)
		assert.Equal(t, 30, top[0].Time)
		assert.Equal(t, "alice2", top[0].Username)
	})

	t.Run("Keeps one record per user and difficulty", func(t *testing.T) {
		db := newDB(t)
		for _, seconds := range []int{90, 80, 85, 70} {
			_, err := db.SubmitScore(ctx, 7, "bob", models.DifficultyHard, seconds)
			require.NoError(t, err)
		}
		_, err := db.SubmitScore(ctx, 7, "bob", models.DifficultyMedium, 55)
		require.NoError(t, err)

		hard, err := db.TopScores(ctx, models.DifficultyHard, 10)
		require.NoError(t, err)
		assert.Len(t, hard, 1)
		assert.Equal(t, 70, hard[0].Time)

		scores, err := db.UserScores(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, map[models.Difficulty]int{
			models.DifficultyHard:   70,
			models.DifficultyMedium: 55,
		}, scores)
	})

	t.Run("Ranks ascending with ties in insertion order", func(t *testing.T) {
		db := newDB(t)
		submissions := []struct {
			fid     int64
			name    string
			seconds int
		}{
			{1, "a", 50},
			{2, "b", 20},
			{3, "c", 50},
			{4, "d", 35},
		}
		for _, s := range submissions {
			_, err := db.SubmitScore(ctx, s.fid, s.name, models.DifficultyMedium, s.seconds)
			require.NoError(t, err)
		}

		top, err := db.TopScores(ctx, models.DifficultyMedium, 10)
		require.NoError(t, err)

		var names []string
		for _, e := range top {
			names = append(names, e.Username)
		}
		assert.Equal(t, []string{"b", "d", "a", "c"}, names)
		assert.False(t, top[0].CreatedAt.IsZero())

		limited, err := db.TopScores(ctx, models.DifficultyMedium, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("Empty results", func(t *testing.T) {
		db := newDB(t)

		top, err := db.TopScores(ctx, models.DifficultyEasy, 10)
		require.NoError(t, err)
		assert.Empty(t, top)

		scores, err := db.UserScores(ctx, 404)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("Rejects invalid scores without writing", func(t *testing.T) {
		db := newDB(t)

		_, err := db.SubmitScore(ctx, 1, "alice", models.Difficulty("expert"), 10)
		assert.ErrorIs(t, err, ErrInvalidScore)
		assert.ErrorIs(t, err, models.ErrInvalidDifficulty)

		_, err = db.SubmitScore(ctx, 1, "alice", models.DifficultyEasy, 0)
		assert.ErrorIs(t, err, ErrInvalidScore)

		_, err = db.SubmitScore(ctx, 0, "alice", models.DifficultyEasy, 10)
		assert.ErrorIs(t, err, ErrInvalidScore)

		scores, err := db.UserScores(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("Concurrent submissions keep the minimum", func(t *testing.T) {
		db := newDB(t)

		var wg sync.WaitGroup
		newBest := make(chan bool, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(seconds int) {
				defer wg.Done()
				result, err := db.SubmitScore(ctx, 9, "racer", models.DifficultyEasy, seconds)
				if assert.NoError(t, err) {
					newBest <- result.IsNewBest
				}
			}(100 - i*3)
		}
		wg.Wait()
		close(newBest)

		improved := 0
		for ok := range newBest {
			if ok {
				improved++
			}
		}
		assert.GreaterOrEqual(t, improved, 1)

		scores, err := db.UserScores(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, 43, scores[models.DifficultyEasy])
	})
}
