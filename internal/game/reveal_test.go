package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReveal(t *testing.T) {
	t.Run("Flood fills the zero region and its border", func(t *testing.T) {
		board := layout(t,
			".....",
			".....",
			".....",
			"....*",
		)

		result := board.Reveal(0, 0)

		assert.False(t, result.HitMine)
		assert.Len(t, result.Revealed, 19)
		assert.Equal(t, 19, board.RevealedCount())
		assert.True(t, board.Cleared())
		assert.Equal(t, 1, board.Cells[2][3].Value)
		assert.True(t, board.Cells[2][3].Revealed)
		assert.False(t, board.Cells[3][4].Revealed)
	})

	t.Run("Skips flagged cells", func(t *testing.T) {
		board := layout(t,
			".....",
			".....",
			".....",
			"....*",
		)
		flags := NewFlagTracker(board.MineCount)
		require.True(t, flags.Toggle(board, 0, 4))

		board.Reveal(0, 0)

		assert.False(t, board.Cells[0][4].Revealed)
		assert.True(t, board.Cells[0][4].Flagged)
		assert.Equal(t, 18, board.RevealedCount())
		assert.False(t, board.Cleared())
	})

	t.Run("Reveals a numbered cell alone", func(t *testing.T) {
		board := layout(t,
			"*..",
			"...",
			"...",
		)

		result := board.Reveal(1, 1)

		assert.Equal(t, []Position{{Row: 1, Col: 1}}, result.Revealed)
		assert.Equal(t, 1, board.RevealedCount())
	})

	t.Run("Reports a mine hit", func(t *testing.T) {
		board := layout(t,
			"*..",
			"...",
		)

		result := board.Reveal(0, 0)

		assert.True(t, result.HitMine)
		assert.Equal(t, Position{Row: 0, Col: 0}, result.Hit)
		assert.True(t, board.Cells[0][0].Revealed)
		assert.Equal(t, 0, board.RevealedCount())
	})

	t.Run("Ignores revealed and out of bounds cells", func(t *testing.T) {
		board := layout(t,
			"*..",
			"...",
		)
		board.Reveal(1, 2)
		before := board.RevealedCount()

		assert.Empty(t, board.Reveal(1, 2).Revealed)
		assert.Empty(t, board.Reveal(-1, 0).Revealed)
		assert.Empty(t, board.Reveal(0, 3).Revealed)
		assert.Equal(t, before, board.RevealedCount())
	})

	t.Run("Visits every cell of a large empty board once", func(t *testing.T) {
		board := NewBoard(16, 16, 0)
		board.placeMines(nil)

		result := board.Reveal(8, 8)

		seen := make(map[Position]bool)
		for _, p := range result.Revealed {
			assert.False(t, seen[p], "revealed %v twice", p)
			seen[p] = true
		}
		assert.Len(t, result.Revealed, 256)
		assert.True(t, board.Cleared())
	})
}

func TestFlagTracker(t *testing.T) {
	t.Run("Toggles and counts", func(t *testing.T) {
		board := layout(t,
			"*.",
			"..",
		)
		flags := NewFlagTracker(board.MineCount)

		assert.True(t, flags.Toggle(board, 0, 0))
		assert.True(t, board.Cells[0][0].Flagged)
		assert.Equal(t, 1, flags.Count())
		assert.Equal(t, 0, flags.Remaining())

		assert.True(t, flags.Toggle(board, 0, 0))
		assert.False(t, board.Cells[0][0].Flagged)
		assert.Equal(t, 1, flags.Remaining())
	})

	t.Run("Goes negative when over-flagging", func(t *testing.T) {
		board := layout(t,
			"*.",
			"..",
		)
		flags := NewFlagTracker(board.MineCount)

		flags.Toggle(board, 0, 1)
		flags.Toggle(board, 1, 0)
		flags.Toggle(board, 1, 1)

		assert.Equal(t, -2, flags.Remaining())
	})

	t.Run("Ignores revealed and out of bounds cells", func(t *testing.T) {
		board := layout(t,
			"*.",
			"..",
		)
		flags := NewFlagTracker(board.MineCount)
		board.Reveal(1, 1)

		assert.False(t, flags.Toggle(board, 1, 1))
		assert.False(t, flags.Toggle(board, 2, 0))
		assert.False(t, board.Cells[1][1].Flagged)
		assert.Equal(t, 0, flags.Count())
	})
}
