package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"minesweeper/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardSnapshot(t *testing.T) {
	t.Run("Replays a finished game", func(t *testing.T) {
		// Given: a won game serialized to YAML
		f := newFixture(t, WithSeed(1234))
		f.win(t)

		out, err := f.session.BoardSnapshot().Serialize()
		require.NoError(t, err)
		assert.Contains(t, out, "seed: 1234")
		assert.Contains(t, out, "difficulty: easy")

		// When: the snapshot is loaded into a new session
		snapshot, err := LoadSnapshot(out)
		require.NoError(t, err)
		replay, err := NewSessionFromSnapshot(player, snapshot, WithClock(&manualClock{}))
		require.NoError(t, err)
		defer replay.Close()

		// Then: the layout is fresh and the same moves win again
		snap := replay.Snapshot()
		assert.Equal(t, PhaseNotStarted, snap.Phase)
		assert.Equal(t, 10, snap.RemainingMines)

		require.NoError(t, replay.Reveal(3, 0))
		require.NoError(t, replay.Reveal(3, 6))
		for _, p := range pockets {
			require.NoError(t, replay.Reveal(p.Row, p.Col))
		}
		assert.Equal(t, PhaseWon, replay.Phase())
	})

	t.Run("Switching difficulty leaves the replay behind", func(t *testing.T) {
		// Given: a session replaying an easy layout
		snapshot := &BoardSnapshot{Seed: 77, Difficulty: "easy", SerializedBoard: serializeBoard(walledLayout(t))}
		replay, err := NewSessionFromSnapshot(player, snapshot, WithClock(&manualClock{}))
		require.NoError(t, err)
		defer replay.Close()

		// When: the player starts a medium game
		require.NoError(t, replay.Reset(models.DifficultyMedium))
		require.NoError(t, replay.Reveal(5, 5))

		// Then: a fresh medium board is generated around the first click
		snap := replay.Snapshot()
		assert.Equal(t, PhaseInProgress, snap.Phase)
		assert.Equal(t, models.DifficultyMedium, snap.Difficulty)
		assert.Len(t, snap.Cells, 12)
		assert.Equal(t, CellRevealed, snap.Cells[5][5].State)

		// And: going back to easy generates too, from the same seed
		require.NoError(t, replay.Reset(models.DifficultyEasy))
		require.NoError(t, replay.Reveal(0, 4))
		assert.Contains(t, []Phase{PhaseInProgress, PhaseWon}, replay.Phase())
	})

	t.Run("Keeps the recorded mine under the first click", func(t *testing.T) {
		snapshot := &BoardSnapshot{Difficulty: "easy", SerializedBoard: serializeBoard(walledLayout(t))}
		replay, err := NewSessionFromSnapshot(player, snapshot, WithClock(&manualClock{}))
		require.NoError(t, err)
		defer replay.Close()

		require.NoError(t, replay.Reveal(0, 4))

		assert.Equal(t, PhaseLost, replay.Phase())
	})

	t.Run("Serializes cell state", func(t *testing.T) {
		f := newFixture(t)
		f.session.ToggleFlag(0, 6)
		f.session.ToggleFlag(0, 7)
		require.NoError(t, f.session.Reveal(3, 0))

		rows := f.session.BoardSnapshot().SerializedBoard

		assert.Equal(t, "oooo*.Ff", rows[:8])
	})

	t.Run("Rejects malformed boards", func(t *testing.T) {
		cases := map[string]string{
			"empty":        "",
			"ragged":       "...\n..",
			"unknown cell": "..?\n...",
		}
		for name, board := range cases {
			_, err := (&BoardSnapshot{SerializedBoard: board}).Layout()

			assert.ErrorIs(t, err, ErrInvalidConfiguration, name)
		}
	})

	t.Run("Rejects a layout that does not fit the difficulty", func(t *testing.T) {
		snapshot := &BoardSnapshot{Difficulty: "easy", SerializedBoard: "*..\n...\n..."}

		_, err := NewSessionFromSnapshot(player, snapshot)

		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("Rejects an unknown difficulty", func(t *testing.T) {
		snapshot := &BoardSnapshot{Difficulty: "expert", SerializedBoard: "*.."}

		_, err := NewSessionFromSnapshot(player, snapshot)

		assert.ErrorIs(t, err, models.ErrInvalidDifficulty)
	})
}

func TestSession_SaveSnapshot(t *testing.T) {
	at := time.Date(2024, 5, 17, 9, 30, 5, 0, time.UTC)

	t.Run("Writes a finished game", func(t *testing.T) {
		// Given: a lost game
		f := newFixture(t, WithSeed(99))
		require.NoError(t, f.session.Reveal(0, 4))
		dir := filepath.Join(t.TempDir(), "replays")

		// When: the board is saved
		path, err := f.session.SaveSnapshot(dir, at)

		// Then: the file name records time and outcome and the content loads back
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "20240517_093005_loss_"+f.session.ID().String()+".yaml"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		snapshot, err := LoadSnapshot(string(data))
		require.NoError(t, err)
		assert.Equal(t, int64(99), snapshot.Seed)
		assert.Contains(t, snapshot.SerializedBoard, "X")
	})

	t.Run("Names a won game", func(t *testing.T) {
		f := newFixture(t)
		f.win(t)

		path, err := f.session.SaveSnapshot(t.TempDir(), at)

		require.NoError(t, err)
		assert.Contains(t, filepath.Base(path), "_win_")
	})

	t.Run("Refuses a game in progress", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.session.Reveal(3, 0))

		_, err := f.session.SaveSnapshot(t.TempDir(), at)

		assert.Error(t, err)
	})
}
