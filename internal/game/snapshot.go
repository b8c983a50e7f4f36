package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Cell glyphs used in serialized boards
const (
	glyphHidden       = '.'
	glyphRevealed     = 'o'
	glyphFlagged      = 'f'
	glyphMine         = '*'
	glyphFlaggedMine  = 'F'
	glyphRevealedMine = 'X'
)

// BoardSnapshot is a replayable record of a board
type BoardSnapshot struct {
	Seed            int64  `yaml:"seed"`
	Difficulty      string `yaml:"difficulty"`
	SerializedBoard string `yaml:"board"`
}

// Serialize renders the snapshot as YAML
func (snapshot *BoardSnapshot) Serialize() (string, error) {
	out, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to marshal board snapshot: %w", err)
	}
	return string(out), nil
}

// Layout rebuilds the mine layout of the snapshot as a fresh board: no cell
// is revealed or flagged.
func (snapshot *BoardSnapshot) Layout() (*Board, error) {
	rows := strings.Split(strings.TrimRight(snapshot.SerializedBoard, "\n"), "\n")
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty board", ErrInvalidConfiguration)
	}

	cols := len(rows[0])
	var mines []Position
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidConfiguration, r, len(row), cols)
		}
		for c, glyph := range row {
			switch glyph {
			case glyphMine, glyphFlaggedMine, glyphRevealedMine:
				mines = append(mines, Position{Row: r, Col: c})
			case glyphHidden, glyphRevealed, glyphFlagged:
			default:
				return nil, fmt.Errorf("%w: unknown cell %q at (%d,%d)", ErrInvalidConfiguration, glyph, r, c)
			}
		}
	}

	board := NewBoard(len(rows), cols, len(mines))
	board.placeMines(mines)
	return board, nil
}

// LoadSnapshot parses a YAML board snapshot
func LoadSnapshot(in string) (*BoardSnapshot, error) {
	var snapshot BoardSnapshot
	if err := yaml.Unmarshal([]byte(in), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse board snapshot: %w", err)
	}
	return &snapshot, nil
}

// SaveSnapshot writes the board of a finished session to dir as
// <time>_<win|loss>_<session id>.yaml and returns the file path.
func (s *Session) SaveSnapshot(dir string, at time.Time) (string, error) {
	s.mu.Lock()
	outcome := "loss"
	if s.phase == PhaseWon {
		outcome = "win"
	}
	phase := s.phase
	snapshot := &BoardSnapshot{
		Seed:            s.seed,
		Difficulty:      string(s.difficulty),
		SerializedBoard: serializeBoard(s.board),
	}
	s.mu.Unlock()

	if !phase.Terminal() {
		return "", fmt.Errorf("session %s is %s", s.id, phase)
	}

	out, err := snapshot.Serialize()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.yaml", at.Format("20060102_150405"), outcome, s.id))
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("failed to write board snapshot: %w", err)
	}
	return path, nil
}

func serializeBoard(b *Board) string {
	var sb strings.Builder
	for r, row := range b.Cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for i := range row {
			sb.WriteRune(cellGlyph(&row[i]))
		}
	}
	return sb.String()
}

func cellGlyph(cell *Cell) rune {
	switch {
	case cell.IsMine() && cell.Revealed:
		return glyphRevealedMine
	case cell.IsMine() && cell.Flagged:
		return glyphFlaggedMine
	case cell.IsMine():
		return glyphMine
	case cell.Revealed:
		return glyphRevealed
	case cell.Flagged:
		return glyphFlagged
	default:
		return glyphHidden
	}
}

// ReplayGenerator hands out copies of a fixed layout. The safe cell is
// ignored: a replay keeps the recorded mines, including any under the first
// click.
type ReplayGenerator struct {
	layout *Board
}

// NewReplayGenerator creates a generator that always returns layout
func NewReplayGenerator(layout *Board) *ReplayGenerator {
	return &ReplayGenerator{layout: layout}
}

// Fits reports whether the layout has the given shape
func (g *ReplayGenerator) Fits(rows, cols, mineCount int) bool {
	return g.layout.Rows == rows && g.layout.Cols == cols && g.layout.MineCount == mineCount
}

// Generate returns a fresh copy of the layout if its shape matches
func (g *ReplayGenerator) Generate(rows, cols, mineCount, safeRow, safeCol int) (*Board, error) {
	if !g.Fits(rows, cols, mineCount) {
		return nil, fmt.Errorf("%w: replay layout is %dx%d with %d mines, want %dx%d with %d",
			ErrInvalidConfiguration, g.layout.Rows, g.layout.Cols, g.layout.MineCount, rows, cols, mineCount)
	}
	return g.layout.clone(), nil
}
