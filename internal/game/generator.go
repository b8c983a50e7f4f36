package game

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidConfiguration is returned when a board cannot be generated
var ErrInvalidConfiguration = errors.New("invalid board configuration")

// Generator places mines on new boards
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from src
func NewGenerator(src rand.Source) *Generator {
	return &Generator{
		rng: rand.New(src),
	}
}

// NewSeededGenerator creates a deterministic generator for seed
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.NewSource(seed))
}

// Generate builds a rows x cols board with mineCount mines, none of them
// inside the 3x3 neighborhood of (safeRow, safeCol).
func (g *Generator) Generate(rows, cols, mineCount, safeRow, safeCol int) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: board size %dx%d", ErrInvalidConfiguration, rows, cols)
	}
	if mineCount < 0 {
		return nil, fmt.Errorf("%w: negative mine count %d", ErrInvalidConfiguration, mineCount)
	}
	if safeRow < 0 || safeRow >= rows || safeCol < 0 || safeCol >= cols {
		return nil, fmt.Errorf("%w: safe cell (%d,%d) outside %dx%d board", ErrInvalidConfiguration, safeRow, safeCol, rows, cols)
	}

	candidates := make([]Position, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if abs(r-safeRow) <= 1 && abs(c-safeCol) <= 1 {
				continue
			}
			candidates = append(candidates, Position{Row: r, Col: c})
		}
	}
	if mineCount > len(candidates) {
		return nil, fmt.Errorf("%w: %d mines do not fit in %d eligible cells", ErrInvalidConfiguration, mineCount, len(candidates))
	}

	// Partial Fisher-Yates: the first mineCount entries are a uniform sample
	for i := 0; i < mineCount; i++ {
		j := i + g.rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}

	board := NewBoard(rows, cols, mineCount)
	board.placeMines(candidates[:mineCount])
	return board, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
