package game

import (
	"github.com/gammazero/deque"
)

// RevealResult describes the cells opened by a single reveal
type RevealResult struct {
	Revealed []Position
	HitMine  bool
	Hit      Position
}

// Reveal opens the cell at (row, col). Revealing a zero cell flood-fills its
// connected zero region and the numbered border around it. Out of bounds,
// already revealed and flagged cells are left alone.
func (b *Board) Reveal(row, col int) RevealResult {
	var result RevealResult

	cell := b.Cell(row, col)
	if cell == nil || cell.Revealed || cell.Flagged {
		return result
	}

	if cell.IsMine() {
		cell.Revealed = true
		result.HitMine = true
		result.Hit = Position{Row: row, Col: col}
		return result
	}

	queue := deque.New[Position]()
	b.markRevealed(cell)
	queue.PushBack(Position{Row: row, Col: col})

	for queue.Len() > 0 {
		p := queue.PopFront()
		result.Revealed = append(result.Revealed, p)

		if b.Cells[p.Row][p.Col].Value != 0 {
			continue
		}
		for _, n := range b.Neighbors(p) {
			next := &b.Cells[n.Row][n.Col]
			if next.Revealed || next.Flagged || next.IsMine() {
				continue
			}
			b.markRevealed(next)
			queue.PushBack(n)
		}
	}

	return result
}

// RevealMines opens every mine and clears flags placed on them
func (b *Board) RevealMines(flags *FlagTracker) {
	for _, p := range b.Mines {
		cell := &b.Cells[p.Row][p.Col]
		if cell.Flagged {
			flags.set(b, p, false)
		}
		cell.Revealed = true
	}
}

// FlagMines flags every mine that is not flagged yet
func (b *Board) FlagMines(flags *FlagTracker) {
	for _, p := range b.Mines {
		if !b.Cells[p.Row][p.Col].Flagged {
			flags.set(b, p, true)
		}
	}
}

func (b *Board) markRevealed(cell *Cell) {
	cell.Revealed = true
	if !cell.IsMine() {
		b.revealed++
	}
}
