package game

// Mine marks a cell holding a mine
const Mine = -1

// Position addresses a cell on the board
type Position struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Cell is a single square of the board
type Cell struct {
	Row      int
	Col      int
	Value    int
	Revealed bool
	Flagged  bool
}

// IsMine reports whether the cell holds a mine
func (c *Cell) IsMine() bool {
	return c.Value == Mine
}

// Board is the grid of cells plus the mine layout
type Board struct {
	Rows      int
	Cols      int
	MineCount int
	Cells     [][]Cell
	Mines     []Position

	revealed int
}

// NewBoard creates an empty board without mines
func NewBoard(rows, cols, mineCount int) *Board {
	b := &Board{
		Rows:      rows,
		Cols:      cols,
		MineCount: mineCount,
		Cells:     make([][]Cell, rows),
	}
	for r := 0; r < rows; r++ {
		b.Cells[r] = make([]Cell, cols)
		for c := 0; c < cols; c++ {
			b.Cells[r][c] = Cell{Row: r, Col: c}
		}
	}
	return b
}

// InBounds reports whether (row, col) lies on the board
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Rows && col >= 0 && col < b.Cols
}

// Cell returns the cell at (row, col), or nil when out of bounds
func (b *Board) Cell(row, col int) *Cell {
	if !b.InBounds(row, col) {
		return nil
	}
	return &b.Cells[row][col]
}

// Neighbors returns the in-bounds 8-neighborhood of p
func (b *Board) Neighbors(p Position) []Position {
	neighbors := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := p.Row+dr, p.Col+dc
			if b.InBounds(r, c) {
				neighbors = append(neighbors, Position{Row: r, Col: c})
			}
		}
	}
	return neighbors
}

// RevealedCount returns the number of revealed non-mine cells
func (b *Board) RevealedCount() int {
	return b.revealed
}

// SafeCells returns the number of cells without a mine
func (b *Board) SafeCells() int {
	return b.Rows*b.Cols - b.MineCount
}

// Cleared reports whether every safe cell has been revealed
func (b *Board) Cleared() bool {
	return b.revealed == b.SafeCells()
}

// placeMines puts mines at the given positions and fills in adjacency values
func (b *Board) placeMines(mines []Position) {
	b.Mines = make([]Position, len(mines))
	copy(b.Mines, mines)
	b.MineCount = len(mines)

	for _, p := range mines {
		b.Cells[p.Row][p.Col].Value = Mine
	}
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			cell := &b.Cells[r][c]
			if cell.IsMine() {
				continue
			}
			count := 0
			for _, n := range b.Neighbors(Position{Row: r, Col: c}) {
				if b.Cells[n.Row][n.Col].IsMine() {
					count++
				}
			}
			cell.Value = count
		}
	}
}

// clone copies the layout and cell state of the board
func (b *Board) clone() *Board {
	out := NewBoard(b.Rows, b.Cols, b.MineCount)
	for r := range b.Cells {
		copy(out.Cells[r], b.Cells[r])
	}
	out.Mines = append([]Position(nil), b.Mines...)
	out.revealed = b.revealed
	return out
}
