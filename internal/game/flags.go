package game

// FlagTracker counts the flags placed on a board
type FlagTracker struct {
	mineCount int
	flagged   int
}

// NewFlagTracker creates a tracker for a board with mineCount mines
func NewFlagTracker(mineCount int) *FlagTracker {
	return &FlagTracker{mineCount: mineCount}
}

// Toggle flips the flag at (row, col). Revealed and out of bounds cells are
// ignored; the return value reports whether anything changed.
func (f *FlagTracker) Toggle(b *Board, row, col int) bool {
	cell := b.Cell(row, col)
	if cell == nil || cell.Revealed {
		return false
	}
	f.set(b, Position{Row: row, Col: col}, !cell.Flagged)
	return true
}

// Count returns the number of flags on the board
func (f *FlagTracker) Count() int {
	return f.flagged
}

// Remaining returns mines minus flags. It goes negative when the player
// over-flags.
func (f *FlagTracker) Remaining() int {
	return f.mineCount - f.flagged
}

func (f *FlagTracker) set(b *Board, p Position, flagged bool) {
	cell := &b.Cells[p.Row][p.Col]
	if cell.Flagged == flagged {
		return
	}
	cell.Flagged = flagged
	if flagged {
		f.flagged++
	} else {
		f.flagged--
	}
}
