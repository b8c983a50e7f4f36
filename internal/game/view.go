package game

import (
	"minesweeper/pkg/models"
)

// CellState is how a cell should be drawn
type CellState string

const (
	CellHidden    CellState = "hidden"
	CellFlagged   CellState = "flagged"
	CellRevealed  CellState = "revealed"
	CellMine      CellState = "mine"
	CellMineHit   CellState = "mine_hit"
	CellFlagWrong CellState = "flag_wrong"
)

// CellView is the visible part of a cell. Value is only set on revealed
// safe cells.
type CellView struct {
	State CellState `json:"state"`
	Value int       `json:"value,omitempty"`
}

// Snapshot is a copy of the session state for rendering
type Snapshot struct {
	SessionID      string            `json:"session_id"`
	Difficulty     models.Difficulty `json:"difficulty"`
	Rows           int               `json:"rows"`
	Cols           int               `json:"cols"`
	MineCount      int               `json:"mine_count"`
	Phase          Phase             `json:"phase"`
	Elapsed        int               `json:"elapsed"`
	RemainingMines int               `json:"remaining_mines"`
	HitRow         int               `json:"hit_row"`
	HitCol         int               `json:"hit_col"`
	Cells          [][]CellView      `json:"cells"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID:      s.id.String(),
		Difficulty:     s.difficulty,
		Rows:           s.board.Rows,
		Cols:           s.board.Cols,
		MineCount:      s.board.MineCount,
		Phase:          s.phase,
		Elapsed:        s.elapsed,
		RemainingMines: s.flags.Remaining(),
		HitRow:         -1,
		HitCol:         -1,
		Cells:          make([][]CellView, s.board.Rows),
	}
	if s.hit != nil {
		snap.HitRow = s.hit.Row
		snap.HitCol = s.hit.Col
	}

	for r, row := range s.board.Cells {
		snap.Cells[r] = make([]CellView, len(row))
		for c := range row {
			snap.Cells[r][c] = s.viewCell(&row[c])
		}
	}
	return snap
}

func (s *Session) viewCell(cell *Cell) CellView {
	switch {
	case cell.Flagged && s.phase == PhaseLost && !cell.IsMine():
		return CellView{State: CellFlagWrong}
	case cell.Flagged:
		return CellView{State: CellFlagged}
	case cell.Revealed && cell.IsMine():
		if s.hit != nil && s.hit.Row == cell.Row && s.hit.Col == cell.Col {
			return CellView{State: CellMineHit}
		}
		return CellView{State: CellMine}
	case cell.Revealed:
		return CellView{State: CellRevealed, Value: cell.Value}
	default:
		return CellView{State: CellHidden}
	}
}
