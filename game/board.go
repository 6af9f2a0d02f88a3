package game

import (
	"fmt"
	"strings"
)

// Board represents the full state of a Connect Four game. Row 0 is the top row,
// pieces settle towards row Rows-1.
type Board struct {
	grid   [Rows][Cols]Player
	player Player // The player to drop the next piece
	moves  int    // Successful drops so far
	status Status
	winner Player // Set only when status is Won
}

// NewBoard returns an empty board with PlayerA to move.
func NewBoard() *Board {
	return &Board{player: PlayerA}
}

// FromMoves replays a sequence of columns from the empty board.
func FromMoves(cols []int) (*Board, error) {
	b := NewBoard()
	for i, col := range cols {
		if !b.Drop(col) {
			return nil, fmt.Errorf("ply %d column %d: %w", i+1, col, ErrInvalidMove)
		}
	}
	return b, nil
}

// Clone returns a deep copy, the grid is an array so a value copy is independent.
func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

func (b *Board) IsValidMove(col int) bool {
	return col >= 0 && col < Cols && b.grid[0][col] == None
}

// NextOpenRow scans the column from the bottom up and returns the first empty row.
func (b *Board) NextOpenRow(col int) (int, bool) {
	if col < 0 || col >= Cols {
		return -1, false
	}
	for r := Rows - 1; r >= 0; r-- {
		if b.grid[r][col] == None {
			return r, true
		}
	}
	return -1, false
}

// Drop places the current player's piece in col. It reports false, leaving the board
// untouched, when the column is invalid or the game is already over.
func (b *Board) Drop(col int) bool {
	if b.status != InProgress || !b.IsValidMove(col) {
		return false
	}

	row, _ := b.NextOpenRow(col)
	b.grid[row][col] = b.player
	b.moves++

	if b.CheckWin(b.player) {
		b.status = Won
		b.winner = b.player
		return true
	}
	if b.moves == Cells {
		b.status = Draw
		return true
	}

	b.player = b.player.Opponent()
	return true
}

// CheckWin scans the whole grid for four aligned pieces of p.
func (b *Board) CheckWin(p Player) bool {
	// Horizontal
	for r := 0; r < Rows; r++ {
		for c := 0; c <= Cols-connect; c++ {
			if b.line(p, r, c, 0, 1) {
				return true
			}
		}
	}
	// Vertical
	for r := 0; r <= Rows-connect; r++ {
		for c := 0; c < Cols; c++ {
			if b.line(p, r, c, 1, 0) {
				return true
			}
		}
	}
	// Diagonal going down-right
	for r := 0; r <= Rows-connect; r++ {
		for c := 0; c <= Cols-connect; c++ {
			if b.line(p, r, c, 1, 1) {
				return true
			}
		}
	}
	// Diagonal going up-right
	for r := connect - 1; r < Rows; r++ {
		for c := 0; c <= Cols-connect; c++ {
			if b.line(p, r, c, -1, 1) {
				return true
			}
		}
	}
	return false
}

func (b *Board) line(p Player, r, c, dr, dc int) bool {
	for i := 0; i < connect; i++ {
		if b.grid[r+i*dr][c+i*dc] != p {
			return false
		}
	}
	return true
}

// LegalMoves returns the playable columns in ascending order.
func (b *Board) LegalMoves() []int {
	moves := make([]int, 0, Cols)
	for col := 0; col < Cols; col++ {
		if b.IsValidMove(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

func (b *Board) Player() Player {
	return b.player
}

// SetPlayer hands the next drop to p. Search uses it to assign the mover of a node.
func (b *Board) SetPlayer(p Player) {
	b.player = p
}

func (b *Board) MovesPlayed() int {
	return b.moves
}

func (b *Board) Status() Status {
	return b.status
}

func (b *Board) IsTerminal() bool {
	return b.status != InProgress
}

// Winner returns the winning player, ok is false for a draw or an unfinished game.
func (b *Board) Winner() (Player, bool) {
	if b.status != Won {
		return None, false
	}
	return b.winner, true
}

// Outcome classifies a finished board. ok is false while the game is in progress.
func (b *Board) Outcome() (Outcome, bool) {
	switch b.status {
	case Won:
		return WinFor(b.winner), true
	case Draw:
		return DrawOutcome, true
	default:
		return DrawOutcome, false
	}
}

func (b *Board) Cell(row, col int) Player {
	return b.grid[row][col]
}

// Flatten returns the cell codes in row-major order (0 empty, 1 A, 2 B).
func (b *Board) Flatten() []int32 {
	cells := make([]int32, 0, Cells)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			cells = append(cells, int32(b.grid[r][c]))
		}
	}
	return cells
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b.grid[r][c].String())
		}
		sb.WriteByte('\n')
	}
	for c := 0; c < Cols; c++ {
		if c > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", c)
	}
	return sb.String()
}
