package game

import "errors"

const (
	Rows    = 6
	Cols    = 7
	Cells   = Rows * Cols
	connect = 4 // Pieces in a row needed to win
)

var ErrInvalidMove = errors.New("invalid move")

// Player identifies a piece owner. None marks an empty cell.
type Player int8

const (
	None Player = iota
	PlayerA
	PlayerB
)

func (p Player) Opponent() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return None
	}
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return "-"
	}
}

type Status int

const (
	InProgress Status = iota
	Won
	Draw
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}

// Outcome is the result of a finished game, used to index search statistics.
type Outcome int

const (
	DrawOutcome Outcome = iota
	PlayerAWin
	PlayerBWin
	NumOutcomes
)

// WinFor returns the outcome in which p wins. None maps to a draw.
func WinFor(p Player) Outcome {
	switch p {
	case PlayerA:
		return PlayerAWin
	case PlayerB:
		return PlayerBWin
	default:
		return DrawOutcome
	}
}

func (o Outcome) String() string {
	switch o {
	case PlayerAWin:
		return "A"
	case PlayerBWin:
		return "B"
	default:
		return "draw"
	}
}
