package engine

import (
	"time"

	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher/agent"
	"connectfour/utils"

	"github.com/rs/zerolog/log"
)

const DrawResult = "draw"

var _ Engine = (*Local)(nil)

type Option func(e *Local)

// Observer is called after every decision with the board before the move, the mover
// and the column played.
type Observer func(before *game.Board, player game.Player, column int)

// Local plays a full game between two in-process agents.
type Local struct {
	State   *game.Board
	Agents  [2]agent.Agent // Indexed by player ID - 1
	opening int
	observe Observer
}

// WithOpening forces the first move of the game onto column.
func WithOpening(column int) Option {
	return func(e *Local) {
		if column >= 0 && column < game.Cols {
			e.opening = column
		}
	}
}

func WithObserver(observe Observer) Option {
	return func(e *Local) {
		e.observe = observe
	}
}

// WithStartingPlayer hands the first move to p. Anything but A or B leaves A to start.
func WithStartingPlayer(p game.Player) Option {
	return func(e *Local) {
		if p == game.PlayerA || p == game.PlayerB {
			e.State.SetPlayer(p)
		}
	}
}

func LocalEngine(agents []agent.Agent, options ...Option) *Local {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}

	e := &Local{
		State:   game.NewBoard(),
		Agents:  [2]agent.Agent{agents[0], agents[1]},
		opening: -1,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run executes the entire game loop until the game is finished.
func (e *Local) Run() (string, metrics.GameMetric, []metrics.MoveMetric) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(e.State.Player()),
		StartTime:      time.Now(),
	}
	log.Info().Msgf("player %s is starting", e.State.Player())

	var moveMetrics []metrics.MoveMetric
	for step := 1; !e.State.IsTerminal(); step++ {
		moves := e.State.LegalMoves()
		if len(moves) == 0 {
			break
		}
		player := e.State.Player()

		var column int
		var searchMetric metrics.SearchMetric
		if step == 1 && e.opening >= 0 {
			column = e.opening
		} else {
			column, searchMetric = e.Agents[player-1].FindMove(e.State)
		}

		if !utils.Contains(moves, column) {
			log.Warn().Msgf("player %s chose illegal column %d, playing %d instead", player, column, moves[0])
			column = moves[0]
		}

		if e.observe != nil {
			e.observe(e.State.Clone(), player, column)
		}
		e.State.Drop(column)

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(player),
			Column:       column,
			SearchMetric: searchMetric,
		})
	}

	winner := DrawResult
	if p, ok := e.State.Winner(); ok {
		winner = p.String()
	}

	gameMetric.Winner = winner
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = e.State.MovesPlayed()
	log.Info().Msgf("game ended after %d moves, winner: %s", gameMetric.TotalMoves, winner)

	return winner, gameMetric, moveMetrics
}
