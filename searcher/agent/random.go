package agent

import (
	"time"

	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a baseline agent playing uniformly random legal moves.
func NewRandomAgent(rng *rand.Rand) Agent {
	return randomAgent{rng: rng}
}

func (a randomAgent) FindMove(state *game.Board) (int, metrics.SearchMetric) {
	start := time.Now()
	if state.IsTerminal() {
		return searcher.NoMove, metrics.SearchMetric{}
	}
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return searcher.NoMove, metrics.SearchMetric{}
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{Duration: time.Since(start)}
}
