package agent

import (
	"connectfour/experiments/metrics"
	"connectfour/game"
)

type Agent interface {
	// FindMove returns a column (or searcher.NoMove) and the metrics collected while choosing it
	FindMove(state *game.Board) (int, metrics.SearchMetric)
}
