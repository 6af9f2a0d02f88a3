package engine

import "connectfour/experiments/metrics"

type Engine interface {
	// Run plays a game till there's a winner or the board is full
	Run() (winner string, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric)
}
