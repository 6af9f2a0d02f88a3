package agent

import (
	"math"
	"sort"

	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. Moves are
// sampled from the root visit counts sharpened by 1/temperature, so a temperature
// close to zero plays like the evaluation agent.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, rng *rand.Rand) Agent {
	if temperature <= 0 {
		temperature = 1.0
	}
	return trainingAgent{mcts: mcts, temperature: temperature, rng: rng}
}

func (a trainingAgent) FindMove(state *game.Board) (int, metrics.SearchMetric) {
	decision, metric := a.mcts.Simulate(state)
	if len(decision.Visits) == 0 {
		return decision.Move, metric
	}
	policy := adjustTemperature(decision.Visits, a.temperature)
	return sample(policy, a.rng), metric
}

type weightedMove struct {
	column int
	prob   float64
}

// adjustTemperature turns visit counts into move probabilities in ascending column order.
// Counts are scaled by the maximum before the power so low temperatures stay finite.
func adjustTemperature(visits map[int]int, temperature float64) []weightedMove {
	exponent := 1.0 / temperature
	maxVisit := 0
	for _, visit := range visits {
		maxVisit = max(maxVisit, visit)
	}

	sum := 0.0
	policy := make([]weightedMove, 0, len(visits))
	for column, visit := range visits {
		prob := 0.0
		if maxVisit > 0 {
			prob = math.Pow(float64(visit)/float64(maxVisit), exponent)
		}
		sum += prob
		policy = append(policy, weightedMove{column: column, prob: prob})
	}
	sort.Slice(policy, func(i, j int) bool { return policy[i].column < policy[j].column })
	// Normalize
	for i := range policy {
		if sum > 0 {
			policy[i].prob /= sum
		} else {
			policy[i].prob = 1.0 / float64(len(policy))
		}
	}
	return policy
}

func sample(policy []weightedMove, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for _, move := range policy {
		cumulative += move.prob
		if sampled < cumulative {
			return move.column
		}
	}
	return policy[len(policy)-1].column // Fallback in case of rounding errors
}
