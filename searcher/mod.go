package searcher

import "math"

// Hyperparameters for MCTS

const DefaultExploration = math.Sqrt2 // UCB1 exploration constant c

// NoMove is reported when a position has no legal moves.
const NoMove = -1
