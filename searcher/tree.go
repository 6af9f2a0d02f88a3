package searcher

import (
	"context"

	"connectfour/experiments/metrics"
	"connectfour/game"

	"golang.org/x/exp/rand"
)

// tree is one search tree for a single decision. It is owned by one goroutine.
type tree struct {
	root        *node
	rng         *rand.Rand
	exploration float64
	branching   int
	metrics     metrics.Collector
}

func newTree(state *game.Board, rng *rand.Rand, exploration float64, branching int, collector metrics.Collector) *tree {
	t := &tree{
		rng:         rng,
		exploration: exploration,
		branching:   branching,
		metrics:     collector,
	}
	root := state.Clone()
	t.root = newNode(nil, NoMove, root, root.Player(), t.actions(root))
	return t
}

// actions seeds the untried actions of a new node. With a branching cap, a random
// subset of the legal moves is kept.
func (t *tree) actions(state *game.Board) []int {
	moves := state.LegalMoves()
	if t.branching > 0 && len(moves) > t.branching {
		t.rng.Shuffle(len(moves), func(i, j int) {
			moves[i], moves[j] = moves[j], moves[i]
		})
		moves = moves[:t.branching]
	}
	return moves
}

// run plays episodes until the count is reached or ctx is done. A non-positive
// count runs until ctx is done.
func (t *tree) run(ctx context.Context, episodes int) {
	for i := 0; episodes <= 0 || i < episodes; i++ {
		if ctx.Err() != nil {
			return
		}
		t.episode()
	}
}

func (t *tree) episode() {
	leaf := t.selectThenExpand()
	if leaf.isTerminal() {
		t.metrics.AddTerminalLeaf()
	}
	outcome := t.rollout(leaf.state)
	backup(leaf, outcome)
	t.metrics.AddEpisode()
}

func (t *tree) selectThenExpand() *node {
	n := t.root
	for !n.isTerminal() {
		if !n.isFullyExpanded() {
			return n.expand(t.actions)
		}
		child := n.selectChild(t.exploration)
		if child == nil { // No legal moves on a board not flagged as finished
			return n
		}
		n = child
	}
	return n
}

func (t *tree) rollout(state *game.Board) game.Outcome {
	state = state.Clone()
	for !state.IsTerminal() {
		moves := state.LegalMoves()
		if len(moves) == 0 {
			break
		}
		state.Drop(moves[t.rng.Intn(len(moves))]) // Random rollout policy
	}
	// An unfinished board without moves counts as a draw
	outcome, _ := state.Outcome()
	return outcome
}

func backup(leaf *node, outcome game.Outcome) {
	node := leaf
	for node != nil {
		node = node.update(outcome)
	}
}
