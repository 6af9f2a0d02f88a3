package searcher

import (
	"math"

	"connectfour/game"
)

type node struct {
	parent   *node       // Non-owning, nil at the root
	action   int         // Column that led here, NoMove at the root
	state    *game.Board // Owned snapshot
	player   game.Player // Player to move at state
	children []*node
	untried  []int
	visits   int
	outcomes [game.NumOutcomes]int
}

func newNode(parent *node, action int, state *game.Board, player game.Player, untried []int) *node {
	return &node{
		parent:   parent,
		action:   action,
		state:    state,
		player:   player,
		children: make([]*node, 0, len(untried)),
		untried:  untried,
	}
}

func (n *node) isTerminal() bool {
	return n.state.IsTerminal()
}

func (n *node) isFullyExpanded() bool {
	return len(n.untried) == 0
}

// expand pops the last untried action and appends the resulting child.
// seed provides the untried actions of the new child.
func (n *node) expand(seed func(*game.Board) []int) *node {
	last := len(n.untried) - 1
	action := n.untried[last]
	n.untried = n.untried[:last]

	state := n.state.Clone()
	state.SetPlayer(n.player)
	state.Drop(action)

	child := newNode(n, action, state, n.player.Opponent(), seed(state))
	n.children = append(n.children, child)
	return child
}

// selectChild returns the child maximizing UCB1 from n's perspective, the first one
// on ties. It returns nil when n has no children.
func (n *node) selectChild(c float64) *node {
	if len(n.children) == 0 {
		return nil
	}

	policy := newUCB1(c, n.visits)
	var best *node
	maxScore := math.Inf(-1)
	for _, child := range n.children {
		score := policy.evaluate(child.wins(n.player), child.visits)
		if math.IsInf(score, 1) {
			return child
		}
		if score > maxScore {
			maxScore = score
			best = child
		}
	}
	return best
}

// wins returns how many simulations through n were won by p.
func (n *node) wins(p game.Player) int {
	return n.outcomes[game.WinFor(p)]
}

func (n *node) winRate(p game.Player) float64 {
	if n.visits == 0 {
		return 0
	}
	return float64(n.wins(p)) / float64(n.visits)
}

// update records one simulation outcome and returns the parent to continue the backup.
func (n *node) update(outcome game.Outcome) *node {
	n.visits++
	n.outcomes[outcome]++
	return n.parent
}

// absorb adds the statistics of other into n.
func (n *node) absorb(other *node) {
	n.visits += other.visits
	for o, count := range other.outcomes {
		n.outcomes[o] += count
	}
}

// robustChild returns the most visited child, the first one on ties.
func (n *node) robustChild() *node {
	var best *node
	for _, child := range n.children {
		if best == nil || child.visits > best.visits {
			best = child
		}
	}
	return best
}
