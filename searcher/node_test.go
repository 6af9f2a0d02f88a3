package searcher

import (
	"testing"

	"connectfour/game"

	"github.com/stretchr/testify/require"
)

func visitedChild(action, visits int, outcomes [game.NumOutcomes]int) *node {
	return &node{action: action, visits: visits, outcomes: outcomes}
}

func TestNodeSelectChild(t *testing.T) {
	t.Run("unvisited child beats any visited sibling", func(t *testing.T) {
		strong := visitedChild(0, 9, [game.NumOutcomes]int{0, 9, 0})
		unvisited := visitedChild(1, 0, [game.NumOutcomes]int{})
		parent := &node{player: game.PlayerA, visits: 10, children: []*node{strong, unvisited}}

		require.Same(t, unvisited, parent.selectChild(DefaultExploration))
	})

	t.Run("max UCB1 child from the parent's perspective", func(t *testing.T) {
		// Wins for B are losses for the parent's player A
		weak := visitedChild(0, 5, [game.NumOutcomes]int{0, 1, 4})
		strong := visitedChild(1, 5, [game.NumOutcomes]int{0, 4, 1})
		parent := &node{player: game.PlayerA, visits: 10, children: []*node{weak, strong}}

		require.Same(t, strong, parent.selectChild(DefaultExploration))
	})

	t.Run("turn change flips the preferred child", func(t *testing.T) {
		first := visitedChild(0, 5, [game.NumOutcomes]int{0, 1, 4})
		second := visitedChild(1, 5, [game.NumOutcomes]int{0, 4, 1})
		parent := &node{player: game.PlayerB, visits: 10, children: []*node{first, second}}

		require.Same(t, first, parent.selectChild(DefaultExploration))
	})

	t.Run("ties resolve to the first child", func(t *testing.T) {
		first := visitedChild(4, 3, [game.NumOutcomes]int{1, 1, 1})
		second := visitedChild(2, 3, [game.NumOutcomes]int{1, 1, 1})
		parent := &node{player: game.PlayerA, visits: 6, children: []*node{first, second}}

		require.Same(t, first, parent.selectChild(DefaultExploration))
	})

	t.Run("no children", func(t *testing.T) {
		parent := &node{player: game.PlayerA, visits: 3}

		require.Nil(t, parent.selectChild(DefaultExploration))
	})
}

func TestNodeExpand(t *testing.T) {
	state := game.NewBoard()
	root := newNode(nil, NoMove, state, game.PlayerA, state.LegalMoves())
	seed := func(b *game.Board) []int { return b.LegalMoves() }

	child := root.expand(seed)

	require.Equal(t, 6, child.action, "Expansion should pop the last untried action")
	require.Same(t, root, child.parent)
	require.Equal(t, game.PlayerB, child.player, "Child should hand the move to the opponent")
	require.Equal(t, game.PlayerA, child.state.Cell(game.Rows-1, 6), "Child state should hold the parent's piece")
	require.Equal(t, 0, state.MovesPlayed(), "Parent state should not change")
	require.Len(t, root.children, 1)
	require.Same(t, child, root.children[0])
	require.Len(t, root.untried, game.Cols-1)
	require.Equal(t, game.Cols, len(root.children)+len(root.untried))
	require.False(t, root.isFullyExpanded())

	for !root.isFullyExpanded() {
		root.expand(seed)
	}
	require.Len(t, root.children, game.Cols)
	require.Equal(t, []int{6, 5, 4, 3, 2, 1, 0}, actions(root.children))
}

func TestBackup(t *testing.T) {
	root := &node{player: game.PlayerA}
	child := &node{parent: root, player: game.PlayerB}
	grandChild := &node{parent: child, player: game.PlayerA}
	root.children = []*node{child}
	child.children = []*node{grandChild}

	backup(grandChild, game.PlayerBWin)
	backup(child, game.DrawOutcome)

	require.Equal(t, 2, root.visits)
	require.Equal(t, [game.NumOutcomes]int{1, 0, 1}, root.outcomes)
	require.Equal(t, 2, child.visits)
	require.Equal(t, 1, grandChild.visits)
	require.Equal(t, 1, child.wins(game.PlayerB))
	require.Equal(t, 0, child.wins(game.PlayerA))
	require.InDelta(t, 0.5, root.winRate(game.PlayerB), 1e-9)
}

func TestRobustChild(t *testing.T) {
	t.Run("most visited child", func(t *testing.T) {
		low := visitedChild(0, 2, [game.NumOutcomes]int{0, 2, 0})
		high := visitedChild(1, 7, [game.NumOutcomes]int{0, 0, 7})
		root := &node{children: []*node{low, high}}

		require.Same(t, high, root.robustChild(), "Visits decide, not win rate")
	})

	t.Run("ties resolve to the first child", func(t *testing.T) {
		first := visitedChild(3, 4, [game.NumOutcomes]int{})
		second := visitedChild(1, 4, [game.NumOutcomes]int{})
		root := &node{children: []*node{first, second}}

		require.Same(t, first, root.robustChild())
	})

	t.Run("no children", func(t *testing.T) {
		require.Nil(t, (&node{}).robustChild())
	})
}

func actions(children []*node) []int {
	out := make([]int, 0, len(children))
	for _, child := range children {
		out = append(out, child.action)
	}
	return out
}
