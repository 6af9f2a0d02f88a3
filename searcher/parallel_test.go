package searcher

import (
	"testing"
	"time"

	"connectfour/experiments/metrics"
	"connectfour/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestShare(t *testing.T) {
	tests := []struct {
		name  string
		total int
		n     int
		want  []int
	}{
		{"even split", 8, 4, []int{2, 2, 2, 2}},
		{"remainder goes to the first workers", 10, 4, []int{3, 3, 2, 2}},
		{"fewer episodes than workers", 2, 4, []int{1, 1, 0, 0}},
		{"no episode budget", 0, 3, []int{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]int, tt.n)
			for i := range got {
				got[i] = share(tt.total, tt.n, i)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMerge(t *testing.T) {
	state := game.NewBoard()
	first := newTree(state, rand.New(rand.NewSource(1)), DefaultExploration, 0, metrics.NewDummyCollector())
	second := newTree(state, rand.New(rand.NewSource(2)), DefaultExploration, 0, metrics.NewDummyCollector())
	first.root.visits = 5
	first.root.outcomes = [game.NumOutcomes]int{1, 2, 2}
	first.root.children = []*node{
		visitedChild(3, 4, [game.NumOutcomes]int{0, 2, 2}),
		visitedChild(1, 1, [game.NumOutcomes]int{1, 0, 0}),
	}
	second.root.visits = 3
	second.root.outcomes = [game.NumOutcomes]int{0, 3, 0}
	second.root.children = []*node{
		visitedChild(1, 2, [game.NumOutcomes]int{0, 2, 0}),
		visitedChild(6, 1, [game.NumOutcomes]int{0, 1, 0}),
	}

	root := merge(state, []*tree{first, second})

	require.Equal(t, 8, root.visits)
	require.Equal(t, [game.NumOutcomes]int{1, 5, 2}, root.outcomes)
	require.Equal(t, []int{3, 1, 6}, actions(root.children))
	require.Equal(t, 4, root.children[0].visits)
	require.Equal(t, 3, root.children[1].visits)
	require.Equal(t, [game.NumOutcomes]int{1, 2, 0}, root.children[1].outcomes)
	require.Same(t, root, root.children[2].parent)
	require.Empty(t, root.untried)
}

func TestSearchParallel(t *testing.T) {
	t.Run("merged root visits equal the episode count", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(400), WithGoroutines(4), WithSeed(13))

		root := m.search(game.NewBoard())

		require.Equal(t, 400, root.visits)
		total := 0
		for _, child := range root.children {
			total += child.visits
		}
		require.Equal(t, 400, total)
	})

	t.Run("more workers than episodes", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(3), WithGoroutines(8), WithSeed(13))

		root := m.search(game.NewBoard())

		require.Equal(t, 3, root.visits)
	})

	t.Run("metrics count every worker's episodes", func(t *testing.T) {
		m := NewMCTS(WithEpisodes(600), WithGoroutines(3), WithSeed(21), WithMetrics())

		decision, metric := m.Simulate(game.NewBoard())

		require.Equal(t, 600, metric.Episodes)
		require.Equal(t, 3, metric.Goroutines)
		require.True(t, game.NewBoard().IsValidMove(decision.Move))
	})

	t.Run("duration bounds every worker", func(t *testing.T) {
		m := NewMCTS(WithDuration(20*time.Millisecond), WithGoroutines(4), WithSeed(19), WithMetrics())

		start := time.Now()
		decision, metric := m.Simulate(game.NewBoard())

		require.Less(t, time.Since(start), time.Second)
		require.Positive(t, metric.Episodes)
		require.True(t, game.NewBoard().IsValidMove(decision.Move))
	})

	t.Run("same seed same merged visits", func(t *testing.T) {
		first, _ := NewMCTS(WithEpisodes(400), WithGoroutines(4), WithSeed(23)).Simulate(game.NewBoard())
		second, _ := NewMCTS(WithEpisodes(400), WithGoroutines(4), WithSeed(23)).Simulate(game.NewBoard())

		require.Equal(t, first.Visits, second.Visits)
	})

	t.Run("takes the immediate win", func(t *testing.T) {
		state := board(t, 0, 6, 1, 6, 2, 5)
		m := NewMCTS(WithEpisodes(4000), WithGoroutines(4), WithSeed(17))

		require.Equal(t, 3, m.FindNextMove(state))
	})
}
