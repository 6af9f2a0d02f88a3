package searcher

import (
	"sync"

	"connectfour/game"

	"golang.org/x/exp/rand"
)

// searchParallel runs one independent tree per goroutine and merges the root
// statistics once all of them are done.
func (m *MCTS) searchParallel(state *game.Board) *node {
	ctx, cancel := m.budget()
	defer cancel()

	// Seeds are drawn up front so a seeded search stays reproducible
	trees := make([]*tree, m.goroutines)
	for i := range trees {
		rng := rand.New(rand.NewSource(m.rng.Uint64()))
		trees[i] = newTree(state, rng, m.exploration, m.branching, m.metrics)
	}

	var wg sync.WaitGroup
	for i, t := range trees {
		episodes := share(m.episodes, len(trees), i)
		if m.episodes > 0 && episodes == 0 {
			continue
		}
		wg.Go(func() {
			t.run(ctx, episodes)
		})
	}
	wg.Wait()

	return merge(state, trees)
}

// share splits total episodes over n workers, giving the remainder to the first ones.
func share(total, n, i int) int {
	if total <= 0 {
		return 0
	}
	episodes := total / n
	if i < total%n {
		episodes++
	}
	return episodes
}

// merge sums the root and per-column child statistics of trees into a new root.
// Children keep the order in which their column was first seen.
func merge(state *game.Board, trees []*tree) *node {
	root := newNode(nil, NoMove, state.Clone(), state.Player(), nil)
	byAction := make(map[int]*node)
	for _, t := range trees {
		root.absorb(t.root)
		for _, child := range t.root.children {
			merged, ok := byAction[child.action]
			if !ok {
				merged = newNode(root, child.action, child.state, child.player, nil)
				byAction[child.action] = merged
				root.children = append(root.children, merged)
			}
			merged.absorb(child)
		}
	}
	return root
}
