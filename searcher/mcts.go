package searcher

import (
	"context"
	"time"

	"connectfour/experiments/metrics"
	"connectfour/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(m *MCTS)

// Decision is the outcome of one search.
type Decision struct {
	Move    int         // Robust child's column, or NoMove
	Visits  map[int]int // Visit count per expanded root column
	WinRate float64     // Chosen child's win rate for the player to move
}

// MCTS chooses moves by building a fresh UCT tree for every decision. It is not safe
// for concurrent use.
type MCTS struct {
	goroutines  int
	episodes    int
	duration    time.Duration
	exploration float64
	branching   int
	rng         *rand.Rand
	metrics     metrics.Collector
}

func WithEpisodes(episodes int) Option {
	return func(m *MCTS) {
		if episodes > 0 {
			m.episodes = episodes
		}
	}
}

// WithDuration bounds each decision by wall time. With episodes also set, the search
// stops at whichever limit comes first.
func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.duration = duration
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

// WithGoroutines runs independent trees in parallel and merges their root statistics.
func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithBranching caps the number of children per node to a random subset of the
// legal moves.
func WithBranching(children int) Option {
	return func(m *MCTS) {
		if children > 0 {
			m.branching = children
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func WithCollector(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{ // Default values
		goroutines:  1,
		exploration: DefaultExploration,
		metrics:     metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	if m.episodes <= 0 && m.duration <= 0 {
		panic("Must specify search episodes or duration")
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return m
}

// FindNextMove returns the column to play in state, or NoMove.
func (m *MCTS) FindNextMove(state *game.Board) int {
	decision, _ := m.Simulate(state)
	return decision.Move
}

// Simulate searches state without mutating it and returns the decision along with
// the search metrics.
func (m *MCTS) Simulate(state *game.Board) (Decision, metrics.SearchMetric) {
	m.metrics.Start(m.goroutines)

	// No search needed when there is nothing to choose from
	var moves []int
	if !state.IsTerminal() {
		moves = state.LegalMoves()
	}
	switch len(moves) {
	case 0:
		return Decision{Move: NoMove}, m.metrics.Complete()
	case 1:
		return Decision{Move: moves[0]}, m.metrics.Complete()
	}

	root := m.search(state)
	decision := m.decide(root)
	metric := m.metrics.Complete()

	log.Debug().Msgf("player %s chose column %d (win rate %.3f) after %d episodes in %s",
		state.Player(), decision.Move, decision.WinRate, root.visits, metric.Duration)
	return decision, metric
}

// search builds the tree for state and returns its root.
func (m *MCTS) search(state *game.Board) *node {
	if m.goroutines > 1 {
		return m.searchParallel(state)
	}

	ctx, cancel := m.budget()
	defer cancel()

	t := newTree(state, m.rng, m.exploration, m.branching, m.metrics)
	t.run(ctx, m.episodes)
	return t.root
}

func (m *MCTS) budget() (context.Context, context.CancelFunc) {
	if m.duration > 0 {
		return context.WithTimeout(context.Background(), m.duration)
	}
	return context.WithCancel(context.Background())
}

func (m *MCTS) decide(root *node) Decision {
	visits := make(map[int]int, len(root.children))
	for _, child := range root.children {
		visits[child.action] = child.visits
	}

	best := root.robustChild()
	if best == nil { // Budget ran out before the first expansion
		moves := root.state.LegalMoves()
		if len(moves) == 0 {
			return Decision{Move: NoMove, Visits: visits}
		}
		return Decision{Move: moves[m.rng.Intn(len(moves))], Visits: visits}
	}

	return Decision{
		Move:    best.action,
		Visits:  visits,
		WinRate: best.winRate(root.player),
	}
}
