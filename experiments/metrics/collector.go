package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines    int
	Duration      time.Duration
	Episodes      int
	TerminalLeafs int // Episodes whose selected leaf was already a finished game
}

type MoveMetric struct {
	Step   int
	Player int // Player ID
	Column int
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int    // Player ID
	Winner         string // "A", "B" or "draw"
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(goroutines int)
	AddEpisode()
	AddTerminalLeaf()
	Complete() SearchMetric
}

type collector struct {
	goroutines    int
	startTime     time.Time
	episodes      atomic.Int32
	terminalLeafs atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters so a collector can be reused across decisions.
func (m *collector) Start(goroutines int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.episodes.Store(0)
	m.terminalLeafs.Store(0)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddTerminalLeaf() {
	m.terminalLeafs.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:    m.goroutines,
		Duration:      time.Since(m.startTime),
		Episodes:      int(m.episodes.Load()),
		TerminalLeafs: int(m.terminalLeafs.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines int)   {}
func (m *dummyCollector) AddEpisode()            {}
func (m *dummyCollector) AddTerminalLeaf()       {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
