package metrics

import (
	"strconv"
	"time"
)

// AgentConfig describes one player of an experiment matchup. A Difficulty, when set,
// takes precedence over Episodes and Exploration. A positive Temperature samples moves
// from the visit counts instead of always playing the most visited one.
type AgentConfig struct {
	ID          int           `yaml:"id"`
	Random      bool          `yaml:"random"`
	Difficulty  string        `yaml:"difficulty"`
	Goroutines  int           `yaml:"goroutines"`
	Episodes    int           `yaml:"episodes"`
	Duration    time.Duration `yaml:"duration"`
	Exploration float64       `yaml:"exploration"`
	Branching   int           `yaml:"branching"`
	Temperature float64       `yaml:"temperature"`
}

// Label is a short human readable name of the agent, e.g. "hard", "mcts-2000" or
// "hard-t0.5" for a sampling agent.
func (c AgentConfig) Label() string {
	var label string
	switch {
	case c.Random:
		return "random"
	case c.Difficulty != "":
		label = c.Difficulty
	case c.Episodes > 0:
		label = "mcts-" + strconv.Itoa(c.Episodes)
	default:
		label = "mcts-" + c.Duration.String()
	}
	if c.Temperature > 0 {
		label += "-t" + strconv.FormatFloat(c.Temperature, 'g', -1, 64)
	}
	return label
}
