package searcher

import (
	"errors"
	"fmt"
	"strings"

	"connectfour/game"

	"golang.org/x/exp/rand"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("%q: %w", s, ErrUnknownDifficulty)
	}
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Setting is the search budget and exploration constant of a difficulty.
type Setting struct {
	Episodes    int     `yaml:"episodes"`
	Exploration float64 `yaml:"exploration"`
}

type Table map[Difficulty]Setting

// DefaultTable budgets 500, 2000 and 10000 episodes with c = sqrt(2).
func DefaultTable() Table {
	return Table{
		Easy:   {Episodes: 500, Exploration: DefaultExploration},
		Medium: {Episodes: 2000, Exploration: DefaultExploration},
		Hard:   {Episodes: 10000, Exploration: DefaultExploration},
	}
}

// Validate checks that every difficulty has a positive budget and a non-negative
// exploration constant.
func (t Table) Validate() error {
	for _, d := range Difficulties() {
		setting, ok := t[d]
		if !ok {
			return fmt.Errorf("missing %s setting", d)
		}
		if setting.Episodes <= 0 {
			return fmt.Errorf("%s: episodes must be positive, got %d", d, setting.Episodes)
		}
		if setting.Exploration < 0 {
			return fmt.Errorf("%s: exploration must not be negative, got %g", d, setting.Exploration)
		}
	}
	return nil
}

// WithDifficulty applies the budget and exploration constant of d from table, or from
// the default table when table is nil. It panics when neither table knows d.
func WithDifficulty(d Difficulty, table Table) Option {
	if table == nil {
		table = DefaultTable()
	}
	setting, ok := table[d]
	if !ok {
		setting, ok = DefaultTable()[d]
	}
	if !ok {
		panic(fmt.Sprintf("unknown difficulty %d", int(d)))
	}
	return func(m *MCTS) {
		WithEpisodes(setting.Episodes)(m)
		WithExploration(setting.Exploration)(m)
	}
}

// ChooseMove searches state at the given difficulty and returns a column or NoMove.
func ChooseMove(state *game.Board, d Difficulty, rng *rand.Rand) int {
	return NewMCTS(WithDifficulty(d, nil), WithRand(rng)).FindNextMove(state)
}
