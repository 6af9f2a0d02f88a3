package experiments

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"connectfour/experiments/dataset"
	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	return len(readRows(t, path)) - 1 // Header
}

func TestRun(t *testing.T) {
	search := metrics.AgentConfig{ID: 1, Episodes: 20}
	random := metrics.AgentConfig{ID: 2, Random: true}
	s := Settings{Games: 2, OutDir: t.TempDir(), Seed: 1}

	dir, err := Run("smoke", s, []metrics.AgentConfig{search, random}, [][]metrics.AgentConfig{{search, random}})
	require.NoError(t, err)

	require.Equal(t, 2, countRows(t, filepath.Join(dir, "agent_configs.csv")))
	require.Equal(t, 2, countRows(t, filepath.Join(dir, "game_records.csv")))
	require.GreaterOrEqual(t, countRows(t, filepath.Join(dir, "move_records.csv")), 2*7)
}

func TestRunDefaultGoroutines(t *testing.T) {
	search := metrics.AgentConfig{ID: 1, Episodes: 20}
	pinned := metrics.AgentConfig{ID: 2, Episodes: 20, Goroutines: 1}
	s := Settings{Games: 1, OutDir: t.TempDir(), Seed: 1, Goroutines: 2}

	dir, err := Run("goroutines", s, []metrics.AgentConfig{search, pinned}, [][]metrics.AgentConfig{{search, pinned}})
	require.NoError(t, err)

	configs := readRows(t, filepath.Join(dir, "agent_configs.csv"))
	require.Equal(t, "2", configs[1][4], "Unset goroutines take the default")
	require.Equal(t, "1", configs[2][4], "Explicit goroutines are kept")

	moves := readRows(t, filepath.Join(dir, "move_records.csv"))
	for _, row := range moves[1:] {
		want := "1"
		if row[2] == "1" { // Player A is the first agent
			want = "2"
		}
		require.Equal(t, want, row[4])
	}
}

func TestRunRejectsBadMatchUps(t *testing.T) {
	s := Settings{Games: 1, OutDir: t.TempDir()}

	_, err := Run("bad", s, nil, [][]metrics.AgentConfig{{{ID: 1, Random: true}}})
	require.Error(t, err)

	unknown := metrics.AgentConfig{ID: 3, Difficulty: "impossible"}
	_, err = Run("bad", s, nil, [][]metrics.AgentConfig{{unknown, unknown}})
	require.True(t, errors.Is(err, searcher.ErrUnknownDifficulty))
}

func TestCreateAgent(t *testing.T) {
	tests := []struct {
		name   string
		config metrics.AgentConfig
		want   string
	}{
		{"random", metrics.AgentConfig{Random: true}, "agent.randomAgent"},
		{"evaluation", metrics.AgentConfig{Episodes: 50}, "agent.evaluationAgent"},
		{"sampling", metrics.AgentConfig{Episodes: 50, Temperature: 0.5}, "agent.trainingAgent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := createAgent(tt.config, nil, 1)
			require.NoError(t, err)
			require.Equal(t, tt.want, fmt.Sprintf("%T", a))

			column, _ := a.FindMove(game.NewBoard())
			require.True(t, game.NewBoard().IsValidMove(column))
		})
	}
}

func TestWithGoroutines(t *testing.T) {
	require.Equal(t, 4, withGoroutines(metrics.AgentConfig{Episodes: 10}, 4).Goroutines)
	require.Equal(t, 2, withGoroutines(metrics.AgentConfig{Episodes: 10, Goroutines: 2}, 4).Goroutines)
	require.Zero(t, withGoroutines(metrics.AgentConfig{Random: true}, 4).Goroutines)
	require.Zero(t, withGoroutines(metrics.AgentConfig{Episodes: 10}, 0).Goroutines)
}

func TestCreateMCTS(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	t.Run("needs a budget", func(t *testing.T) {
		_, err := createMCTS(metrics.AgentConfig{ID: 1, Goroutines: 2}, nil, rng)
		require.Error(t, err)
	})

	t.Run("difficulty is a budget", func(t *testing.T) {
		mcts, err := createMCTS(metrics.AgentConfig{ID: 1, Difficulty: "easy"}, nil, rng)
		require.NoError(t, err)
		require.NotNil(t, mcts)
	})
}

func TestGenerateDataset(t *testing.T) {
	random := metrics.AgentConfig{ID: 1, Random: true}
	search := metrics.AgentConfig{ID: 2, Episodes: 20}
	path := filepath.Join(t.TempDir(), "selfplay.parquet")
	s := DatasetSettings{
		Games:    3,
		Workers:  2,
		OutPath:  path,
		Seed:     7,
		MatchUps: [][]metrics.AgentConfig{{random, search}},
	}

	n, err := GenerateDataset(context.Background(), s)
	require.NoError(t, err)

	rows, err := dataset.Read(path)
	require.NoError(t, err)
	require.Len(t, rows, n)
	require.Positive(t, n)

	games := map[int32]bool{}
	for _, row := range rows {
		games[row.Game] = true
		require.Equal(t, int32(game.PlayerB), row.Player, "Only the searching agent is recorded")
		require.Len(t, row.Cells, game.Cells)
		require.Contains(t, []string{"A", "B", "draw"}, row.Winner)
		require.Equal(t, "mcts-20", row.Agent)
	}
	require.Len(t, games, 3)

	// The first decision of game 1 answers the forced opening on column 1
	first := rows[0]
	require.Equal(t, int32(1), first.Game)
	require.Equal(t, int32(2), first.Step)
	require.Equal(t, int32(game.PlayerA), first.Cells[(game.Rows-1)*game.Cols+1])
	pieces := 0
	for _, cell := range first.Cells {
		if cell != 0 {
			pieces++
		}
	}
	require.Equal(t, 1, pieces)
}

func TestGenerateDatasetSkipsSamplingAgents(t *testing.T) {
	search := metrics.AgentConfig{ID: 1, Episodes: 20}
	sampling := metrics.AgentConfig{ID: 2, Episodes: 20, Temperature: 1}
	path := filepath.Join(t.TempDir(), "selfplay.parquet")

	n, err := GenerateDataset(context.Background(), DatasetSettings{
		Games:      2,
		Workers:    1,
		OutPath:    path,
		Seed:       3,
		MatchUps:   [][]metrics.AgentConfig{{search, sampling}},
		Goroutines: 2,
	})
	require.NoError(t, err)
	require.Positive(t, n)

	rows, err := dataset.Read(path)
	require.NoError(t, err)
	for _, row := range rows {
		require.Equal(t, int32(game.PlayerA), row.Player)
		require.Equal(t, "mcts-20", row.Agent)
	}
}

func TestGenerateDatasetErrors(t *testing.T) {
	t.Run("no games", func(t *testing.T) {
		_, err := GenerateDataset(context.Background(), DatasetSettings{OutPath: filepath.Join(t.TempDir(), "x.parquet")})
		require.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		random := metrics.AgentConfig{ID: 1, Random: true}

		_, err := GenerateDataset(ctx, DatasetSettings{
			Games:    2,
			OutPath:  filepath.Join(t.TempDir(), "x.parquet"),
			MatchUps: [][]metrics.AgentConfig{{random, random}},
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDefaultMatchUps(t *testing.T) {
	for _, matchup := range DefaultMatchUps() {
		require.Len(t, matchup, 2)
		for _, config := range matchup {
			_, err := searcher.ParseDifficulty(config.Difficulty)
			require.NoError(t, err)
		}
	}
}
