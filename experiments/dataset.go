package experiments

import (
	"context"
	"fmt"
	"runtime"

	"connectfour/engine"
	"connectfour/experiments/dataset"
	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher"
	"connectfour/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// DatasetSettings configure a self-play dataset run.
type DatasetSettings struct {
	Games    int // Spread over the match ups, earlier ones take the remainder
	Workers  int // Games played concurrently, defaults to the number of CPUs
	OutPath  string
	Seed     uint64
	Table    searcher.Table
	MatchUps [][]metrics.AgentConfig

	Goroutines int // For searching agents that leave theirs unset
}

// DefaultMatchUps weighs the dataset towards strong play. The sampling hard agent varies
// the positions its opponent has to answer.
func DefaultMatchUps() [][]metrics.AgentConfig {
	easy := metrics.AgentConfig{ID: 1, Difficulty: searcher.Easy.String()}
	medium := metrics.AgentConfig{ID: 2, Difficulty: searcher.Medium.String()}
	hard := metrics.AgentConfig{ID: 3, Difficulty: searcher.Hard.String()}
	sampling := metrics.AgentConfig{ID: 4, Difficulty: searcher.Hard.String(), Temperature: 1}
	return [][]metrics.AgentConfig{
		{easy, easy},
		{easy, medium},
		{medium, medium},
		{medium, hard},
		{hard, hard},
		{hard, hard},
		{hard, hard},
		{hard, hard},
		{hard, sampling},
		{sampling, hard},
	}
}

type selfPlay struct {
	id      int
	matchup []metrics.AgentConfig
}

// GenerateDataset plays self-play games across a worker pool and writes one row per
// search decision to a Parquet file. Game i opens on column i % Cols so the dataset
// covers every opening. It returns the number of rows written.
func GenerateDataset(ctx context.Context, s DatasetSettings) (int, error) {
	matchUps := s.MatchUps
	if len(matchUps) == 0 {
		matchUps = DefaultMatchUps()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var games []selfPlay
	for i, matchup := range matchUps {
		if len(matchup) != 2 {
			return 0, fmt.Errorf("matchup %d: need two agents, got %d", i+1, len(matchup))
		}
		n := s.Games / len(matchUps)
		if i < s.Games%len(matchUps) {
			n++
		}
		matchup = []metrics.AgentConfig{
			withGoroutines(matchup[0], s.Goroutines),
			withGoroutines(matchup[1], s.Goroutines),
		}
		for j := 0; j < n; j++ {
			games = append(games, selfPlay{id: len(games) + 1, matchup: matchup})
		}
	}
	if len(games) == 0 {
		return 0, fmt.Errorf("no games to play")
	}

	log.Info().Msgf("generating dataset from %d games on %d workers...", len(games), workers)

	results := make([][]dataset.Row, len(games))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sp := range games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := playSelfPlay(sp, s.Table, s.Seed+uint64(sp.id))
			if err != nil {
				return fmt.Errorf("game %d: %w", sp.id, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var rows []dataset.Row
	for _, gameRows := range results {
		rows = append(rows, gameRows...)
	}
	if err := dataset.Write(s.OutPath, rows); err != nil {
		return 0, err
	}

	log.Info().Msgf("stored %d decisions in %s", len(rows), s.OutPath)
	return len(rows), nil
}

// playSelfPlay plays one game and returns the decisions of its searching agents. Sampling
// agents are left out since their move need not be the best one.
func playSelfPlay(sp selfPlay, table searcher.Table, seed uint64) ([]dataset.Row, error) {
	rng := rand.New(rand.NewSource(seed))
	agents := make([]agent.Agent, 2)
	for i, config := range sp.matchup {
		a, err := createAgent(config, table, rng.Uint64())
		if err != nil {
			return nil, err
		}
		agents[i] = a
	}

	var rows []dataset.Row
	record := func(before *game.Board, player game.Player, column int) {
		config := sp.matchup[player-1]
		if before.MovesPlayed() == 0 || config.Random || config.Temperature > 0 {
			return
		}
		rows = append(rows, dataset.Row{
			Game:   int32(sp.id),
			Step:   int32(before.MovesPlayed() + 1),
			Player: int32(player),
			Agent:  config.Label(),
			Cells:  before.Flatten(),
			Column: int32(column),
		})
	}

	e := engine.LocalEngine(agents,
		engine.WithOpening(sp.id%game.Cols),
		engine.WithObserver(record),
	)
	winner, _, _ := e.Run()
	for i := range rows {
		rows[i].Winner = winner
	}
	return rows, nil
}
