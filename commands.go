package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"connectfour/experiments"
	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

var (
	difficulty  string
	episodes    int
	duration    time.Duration
	goroutines  int
	branching   int
	exploration float64
	experiment  string
	games       int
	workers     int
	outPath     string

	moveCmd = &cobra.Command{
		Use:   "move [column...]",
		Short: "Replays the given columns from the empty board and searches the next move",
		Args:  cobra.ArbitraryArgs,
		RunE:  runMove,
	}

	matchCmd = &cobra.Command{
		Use:   "match",
		Short: "Plays agent matchups and stores the game and move records as CSV",
		RunE:  runMatch,
	}

	datasetCmd = &cobra.Command{
		Use:   "dataset",
		Short: "Generates a Parquet dataset of search decisions from self-play games",
		RunE:  runDataset,
	}
)

func init() {
	rootCmd.AddCommand(moveCmd)
	moveCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "Search difficulty (easy, medium, hard)")
	moveCmd.Flags().IntVar(&episodes, "episodes", 0, "Episodes per decision, overrides the difficulty")
	moveCmd.Flags().DurationVar(&duration, "duration", 0, "Time budget per decision")
	moveCmd.Flags().IntVar(&goroutines, "goroutines", 0, "Parallel search trees, defaults to the config")
	moveCmd.Flags().IntVar(&branching, "branching", 0, "Maximum children per node, 0 for all legal moves")
	moveCmd.Flags().Float64Var(&exploration, "exploration", 0, "UCB1 exploration constant, overrides the difficulty")

	rootCmd.AddCommand(matchCmd)
	matchCmd.Flags().StringVarP(&experiment, "experiment", "e", "ladder", "Experiment to run (ladder, parallel, config)")
	matchCmd.Flags().IntVar(&games, "games", 0, "Games per matchup, defaults to the config")

	rootCmd.AddCommand(datasetCmd)
	datasetCmd.Flags().IntVar(&games, "games", 0, "Games to play, defaults to the config")
	datasetCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent games, defaults to the config")
	datasetCmd.Flags().StringVarP(&outPath, "out", "o", "", "Parquet output file, defaults to the config")
}

func runMove(cmd *cobra.Command, args []string) error {
	columns := make([]int, 0, len(args))
	for _, arg := range args {
		column, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("column %q: %w", arg, err)
		}
		columns = append(columns, column)
	}
	state, err := game.FromMoves(columns)
	if err != nil {
		return err
	}

	d, err := searcher.ParseDifficulty(difficulty)
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	if goroutines <= 0 {
		goroutines = cfg.Goroutines
	}

	options := []searcher.Option{
		searcher.WithDifficulty(d, table),
		searcher.WithGoroutines(goroutines),
		searcher.WithBranching(branching),
		searcher.WithRand(rand.New(rand.NewSource(cfg.Seed))),
		searcher.WithMetrics(),
	}
	if cmd.Flags().Changed("episodes") {
		options = append(options, searcher.WithEpisodes(episodes))
	}
	if cmd.Flags().Changed("duration") {
		options = append(options, searcher.WithDuration(duration))
	}
	if cmd.Flags().Changed("exploration") {
		options = append(options, searcher.WithExploration(exploration))
	}
	mcts := searcher.NewMCTS(options...)
	decision, metric := mcts.Simulate(state)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, state)
	if decision.Move == searcher.NoMove {
		fmt.Fprintf(out, "no move: game is %s\n", state.Status())
		return nil
	}
	fmt.Fprintf(out, "player %s plays column %d (win rate %.3f, %d episodes in %s)\n",
		state.Player(), decision.Move, decision.WinRate, metric.Episodes, metric.Duration)
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	s := experiments.Settings{
		Games:  cfg.Experiment.Games,
		OutDir: cfg.Experiment.OutDir,
		Seed:   cfg.Seed,
		Table:  table,

		Goroutines: cfg.Goroutines,
	}
	if games > 0 {
		s.Games = games
	}

	var dir string
	switch experiment {
	case "ladder":
		dir, err = experiments.RunDifficultyLadder(s)
	case "parallel":
		dir, err = experiments.RunParallelizationToStrength(s)
	case "config":
		if len(cfg.Experiment.MatchUps) == 0 {
			return fmt.Errorf("config has no experiment matchups")
		}
		dir, err = experiments.Run("config", s, configsOf(cfg.Experiment.MatchUps), cfg.Experiment.MatchUps)
	default:
		return fmt.Errorf("unknown experiment %q", experiment)
	}
	if err != nil {
		return err
	}

	log.Info().Msgf("results stored in %s", dir)
	return nil
}

func runDataset(cmd *cobra.Command, args []string) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	s := experiments.DatasetSettings{
		Games:    cfg.Dataset.Games,
		Workers:  cfg.Dataset.Workers,
		OutPath:  cfg.Dataset.OutPath,
		Seed:     cfg.Seed,
		Table:    table,
		MatchUps: cfg.Dataset.MatchUps,

		Goroutines: cfg.Goroutines,
	}
	if games > 0 {
		s.Games = games
	}
	if workers > 0 {
		s.Workers = workers
	}
	if outPath != "" {
		s.OutPath = outPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	n, err := experiments.GenerateDataset(ctx, s)
	if err != nil {
		return err
	}
	log.Info().Msgf("wrote %d decisions from %d games in %s", n, s.Games, time.Since(start).Round(time.Millisecond))
	return nil
}

// configsOf lists the distinct agent configs of matchUps in order of appearance.
func configsOf(matchUps [][]metrics.AgentConfig) []metrics.AgentConfig {
	seen := make(map[int]bool)
	var configs []metrics.AgentConfig
	for _, matchup := range matchUps {
		for _, config := range matchup {
			if !seen[config.ID] {
				seen[config.ID] = true
				configs = append(configs, config)
			}
		}
	}
	return configs
}
