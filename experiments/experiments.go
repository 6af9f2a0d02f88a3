package experiments

import (
	"fmt"
	"time"

	"connectfour/engine"
	"connectfour/experiments/metrics"
	"connectfour/game"
	"connectfour/searcher"
	"connectfour/searcher/agent"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const (
	NumGames   = 30 // Per match up
	TimeBudget = 10 * time.Millisecond
)

// Settings are shared by every game of an experiment.
type Settings struct {
	Games  int            // Per match up
	OutDir string         // Parent folder of the experiment results
	Seed   uint64         // Source of every agent's random numbers
	Table  searcher.Table // Difficulty table, nil for the default

	Goroutines int // For searching agents that leave theirs unset
}

func (s Settings) games() int {
	if s.Games > 0 {
		return s.Games
	}
	return NumGames
}

var parallelConfigs = []metrics.AgentConfig{
	{ID: 1, Goroutines: 1, Duration: TimeBudget},
	{ID: 2, Goroutines: 2, Duration: TimeBudget},
	{ID: 3, Goroutines: 4, Duration: TimeBudget},
	{ID: 4, Goroutines: 8, Duration: TimeBudget},
}

// RunParallelizationToStrength pairs each root parallel agent against the baseline
// sequential agent with the same time budget.
func RunParallelizationToStrength(s Settings) (string, error) {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: TimeBudget}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range parallelConfigs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}

	return Run("parallelization_to_strength", s, append(parallelConfigs, baseline), matchUps)
}

// RunDifficultyLadder pairs every difficulty against the random baseline and against
// the next difficulty up.
func RunDifficultyLadder(s Settings) (string, error) {
	baseline := metrics.AgentConfig{ID: 0, Random: true}
	configs := []metrics.AgentConfig{baseline}
	for i, d := range searcher.Difficulties() {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Difficulty: d.String()})
	}

	matchUps := [][]metrics.AgentConfig{}
	for i := 1; i < len(configs); i++ {
		matchUps = append(matchUps, []metrics.AgentConfig{configs[i], baseline})
		if i+1 < len(configs) {
			matchUps = append(matchUps, []metrics.AgentConfig{configs[i], configs[i+1]})
		}
	}

	return Run("difficulty_ladder", s, configs, matchUps)
}

// Run plays every matchup for the configured number of games, alternating the starting
// player, and stores the agent configs, game and move records as CSV files. It returns
// the folder holding the results.
func Run(name string, s Settings, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) (string, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	rng := rand.New(rand.NewSource(s.Seed))

	stored := make([]metrics.AgentConfig, len(configs))
	for i, config := range configs {
		stored[i] = withGoroutines(config, s.Goroutines)
	}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchup := range matchUps {
		if len(matchup) != 2 {
			return "", fmt.Errorf("matchup %d: need two agents, got %d", mi+1, len(matchup))
		}
		config1 := withGoroutines(matchup[0], s.Goroutines)
		config2 := withGoroutines(matchup[1], s.Goroutines)

		log.Info().Msgf("starting matchup %d of %d between agent1=%s and agent2=%s...",
			mi+1, len(matchUps), config1.Label(), config2.Label())

		for i := 0; i < s.games(); i++ {
			starting := game.PlayerA
			if i%2 == 1 {
				starting = game.PlayerB
			}

			winner, gameMetric, moveMetrics, err := runGame(config1, config2, starting, s.Table, rng.Uint64())
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Debug().Msgf("completed matchup %d of %d game %d with winner: %s", mi+1, len(matchUps), i+1, winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	return store(name, s.OutDir, stored, gameRecords, moveRecords)
}

func store(name, outDir string, configs []metrics.AgentConfig, games []metrics.GameRecord, moves []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(outDir, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err = writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err = writer.WriteGameRecords(games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err = writer.WriteMoveRecords(moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")

	return writer.Dir(), nil
}

// runGame executes a single game between two agents and returns the winner
func runGame(config1, config2 metrics.AgentConfig, starting game.Player, table searcher.Table, seed uint64) (string, metrics.GameMetric, []metrics.MoveMetric, error) {
	rng := rand.New(rand.NewSource(seed))
	agent1, err := createAgent(config1, table, rng.Uint64())
	if err != nil {
		return "", metrics.GameMetric{}, nil, err
	}
	agent2, err := createAgent(config2, table, rng.Uint64())
	if err != nil {
		return "", metrics.GameMetric{}, nil, err
	}

	e := engine.LocalEngine([]agent.Agent{agent1, agent2}, engine.WithStartingPlayer(starting))
	winner, gameMetric, moveMetrics := e.Run()
	return winner, gameMetric, moveMetrics, nil
}

func createAgent(config metrics.AgentConfig, table searcher.Table, seed uint64) (agent.Agent, error) {
	rng := rand.New(rand.NewSource(seed))
	if config.Random {
		return agent.NewRandomAgent(rng), nil
	}
	mcts, err := createMCTS(config, table, rng)
	if err != nil {
		return nil, err
	}
	if config.Temperature > 0 {
		return agent.NewTrainingAgent(mcts, config.Temperature, rng), nil
	}
	return agent.NewEvaluationAgent(mcts), nil
}

// withGoroutines fills in the goroutine count of a searching agent that leaves it unset.
func withGoroutines(config metrics.AgentConfig, goroutines int) metrics.AgentConfig {
	if !config.Random && config.Goroutines <= 0 && goroutines > 0 {
		config.Goroutines = goroutines
	}
	return config
}

func createMCTS(config metrics.AgentConfig, table searcher.Table, rng *rand.Rand) (*searcher.MCTS, error) {
	options := []searcher.Option{searcher.WithRand(rng), searcher.WithMetrics()}

	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	if config.Difficulty != "" {
		d, err := searcher.ParseDifficulty(config.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", config.ID, err)
		}
		options = append(options, searcher.WithDifficulty(d, table))
	}
	if config.Goroutines > 0 {
		options = append(options, searcher.WithGoroutines(config.Goroutines))
	}
	if config.Branching > 0 {
		options = append(options, searcher.WithBranching(config.Branching))
	}
	if config.Episodes <= 0 && config.Duration <= 0 && config.Difficulty == "" {
		return nil, fmt.Errorf("agent %d: no episodes, duration or difficulty", config.ID)
	}

	return searcher.NewMCTS(options...), nil
}
