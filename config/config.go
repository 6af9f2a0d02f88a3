package config

import (
	"fmt"
	"os"
	"strconv"

	"connectfour/experiments/metrics"
	"connectfour/searcher"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the command line tool. The zero seed draws one from
// the clock.
type Config struct {
	Seed         uint64                      `yaml:"seed"`
	Goroutines   int                         `yaml:"goroutines"`
	Log          LogConfig                   `yaml:"log"`
	Difficulties map[string]searcher.Setting `yaml:"difficulties"`
	Experiment   ExperimentConfig            `yaml:"experiment"`
	Dataset      DatasetConfig               `yaml:"dataset"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type ExperimentConfig struct {
	Games    int                     `yaml:"games"`
	OutDir   string                  `yaml:"out_dir"`
	MatchUps [][]metrics.AgentConfig `yaml:"matchups"`
}

type DatasetConfig struct {
	Games    int                     `yaml:"games"`
	Workers  int                     `yaml:"workers"`
	OutPath  string                  `yaml:"out_path"`
	MatchUps [][]metrics.AgentConfig `yaml:"matchups"`
}

func Default() Config {
	difficulties := make(map[string]searcher.Setting)
	for d, setting := range searcher.DefaultTable() {
		difficulties[d.String()] = setting
	}
	return Config{
		Goroutines:   1,
		Log:          LogConfig{Level: "info", Pretty: true},
		Difficulties: difficulties,
		Experiment: ExperimentConfig{
			Games:  30,
			OutDir: "results",
		},
		Dataset: DatasetConfig{
			Games:   1000,
			Workers: 6,
			OutPath: "dataset/connectfour_mcts.parquet",
		},
	}
}

// Load overlays the YAML file at path, if any, and the environment on the defaults.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	loadFromEnv(&config)

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func loadFromEnv(config *Config) {
	if v := os.Getenv("CONNECTFOUR_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Seed = seed
		}
	}
	if v := os.Getenv("CONNECTFOUR_GOROUTINES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Goroutines = i
		}
	}
	if v := os.Getenv("CONNECTFOUR_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}

func (c Config) Validate() error {
	if c.Goroutines < 1 {
		return fmt.Errorf("goroutines must be >= 1")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if _, err := c.Table(); err != nil {
		return err
	}
	if c.Experiment.Games < 1 {
		return fmt.Errorf("experiment games must be >= 1")
	}
	if c.Dataset.Games < 1 {
		return fmt.Errorf("dataset games must be >= 1")
	}
	if c.Dataset.Workers < 1 {
		return fmt.Errorf("dataset workers must be >= 1")
	}
	return nil
}

// Table converts the configured difficulties into a validated search table.
// Difficulties missing from the file keep their default setting.
func (c Config) Table() (searcher.Table, error) {
	table := searcher.DefaultTable()
	for name, setting := range c.Difficulties {
		d, err := searcher.ParseDifficulty(name)
		if err != nil {
			return nil, fmt.Errorf("difficulties: %w", err)
		}
		table[d] = setting
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("difficulties: %w", err)
	}
	return table, nil
}
