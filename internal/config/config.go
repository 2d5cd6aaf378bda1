package config

import (
	"fmt"

	"github.com/vk/gridopt/internal/errs"
	"github.com/vk/gridopt/internal/simulation"
)

const (
	DefaultOutputDir = "outputs/lp"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config is a validated build file.
type Config struct {
	Name             string
	Scenarios        int
	BorderManagement simulation.BorderManagement
	ProblemType      simulation.ProblemType
	OutputDir        string
	Solve            bool
	ExportLP         bool
	Block            simulation.TimeBlock
	LogLevel         string
	LogFormat        string
}

// Raw holds the decoded values before validation. Empty fields take their
// defaults.
type Raw struct {
	Name             string
	Scenarios        *int
	BorderManagement string
	ProblemType      string
	OutputDir        string
	Solve            bool
	ExportLP         bool
	BlockID          int
	Timesteps        []int
	HasBlock         bool
	LogLevel         string
	LogFormat        string
}

var (
	logLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
	logFormats = map[string]struct{}{"text": {}, "json": {}}
)

// NewConfig applies defaults to raw and validates the result. Every problem
// found is reported in one error.
func NewConfig(raw Raw) (*Config, error) {
	cfg := &Config{
		Name:      raw.Name,
		Scenarios: 1,
		OutputDir: raw.OutputDir,
		Solve:     raw.Solve,
		ExportLP:  raw.ExportLP,
		Block:     simulation.TimeBlock{ID: raw.BlockID, Timesteps: raw.Timesteps},
		LogLevel:  raw.LogLevel,
		LogFormat: raw.LogFormat,
	}
	if cfg.Name == "" {
		cfg.Name = simulation.DefaultProblemName
	}
	if raw.Scenarios != nil {
		cfg.Scenarios = *raw.Scenarios
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}

	var problems []string
	if raw.BorderManagement != "" {
		b, err := simulation.ParseBorderManagement(raw.BorderManagement)
		if err != nil {
			problems = append(problems, fmt.Sprintf("border_management: unknown value %q", raw.BorderManagement))
		}
		cfg.BorderManagement = b
	}
	if raw.ProblemType != "" {
		p, err := simulation.ParseProblemType(raw.ProblemType)
		if err != nil {
			problems = append(problems, fmt.Sprintf("problem_type: unknown value %q", raw.ProblemType))
		}
		cfg.ProblemType = p
	}
	if cfg.Scenarios < 1 {
		problems = append(problems, fmt.Sprintf("scenarios: must be positive, got %d", cfg.Scenarios))
	}
	if !raw.HasBlock {
		problems = append(problems, "block: a block is required")
	} else if len(cfg.Block.Timesteps) == 0 {
		problems = append(problems, "block: timesteps must not be empty")
	}
	seen := make(map[int]struct{}, len(cfg.Block.Timesteps))
	for _, t := range cfg.Block.Timesteps {
		if t < 0 {
			problems = append(problems, fmt.Sprintf("block: negative timestep %d", t))
		}
		if _, dup := seen[t]; dup {
			problems = append(problems, fmt.Sprintf("block: duplicate timestep %d", t))
		}
		seen[t] = struct{}{}
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		problems = append(problems, fmt.Sprintf("log.level: unknown value %q", cfg.LogLevel))
	}
	if _, ok := logFormats[cfg.LogFormat]; !ok {
		problems = append(problems, fmt.Sprintf("log.format: unknown value %q", cfg.LogFormat))
	}

	if err := errs.Collect(errs.ErrConfiguration, "invalid build file", problems); err != nil {
		return nil, err
	}
	return cfg, nil
}
