// Package config holds spsolve's top-level configuration: solver
// parameters layered from defaults, a YAML file, and CLI flags, mirroring
// the teacher's config.Default()/Validate() pattern.
package config

import "fmt"

// Config is the top-level configuration for spsolve.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Solve  SolveConfig  `yaml:"solve"`
	Output OutputConfig `yaml:"output"`
}

// EngineConfig parameterizes the BRKGA/NSGA-II generation loop (C5/C6).
type EngineConfig struct {
	PopulationSize   int     `yaml:"population_size" mapstructure:"population_size"`
	Generations      int     `yaml:"generations"`
	EliteProportion  float64 `yaml:"elite_proportion" mapstructure:"elite_proportion"`
	MutantProportion float64 `yaml:"mutant_proportion" mapstructure:"mutant_proportion"`
	EliteProbability float64 `yaml:"elite_probability" mapstructure:"elite_probability"`
	PoolSize         int     `yaml:"pool_size" mapstructure:"pool_size"`
	Seed             int64   `yaml:"seed"`
}

// SolveConfig selects the solver pipeline and its objectives (C8).
type SolveConfig struct {
	Solver        string   `yaml:"solver"`
	Objectives    []string `yaml:"objectives"`
	Seeds         []string `yaml:"seeds"`
	PreferredEps  float64  `yaml:"preferred_epsilon" mapstructure:"preferred_epsilon"`
	StopThreshold float64  `yaml:"stop_threshold" mapstructure:"stop_threshold"`
}

// OutputConfig selects the report format (C8/report).
type OutputConfig struct {
	Format      string `yaml:"format"`
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			PopulationSize:   100,
			Generations:      200,
			EliteProportion:  0.2,
			MutantProportion: 0.15,
			PoolSize:         1,
			Seed:             1,
		},
		Solve: SolveConfig{
			Solver:        "soga_hi",
			Objectives:    []string{"max_deadline_violation"},
			Seeds:         nil,
			PreferredEps:  0.01,
			StopThreshold: 0.01,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Validate checks the config for consistency, fixing up defaultable
// fields (EliteProbability) in place.
func (c *Config) Validate() error {
	e := &c.Engine
	if e.PopulationSize <= 0 {
		return fmt.Errorf("engine.population_size must be positive, got %d", e.PopulationSize)
	}
	if e.Generations < 0 {
		return fmt.Errorf("engine.generations must be non-negative, got %d", e.Generations)
	}
	if e.EliteProportion < 0 || e.EliteProportion > 1 {
		return fmt.Errorf("engine.elite_proportion must be between 0 and 1, got %v", e.EliteProportion)
	}
	if e.MutantProportion < 0 || e.MutantProportion > 1 {
		return fmt.Errorf("engine.mutant_proportion must be between 0 and 1, got %v", e.MutantProportion)
	}
	if e.EliteProportion+e.MutantProportion > 1 {
		return fmt.Errorf("engine.elite_proportion + engine.mutant_proportion must be <= 1, got %v",
			e.EliteProportion+e.MutantProportion)
	}
	if e.EliteProbability == 0 {
		e.EliteProbability = e.EliteProportion
	}
	if e.PoolSize <= 0 {
		e.PoolSize = 1
	}

	if len(c.Solve.Objectives) == 0 {
		return fmt.Errorf("solve.objectives must name at least one metric")
	}
	validFormats := map[string]bool{"table": true, "json": true, "markdown": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output.format must be table, json, or markdown, got %q", c.Output.Format)
	}
	return nil
}
