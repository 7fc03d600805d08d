// Package cmd implements spsolve's CLI surface: a root command plus solve,
// generate, and version subcommands, layering configuration from defaults,
// an optional YAML file, environment variables, and flags, mirroring the
// teacher's cmd.rootCmd/loadConfig pattern.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edgesp/spsolve/internal/config"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "spsolve",
	Short: "Service placement and request-routing solver for edge/fog/cloud hierarchies",
	Long: `spsolve places application instances and routes request traffic across a
hierarchical edge/fog/cloud infrastructure.

It runs a BRKGA or NSGA-II genetic search (or a deterministic greedy
decoder, or a cluster-decomposition alternative) over a fixed metric
vocabulary and reports the resulting placement and routing solution.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: spsolve.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.PersistentFlags().String("solver", "", "solver pipeline name")
	rootCmd.PersistentFlags().String("output", "", "output format: table, json, markdown")
	rootCmd.PersistentFlags().String("metrics-addr", "", "address to expose Prometheus instrumentation on (empty disables it)")

	_ = viper.BindPFlag("solve.solver", rootCmd.PersistentFlags().Lookup("solver"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("output.metrics_addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
}

func loadConfig() error {
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("spsolve")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.spsolve")
	}

	viper.SetEnvPrefix("SPSOLVE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return cfg.Validate()
}
