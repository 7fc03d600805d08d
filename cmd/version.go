package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgesp/spsolve/internal/metric"
	"github.com/edgesp/spsolve/internal/solver"
	"github.com/edgesp/spsolve/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information and the resolved solver/metric vocabulary",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spsolve %s\n", version.Version)
		fmt.Printf("  commit:  %s\n", version.Commit)
		fmt.Printf("  built:   %s\n", version.BuildDate)
		fmt.Printf("  solvers: %v\n", solver.Names())
		fmt.Printf("  metrics: %v\n", metric.Names())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
