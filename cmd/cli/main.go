package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agent-orchestrator/internal/cli"
	"agent-orchestrator/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "agentctl",
		Short:   "agentctl - bounded multi-agent research pipeline",
		Version: version.Version,
		Long: `agentctl drives the gather/synthesize/grade pipeline from the command
line: single runs, a canned demo, and the topology dump.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.DemoCmd())
	rootCmd.AddCommand(cli.GraphCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
