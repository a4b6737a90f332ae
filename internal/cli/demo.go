package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agent-orchestrator/pkg/pipeline"
)

var demoQueries = []string{
	"What are the latest advances in AI safety?",
	"How does quantum computing work?",
}

// DemoCmd returns the demo command
func DemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline against a set of canned queries",
		RunE: func(cmd *cobra.Command, args []string) error {
			maxIterations, _ := cmd.Flags().GetInt("max-iterations")

			banner := strings.Repeat("=", 60)
			fmt.Println(banner)
			fmt.Println(color.New(color.FgCyan).Sprint("Multi-Agent Research Pipeline Demo"))
			fmt.Println(banner)

			cfg := pipeline.DefaultConfig()
			cfg.MaxIterations = maxIterations
			orch := pipeline.NewOrchestrator(cfg)

			for _, query := range demoQueries {
				fmt.Printf("\nQuery: %s\n", query)
				fmt.Println(strings.Repeat("-", 60))

				result := orch.Run(cmd.Context(), query)

				fmt.Printf("Status: %s\n", renderStatus(result.Status))
				fmt.Printf("Iterations: %d\n", result.IterationCount)
				fmt.Printf("Messages: %d\n", len(result.Messages))
				fmt.Printf("\nFinal Output:\n%s\n", preview(result.FinalOutput, 200))
			}
			return nil
		},
	}

	cmd.Flags().IntP("max-iterations", "m", pipeline.DefaultMaxIterations, "Revision budget for the grading loop")
	return cmd
}

func renderStatus(s pipeline.Status) string {
	switch s {
	case pipeline.StatusComplete:
		return color.New(color.FgGreen).Sprint(string(s))
	case pipeline.StatusFailed:
		return color.New(color.FgRed).Sprint(string(s))
	default:
		return string(s)
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
