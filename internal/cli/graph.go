package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"agent-orchestrator/pkg/pipeline"
)

// GraphCmd returns the graph command
func GraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the pipeline topology as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := pipeline.NewOrchestrator(pipeline.DefaultConfig())

			out, err := json.MarshalIndent(orch.Graph(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
