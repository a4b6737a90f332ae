package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"agent-orchestrator/internal/config"
	"agent-orchestrator/pkg/llm/factory"
	"agent-orchestrator/pkg/pipeline"
	"agent-orchestrator/pkg/pipeline/strategy"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [query]",
		Short: "Run the research pipeline for a single query",
		Long: `Run the research pipeline for a single query and print the final
run record as JSON.

Examples:
  agentctl run "How does quantum computing work?"
  agentctl run --max-iterations 5 --threshold 0.8 "What is RAG?"
  agentctl run --service "What is RAG?"   # live LLM strategy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxIterations, _ := cmd.Flags().GetInt("max-iterations")
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			useService, _ := cmd.Flags().GetBool("service")

			orch, err := buildOrchestrator(useService, maxIterations, threshold)
			if err != nil {
				return err
			}

			result := orch.Run(cmd.Context(), args[0])

			out, err := json.MarshalIndent(result.ToMap(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if result.Status == pipeline.StatusFailed {
				return fmt.Errorf("pipeline failed: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntP("max-iterations", "m", pipeline.DefaultMaxIterations, "Revision budget for the grading loop")
	cmd.Flags().Float64P("threshold", "t", pipeline.DefaultConfig().ApprovalThreshold, "Approval threshold in [0,1]")
	cmd.Flags().Bool("service", false, "Use the live LLM strategy instead of the deterministic mock")
	return cmd
}

// buildOrchestrator wires a local orchestrator the same way the HTTP
// service does, minus the run store and stream broker.
func buildOrchestrator(useService bool, maxIterations int, threshold float64) (*pipeline.Orchestrator, error) {
	cfg := pipeline.DefaultConfig()
	cfg.MaxIterations = maxIterations
	cfg.ApprovalThreshold = threshold

	opts := []pipeline.Option{
		pipeline.WithLogger(log.New(os.Stderr, "", log.LstdFlags)),
	}

	if useService {
		appCfg := config.Load()
		provider, err := factory.NewLLMProvider(
			appCfg.Ai.LLMProvider,
			appCfg.Ai.LLMModel,
			appCfg.Ai.OllamaBaseURL,
			appCfg.Ai.HuggingFaceKey,
		)
		if err != nil {
			return nil, fmt.Errorf("initialize llm provider: %w", err)
		}
		cfg.Mode = pipeline.ModeService
		timeout := time.Duration(appCfg.Pipeline.StrategyTimeoutSeconds) * time.Second
		opts = append(opts, pipeline.WithStrategy(strategy.NewService(provider, timeout, nil)))
	}

	return pipeline.NewOrchestrator(cfg, opts...), nil
}
