package bootstrap

import (
	"log"

	"agent-orchestrator/internal/config"
	"agent-orchestrator/internal/controller"
	"agent-orchestrator/internal/pkg/logger"
	"agent-orchestrator/internal/repository/memory"
	"agent-orchestrator/internal/service"
	"agent-orchestrator/internal/stream"
	"agent-orchestrator/pkg/llm"
	"agent-orchestrator/pkg/llm/factory"
	"agent-orchestrator/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	PipelineController controller.IPipelineController

	// Exposed for the demo streamer and for integration tests
	Broker          *stream.Broker
	PipelineService service.IPipelineService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	streamLogger := logger.NewIsolatedLogger("logs/stream.log")
	broker := stream.NewBroker(pubSub, streamLogger)

	// 3. Strategy Backend
	// The LLM provider is only required when the server defaults to the
	// live strategy. In mock mode a missing provider just disables the
	// per-request service override.
	var llmProvider llm.LLMProvider
	provider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceKey,
	)
	if err != nil {
		if cfg.Pipeline.Mode == string(pipeline.ModeService) {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		log.Printf("[WARN] LLM Provider unavailable, live strategy disabled: %v", err)
	} else {
		llmProvider = provider
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// Initialize In-Memory Run Storage
	runRepo := memory.NewRunRepository()

	// 4. Services
	pipelineService := service.NewPipelineService(
		cfg.Pipeline,
		runRepo,
		broker,
		llmProvider, // Injected
		sysLogger,
	)

	// 5. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		PipelineController: controller.NewPipelineController(pipelineService, broker, sysLogger),

		Broker:          broker,
		PipelineService: pipelineService,
	}
}
