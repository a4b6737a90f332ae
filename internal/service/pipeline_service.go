package service

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"agent-orchestrator/internal/config"
	"agent-orchestrator/internal/dto"
	"agent-orchestrator/internal/pkg/logger"
	"agent-orchestrator/internal/repository/memory"
	"agent-orchestrator/internal/stream"
	"agent-orchestrator/pkg/llm"
	"agent-orchestrator/pkg/pipeline"
	"agent-orchestrator/pkg/pipeline/strategy"
)

// ErrRunNotFound is returned when a task id has no record in the run store,
// either because it never existed or because the entry expired.
var ErrRunNotFound = errors.New("run not found")

type IPipelineService interface {
	Run(ctx context.Context, req *dto.RunPipelineRequest) (*dto.RunPipelineResponse, error)
	GetRun(ctx context.Context, taskID string) (map[string]interface{}, error)
	Graph() pipeline.Topology
	StreamDemo(ctx context.Context, req *dto.DemoStreamRequest, streamID string) *pipeline.State
}

type pipelineService struct {
	cfg        config.PipelineConfig
	runRepo    *memory.RunRepository
	broker     *stream.Broker
	provider   llm.LLMProvider
	sysLogger  logger.ILogger
	pipeLogger *log.Logger
}

func NewPipelineService(
	cfg config.PipelineConfig,
	runRepo *memory.RunRepository,
	broker *stream.Broker,
	provider llm.LLMProvider,
	sysLogger logger.ILogger,
) IPipelineService {
	return &pipelineService{
		cfg:        cfg,
		runRepo:    runRepo,
		broker:     broker,
		provider:   provider,
		sysLogger:  sysLogger,
		pipeLogger: initPipelineLogger(),
	}
}

// initPipelineLogger builds the plain logger handed to pkg/pipeline
// components. Falls back to stdout when the logs directory is unavailable.
func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

func (s *pipelineService) Run(ctx context.Context, req *dto.RunPipelineRequest) (*dto.RunPipelineResponse, error) {
	orch := s.newOrchestrator(req.Mock, req.MaxIterations, req.ApprovalThreshold, nil)

	result := orch.Run(ctx, req.Query)
	s.runRepo.Save(result)

	s.sysLogger.Info("Pipeline", "Run finished", map[string]interface{}{
		"task_id":    result.TaskID,
		"status":     string(result.Status),
		"iterations": result.IterationCount,
	})

	return &dto.RunPipelineResponse{
		TaskID:         result.TaskID,
		Query:          result.Query,
		Status:         string(result.Status),
		FinalOutput:    result.FinalOutput,
		MessageCount:   len(result.Messages),
		IterationCount: result.IterationCount,
		FindingsCount:  len(result.Findings),
	}, nil
}

func (s *pipelineService) GetRun(_ context.Context, taskID string) (map[string]interface{}, error) {
	st, found := s.runRepo.Get(taskID)
	if !found {
		return nil, ErrRunNotFound
	}
	return st.ToMap(), nil
}

func (s *pipelineService) Graph() pipeline.Topology {
	return pipeline.NewOrchestrator(pipeline.DefaultConfig()).Graph()
}

// StreamDemo runs a pipeline publishing one transition event per stage
// invocation onto the given stream. The caller subscribes to the stream
// before invoking this, otherwise early frames are lost.
func (s *pipelineService) StreamDemo(ctx context.Context, req *dto.DemoStreamRequest, streamID string) *pipeline.State {
	orch := s.newOrchestrator(req.Mock, req.MaxIterations, nil, s.broker.Observer(streamID))

	result := orch.Run(ctx, req.Query)
	s.runRepo.Save(result)
	return result
}

// newOrchestrator resolves request overrides against the configured
// defaults. Stages hold configuration only, so building a fresh
// orchestrator per run is cheap and keeps concurrent runs fully isolated.
func (s *pipelineService) newOrchestrator(mock *bool, maxIterations int, threshold *float64, observer func(*pipeline.State)) *pipeline.Orchestrator {
	cfg := pipeline.Config{
		Mode:              pipeline.ModeMock,
		MaxIterations:     s.cfg.MaxIterations,
		ApprovalThreshold: s.cfg.ApprovalThreshold,
	}

	serviceMode := s.cfg.Mode == "service"
	if mock != nil {
		serviceMode = !*mock
	}
	if serviceMode && s.provider != nil {
		cfg.Mode = pipeline.ModeService
	}
	if maxIterations > 0 {
		cfg.MaxIterations = maxIterations
	}
	if threshold != nil {
		cfg.ApprovalThreshold = *threshold
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(s.pipeLogger),
	}
	if cfg.Mode == pipeline.ModeService {
		timeout := time.Duration(s.cfg.StrategyTimeoutSeconds) * time.Second
		opts = append(opts, pipeline.WithStrategy(strategy.NewService(s.provider, timeout, s.pipeLogger)))
	}
	if observer != nil {
		opts = append(opts, pipeline.WithObserver(observer))
	}

	return pipeline.NewOrchestrator(cfg, opts...)
}
