package pipeline

import (
	"context"
	"io"
	"log"

	"agent-orchestrator/pkg/pipeline/strategy"
)

// Mode selects where stage content comes from.
type Mode string

const (
	// ModeMock uses the deterministic built-in strategy; no external calls.
	ModeMock Mode = "mock"
	// ModeService uses an injected generation strategy with the mock as the
	// mandatory fallback.
	ModeService Mode = "service"
)

// Config holds the orchestrator knobs. The mode is resolved once at
// construction; nothing reads ambient configuration mid-run.
type Config struct {
	Mode              Mode
	MaxIterations     int
	ApprovalThreshold float64
}

// DefaultConfig mirrors the defaults exposed on the HTTP and CLI surfaces.
func DefaultConfig() Config {
	return Config{
		Mode:              ModeMock,
		MaxIterations:     DefaultMaxIterations,
		ApprovalThreshold: 0.6,
	}
}

// Option customizes an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithStrategy supplies the content-generation strategy used in service
// mode. Ignored in mock mode.
func WithStrategy(s Strategy) Option {
	return func(o *Orchestrator) { o.strategy = s }
}

// WithObserver registers a callback invoked after every stage invocation,
// including the terminal one. A nil observer is a no-op; the control flow
// is identical whether or not anyone is listening.
func WithObserver(fn func(*State)) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithLogger routes orchestration logs to the given logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// Orchestrator owns the stage instances and the control-flow graph:
//
//	gatherer -> synthesizer <-> grader -> terminal
//
// Stages never call each other; the orchestrator drives every transition.
type Orchestrator struct {
	cfg      Config
	strategy Strategy
	observer func(*State)
	logger   *log.Logger

	gatherer    *Gatherer
	synthesizer *Synthesizer
	grader      *Grader
}

var _ Strategy = &strategy.Mock{}

func NewOrchestrator(cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(o)
	}

	fallback := strategy.NewMock()
	if cfg.Mode != ModeService || o.strategy == nil {
		o.strategy = fallback
	}

	o.gatherer = NewGatherer(o.strategy, fallback)
	o.synthesizer = NewSynthesizer(o.strategy, fallback)
	o.grader = NewGrader(o.strategy, fallback, cfg.ApprovalThreshold)
	return o
}

// Run executes the full pipeline for one query and returns the terminal
// record. Liveness rests entirely on the grader's forced-accept rule: the
// loop below needs at most MaxIterations+1 synthesize/grade round trips.
func (o *Orchestrator) Run(ctx context.Context, query string) *State {
	st := NewState(query, o.cfg.MaxIterations)
	o.logger.Printf("[PIPELINE] run %s: %q (mode=%s, max_iterations=%d, threshold=%.2f)",
		st.TaskID, query, o.cfg.Mode, o.cfg.MaxIterations, o.cfg.ApprovalThreshold)

	st = o.invoke(ctx, o.gatherer, st)
	if st.Status == StatusFailed {
		return st
	}

	for !st.Terminal() {
		st = o.invoke(ctx, o.synthesizer, st)
		st = o.invoke(ctx, o.grader, st)
	}

	o.logger.Printf("[PIPELINE] run %s finished: status=%s iterations=%d messages=%d",
		st.TaskID, st.Status, st.IterationCount, len(st.Messages))
	return st
}

// RunStep advances a record by exactly one stage, dispatched on its current
// status. Terminal records pass through untouched. Intended for stepwise
// drivers such as debuggers and visualizers.
func (o *Orchestrator) RunStep(ctx context.Context, st *State) *State {
	switch st.Status {
	case StatusPending:
		return o.invoke(ctx, o.gatherer, st)
	case StatusGathering, StatusSynthesizing:
		return o.invoke(ctx, o.synthesizer, st)
	case StatusReviewing:
		return o.invoke(ctx, o.grader, st)
	}
	return st
}

func (o *Orchestrator) invoke(ctx context.Context, stage Stage, st *State) *State {
	st = stage.Process(ctx, st)
	if o.observer != nil {
		o.observer(st)
	}
	return st
}

// Topology is the static node/edge listing of the stage graph, for
// diagnostic display only. The orchestrator never consults it at runtime.
type Topology struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Graph describes the pipeline topology: three nodes and four directed
// edges, including the revision edge back into the synthesizer.
func (o *Orchestrator) Graph() Topology {
	return Topology{
		Nodes: []string{RoleGatherer, RoleSynthesizer, RoleGrader},
		Edges: []string{
			"gatherer -> synthesizer",
			"synthesizer -> grader",
			"grader -> synthesizer (revision)",
			"grader -> END (approved)",
		},
	}
}
