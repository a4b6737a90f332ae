package pipeline

import (
	"context"
	"strings"
	"testing"

	"agent-orchestrator/pkg/pipeline/strategy"
)

func TestOrchestratorRunCompletes(t *testing.T) {
	orch := NewOrchestrator(DefaultConfig())

	st := orch.Run(context.Background(), "What is machine learning?")

	if st.Status != StatusComplete {
		t.Fatalf("Status = %q, want %q", st.Status, StatusComplete)
	}
	if st.TaskID == "" {
		t.Error("TaskID must be assigned")
	}
	if st.FinalOutput == "" {
		t.Error("FinalOutput must be populated")
	}
	// Mock synthesis passes every quality check, so the first review approves.
	if st.IterationCount != 0 {
		t.Errorf("IterationCount = %d, want 0", st.IterationCount)
	}
	if len(st.Findings) == 0 {
		t.Error("Findings must be populated")
	}
	if st.Messages[0].Role != RoleGatherer {
		t.Errorf("Messages[0].Role = %q, want %q", st.Messages[0].Role, RoleGatherer)
	}
}

// With an unreachable threshold the run must still terminate, spending the
// whole revision budget and then force-accepting.
func TestOrchestratorRevisionLoopExhaustsBudget(t *testing.T) {
	orch := NewOrchestrator(Config{
		Mode:              ModeMock,
		MaxIterations:     2,
		ApprovalThreshold: 1.01,
	})

	st := orch.Run(context.Background(), "quantum computing")

	if st.Status != StatusComplete {
		t.Fatalf("Status = %q, want %q", st.Status, StatusComplete)
	}
	if st.IterationCount != 2 {
		t.Errorf("IterationCount = %d, want exactly the budget 2", st.IterationCount)
	}
	if st.FinalOutput == "" {
		t.Error("forced accept must still publish a final output")
	}
	if got := st.Messages[len(st.Messages)-1].Content; !strings.HasPrefix(got, "Max iterations reached") {
		t.Errorf("last message = %q, want forced-accept note", got)
	}
}

// Drives the stages one by one through a full revision loop: gather,
// synthesize, first review (revision), forced final review.
func TestPipelineStageSequence(t *testing.T) {
	mock := strategy.NewMock()
	gatherer := NewGatherer(mock, mock)
	synthesizer := NewSynthesizer(mock, mock)
	grader := NewGrader(mock, mock, 1.01)

	st := NewState("quantum computing", 2)
	ctx := context.Background()

	st = gatherer.Process(ctx, st)
	if st.Status != StatusGathering {
		t.Fatalf("after gatherer Status = %q, want %q", st.Status, StatusGathering)
	}
	if len(st.Findings) == 0 {
		t.Fatal("after gatherer findings must be non-empty")
	}

	st = synthesizer.Process(ctx, st)
	if st.Status != StatusSynthesizing {
		t.Fatalf("after synthesizer Status = %q, want %q", st.Status, StatusSynthesizing)
	}

	st = grader.Process(ctx, st)
	if st.Status != StatusSynthesizing {
		t.Fatalf("after first review Status = %q, want %q (revision)", st.Status, StatusSynthesizing)
	}
	if st.IterationCount != 1 {
		t.Fatalf("after first review IterationCount = %d, want 1", st.IterationCount)
	}

	st.IterationCount = st.MaxIterations
	st = grader.Process(ctx, st)
	if st.Status != StatusComplete {
		t.Fatalf("after final review Status = %q, want %q", st.Status, StatusComplete)
	}
	if st.FinalOutput == "" {
		t.Error("final output must be populated")
	}
}

func TestOrchestratorRunStep(t *testing.T) {
	orch := NewOrchestrator(DefaultConfig())
	ctx := context.Background()

	st := NewState("step test", 3)

	st = orch.RunStep(ctx, st)
	if st.Status != StatusGathering {
		t.Fatalf("step 1 Status = %q, want %q", st.Status, StatusGathering)
	}
	if len(st.Findings) == 0 {
		t.Fatal("step 1 must populate findings")
	}

	st = orch.RunStep(ctx, st)
	if st.Status != StatusSynthesizing {
		t.Fatalf("step 2 Status = %q, want %q", st.Status, StatusSynthesizing)
	}
	if st.Synthesis == "" {
		t.Fatal("step 2 must populate the synthesis")
	}

	// Step mode dispatches on status alone, so the caller advances the
	// record to reviewing before invoking the grader.
	st.Status = StatusReviewing
	st = orch.RunStep(ctx, st)
	if !st.Terminal() {
		t.Fatalf("step 3 Status = %q, want terminal", st.Status)
	}
}

func TestOrchestratorRunStepLeavesTerminalRecordsUntouched(t *testing.T) {
	orch := NewOrchestrator(DefaultConfig())

	st := NewState("done", 3)
	st.Status = StatusComplete
	st.FinalOutput = "finished"

	got := orch.RunStep(context.Background(), st)

	if got.Status != StatusComplete || len(got.Messages) != 0 {
		t.Errorf("terminal record mutated: status=%q messages=%d", got.Status, len(got.Messages))
	}
}

func TestOrchestratorObserverSeesEveryTransition(t *testing.T) {
	var observed []Status
	orch := NewOrchestrator(DefaultConfig(), WithObserver(func(st *State) {
		observed = append(observed, st.Status)
	}))

	orch.Run(context.Background(), "observer test")

	want := []Status{StatusGathering, StatusSynthesizing, StatusComplete}
	if len(observed) != len(want) {
		t.Fatalf("observed %d transitions %v, want %d", len(observed), observed, len(want))
	}
	for i := range want {
		if observed[i] != want[i] {
			t.Errorf("observed[%d] = %q, want %q", i, observed[i], want[i])
		}
	}
}

func TestOrchestratorWithoutObserver(t *testing.T) {
	orch := NewOrchestrator(DefaultConfig())

	// Must not panic with no observer registered.
	st := orch.Run(context.Background(), "no observer")
	if !st.Terminal() {
		t.Errorf("Status = %q, want terminal", st.Status)
	}
}

// Service mode without an injected strategy silently degrades to mock, so
// a misconfigured caller still gets a terminating pipeline.
func TestOrchestratorServiceModeWithoutStrategy(t *testing.T) {
	orch := NewOrchestrator(Config{
		Mode:              ModeService,
		MaxIterations:     3,
		ApprovalThreshold: 0.6,
	})

	st := orch.Run(context.Background(), "degraded service")
	if st.Status != StatusComplete {
		t.Errorf("Status = %q, want %q", st.Status, StatusComplete)
	}
}

// A service strategy that fails at every stage still yields a complete run
// through the mock fallback, with the diagnostics on the audit trail.
func TestOrchestratorServiceStrategyFailuresFallBack(t *testing.T) {
	stub := &stubStrategy{
		findingsErr:  context.DeadlineExceeded,
		synthesisErr: context.DeadlineExceeded,
		scoreErr:     context.DeadlineExceeded,
	}
	orch := NewOrchestrator(Config{
		Mode:              ModeService,
		MaxIterations:     3,
		ApprovalThreshold: 0.6,
	}, WithStrategy(stub))

	st := orch.Run(context.Background(), "flaky backend")

	if st.Status != StatusComplete {
		t.Fatalf("Status = %q, want %q", st.Status, StatusComplete)
	}

	var fallbacks int
	for _, m := range st.Messages {
		if strings.Contains(m.Content, "using deterministic fallback") {
			fallbacks++
		}
	}
	if fallbacks != 3 {
		t.Errorf("fallback diagnostics = %d, want one per stage", fallbacks)
	}
}

func TestOrchestratorGraph(t *testing.T) {
	topo := NewOrchestrator(DefaultConfig()).Graph()

	if len(topo.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(topo.Nodes))
	}
	if len(topo.Edges) != 4 {
		t.Errorf("len(Edges) = %d, want 4", len(topo.Edges))
	}

	var hasRevisionEdge bool
	for _, e := range topo.Edges {
		if e == "grader -> synthesizer (revision)" {
			hasRevisionEdge = true
		}
	}
	if !hasRevisionEdge {
		t.Errorf("Edges = %v, want the revision edge listed", topo.Edges)
	}
}
