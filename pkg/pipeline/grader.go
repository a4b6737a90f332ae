package pipeline

import (
	"context"
	"fmt"
)

// Grader scores the synthesis and decides accept, revise or fail. Its
// three-way branch is the only place the pipeline can loop, and the
// iteration budget is the sole termination guarantee when scores never
// clear the threshold: once IterationCount reaches MaxIterations the grader
// accepts unconditionally.
type Grader struct {
	strategy  Strategy
	fallback  Strategy
	threshold float64
}

func NewGrader(strategy, fallback Strategy, threshold float64) *Grader {
	return &Grader{strategy: strategy, fallback: fallback, threshold: threshold}
}

func (g *Grader) Process(ctx context.Context, st *State) *State {
	if st.Terminal() {
		return st
	}

	st.Status = StatusReviewing
	st.AddMessage("Reviewing synthesis quality", RoleGrader)

	if st.Synthesis == "" {
		st.GradingNotes = append(st.GradingNotes, "REJECT: No synthesis provided")
		st.Status = StatusFailed
		st.Error = "No synthesis to review"
		return st
	}

	score, notes, err := g.strategy.Score(ctx, st.Synthesis)
	if err != nil {
		st.AddMessage(fmt.Sprintf("Scoring strategy failed (%v), using deterministic fallback", err), RoleGrader)
		score, notes, _ = g.fallback.Score(ctx, st.Synthesis)
	}
	st.GradingNotes = append(st.GradingNotes, notes...)

	// Approval is checked before budget exhaustion, so a score that ties the
	// threshold on the final iteration still logs as approved.
	switch {
	case score >= g.threshold:
		st.Status = StatusComplete
		st.FinalOutput = st.Synthesis
		st.AddMessage(fmt.Sprintf("Approved (score: %.2f)", score), RoleGrader)
	case st.IterationCount >= st.MaxIterations:
		st.Status = StatusComplete
		st.FinalOutput = st.Synthesis
		st.AddMessage(fmt.Sprintf("Max iterations reached, accepting (score: %.2f)", score), RoleGrader)
	default:
		st.Status = StatusSynthesizing
		st.IterationCount++
		st.AddMessage(fmt.Sprintf("Revision requested (score: %.2f, iteration %d)", score, st.IterationCount), RoleGrader)
	}
	return st
}
