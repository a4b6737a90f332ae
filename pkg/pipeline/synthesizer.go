package pipeline

import (
	"context"
	"fmt"
)

// PlaceholderNoFindings is written to Synthesis when there is nothing to
// synthesize. It fails every quality check, so the grader judges it on the
// same footing as any other weak write-up.
const PlaceholderNoFindings = "No findings available for synthesis."

// Synthesizer turns findings into a structured write-up. It runs both on
// the first pass and on every revision re-entry from the grader.
type Synthesizer struct {
	strategy Strategy
	fallback Strategy
}

func NewSynthesizer(strategy, fallback Strategy) *Synthesizer {
	return &Synthesizer{strategy: strategy, fallback: fallback}
}

func (s *Synthesizer) Process(ctx context.Context, st *State) *State {
	if st.Terminal() {
		return st
	}

	st.Status = StatusSynthesizing
	st.AddMessage(fmt.Sprintf("Synthesizing %d findings", len(st.Findings)), RoleSynthesizer)

	if len(st.Findings) == 0 {
		st.Synthesis = PlaceholderNoFindings
		st.AddMessage("Warning: no findings to synthesize", RoleSynthesizer)
		return st
	}

	synthesis, err := s.strategy.Synthesize(ctx, st.Query, st.Findings)
	if err != nil {
		st.AddMessage(fmt.Sprintf("Synthesis strategy failed (%v), using deterministic fallback", err), RoleSynthesizer)
		synthesis, _ = s.fallback.Synthesize(ctx, st.Query, st.Findings)
	}

	st.Synthesis = synthesis
	st.AddMessage(fmt.Sprintf("Synthesis complete (%d chars)", len(synthesis)), RoleSynthesizer)
	return st
}
