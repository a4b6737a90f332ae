package pipeline

import (
	"context"
	"fmt"
)

// Gatherer is the first stage: it collects raw findings for the query. It
// never fails a record on its own; an empty findings list is valid input
// for the synthesizer, which knows how to handle it.
type Gatherer struct {
	strategy Strategy
	fallback Strategy
}

func NewGatherer(strategy, fallback Strategy) *Gatherer {
	return &Gatherer{strategy: strategy, fallback: fallback}
}

func (g *Gatherer) Process(ctx context.Context, st *State) *State {
	if st.Terminal() {
		return st
	}

	st.Status = StatusGathering
	st.AddMessage(fmt.Sprintf("Starting research on: %s", st.Query), RoleGatherer)

	findings, err := g.strategy.GenerateFindings(ctx, st.Query)
	if err != nil {
		st.AddMessage(fmt.Sprintf("Findings strategy failed (%v), using deterministic fallback", err), RoleGatherer)
		// the mock fallback is pure and cannot fail
		findings, _ = g.fallback.GenerateFindings(ctx, st.Query)
	}

	st.Findings = findings
	st.AddMessage(fmt.Sprintf("Gathered %d findings", len(findings)), RoleGatherer)
	return st
}
