package pipeline

import "context"

// Stage is the contract every pipeline node implements: consume the shared
// record, mutate it, hand it back. Implementations hold configuration only,
// never per-run state, so a single instance is safe to reuse across runs.
type Stage interface {
	Process(ctx context.Context, st *State) *State
}

// Strategy produces the actual content for each stage. Implementations must
// bound every external call with a timeout; a returned error makes the
// calling stage fall back to the deterministic mock for that invocation.
type Strategy interface {
	// GenerateFindings returns raw findings for a query.
	GenerateFindings(ctx context.Context, query string) ([]string, error)

	// Synthesize turns findings into a structured write-up.
	Synthesize(ctx context.Context, query string, findings []string) (string, error)

	// Score rates a write-up in [0, 1] and returns one note per check.
	Score(ctx context.Context, synthesis string) (float64, []string, error)
}
