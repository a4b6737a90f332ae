package strategy

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// Mock generates deterministic stage content without any external calls.
// The same query always yields the same findings and the same synthesis,
// so tests can assert exact outputs. Mock is also the mandatory fallback
// behind every service-mode strategy failure.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

// findingCategories is checked in order; the first category whose name
// appears in the query wins.
var findingCategories = []struct {
	name      string
	templates []string
}{
	{"technology", []string{
		"Technology research: Latest benchmarks show 40% improvement in performance.",
		"Technology research: Adoption rates have doubled in the past year.",
		"Technology research: Three competing approaches have emerged as frontrunners.",
	}},
	{"science", []string{
		"Scientific research: Peer-reviewed studies confirm the hypothesis.",
		"Scientific research: Reproducibility rate exceeds 85% across labs.",
		"Scientific research: New methodology enables faster experimentation.",
	}},
}

// defaultFindingSets is the fixed table for queries matching no category.
// templateIndex picks the slot.
var defaultFindingSets = [][]string{
	{
		"Finding on '%s': The topic has significant implications across multiple domains.",
		"Finding on '%s': Recent studies show measurable improvements in key metrics.",
		"Finding on '%s': Expert consensus supports a multi-faceted approach.",
	},
	{
		"Finding on '%s': Adoption has accelerated over the last two review cycles.",
		"Finding on '%s': Independent evaluations report consistent gains.",
		"Finding on '%s': Several open problems remain under active investigation.",
	},
	{
		"Finding on '%s': Early results generalize across a range of workloads.",
		"Finding on '%s': Cost profiles favor an incremental rollout.",
		"Finding on '%s': Practitioners report a shallow learning curve.",
	},
}

// templateIndex maps a query to a slot in defaultFindingSets. FNV-1a is
// stable across processes and platforms, so the selection is reproducible
// anywhere.
func templateIndex(query string) int {
	h := fnv.New32a()
	h.Write([]byte(query))
	return int(h.Sum32() % uint32(len(defaultFindingSets)))
}

func (m *Mock) GenerateFindings(_ context.Context, query string) ([]string, error) {
	lowered := strings.ToLower(query)
	for _, category := range findingCategories {
		if strings.Contains(lowered, category.name) {
			findings := make([]string, 0, len(category.templates))
			for _, t := range category.templates {
				findings = append(findings, strings.Replace(t, "research:", fmt.Sprintf("research on '%s':", query), 1))
			}
			return findings, nil
		}
	}

	set := defaultFindingSets[templateIndex(query)]
	findings := make([]string, 0, len(set))
	for _, t := range set {
		findings = append(findings, fmt.Sprintf(t, query))
	}
	return findings, nil
}

func (m *Mock) Synthesize(_ context.Context, query string, findings []string) (string, error) {
	points := make([]string, 0, len(findings))
	for _, f := range findings {
		if _, after, found := strings.Cut(f, ": "); found {
			points = append(points, after)
		} else {
			points = append(points, f)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Synthesis of '%s':\n\n", query)
	fmt.Fprintf(&b, "Summary: Based on %d findings, several key themes emerge.\n\n", len(findings))
	b.WriteString("Key Points:\n")
	for _, p := range points {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	fmt.Fprintf(&b, "\nConclusion: The evidence suggests a comprehensive approach to %s that addresses multiple dimensions of the problem.", query)
	return b.String(), nil
}

// qualityChecks is the fixed battery behind mock scoring. The score is the
// fraction of checks passed, so it is always a multiple of 1/3.
var qualityChecks = []struct {
	name    string
	passes  func(string) bool
	failure string
}{
	{"length", func(s string) bool { return len(s) > 50 }, "Synthesis is too short"},
	{"has_conclusion", func(s string) bool { return strings.Contains(strings.ToLower(s), "conclusion") }, "Missing conclusion"},
	{"has_points", func(s string) bool { return strings.Contains(s, "-") || strings.Contains(s, "1.") }, "Missing structured points"},
}

func (m *Mock) Score(_ context.Context, synthesis string) (float64, []string, error) {
	passed := 0
	notes := make([]string, 0, len(qualityChecks))
	for _, check := range qualityChecks {
		if check.passes(synthesis) {
			passed++
			notes = append(notes, "PASS: "+check.name)
		} else {
			notes = append(notes, fmt.Sprintf("FAIL: %s - %s", check.name, check.failure))
		}
	}
	return float64(passed) / float64(len(qualityChecks)), notes, nil
}
