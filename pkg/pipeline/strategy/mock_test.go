package strategy

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestMockGenerateFindingsCategories(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPrefix string
	}{
		{"technology category", "latest technology trends", "Technology research on 'latest technology trends':"},
		{"science category", "new science breakthroughs", "Scientific research on 'new science breakthroughs':"},
		{"case insensitive match", "TECHNOLOGY adoption", "Technology research on 'TECHNOLOGY adoption':"},
		{"technology beats science", "science of technology", "Technology research on 'science of technology':"},
	}

	m := NewMock()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := m.GenerateFindings(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("GenerateFindings error = %v", err)
			}
			if len(findings) != 3 {
				t.Fatalf("len(findings) = %d, want 3", len(findings))
			}
			for i, f := range findings {
				if !strings.HasPrefix(f, tt.wantPrefix) {
					t.Errorf("findings[%d] = %q, want prefix %q", i, f, tt.wantPrefix)
				}
			}
		})
	}
}

func TestMockGenerateFindingsExactTechnologyOutput(t *testing.T) {
	m := NewMock()
	findings, err := m.GenerateFindings(context.Background(), "technology")
	if err != nil {
		t.Fatalf("GenerateFindings error = %v", err)
	}

	want := []string{
		"Technology research on 'technology': Latest benchmarks show 40% improvement in performance.",
		"Technology research on 'technology': Adoption rates have doubled in the past year.",
		"Technology research on 'technology': Three competing approaches have emerged as frontrunners.",
	}
	if !reflect.DeepEqual(findings, want) {
		t.Errorf("findings = %v,\nwant %v", findings, want)
	}
}

func TestMockGenerateFindingsDefaultTable(t *testing.T) {
	m := NewMock()
	query := "how do glaciers move"

	findings, err := m.GenerateFindings(context.Background(), query)
	if err != nil {
		t.Fatalf("GenerateFindings error = %v", err)
	}
	if len(findings) != 3 {
		t.Fatalf("len(findings) = %d, want 3", len(findings))
	}
	wantPrefix := fmt.Sprintf("Finding on '%s':", query)
	for i, f := range findings {
		if !strings.HasPrefix(f, wantPrefix) {
			t.Errorf("findings[%d] = %q, want prefix %q", i, f, wantPrefix)
		}
	}

	again, _ := m.GenerateFindings(context.Background(), query)
	if !reflect.DeepEqual(findings, again) {
		t.Errorf("findings not deterministic:\n %v\n %v", findings, again)
	}
}

func TestTemplateIndexStable(t *testing.T) {
	queries := []string{"alpha", "beta", "gamma", "delta"}
	for _, q := range queries {
		idx := templateIndex(q)
		if idx < 0 || idx >= len(defaultFindingSets) {
			t.Errorf("templateIndex(%q) = %d, out of range", q, idx)
		}
		if idx != templateIndex(q) {
			t.Errorf("templateIndex(%q) unstable", q)
		}
	}
}

func TestMockSynthesize(t *testing.T) {
	m := NewMock()
	findings := []string{
		"Technology research on 'q': Latest benchmarks show 40% improvement in performance.",
		"plain finding without marker",
	}

	got, err := m.Synthesize(context.Background(), "q", findings)
	if err != nil {
		t.Fatalf("Synthesize error = %v", err)
	}

	want := "Synthesis of 'q':\n\n" +
		"Summary: Based on 2 findings, several key themes emerge.\n\n" +
		"Key Points:\n" +
		"- Latest benchmarks show 40% improvement in performance.\n" +
		"- plain finding without marker\n" +
		"\nConclusion: The evidence suggests a comprehensive approach to q that addresses multiple dimensions of the problem."
	if got != want {
		t.Errorf("Synthesize =\n%q\nwant\n%q", got, want)
	}
}

// The generated synthesis must pass its own grader checks, otherwise mock
// runs could never approve.
func TestMockSynthesisPassesOwnChecks(t *testing.T) {
	m := NewMock()
	findings, _ := m.GenerateFindings(context.Background(), "self consistency")
	synthesis, _ := m.Synthesize(context.Background(), "self consistency", findings)

	score, notes, err := m.Score(context.Background(), synthesis)
	if err != nil {
		t.Fatalf("Score error = %v", err)
	}
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0 (notes: %v)", score, notes)
	}
}

func TestMockScore(t *testing.T) {
	longNoStructure := strings.Repeat("plain prose without markers ", 3)

	tests := []struct {
		name      string
		synthesis string
		wantScore float64
		wantNotes []string
	}{
		{
			name:      "all checks pass",
			synthesis: "Key Points:\n- first\n- second\n\nConclusion: strong write-up with enough length.",
			wantScore: 1.0,
			wantNotes: []string{"PASS: length", "PASS: has_conclusion", "PASS: has_points"},
		},
		{
			name:      "all checks fail",
			synthesis: "too short",
			wantScore: 0.0,
			wantNotes: []string{
				"FAIL: length - Synthesis is too short",
				"FAIL: has_conclusion - Missing conclusion",
				"FAIL: has_points - Missing structured points",
			},
		},
		{
			name:      "missing conclusion",
			synthesis: "Key Points:\n- first point\n- second point of adequate total length here",
			wantScore: 2.0 / 3.0,
			wantNotes: []string{"PASS: length", "FAIL: has_conclusion - Missing conclusion", "PASS: has_points"},
		},
		{
			name:      "numbered list counts as structure",
			synthesis: "1. a single numbered point padded out to clear the length check easily",
			wantScore: 2.0 / 3.0,
			wantNotes: []string{"PASS: length", "FAIL: has_conclusion - Missing conclusion", "PASS: has_points"},
		},
		{
			name:      "length only",
			synthesis: longNoStructure,
			wantScore: 1.0 / 3.0,
			wantNotes: []string{"PASS: length", "FAIL: has_conclusion - Missing conclusion", "FAIL: has_points - Missing structured points"},
		},
	}

	m := NewMock()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, notes, err := m.Score(context.Background(), tt.synthesis)
			if err != nil {
				t.Fatalf("Score error = %v", err)
			}
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if !reflect.DeepEqual(notes, tt.wantNotes) {
				t.Errorf("notes = %v,\nwant %v", notes, tt.wantNotes)
			}
		})
	}
}

// A write-up hitting every marker must outscore one hitting none.
func TestMockScoreMonotonicity(t *testing.T) {
	m := NewMock()

	strong := "Key Points:\n- structured\n- thorough\n\nConclusion: comfortably above the length floor."
	weak := "meh"

	strongScore, _, _ := m.Score(context.Background(), strong)
	weakScore, _, _ := m.Score(context.Background(), weak)

	if strongScore <= weakScore {
		t.Errorf("strong = %v, weak = %v, want strictly higher", strongScore, weakScore)
	}
}
