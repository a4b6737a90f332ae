package strategy

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"agent-orchestrator/pkg/llm"
)

// fakeProvider scripts one reply (or error) per call, in order.
type fakeProvider struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	return f.Generate(ctx, prompt, opts...)
}

func TestServiceGenerateFindings(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{
			name:  "numbered list",
			reply: "1. First finding here.\n2. Second finding here.\n3. Third finding here.",
			want:  []string{"First finding here.", "Second finding here.", "Third finding here."},
		},
		{
			name:  "bulleted list",
			reply: "- alpha\n- beta",
			want:  []string{"alpha", "beta"},
		},
		{
			name:  "caps overlong lists at three",
			reply: "1. a\n2. b\n3. c\n4. d\n5. e",
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "unstructured reply becomes one finding",
			reply: "The model ignored the format request entirely.",
			want:  []string{"The model ignored the format request entirely."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{replies: []string{tt.reply}}
			svc := NewService(provider, time.Second, nil)

			got, err := svc.GenerateFindings(context.Background(), "test query")
			if err != nil {
				t.Fatalf("GenerateFindings error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("findings = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceGenerateFindingsEmptyReply(t *testing.T) {
	provider := &fakeProvider{replies: []string{"   \n  "}}
	svc := NewService(provider, time.Second, nil)

	if _, err := svc.GenerateFindings(context.Background(), "q"); err == nil {
		t.Error("empty reply must be an error")
	}
}

func TestServiceGenerateFindingsProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	svc := NewService(provider, time.Second, nil)

	_, err := svc.GenerateFindings(context.Background(), "q")
	if err == nil {
		t.Fatal("provider error must propagate")
	}
	if !strings.Contains(err.Error(), "generate findings") {
		t.Errorf("error = %v, want wrapped with operation", err)
	}
}

func TestServiceGenerateFindingsPromptMentionsQuery(t *testing.T) {
	provider := &fakeProvider{replies: []string{"1. x"}}
	svc := NewService(provider, time.Second, nil)

	if _, err := svc.GenerateFindings(context.Background(), "graph databases"); err != nil {
		t.Fatalf("GenerateFindings error = %v", err)
	}
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "graph databases") {
		t.Errorf("prompt = %q, must carry the query", provider.prompts)
	}
}

func TestServiceSynthesize(t *testing.T) {
	provider := &fakeProvider{replies: []string{"  A fine write-up.\n"}}
	svc := NewService(provider, time.Second, nil)

	got, err := svc.Synthesize(context.Background(), "q", []string{"f1", "f2"})
	if err != nil {
		t.Fatalf("Synthesize error = %v", err)
	}
	if got != "A fine write-up." {
		t.Errorf("synthesis = %q", got)
	}
	if !strings.Contains(provider.prompts[0], "f1") || !strings.Contains(provider.prompts[0], "f2") {
		t.Errorf("prompt = %q, must carry the findings", provider.prompts[0])
	}
}

func TestServiceSynthesizeEmptyReply(t *testing.T) {
	provider := &fakeProvider{replies: []string{""}}
	svc := NewService(provider, time.Second, nil)

	if _, err := svc.Synthesize(context.Background(), "q", []string{"f"}); err == nil {
		t.Error("empty reply must be an error")
	}
}

func TestServiceScore(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		want      float64
		wantErr   bool
		wantNotes []string
	}{
		{"bare number", "0.8", 0.8, false, []string{"LLM score: 0.80"}},
		{"number with whitespace", " 0.75\n", 0.75, false, []string{"LLM score: 0.75"}},
		{"number wrapped in prose", "Score: 0.9 overall", 0.9, false, []string{"LLM score: 0.90"}},
		{"clamped above one", "42", 1.0, false, []string{"LLM score: 1.00"}},
		{"clamped below zero", "-3", 0.0, false, []string{"LLM score: 0.00"}},
		{"unparseable", "excellent work", 0, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{replies: []string{tt.reply}}
			svc := NewService(provider, time.Second, nil)

			score, notes, err := svc.Score(context.Background(), "some synthesis")
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error for unparseable reply")
				}
				return
			}
			if err != nil {
				t.Fatalf("Score error = %v", err)
			}
			if score != tt.want {
				t.Errorf("score = %v, want %v", score, tt.want)
			}
			if !reflect.DeepEqual(notes, tt.wantNotes) {
				t.Errorf("notes = %v, want %v", notes, tt.wantNotes)
			}
		})
	}
}

func TestServiceHonorsTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &fakeProvider{replies: []string{"1. never delivered"}}
	svc := NewService(provider, time.Second, nil)

	if _, err := svc.GenerateFindings(ctx, "q"); err == nil {
		t.Error("cancelled context must surface as an error")
	}
}

func TestParseListItems(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"mixed markers", "1) one\n- two\n3. three", []string{"one", "two", "three"}},
		{"skips prose lines", "Here you go:\n1. real item\nHope that helps!", []string{"real item"}},
		{"blank input", "\n\n", nil},
		{"marker only lines dropped", "1.\n- \n2. kept", []string{"kept"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseListItems(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseListItems(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
