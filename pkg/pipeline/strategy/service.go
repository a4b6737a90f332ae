package strategy

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"agent-orchestrator/pkg/llm"
)

// Service generates stage content through an LLM provider. Every call is
// bounded by the configured timeout. Errors are returned to the calling
// stage, which degrades to the deterministic mock for that invocation, so
// pipeline liveness never depends on the provider being reachable.
type Service struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   *log.Logger
}

const defaultTimeout = 30 * time.Second

func NewService(provider llm.LLMProvider, timeout time.Duration, logger *log.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{provider: provider, timeout: timeout, logger: logger}
}

func (s *Service) GenerateFindings(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Provide 3 concise research findings about: %s\nFormat as a numbered list. Each item should be one sentence.",
		query,
	)
	raw, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.3), llm.WithMaxTokens(512))
	if err != nil {
		return nil, fmt.Errorf("generate findings: %w", err)
	}

	findings := parseListItems(raw)
	if len(findings) > 3 {
		findings = findings[:3]
	}
	if len(findings) == 0 {
		// Unstructured but non-empty replies become a single finding.
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil, fmt.Errorf("generate findings: empty reply")
		}
		findings = []string{truncate(trimmed, 200)}
	}

	s.logger.Printf("[STRATEGY] generated %d findings for %q", len(findings), query)
	return findings, nil
}

func (s *Service) Synthesize(ctx context.Context, query string, findings []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Synthesize the findings below about %q into a short write-up with a Summary line, "+
			"a bulleted Key Points section, and a Conclusion sentence.\n\nFindings:\n%s",
		query, strings.Join(findings, "\n"),
	)
	raw, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.5))
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	synthesis := strings.TrimSpace(raw)
	if synthesis == "" {
		return "", fmt.Errorf("synthesize: empty reply")
	}
	return synthesis, nil
}

func (s *Service) Score(ctx context.Context, synthesis string) (float64, []string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"Rate the quality of the following write-up on a scale from 0.0 to 1.0. Reply with the number only.\n\n%s",
		synthesis,
	)
	raw, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return 0, nil, fmt.Errorf("score: %w", err)
	}

	score, err := parseScore(raw)
	if err != nil {
		return 0, nil, err
	}
	return score, []string{fmt.Sprintf("LLM score: %.2f", score)}, nil
}

// parseScore extracts a numeric score from a model reply and clamps it to
// [0, 1]. Replies with no parseable number at all are malformed.
func parseScore(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	score, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		// Models occasionally wrap the number in prose ("Score: 0.8").
		score, err = firstFloat(trimmed)
		if err != nil {
			return 0, fmt.Errorf("score: unparseable reply %q", truncate(trimmed, 60))
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

func firstFloat(raw string) (float64, error) {
	for _, field := range strings.Fields(raw) {
		field = strings.Trim(field, ".,:;()")
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("no numeric token")
}

// parseListItems extracts numbered or bulleted lines from a model reply,
// stripping the list markers.
func parseListItems(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		numbered := line[0] >= '0' && line[0] <= '9'
		if !numbered && !strings.HasPrefix(line, "-") {
			continue
		}
		item := strings.TrimLeft(line, "0123456789.-) ")
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
