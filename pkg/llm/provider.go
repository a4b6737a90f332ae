package llm

import "context"

// Message is one turn of a conversation in provider-agnostic form.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Options carries per-call overrides; providers fill in their own defaults
// for anything left zero.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

// Option applies one per-call override.
type Option func(*Options)

func WithTemperature(temperature float64) Option {
	return func(o *Options) {
		o.Temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// LLMProvider is the contract every model backend implements. Calls honor
// context cancellation; callers own the timeout policy.
type LLMProvider interface {
	// Chat sends a conversation history and returns the reply text.
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single user prompt (convenience wrapper over Chat).
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
