package factory

import (
	"fmt"

	"agent-orchestrator/pkg/llm"
	"agent-orchestrator/pkg/llm/huggingface"
	"agent-orchestrator/pkg/llm/ollama"
)

// NewLLMProvider builds the provider named in configuration. The provider
// choice is made once at bootstrap; nothing re-reads it mid-run.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(apiKey, "", modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
