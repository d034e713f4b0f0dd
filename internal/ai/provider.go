// Package ai provides the pluggable embedding and chat capability clients.
// Wire shapes follow the provider APIs exactly; failures surface as
// Provider errors carrying the HTTP status and a body snippet.
package ai

import (
	"io"
	"net/http"
	"time"

	"github.com/notegraph/notegraph/internal/apperr"
)

// Provider kinds.
const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// ProviderConfig is a tagged embedding-provider selection, passed per
// request and never persisted.
type ProviderConfig struct {
	Kind   string
	Model  string // ollama only
	APIKey string // gemini only
}

// NewProviderConfig validates a provider selection from the command
// surface. model applies to ollama; apiKey is required for gemini.
func NewProviderConfig(provider, model, apiKey string) (ProviderConfig, error) {
	switch provider {
	case ProviderOllama:
		if model == "" {
			return ProviderConfig{}, apperr.New(apperr.Validation, "ai: ollama model is required")
		}
		return ProviderConfig{Kind: ProviderOllama, Model: model}, nil
	case ProviderGemini:
		if apiKey == "" {
			return ProviderConfig{}, apperr.New(apperr.Validation, "ai: API key required for gemini")
		}
		return ProviderConfig{Kind: ProviderGemini, APIKey: apiKey}, nil
	default:
		return ProviderConfig{}, apperr.New(apperr.Validation, "ai: unknown provider %q", provider)
	}
}

// httpClient is shared by all provider clients. Embedding and completion
// calls can be slow on local hardware; callers bound them with contexts.
var httpClient = &http.Client{Timeout: 120 * time.Second}

const bodySnippetLen = 256

// providerError builds a Provider error from a non-2xx response.
func providerError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLen))
	return apperr.New(apperr.Provider, "ai: %s: status %d: %s", op, resp.StatusCode, string(snippet))
}
