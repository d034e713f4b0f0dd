package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/notegraph/notegraph/internal/apperr"
)

// EmbeddingClient turns text into a fixed-dimension vector.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewEmbeddingClient builds the embedder for a provider selection.
// ollamaHost applies to the ollama kind only.
func NewEmbeddingClient(cfg ProviderConfig, ollamaHost string) (EmbeddingClient, error) {
	switch cfg.Kind {
	case ProviderOllama:
		return &OllamaEmbedder{Host: ollamaHost, Model: cfg.Model}, nil
	case ProviderGemini:
		return &GeminiEmbedder{APIKey: cfg.APIKey}, nil
	default:
		return nil, apperr.New(apperr.Validation, "ai: unknown provider %q", cfg.Kind)
	}
}

// OllamaEmbedder calls a local Ollama instance's embeddings endpoint.
type OllamaEmbedder struct {
	Host  string // e.g. http://localhost:11434
	Model string
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (c *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(ollamaEmbedRequest{Model: c.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("ai: marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+"/api/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Provider, fmt.Errorf("ai: ollama embed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerError("ollama embed", resp)
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperr.Wrap(apperr.Provider, fmt.Errorf("ai: decode embed response: %w", err))
	}
	if len(out.Embedding) == 0 {
		return nil, apperr.New(apperr.Provider, "ai: ollama returned an empty embedding")
	}
	return out.Embedding, nil
}

const geminiEmbedEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/embedding-001:embedContent"

// GeminiEmbedder calls the Gemini embedContent endpoint.
type GeminiEmbedder struct {
	APIKey string

	// Endpoint overrides the production URL in tests.
	Endpoint string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// Embed returns the embedding vector for text.
func (c *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(geminiEmbedRequest{
		Model:   "models/embedding-001",
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: marshal embed request: %w", err)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = geminiEmbedEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		endpoint+"?key="+url.QueryEscape(c.APIKey), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Provider, fmt.Errorf("ai: gemini embed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerError("gemini embed", resp)
	}

	var out geminiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperr.Wrap(apperr.Provider, fmt.Errorf("ai: decode embed response: %w", err))
	}
	if len(out.Embedding.Values) == 0 {
		return nil, apperr.New(apperr.Provider, "ai: gemini returned an empty embedding")
	}
	return out.Embedding.Values, nil
}
