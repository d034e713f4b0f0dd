package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
)

// DefaultChatModel is used when the caller supplies no model.
const DefaultChatModel = "llama3"

// ChatClient produces LLM replies from a message list or a bare prompt.
type ChatClient interface {
	Chat(ctx context.Context, messages []models.ChatMessage, model string) (string, error)
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// OllamaChat targets a local Ollama instance's chat and generate
// endpoints with streaming disabled.
type OllamaChat struct {
	Host string // e.g. http://localhost:11434
}

type ollamaChatRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

type ollamaChatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// Chat sends the full message list and returns the reply content.
func (c *OllamaChat) Chat(ctx context.Context, messages []models.ChatMessage, model string) (string, error) {
	if model == "" {
		model = DefaultChatModel
	}
	var out ollamaChatResponse
	if err := c.post(ctx, "/api/chat", ollamaChatRequest{Model: model, Messages: messages, Stream: false}, &out); err != nil {
		return "", err
	}
	return out.Message.Content, nil
}

// Complete sends a bare prompt and returns the generated text.
func (c *OllamaChat) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = DefaultChatModel
	}
	var out ollamaGenerateResponse
	if err := c.post(ctx, "/api/generate", ollamaGenerateRequest{Model: model, Prompt: prompt, Stream: false}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *OllamaChat) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("ai: marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ai: build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Provider, fmt.Errorf("ai: ollama %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return providerError("ollama "+path, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.Provider, fmt.Errorf("ai: decode chat response: %w", err))
	}
	return nil
}
