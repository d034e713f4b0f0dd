// Package chat orchestrates retrieval-augmented chat turns: embed the
// message, pull nearby context from the store, and hand the assembled
// conversation to the LLM.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/notegraph/notegraph/internal/ai"
	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/store"
)

// contextLimit is how many nearest nodes ground a reply.
const contextLimit = 3

const systemPromptFormat = "You are a helpful research assistant. Answer the user's question based ONLY on the following context:\n\n%s\n\nIf the answer is not in the context, say so."

// Orchestrator builds grounded chat turns. It does not persist history;
// the caller owns that.
type Orchestrator struct {
	db       *store.DB
	embedder ai.EmbeddingClient
	llm      ai.ChatClient
	model    string
}

// NewOrchestrator creates an Orchestrator using the default embedding
// provider and chat model.
func NewOrchestrator(db *store.DB, embedder ai.EmbeddingClient, llm ai.ChatClient, model string) *Orchestrator {
	return &Orchestrator{db: db, embedder: embedder, llm: llm, model: model}
}

// Reply answers one user turn. The reply is returned verbatim from the LLM.
func (o *Orchestrator) Reply(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apperr.New(apperr.Validation, "chat: empty message")
	}

	embedding, err := o.embedder.Embed(ctx, message)
	if err != nil {
		return "", err
	}
	snippets, err := o.db.TopContext(embedding, contextLimit)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(snippets))
	for i, s := range snippets {
		parts[i] = fmt.Sprintf("Title: %s\nContent: %s\n", s.Title, s.Content)
	}
	system := fmt.Sprintf(systemPromptFormat, strings.Join(parts, "\n---\n"))

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: message})

	return o.llm.Chat(ctx, messages, o.model)
}
