// Package testutil provides shared test helpers for setting up workspaces,
// databases, and deterministic AI doubles.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/notegraph/notegraph/internal/artifact"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/store"
)

// Dim is the embedding dimension used by test databases. Small on purpose:
// vectors stay readable in failures and the schema is exercised identically.
const Dim = 4

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(path, Dim)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary artifacts directory with an
// artifact.Store rooted in it.
func TestWorkspace(t *testing.T) (string, *artifact.Store) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "artifacts")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := artifact.NewStore(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, s
}

// OneHotEmbedder maps text deterministically to a one-hot vector of
// dimension Dim, so nearest-neighbour results are predictable: equal texts
// embed identically, and texts landing on different axes are orthogonal.
type OneHotEmbedder struct{}

// Embed returns the one-hot embedding for text.
func (OneHotEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, Dim)
	sum := 0
	for _, r := range text {
		sum += int(r)
	}
	v[sum%Dim] = 1
	return v, nil
}

// RecordingChat is a ChatClient double that records the messages it was
// given and returns a fixed reply.
type RecordingChat struct {
	Reply    string
	Messages []models.ChatMessage
	Model    string
}

// Chat records the conversation and returns the configured reply.
func (c *RecordingChat) Chat(_ context.Context, messages []models.ChatMessage, model string) (string, error) {
	c.Messages = messages
	c.Model = model
	return c.Reply, nil
}

// Complete records a single-prompt call as a user message.
func (c *RecordingChat) Complete(_ context.Context, prompt, model string) (string, error) {
	c.Messages = []models.ChatMessage{{Role: "user", Content: prompt}}
	c.Model = model
	return c.Reply, nil
}
