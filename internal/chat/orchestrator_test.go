package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/store"
	"github.com/notegraph/notegraph/internal/testutil"
)

type fixedEmbedder struct {
	v []float32
}

func (e fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.v, nil
}

func oneHot(i int) []float32 {
	v := make([]float32, testutil.Dim)
	v[i%testutil.Dim] = 1
	return v
}

func ingestDoc(t *testing.T, db *store.DB, id, title, content string, embedding []float32) {
	t.Helper()
	now := store.FormatTime(time.Now().UTC())
	n := &models.Node{
		ID: id, Type: "source", Title: title, ContentPath: id + ".md",
		Metadata:  map[string]any{},
		CreatedAt: now, UpdatedAt: now,
	}
	if err := db.CreateIngestedNode(n, content, [][]float32{embedding}); err != nil {
		t.Fatal(err)
	}
}

func TestReply_EmptyMessage(t *testing.T) {
	db := testutil.TestDB(t)
	o := NewOrchestrator(db, fixedEmbedder{v: oneHot(0)}, &testutil.RecordingChat{}, "llama3")

	if _, err := o.Reply(context.Background(), "  ", nil); apperr.KindOf(err) != apperr.Validation {
		t.Errorf("err = %v, want Validation", err)
	}
}

func TestReply_GroundsSystemPromptInNearestContext(t *testing.T) {
	db := testutil.TestDB(t)
	ingestDoc(t, db, "d1", "Kubernetes notes", "Pods are the smallest deployable unit.", oneHot(0))
	ingestDoc(t, db, "d2", "Cooking", "Caramelize onions slowly.", oneHot(1))

	llm := &testutil.RecordingChat{Reply: "grounded answer"}
	o := NewOrchestrator(db, fixedEmbedder{v: oneHot(0)}, llm, "llama3")

	reply, err := o.Reply(context.Background(), "what is a pod?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "grounded answer" {
		t.Errorf("reply = %q", reply)
	}
	if llm.Model != "llama3" {
		t.Errorf("model = %q", llm.Model)
	}

	if len(llm.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(llm.Messages))
	}
	system := llm.Messages[0]
	if system.Role != "system" {
		t.Errorf("first role = %q", system.Role)
	}
	if !strings.Contains(system.Content, "based ONLY on the following context") {
		t.Errorf("system prompt = %q", system.Content)
	}
	if !strings.Contains(system.Content, "Title: Kubernetes notes") {
		t.Errorf("system prompt missing nearest title: %q", system.Content)
	}
	if !strings.Contains(system.Content, "smallest deployable unit") {
		t.Errorf("system prompt missing context content: %q", system.Content)
	}

	user := llm.Messages[len(llm.Messages)-1]
	if user.Role != "user" || user.Content != "what is a pod?" {
		t.Errorf("last message = %+v", user)
	}
}

func TestReply_HistoryBetweenSystemAndUser(t *testing.T) {
	db := testutil.TestDB(t)
	ingestDoc(t, db, "d1", "Doc", "body", oneHot(0))

	llm := &testutil.RecordingChat{Reply: "ok"}
	o := NewOrchestrator(db, fixedEmbedder{v: oneHot(0)}, llm, "llama3")

	history := []models.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	if _, err := o.Reply(context.Background(), "follow-up", history); err != nil {
		t.Fatal(err)
	}

	if len(llm.Messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(llm.Messages))
	}
	roles := []string{llm.Messages[0].Role, llm.Messages[1].Role, llm.Messages[2].Role, llm.Messages[3].Role}
	want := []string{"system", "user", "assistant", "user"}
	for i := range want {
		if roles[i] != want[i] {
			t.Errorf("roles = %v, want %v", roles, want)
			break
		}
	}
	if llm.Messages[3].Content != "follow-up" {
		t.Errorf("final message = %q", llm.Messages[3].Content)
	}
}

func TestReply_EmptyStoreStillAnswers(t *testing.T) {
	db := testutil.TestDB(t)
	llm := &testutil.RecordingChat{Reply: "nothing to go on"}
	o := NewOrchestrator(db, fixedEmbedder{v: oneHot(0)}, llm, "llama3")

	reply, err := o.Reply(context.Background(), "hello?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "nothing to go on" {
		t.Errorf("reply = %q", reply)
	}
	// The system prompt frame is present even with no context snippets.
	if !strings.Contains(llm.Messages[0].Content, "If the answer is not in the context") {
		t.Errorf("system prompt = %q", llm.Messages[0].Content)
	}
}
