package nodeservice

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/artifact"
	"github.com/notegraph/notegraph/internal/chat"
	"github.com/notegraph/notegraph/internal/ingest"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/search"
	"github.com/notegraph/notegraph/internal/store"
	"github.com/notegraph/notegraph/internal/testutil"
)

// recordingPublisher captures published graph events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishGraphEvent(kind, id string) {
	p.mu.Lock()
	p.events = append(p.events, kind+":"+id)
	p.mu.Unlock()
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func testService(t *testing.T) (*Service, *store.DB, *artifact.Store, *recordingPublisher) {
	t.Helper()
	db := testutil.TestDB(t)
	_, artifacts := testutil.TestWorkspace(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	pipeline := ingest.NewPipeline(db, artifacts, ingest.Options{}, logger)
	engine := search.NewEngine(db, testutil.OneHotEmbedder{})
	orchestrator := chat.NewOrchestrator(db, testutil.OneHotEmbedder{}, &testutil.RecordingChat{Reply: "ok"}, "llama3")
	events := &recordingPublisher{}

	svc := NewService(db, artifacts, pipeline, engine, orchestrator,
		events, "http://localhost:11434", "nomic-embed-text", logger)
	return svc, db, artifacts, events
}

func TestCreateNode_PublishesEvent(t *testing.T) {
	svc, _, _, events := testService(t)

	n, err := svc.CreateNode(context.Background(), "user_item", "idea", nil)
	if err != nil {
		t.Fatal(err)
	}
	kinds := events.kinds()
	if len(kinds) != 1 || kinds[0] != "node.created:"+n.ID {
		t.Errorf("events = %v", kinds)
	}
}

func TestSaveNodeContent(t *testing.T) {
	svc, db, artifacts, _ := testService(t)

	n, err := svc.CreateNode(context.Background(), "user_item", "draft", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveNodeContent(context.Background(), n.ID, []byte("# Draft body")); err != nil {
		t.Fatal(err)
	}

	data, err := artifacts.Read(n.ID + ".md")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Draft body" {
		t.Errorf("artifact = %q", data)
	}
	got, _ := db.GetNode(n.ID)
	if got.ContentPath != n.ID+".md" {
		t.Errorf("content_path = %q", got.ContentPath)
	}
}

func TestSaveNodeContent_MissingNode(t *testing.T) {
	svc, _, _, _ := testService(t)
	err := svc.SaveNodeContent(context.Background(), "ghost", []byte("x"))
	if !apperr.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestDeleteNode_RemovesArtifact(t *testing.T) {
	svc, db, artifacts, events := testService(t)

	n, err := svc.CreateNode(context.Background(), "user_item", "doomed", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SaveNodeContent(context.Background(), n.ID, []byte("bye")); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteNode(context.Background(), n.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := db.GetNode(n.ID); got != nil {
		t.Error("node still present")
	}
	if _, err := artifacts.Read(n.ID + ".md"); !apperr.IsNotFound(err) {
		t.Errorf("artifact still present: %v", err)
	}

	// Deleting again is still a success and still publishes.
	if err := svc.DeleteNode(context.Background(), n.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	found := 0
	for _, e := range events.kinds() {
		if e == "node.deleted:"+n.ID {
			found++
		}
	}
	if found != 2 {
		t.Errorf("node.deleted events = %d, want 2", found)
	}
}

func TestConnectDisconnectAndGraph(t *testing.T) {
	svc, _, _, events := testService(t)
	ctx := context.Background()

	a, _ := svc.CreateNode(ctx, "user_item", "a", nil)
	b, _ := svc.CreateNode(ctx, "user_item", "b", nil)

	if err := svc.ConnectNodes(ctx, a.ID, b.ID, ""); err != nil {
		t.Fatal(err)
	}
	nodes, edges, err := svc.GetGraphData(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || len(edges) != 1 {
		t.Fatalf("graph = %d nodes / %d edges", len(nodes), len(edges))
	}
	if edges[0].Label != store.DefaultEdgeLabel {
		t.Errorf("label = %q", edges[0].Label)
	}

	if err := svc.DisconnectNodes(ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	_, edges, _ = svc.GetGraphData(ctx)
	if len(edges) != 0 {
		t.Errorf("edges = %d after disconnect", len(edges))
	}

	kinds := events.kinds()
	var connected, disconnected bool
	for _, e := range kinds {
		switch e {
		case "edge.connected:" + a.ID:
			connected = true
		case "edge.disconnected:" + a.ID:
			disconnected = true
		}
	}
	if !connected || !disconnected {
		t.Errorf("events = %v", kinds)
	}
}

func TestIngestURL_ProviderValidation(t *testing.T) {
	svc, _, _, _ := testService(t)

	_, err := svc.IngestURL(context.Background(), "http://example.invalid", "gemini", "")
	if apperr.KindOf(err) != apperr.Validation {
		t.Errorf("gemini without key: err = %v, want Validation", err)
	}
	_, err = svc.IngestURL(context.Background(), "http://example.invalid", "mystery", "")
	if apperr.KindOf(err) != apperr.Validation {
		t.Errorf("unknown provider: err = %v, want Validation", err)
	}
}

func TestRefreshArtifact(t *testing.T) {
	svc, db, _, _ := testService(t)

	emb, _ := testutil.OneHotEmbedder{}.Embed(context.Background(), "seed")
	node := &models.Node{
		ID: "doc-1", Type: "source", Title: "Page", ContentPath: "doc-1.md",
		Metadata:  map[string]any{},
		CreatedAt: store.FormatTime(time.Now().UTC()),
		UpdatedAt: store.FormatTime(time.Now().UTC()),
	}
	if err := db.CreateIngestedNode(node, "original indexed text", [][]float32{emb}); err != nil {
		t.Fatal(err)
	}

	svc.RefreshArtifact(node.ID, []byte("edited replacement text"))

	if hits, _ := db.FTSSearch("original", 20); len(hits) != 0 {
		t.Error("stale content still indexed after refresh")
	}
	hits, err := db.FTSSearch("replacement", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].ID != node.ID {
		t.Errorf("hits = %+v", hits)
	}

	// Unknown files are ignored without error.
	svc.RefreshArtifact("not-a-node", []byte("x"))
}
