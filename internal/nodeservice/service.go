// Package nodeservice implements the command surface consumed by the shell
// layer, composing the store, artifact store, ingest pipeline, retrieval
// engine, and chat orchestrator.
package nodeservice

import (
	"context"
	"log/slog"

	"github.com/notegraph/notegraph/internal/ai"
	"github.com/notegraph/notegraph/internal/artifact"
	"github.com/notegraph/notegraph/internal/chat"
	"github.com/notegraph/notegraph/internal/ingest"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/search"
	"github.com/notegraph/notegraph/internal/store"
)

// EventPublisher receives graph change notifications. Implementations must
// not block.
type EventPublisher interface {
	PublishGraphEvent(kind, id string)
}

// Service coordinates all command-level operations.
type Service struct {
	db         *store.DB
	artifacts  *artifact.Store
	pipeline   *ingest.Pipeline
	engine     *search.Engine
	chat       *chat.Orchestrator
	events     EventPublisher // optional
	ollamaHost string
	embedModel string
	logger     *slog.Logger
}

// NewService creates a Service. events may be nil.
func NewService(db *store.DB, artifacts *artifact.Store, pipeline *ingest.Pipeline,
	engine *search.Engine, orchestrator *chat.Orchestrator,
	events EventPublisher, ollamaHost, embedModel string, logger *slog.Logger) *Service {
	return &Service{
		db:         db,
		artifacts:  artifacts,
		pipeline:   pipeline,
		engine:     engine,
		chat:       orchestrator,
		events:     events,
		ollamaHost: ollamaHost,
		embedModel: embedModel,
		logger:     logger,
	}
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishGraphEvent(kind, id)
	}
}

// CreateNode creates a user item or document node.
func (s *Service) CreateNode(_ context.Context, nodeType, title string, metadata map[string]any) (*models.Node, error) {
	n, err := s.db.CreateNode(nodeType, title, metadata)
	if err != nil {
		return nil, err
	}
	s.publish("node.created", n.ID)
	return n, nil
}

// GetNode returns a node by id, or nil when absent.
func (s *Service) GetNode(_ context.Context, id string) (*models.Node, error) {
	return s.db.GetNode(id)
}

// SaveNodeContent writes the artifact file <id>.md, then records the
// content path and bumps updated_at. If the row update fails the written
// file is retained (tolerable leak).
func (s *Service) SaveNodeContent(_ context.Context, id string, content []byte) error {
	filename := id + ".md"
	if err := s.artifacts.Write(filename, content); err != nil {
		return err
	}
	if err := s.db.SetContentPath(id, filename); err != nil {
		return err
	}
	s.publish("node.updated", id)
	return nil
}

// DeleteNode removes a node, its edges, index rows, and chunk vectors, then
// best-effort deletes the artifact file. Idempotent: deleting a missing
// node is a no-op success. Artifact deletion failure is logged, not fatal.
func (s *Service) DeleteNode(_ context.Context, id string) error {
	contentPath, err := s.db.DeleteNode(id)
	if err != nil {
		return err
	}
	if contentPath != "" {
		if delErr := s.artifacts.Delete(contentPath); delErr != nil {
			s.logger.Warn("artifact delete failed",
				slog.String("node_id", id),
				slog.String("file", contentPath),
				slog.String("error", delErr.Error()))
		}
	}
	s.publish("node.deleted", id)
	return nil
}

// ConnectNodes inserts a directed labelled edge; duplicate ordered pairs
// are silent no-ops.
func (s *Service) ConnectNodes(_ context.Context, sourceID, targetID, label string) error {
	if err := s.db.Connect(sourceID, targetID, label); err != nil {
		return err
	}
	s.publish("edge.connected", sourceID)
	return nil
}

// DisconnectNodes removes the edge for the ordered pair; no-op if absent.
func (s *Service) DisconnectNodes(_ context.Context, sourceID, targetID string) error {
	if err := s.db.Disconnect(sourceID, targetID); err != nil {
		return err
	}
	s.publish("edge.disconnected", sourceID)
	return nil
}

// GetGraphData returns a full snapshot. The two underlying reads are not
// mutually snapshot-consistent, so edges whose endpoints are missing from
// the node set are dropped here.
func (s *Service) GetGraphData(_ context.Context) ([]models.Node, []models.Edge, error) {
	nodes, edges, err := s.db.Graph()
	if err != nil {
		return nil, nil, err
	}
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	kept := edges[:0]
	for _, e := range edges {
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		kept = append(kept, e)
	}
	return nodes, kept, nil
}

// UpdateNodePosition merges canvas coordinates into the node metadata.
func (s *Service) UpdateNodePosition(_ context.Context, id string, x, y float64) error {
	if err := s.db.UpdatePosition(id, x, y); err != nil {
		return err
	}
	s.publish("node.updated", id)
	return nil
}

// IngestURL runs the ingest pipeline with the selected embedding provider.
func (s *Service) IngestURL(ctx context.Context, url, provider, apiKey string) (*models.Node, error) {
	cfg, err := ai.NewProviderConfig(provider, s.embedModel, apiKey)
	if err != nil {
		return nil, err
	}
	embedder, err := ai.NewEmbeddingClient(cfg, s.ollamaHost)
	if err != nil {
		return nil, err
	}
	n, err := s.pipeline.IngestURL(ctx, url, embedder, cfg.Kind)
	if err != nil {
		return nil, err
	}
	s.publish("node.created", n.ID)
	return n, nil
}

// SearchNodes runs fuzzy, semantic, or hybrid retrieval.
func (s *Service) SearchNodes(ctx context.Context, query, mode string) ([]models.SearchResult, error) {
	return s.engine.Search(ctx, query, mode)
}

// Chat answers one retrieval-augmented chat turn.
func (s *Service) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	return s.chat.Reply(ctx, message, history)
}

// RefreshArtifact re-indexes the FTS row for an externally-edited artifact
// file. Files without a matching node are ignored; chunk vectors are left
// untouched (re-embedding is a re-ingest concern).
func (s *Service) RefreshArtifact(nodeID string, content []byte) {
	n, err := s.db.GetNode(nodeID)
	if err != nil || n == nil {
		return
	}
	if err := s.db.RefreshDocument(nodeID, n.Title, string(content)); err != nil {
		s.logger.Warn("artifact refresh failed",
			slog.String("node_id", nodeID),
			slog.String("error", err.Error()))
		return
	}
	s.publish("node.updated", nodeID)
}
