// Package ingest implements the fetch → parse → chunk → embed → persist
// pipeline for foreign web content.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/notegraph/notegraph/internal/artifact"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/parser"
	"github.com/notegraph/notegraph/internal/store"
)

// embedConcurrency bounds in-flight embedding calls per ingest.
const embedConcurrency = 4

// Options configures chunking for a Pipeline.
type Options struct {
	ChunkStrategy string // "paragraph-pack" or "word-count"
	ChunkSize     int    // paragraph-pack: max chunk characters
	TargetTokens  int    // word-count: approximate tokens per chunk
}

// Pipeline ingests URLs into the store.
type Pipeline struct {
	db        *store.DB
	artifacts *artifact.Store
	opts      Options
	clock     store.Clock
	ids       store.IDSource
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(db *store.DB, artifacts *artifact.Store, opts Options, logger *slog.Logger) *Pipeline {
	if opts.ChunkStrategy == "" {
		opts.ChunkStrategy = "paragraph-pack"
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = 500
	}
	return &Pipeline{
		db:        db,
		artifacts: artifacts,
		opts:      opts,
		clock:     store.SystemClock(),
		ids:       store.UUIDSource(),
		logger:    logger,
	}
}

// WithClock overrides the time source (tests).
func (p *Pipeline) WithClock(c store.Clock) *Pipeline { p.clock = c; return p }

// WithIDSource overrides the identifier source (tests).
func (p *Pipeline) WithIDSource(s store.IDSource) *Pipeline { p.ids = s; return p }

// chunk applies the configured strategy.
func (p *Pipeline) chunk(text string) []string {
	if p.opts.ChunkStrategy == "word-count" {
		return ChunkByWords(text, p.opts.TargetTokens)
	}
	return PackParagraphs(text, p.opts.ChunkSize)
}

// IngestURL fetches, parses, chunks, embeds, and persists a web page as a
// new source node. Embedding completes for every chunk before the store is
// touched; the node, FTS, and vector rows then commit in one transaction.
// A failure after the artifact write leaves the file behind (benign leak,
// recoverable by a later delete of the same node id).
func (p *Pipeline) IngestURL(ctx context.Context, url string, embedder Embedder, providerKind string) (*models.Node, error) {
	html, err := Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	parsed, err := parser.Parse(html)
	if err != nil {
		return nil, err
	}
	chunks := p.chunk(parsed.Text)

	nodeID := p.ids.NewID()
	now := store.FormatTime(p.clock.Now())
	filename := nodeID + ".md"

	if err := p.artifacts.Write(filename, []byte(parsed.Text)); err != nil {
		return nil, err
	}

	embeddings, err := p.embedAll(ctx, embedder, chunks)
	if err != nil {
		return nil, err
	}

	node := &models.Node{
		ID:          nodeID,
		Type:        "source",
		Title:       parsed.Title,
		ContentPath: filename,
		Metadata: map[string]any{
			"url":            url,
			"chunk_count":    len(chunks),
			"chunk_strategy": p.opts.ChunkStrategy,
			"provider":       providerKind,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.db.CreateIngestedNode(node, parsed.Text, embeddings); err != nil {
		return nil, err
	}

	p.logger.Info("ingested url",
		slog.String("node_id", nodeID),
		slog.String("url", url),
		slog.Int("chunks", len(chunks)))
	return node, nil
}

// Embedder is the slice of the ai embedding client the pipeline needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// embedAll embeds every chunk, preserving chunk order. Any failure or
// cancellation discards all partial results.
func (p *Pipeline) embedAll(ctx context.Context, embedder Embedder, chunks []string) ([][]float32, error) {
	embeddings := make([][]float32, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			emb, err := embedder.Embed(gCtx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			embeddings[i] = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return embeddings, nil
}
