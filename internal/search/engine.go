// Package search implements fuzzy, semantic, and hybrid retrieval over the
// store's full-text and vector indices.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/models"
	"github.com/notegraph/notegraph/internal/store"
)

// Search modes.
const (
	ModeFuzzy    = "fuzzy"
	ModeSemantic = "semantic"
	ModeHybrid   = "hybrid"
)

// candidateLimit is how many rows each arm fetches before fusion.
const candidateLimit = 20

// Embedder is the slice of the ai embedding client the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine fuses full-text and vector retrieval into one result list.
//
// The two arms score on different scales: FTS rank is lower-better and
// unbounded negative, while 1-distance lives near [-1, 1]. Hybrid ordering
// is therefore approximate; the fusion stays a simple upsert-then-sort so
// the hybrid result set remains a superset of both arms.
type Engine struct {
	db       *store.DB
	embedder Embedder
}

// NewEngine creates an Engine. The embedder is used for semantic and
// hybrid modes only.
func NewEngine(db *store.DB, embedder Embedder) *Engine {
	return &Engine{db: db, embedder: embedder}
}

// Search runs the query in the given mode and returns fused results in
// descending score order, ties broken by insertion order.
func (e *Engine) Search(ctx context.Context, query, mode string) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.Validation, "search: empty query")
	}
	switch mode {
	case ModeFuzzy, ModeSemantic, ModeHybrid:
	default:
		return nil, apperr.New(apperr.Validation, "search: unknown mode %q", mode)
	}

	acc := newAccumulator()

	if mode == ModeFuzzy || mode == ModeHybrid {
		rows, err := e.db.FTSSearch(query, candidateLimit)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			acc.upsert(models.SearchResult{
				ID:      r.ID,
				Title:   r.Title,
				Score:   r.Rank,
				Snippet: r.Snippet,
			})
		}
	}

	if mode == ModeSemantic || mode == ModeHybrid {
		embedding, err := e.embedder.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		matches, err := e.db.VectorSearch(embedding, candidateLimit)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			result := models.SearchResult{
				ID:    m.NodeID,
				Score: 1 - m.Distance,
			}
			// Document-level FTS gives no snippet for vector hits;
			// inherit one (and the title) from a previous fuzzy hit.
			if prev, ok := acc.get(m.NodeID); ok {
				result.Title = prev.Title
				result.Snippet = prev.Snippet
			} else if n, err := e.db.GetNode(m.NodeID); err == nil && n != nil {
				result.Title = n.Title
			}
			acc.upsert(result)
		}
	}

	return acc.sorted(), nil
}

// accumulator keys results by node id, remembering insertion order for
// stable tie-breaking.
type accumulator struct {
	byID  map[string]int // id -> index in results
	items []models.SearchResult
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[string]int)}
}

func (a *accumulator) get(id string) (models.SearchResult, bool) {
	if i, ok := a.byID[id]; ok {
		return a.items[i], true
	}
	return models.SearchResult{}, false
}

// upsert keeps the most recent entry for an id, preserving its original
// insertion position.
func (a *accumulator) upsert(r models.SearchResult) {
	if i, ok := a.byID[r.ID]; ok {
		a.items[i] = r
		return
	}
	a.byID[r.ID] = len(a.items)
	a.items = append(a.items, r)
}

// sorted returns the results in descending score order. The sort is
// stable, so equal (or NaN-incomparable) scores keep insertion order.
func (a *accumulator) sorted() []models.SearchResult {
	out := make([]models.SearchResult, len(a.items))
	copy(out, a.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
