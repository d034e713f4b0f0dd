package api

import (
	"github.com/notegraph/notegraph/internal/models"
)

// CreateNodeRequest is the request body for creating a node.
type CreateNodeRequest struct {
	Type     string         `json:"type" example:"user_item" validate:"required"`
	Title    string         `json:"title" example:"Reading list" validate:"required"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SaveContentRequest is the request body for saving node content.
type SaveContentRequest struct {
	Content string `json:"content" example:"# Notes\nBody text" validate:"required"`
}

// PositionRequest is the request body for updating canvas coordinates.
type PositionRequest struct {
	X float64 `json:"x" example:"120.5" validate:"required"`
	Y float64 `json:"y" example:"-40" validate:"required"`
}

// EdgeRequest is the request body for connecting or disconnecting nodes.
type EdgeRequest struct {
	Source string `json:"source" example:"b2f1..." validate:"required"`
	Target string `json:"target" example:"9c0a..." validate:"required"`
	Label  string `json:"label,omitempty" example:"related"`
}

// IngestRequest is the request body for ingesting a URL.
type IngestRequest struct {
	URL      string `json:"url" example:"https://example.com/article" validate:"required"`
	Provider string `json:"provider" example:"ollama" validate:"required"`
	APIKey   string `json:"apiKey,omitempty"`
}

// ChatRequest is the request body for a retrieval-augmented chat turn.
type ChatRequest struct {
	Message string               `json:"message" example:"what did I save about transformers?" validate:"required"`
	History []models.ChatMessage `json:"history,omitempty"`
}

// ChatResponse wraps the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the full graph snapshot.
type GraphResponse struct {
	Nodes []models.Node `json:"nodes" validate:"required"`
	Edges []models.Edge `json:"edges" validate:"required"`
}
