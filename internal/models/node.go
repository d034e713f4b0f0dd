// Package models defines the domain types for NoteGraph.
package models

// Node represents a document, source, or user item in the research graph.
type Node struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	ContentPath string         `json:"contentPath,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

// Edge is a directed labelled relationship between two nodes.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
}

// SearchResult is a single retrieval hit. Score semantics depend on the
// search arm that produced it: FTS rank for fuzzy hits (lower emitted as-is),
// 1-distance for semantic hits.
type SearchResult struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// ChatMessage is one turn in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
