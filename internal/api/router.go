package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notegraph/notegraph/internal/nodeservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *nodeservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Nodes.
	r.Post("/nodes", h.CreateNode)
	r.Get("/nodes/{id}", h.GetNode)
	r.Put("/nodes/{id}/content", h.SaveContent)
	r.Put("/nodes/{id}/position", h.UpdatePosition)
	r.Delete("/nodes/{id}", h.DeleteNode)

	// Edges and graph.
	r.Post("/edges", h.Connect)
	r.Delete("/edges", h.Disconnect)
	r.Get("/graph", h.Graph)

	// Ingest, search, chat.
	r.Post("/ingest", h.Ingest)
	r.Get("/search", h.Search)
	r.Post("/chat", h.Chat)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
