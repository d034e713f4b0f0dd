package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notegraph/notegraph/internal/apperr"
	"github.com/notegraph/notegraph/internal/nodeservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *nodeservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *nodeservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps an error to an HTTP status by its kind and logs
// server-side failures.
func writeError(w http.ResponseWriter, op string, err error) {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case apperr.NotFound:
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case apperr.Fetch, apperr.Provider:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("upstream error"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// CreateNode handles POST /api/nodes.
//
//	@Summary		Create a node
//	@Tags			nodes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNodeRequest	true	"Node to create"
//	@Success		201		{object}	models.Node
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes [post]
func (h *Handler) CreateNode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Type == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("type and title are required"))
		return
	}
	node, err := h.svc.CreateNode(r.Context(), req.Type, req.Title, req.Metadata)
	if err != nil {
		writeError(w, "create node", err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// GetNode handles GET /api/nodes/{id}.
//
//	@Summary		Get a node by id
//	@Tags			nodes
//	@Produce		json
//	@Param			id	path		string	true	"Node id"
//	@Success		200	{object}	models.Node
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id} [get]
func (h *Handler) GetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	node, err := h.svc.GetNode(r.Context(), id)
	if err != nil {
		writeError(w, "get node", err)
		return
	}
	if node == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// SaveContent handles PUT /api/nodes/{id}/content.
//
//	@Summary		Save node content to the artifact store
//	@Tags			nodes
//	@Accept			json
//	@Param			id		path	string				true	"Node id"
//	@Param			body	body	SaveContentRequest	true	"Content"
//	@Success		204		"Content saved"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id}/content [put]
func (h *Handler) SaveContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")
	var req SaveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.SaveNodeContent(r.Context(), id, []byte(req.Content)); err != nil {
		writeError(w, "save content", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNode handles DELETE /api/nodes/{id}.
//
//	@Summary		Delete a node and its edges, index rows, and artifact
//	@Tags			nodes
//	@Param			id	path	string	true	"Node id"
//	@Success		204	"Node deleted"
//	@Security		BearerAuth
//	@Router			/nodes/{id} [delete]
func (h *Handler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteNode(r.Context(), id); err != nil {
		writeError(w, "delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePosition handles PUT /api/nodes/{id}/position.
//
//	@Summary		Update canvas coordinates in node metadata
//	@Tags			nodes
//	@Accept			json
//	@Param			id		path	string			true	"Node id"
//	@Param			body	body	PositionRequest	true	"Coordinates"
//	@Success		204		"Position updated"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/nodes/{id}/position [put]
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.svc.UpdateNodePosition(r.Context(), id, req.X, req.Y); err != nil {
		writeError(w, "update position", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /api/edges.
//
//	@Summary		Connect two nodes with a labelled edge
//	@Tags			graph
//	@Accept			json
//	@Param			body	body	EdgeRequest	true	"Edge"
//	@Success		204		"Edge created (or already present)"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/edges [post]
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Source == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source and target are required"))
		return
	}
	if err := h.svc.ConnectNodes(r.Context(), req.Source, req.Target, req.Label); err != nil {
		writeError(w, "connect nodes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Disconnect handles DELETE /api/edges.
//
//	@Summary		Remove the edge for an ordered node pair
//	@Tags			graph
//	@Accept			json
//	@Param			body	body	EdgeRequest	true	"Edge endpoints"
//	@Success		204		"Edge removed (or absent)"
//	@Security		BearerAuth
//	@Router			/edges [delete]
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	var req EdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Source == "" || req.Target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source and target are required"))
		return
	}
	if err := h.svc.DisconnectNodes(r.Context(), req.Source, req.Target); err != nil {
		writeError(w, "disconnect nodes", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Graph handles GET /api/graph.
//
//	@Summary		Get the full graph snapshot
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	GraphResponse
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, edges, err := h.svc.GetGraphData(r.Context())
	if err != nil {
		writeError(w, "graph", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nodes": nodes,
		"edges": edges,
	})
}

// Ingest handles POST /api/ingest.
//
//	@Summary		Fetch, chunk, embed, and persist a web page as a source node
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IngestRequest	true	"URL and provider"
//	@Success		201		{object}	models.Node
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ingest [post]
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}
	node, err := h.svc.IngestURL(r.Context(), req.URL, req.Provider, req.APIKey)
	if err != nil {
		writeError(w, "ingest", err)
		return
	}
	writeJSON(w, http.StatusCreated, node)
}

// Search handles GET /api/search.
//
//	@Summary		Fuzzy, semantic, or hybrid retrieval
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			mode	query		string	false	"Mode"	Enums(fuzzy, semantic, hybrid)
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "hybrid"
	}
	results, err := h.svc.SearchNodes(r.Context(), q, mode)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Chat handles POST /api/chat.
//
//	@Summary		Answer one retrieval-augmented chat turn
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"Message and prior turns"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	reply, err := h.svc.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		writeError(w, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
