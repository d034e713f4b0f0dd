// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes research-graph tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notegraph/notegraph/internal/nodeservice"
	"github.com/notegraph/notegraph/internal/search"
)

// Server wraps the MCP server with research-graph tools.
type Server struct {
	mcp *server.MCPServer
	svc *nodeservice.Service
}

// New creates a new MCP server with all graph tools registered.
func New(svc *nodeservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"NoteGraph",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_nodes",
		mcp.WithDescription("Search the research graph. Modes: fuzzy (keyword), "+
			"semantic (embedding nearest-neighbour), hybrid (both, default)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("mode", mcp.Description("fuzzy, semantic, or hybrid (default hybrid)")),
	), s.searchNodes)

	s.mcp.AddTool(mcp.NewTool("get_node",
		mcp.WithDescription("Fetch a single node by id, including its metadata and timestamps."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id (UUID)")),
	), s.getNode)

	s.mcp.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Return the full graph snapshot: all nodes and all edges."),
	), s.getGraph)

	s.mcp.AddTool(mcp.NewTool("get_graph_contract",
		mcp.WithDescription("Returns the research graph data contract. "+
			"Call this first to understand node types, metadata keys, and search modes."),
	), s.getGraphContract)

	// Resource: graph data contract.
	s.mcp.AddResource(
		mcp.NewResource("notegraph://graph-contract", "Research Graph Contract",
			mcp.WithResourceDescription("Node and edge model exposed by the graph tools."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGraphContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := search.ModeHybrid
	if m, err := req.RequireString("mode"); err == nil && m != "" {
		mode = m
	}
	results, err := s.svc.SearchNodes(ctx, query, mode)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	node, err := s.svc.GetNode(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if node == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(node, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getGraph(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nodes, edges, err := s.svc.GetGraphData(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"nodes": nodes,
		"edges": edges,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getGraphContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GraphContract), nil
}

func (s *Server) readGraphContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "notegraph://graph-contract",
			MIMEType: "text/markdown",
			Text:     GraphContract,
		},
	}, nil
}
