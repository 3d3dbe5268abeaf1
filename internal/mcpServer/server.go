package mcpServer

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/config"
	"github.com/akolanti/DocQueryAPI/internal/data/store"
	"github.com/akolanti/DocQueryAPI/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// Server exposes the query engine as MCP tools.
type Server struct {
	queries   rag.Service
	documents store.DocumentStore
	server    *mcp.Server

	// documents older than window are hidden from list_documents even
	// before the sweeper removes them
	window time.Duration
	now    func() time.Time
}

func NewServer(queries rag.Service, documents store.DocumentStore) (*Server, error) {
	if queries == nil || documents == nil {
		return nil, errors.New("mcp server needs a query service and a document store")
	}
	s := &Server{
		queries:   queries,
		documents: documents,
		window:    config.DefaultRetentionWindow,
		now:       time.Now,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "docquery",
			Version: Version,
		}, nil),
	}
	s.registerTools()
	return s, nil
}

// WithRetention sets the window used to hide expired documents and the clock
// used to age them. A nil clock keeps the current one.
func (s *Server) WithRetention(window time.Duration, now func() time.Time) *Server {
	if window > 0 {
		s.window = window
	}
	if now != nil {
		s.now = now
	}
	return s
}

// Run serves over stdio until the context is cancelled or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
