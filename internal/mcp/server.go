// Package mcp exposes the diet and workout summaries as Model Context Protocol tools.
package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/pageza/fittrack/backend/internal/service"
)

// Server wraps the MCP server with access to the tracking services.
type Server struct {
	mcpServer *mcp.Server
	diet      service.IDietService
	workouts  service.IWorkoutService
	now       func() time.Time
}

// NewServer creates an MCP server backed by the given services.
func NewServer(diet service.IDietService, workouts service.IWorkoutService) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fittrack",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		diet:      diet,
		workouts:  workouts,
		now:       time.Now,
	}
	s.registerTools()
	return s
}

// WithClock replaces the time source used when a tool call leaves out the date.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
