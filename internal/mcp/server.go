// Package mcp provides an MCP (Model Context Protocol) server exposing
// pulse detection, report building, and run history as tools.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/stellalab/pulsereport/internal/config"
	"github.com/stellalab/pulsereport/internal/store"
)

// Server wraps the MCP SDK server and the run-history store.
type Server struct {
	server *sdk.Server
	store  *store.RunStore
	cfg    *config.Config
}

// Config holds server identity and application configuration.
type Config struct {
	Name    string         // Server name (e.g., "pulsereport")
	Version string         // Server version
	App     *config.Config // Application configuration
}

// NewServer creates a new MCP server with the pulsereport tools registered.
func NewServer(cfg *Config) (*Server, error) {
	runStore, err := store.Open(cfg.App.Output.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening run store: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		server: mcpServer,
		store:  runStore,
		cfg:    cfg.App,
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.store.Close()
	return err
}

// Close closes the server and releases resources.
func (s *Server) Close() error {
	return s.store.Close()
}

// registerTools registers all pulsereport MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "pulse_detect",
		Description: "Detect control-pulse intervals in a simulation results table (CSV)",
	}, s.handlePulseDetect)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "pulse_report",
		Description: "Build the full intervention report for a results table, optionally rendering the SVG chart",
	}, s.handlePulseReport)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "run_history",
		Description: "List recent simulation and report runs from the history store",
	}, s.handleRunHistory)
}
