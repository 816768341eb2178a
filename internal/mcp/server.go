// Package mcp exposes the image editing tools over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/common-creation/image-editor-mcp/internal/editor"
	"github.com/common-creation/image-editor-mcp/internal/logging"
	"github.com/common-creation/image-editor-mcp/internal/tools"
)

// Server wraps an SDK server with the image editing tools registered
type Server struct {
	config   ServerConfig
	sdk      *mcpsdk.Server
	registry *tools.Registry
	logger   *logging.Logger

	mu     sync.RWMutex
	status ServerStatus
}

// NewServer creates a server whose tools delegate to ed
func NewServer(config ServerConfig, ed tools.Editor, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if config.Name == "" {
		config.Name = "image-editor-mcp"
	}
	if config.Version == "" {
		config.Version = "1.0.0"
	}

	registry, err := tools.NewDefaultRegistry(ed, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	sdk := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    config.Name,
		Version: config.Version,
	}, &mcpsdk.ServerOptions{
		Logger: logger.WithField("component", "mcp-sdk").Slog(),
	})

	s := &Server{
		config:   config,
		sdk:      sdk,
		registry: registry,
		logger:   logger.WithField("component", "mcp"),
		status: ServerStatus{
			Name:  config.Name,
			State: StateStopped,
			Tools: registry.Names(),
		},
	}

	for _, tool := range registry.List() {
		sdk.AddTool(&mcpsdk.Tool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Schema(),
		}, s.handler(tool))
	}

	return s, nil
}

// handler adapts a tool to the SDK. Tool failures are reported in the
// result with IsError set, never as protocol errors.
func (s *Server) handler(tool tools.Tool) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args []byte
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		return toCallToolResult(tool.Execute(ctx, args)), nil
	}
}

func toCallToolResult(result editor.Result) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: result.Message}},
		IsError: result.Failed(),
	}
}

// Connect serves a single session over t and returns without blocking
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.sdk.Connect(ctx, t, nil)
}

// Run serves on the given transport until ctx is cancelled or the client
// disconnects. An empty transport selects stdio.
func (s *Server) Run(ctx context.Context, transport string) error {
	kind, err := normalizeTransport(transport)
	if err != nil {
		return err
	}

	s.setState(StateStarting, kind, nil)

	switch kind {
	case TransportHTTP:
		err = s.serveHTTP(ctx)
	default:
		s.setState(StateRunning, kind, nil)
		s.logger.Info("Image editor MCP server running on stdio")
		err = s.sdk.Run(ctx, &mcpsdk.StdioTransport{})
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		s.setState(StateError, kind, err)
		return NewTransportError("server stopped", kind, err)
	}

	s.setState(StateStopped, kind, nil)
	s.logger.Debug("Image editor MCP server stopped")
	return nil
}

// Status returns a snapshot of the server state
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	status.Tools = append([]string(nil), s.status.Tools...)
	return status
}

func (s *Server) setState(state State, transport string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.State = state
	s.status.Transport = transport
	s.status.Error = err
	if state == StateRunning {
		s.status.StartedAt = time.Now()
	}
}
