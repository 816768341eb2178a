package mcp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/common-creation/image-editor-mcp/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// HTTPHandler serves the MCP streamable HTTP protocol for this server
func (s *Server) HTTPHandler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.sdk
	}, nil)
}

// serveHTTP listens on the configured address until ctx is cancelled
func (s *Server) serveHTTP(ctx context.Context) error {
	if s.config.Addr == "" {
		return NewTransportError("HTTP transport requires an address", TransportHTTP, nil)
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return NewTransportError("failed to listen", TransportHTTP, err)
	}

	return s.serveListener(ctx, listener)
}

func (s *Server) serveListener(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	s.setState(StateRunning, TransportHTTP, nil)
	s.logger.InfoWith("Image editor MCP server listening", logging.Fields{
		"url": "http://" + listener.Addr().String(),
	})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			// Streams still open after the timeout are cut off.
			s.logger.Error("HTTP shutdown timed out, closing open connections")
			srv.Close()
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
