package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/louisbranch/explodingdice/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/time/rate"
)

const defaultHTTPAddr = "localhost:8081"

// HTTPTransport serves an MCP server over streamable HTTP.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	server       *mcp.Server
	httpServer   *http.Server
	limiter      *rate.Limiter
}

// NewHTTPTransport creates an HTTP transport for server that only
// accepts loopback hosts plus allowedHosts.
func NewHTTPTransport(addr string, allowedHosts []string, server *mcp.Server, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		addr:         addr,
		allowedHosts: parseAllowedHosts(allowedHosts),
		server:       server,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handler returns the HTTP routes: /mcp for the protocol and /mcp/health.
func (t *HTTPTransport) Handler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", t.localOnly(t.rateLimited(streamable)))
	mux.Handle("/mcp/health", t.localOnly(http.HandlerFunc(t.handleHealth)))
	return mux
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.httpServer = &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	log.Printf("Starting MCP HTTP server on %s", t.addr)

	errChan := make(chan error, 1)
	go func() {
		listener, err := net.Listen("tcp", t.addr)
		if err != nil {
			errChan <- err
			return
		}
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func (t *HTTPTransport) localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := t.validateLocalRequest(r); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth handles GET /mcp/health for health checks.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Printf("Failed to write health response: %v", err)
	}
}
