package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "explodingdice"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"

	tracerName = "github.com/louisbranch/explodingdice/internal/services/mcp"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // HTTP server address (e.g., "localhost:8081"). Defaults to localhost:8081 for HTTP transport.
	// AllowedHosts extends the loopback-only Host/Origin allowlist for HTTP.
	AllowedHosts []string
	// RateLimit caps HTTP requests per second; zero disables the limit.
	RateLimit float64
	RateBurst int
	// Analysis holds the defaults and safety ceiling every tool call runs with.
	Analysis analysis.Config
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// newServer registers every exploding-dice tool against cfg.
func newServer(cfg analysis.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config: %w", err)
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	addTool(mcpServer, domain.SurvivalTool(), domain.SurvivalHandler(cfg))
	addTool(mcpServer, domain.CombineMaxTool(), domain.CombineMaxHandler(cfg))
	addTool(mcpServer, domain.SensitivityTableTool(), domain.SensitivityTableHandler(cfg))
	addTool(mcpServer, domain.DominanceTool(), domain.DominanceHandler(cfg))
	addTool(mcpServer, domain.TargetCurveTool(), domain.TargetCurveHandler(cfg))
	addTool(mcpServer, domain.DieStatsTool(), domain.DieStatsHandler(cfg))
	addTool(mcpServer, domain.ConfigTool(), domain.ConfigHandler(cfg))

	return &Server{mcpServer: mcpServer}, nil
}

func addTool[In, Out any](server *mcp.Server, tool *mcp.Tool, handler mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(server, tool, traced(tool.Name, handler))
}

// traced wraps a tool handler in a span named after the tool.
func traced[In, Out any](name string, handler mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input In) (*mcp.CallToolResult, Out, error) {
		ctx, span := otel.Tracer(tracerName).Start(ctx, "mcp.tool",
			trace.WithAttributes(attribute.String("tool", name)),
		)
		defer span.End()

		result, out, err := handler(ctx, req, input)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "tool call failed")
		}
		return result, out, err
	}
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
// It is transport-agnostic so startup can choose stdio for local tools and
// HTTP for remote integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := newServer(cfg.Analysis)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		httpAddr := cfg.HTTPAddr
		if httpAddr == "" {
			httpAddr = defaultHTTPAddr
		}
		transport := NewHTTPTransport(httpAddr, cfg.AllowedHosts, server.mcpServer,
			WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		)
		return transport.Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
