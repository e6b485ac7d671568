package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectInMemory serves a fresh server over in-memory transports and returns
// a connected client session.
func connectInMemory(t *testing.T) *mcp.ClientSession {
	t.Helper()
	server, err := newServer(analysis.DefaultConfig())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientCtx, clientCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer clientCancel()
	session, err := client.Connect(clientCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})
	return session
}

func decodeStructuredContent[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var out T
	data, err := json.Marshal(result.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal structured content: %v", err)
	}
	return out
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	return result
}

func TestServerListsTools(t *testing.T) {
	session := connectInMemory(t)

	list, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"explode_combine_max",
		"explode_config",
		"explode_die_stats",
		"explode_dominance",
		"explode_sensitivity_table",
		"explode_survival",
		"explode_target_curve",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("tools = %v, want %v", names, want)
	}
}

func TestServerSurvivalRoundTrip(t *testing.T) {
	session := connectInMemory(t)

	result := callTool(t, session, "explode_survival", map[string]any{"sides": 4, "target": 10})
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	out := decodeStructuredContent[domain.SurvivalResult](t, result)
	if out.Probability.Exact != "3/64" {
		t.Fatalf("S(4,10) = %q, want 3/64", out.Probability.Exact)
	}
	if out.Die != "d4" {
		t.Fatalf("die = %q, want d4", out.Die)
	}
}

func TestServerCombineMaxRoundTrip(t *testing.T) {
	session := connectInMemory(t)

	result := callTool(t, session, "explode_combine_max", map[string]any{"die_a": 6, "die_b": 6, "target": 6})
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	out := decodeStructuredContent[domain.CombineMaxResult](t, result)
	if out.Combined.Exact != "11/36" {
		t.Fatalf("combined = %q, want 11/36", out.Combined.Exact)
	}
}

func TestServerSensitivityTableRoundTrip(t *testing.T) {
	session := connectInMemory(t)

	result := callTool(t, session, "explode_sensitivity_table", map[string]any{})
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	out := decodeStructuredContent[domain.SensitivityTableResult](t, result)
	if len(out.Rows) != 5 || len(out.Marginals) != 16 {
		t.Fatalf("rows = %d, marginals = %d", len(out.Rows), len(out.Marginals))
	}
}

func TestServerDominanceRoundTrip(t *testing.T) {
	session := connectInMemory(t)

	result := callTool(t, session, "explode_dominance", map[string]any{"variable": 4, "target": 6})
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	out := decodeStructuredContent[domain.DominanceResult](t, result)
	if out.Regime != "balanced" || out.Ratio == nil || out.Ratio.Exact != "15/13" {
		t.Fatalf("dominance = %+v", out)
	}
}

func TestServerTargetCurveRoundTrip(t *testing.T) {
	session := connectInMemory(t)

	result := callTool(t, session, "explode_target_curve", map[string]any{"variable": 8, "max_target": 10})
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result.Content)
	}
	out := decodeStructuredContent[domain.TargetCurveResult](t, result)
	if len(out.Points) != 10 || out.Pair != "d6+d8" {
		t.Fatalf("curve = %s with %d points", out.Pair, len(out.Points))
	}
}

func TestServerDieStatsAndConfigRoundTrip(t *testing.T) {
	session := connectInMemory(t)

	stats := callTool(t, session, "explode_die_stats", map[string]any{"sides": 12})
	if stats.IsError {
		t.Fatalf("unexpected tool error: %+v", stats.Content)
	}
	if out := decodeStructuredContent[domain.DieStatsResult](t, stats); out.ExpectedValue.Exact != "78/11" {
		t.Fatalf("E[d12] = %q, want 78/11", out.ExpectedValue.Exact)
	}

	cfg := callTool(t, session, "explode_config", map[string]any{})
	if cfg.IsError {
		t.Fatalf("unexpected tool error: %+v", cfg.Content)
	}
	if out := decodeStructuredContent[domain.ConfigResult](t, cfg); out.MaxExplosions != 10000 {
		t.Fatalf("max explosions = %d, want 10000", out.MaxExplosions)
	}
}

func TestServerReportsToolErrors(t *testing.T) {
	session := connectInMemory(t)

	result := callTool(t, session, "explode_survival", map[string]any{"sides": 1, "target": 3})
	if !result.IsError {
		t.Fatal("expected tool error")
	}
	if len(result.Content) == 0 {
		t.Fatal("expected error content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	if !strings.Contains(text.Text, "INVALID_DIE_SIZE") {
		t.Fatalf("expected error code in %q", text.Text)
	}
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	cfg := analysis.DefaultConfig()
	cfg.MaxExplosions = 0
	if _, err := newServer(cfg); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunRejectsUnknownTransport(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "carrier-pigeon", Analysis: analysis.DefaultConfig()})
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected unsupported transport error, got %v", err)
	}
}

func TestServeWithTransportRequiresServer(t *testing.T) {
	var s *Server
	if err := s.serveWithTransport(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil server")
	}
}
