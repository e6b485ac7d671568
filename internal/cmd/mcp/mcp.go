// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/explodingdice/internal/analysis"
	entrypoint "github.com/louisbranch/explodingdice/internal/platform/cmd"
	"github.com/louisbranch/explodingdice/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	HTTPAddr     string   `env:"EXPLODING_DICE_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
	Transport    string   `env:"EXPLODING_DICE_MCP_TRANSPORT"     envDefault:"stdio"`
	AllowedHosts []string `env:"EXPLODING_DICE_MCP_ALLOWED_HOSTS" envSeparator:","`
	RateLimit    float64  `env:"EXPLODING_DICE_MCP_RATE_LIMIT"    envDefault:"20"`
	RateBurst    int      `env:"EXPLODING_DICE_MCP_RATE_BURST"    envDefault:"40"`

	Analysis analysis.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "HTTP requests per second, 0 disables the limit")
	fs.IntVar(&cfg.Analysis.ReferenceDie, "reference", cfg.Analysis.ReferenceDie, "Default reference die size")
	fs.Func("allowed-hosts", "Comma-separated extra hosts accepted by the HTTP transport", func(value string) error {
		cfg.AllowedHosts = splitHosts(value)
		return nil
	})
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := entrypoint.Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the transport settings and the analysis defaults.
func (c *Config) Validate() error {
	switch service.TransportKind(c.Transport) {
	case service.TransportStdio, service.TransportHTTP:
	default:
		return fmt.Errorf("transport %q is not supported", c.Transport)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return c.Analysis.Validate()
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return service.Run(ctx, service.Config{
			Transport:    service.TransportKind(cfg.Transport),
			HTTPAddr:     cfg.HTTPAddr,
			AllowedHosts: cfg.AllowedHosts,
			RateLimit:    cfg.RateLimit,
			RateBurst:    cfg.RateBurst,
			Analysis:     cfg.Analysis,
		})
	})
}

func splitHosts(value string) []string {
	var hosts []string
	for _, host := range strings.Split(value, ",") {
		if host = strings.TrimSpace(host); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
