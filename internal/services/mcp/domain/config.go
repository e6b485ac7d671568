package domain

import (
	"context"

	"github.com/louisbranch/explodingdice/internal/analysis"
	"github.com/louisbranch/explodingdice/internal/platform/config"
	"github.com/louisbranch/explodingdice/internal/platform/errors/i18n"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ConfigInput represents the MCP tool input for the server configuration.
type ConfigInput struct{}

// EnvVarEntry describes one environment variable the server reads.
type EnvVarEntry struct {
	Name     string `json:"name" jsonschema:"environment variable name"`
	Default  string `json:"default" jsonschema:"value used when unset"`
	Required bool   `json:"required" jsonschema:"true when the variable must be set"`
}

// ConfigResult represents the MCP tool output for the server configuration.
type ConfigResult struct {
	ReferenceDie   int           `json:"reference_die" jsonschema:"default reference die faces"`
	VariableDice   []int         `json:"variable_dice" jsonschema:"default variable die sizes"`
	Targets        []int         `json:"targets" jsonschema:"default targets"`
	MaxExplosions  int           `json:"max_explosions" jsonschema:"safety ceiling on explosions per die"`
	CurveMaxTarget int           `json:"curve_max_target" jsonschema:"default target curve length"`
	CacheStrategy  string        `json:"cache_strategy" jsonschema:"precompute or lazy"`
	Env            []EnvVarEntry `json:"env" jsonschema:"environment variables read at startup"`
	Locales        []string      `json:"locales" jsonschema:"locales with translated messages"`
}

// ConfigTool defines the MCP tool schema for the server configuration.
func ConfigTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "explode_config",
		Description: "Reports the analysis defaults and the environment variables that control them",
	}
}

// ConfigHandler reports cfg and the environment it was loaded from.
func ConfigHandler(cfg analysis.Config) mcp.ToolHandlerFor[ConfigInput, ConfigResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ConfigInput) (*mcp.CallToolResult, ConfigResult, error) {
		vars, err := config.Describe(&analysis.Config{})
		if err != nil {
			return nil, ConfigResult{}, err
		}
		env := make([]EnvVarEntry, 0, len(vars))
		for _, v := range vars {
			env = append(env, EnvVarEntry{Name: v.Name, Default: v.Default, Required: v.Required})
		}
		return nil, ConfigResult{
			ReferenceDie:   cfg.ReferenceDie,
			VariableDice:   append([]int{}, cfg.VariableDice...),
			Targets:        append([]int{}, cfg.Targets...),
			MaxExplosions:  cfg.MaxExplosions,
			CurveMaxTarget: cfg.CurveMaxTarget,
			CacheStrategy:  string(cfg.CacheStrategy),
			Env:            env,
			Locales:        i18n.Locales(),
		}, nil
	}
}
