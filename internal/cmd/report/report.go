// Package report parses report command flags and writes the full analysis as
// JSON.
package report

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/louisbranch/explodingdice/internal/analysis"
	entrypoint "github.com/louisbranch/explodingdice/internal/platform/cmd"
	"github.com/louisbranch/explodingdice/internal/platform/config"
)

// Config holds report command configuration.
type Config struct {
	Pretty bool `env:"EXPLODING_DICE_REPORT_PRETTY" envDefault:"true"`
	// DescribeEnv prints the supported environment variables instead of
	// running the analysis.
	DescribeEnv bool

	Analysis analysis.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.BoolVar(&cfg.Pretty, "pretty", cfg.Pretty, "Indent the JSON output")
	fs.BoolVar(&cfg.DescribeEnv, "describe-env", false, "Print the supported environment variables and exit")
	fs.IntVar(&cfg.Analysis.ReferenceDie, "reference", cfg.Analysis.ReferenceDie, "Reference die size")
	fs.StringVar((*string)(&cfg.Analysis.CacheStrategy), "cache", string(cfg.Analysis.CacheStrategy), "Cache strategy: precompute or lazy")
	fs.IntVar(&cfg.Analysis.Parallelism, "parallelism", cfg.Analysis.Parallelism, "Maximum concurrent analysis steps")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if err := entrypoint.Validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the analysis settings unless only the env listing was
// requested.
func (c *Config) Validate() error {
	if c.DescribeEnv {
		return nil
	}
	return c.Analysis.Validate()
}

// Run executes the analysis and writes the report to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if cfg.DescribeEnv {
		return describeEnv(cfg, out)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceReport, func(ctx context.Context) error {
		run, err := analysis.NewRun(cfg.Analysis)
		if err != nil {
			return err
		}
		report, err := run.Execute(ctx)
		if err != nil {
			return fmt.Errorf("execute analysis: %w", err)
		}
		return encode(out, report, cfg.Pretty)
	})
}

func describeEnv(cfg Config, out io.Writer) error {
	vars, err := config.Describe(&Config{})
	if err != nil {
		return err
	}
	return encode(out, vars, cfg.Pretty)
}

func encode(out io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(out)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
