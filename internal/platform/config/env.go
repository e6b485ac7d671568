package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// EnvVar describes one environment variable read by a config struct.
type EnvVar struct {
	Name     string `json:"name"`
	Default  string `json:"default,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Describe lists the environment variables target reads, in field order.
func Describe(target any) ([]EnvVar, error) {
	params, err := env.GetFieldParams(target)
	if err != nil {
		return nil, fmt.Errorf("describe env: %w", err)
	}
	out := make([]EnvVar, 0, len(params))
	for _, p := range params {
		if p.Key == "" {
			continue
		}
		out = append(out, EnvVar{
			Name:     p.Key,
			Default:  p.DefaultValue,
			Required: p.Required,
		})
	}
	return out, nil
}
