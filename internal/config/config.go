// Package config holds process configuration for the docblocks command.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config is read from the environment.
type Config struct {
	GraphQLURL     string        `env:"DOCBLOCKS_GRAPHQL_URL"`
	GraphQLToken   string        `env:"DOCBLOCKS_GRAPHQL_TOKEN"`
	RequestTimeout time.Duration `env:"DOCBLOCKS_REQUEST_TIMEOUT" envDefault:"10s"`
	Registry       string        `env:"DOCBLOCKS_REGISTRY"`
	// TestAdapter silences missing relationship diagnostics.
	TestAdapter string `env:"TEST_ADAPTER"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RequestTimeout < 0 {
		return Config{}, fmt.Errorf("parse env: DOCBLOCKS_REQUEST_TIMEOUT must not be negative")
	}
	return cfg, nil
}

// QuietMissing reports whether test mode is active.
func (c Config) QuietMissing() bool {
	return c.TestAdapter != ""
}

// Logger builds the process logger. Unknown levels fall back to info; any
// format other than json writes human readable console output.
func (c Config) Logger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	if strings.EqualFold(c.LogFormat, "json") {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
