package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DOCBLOCKS_GRAPHQL_URL", "DOCBLOCKS_GRAPHQL_TOKEN", "DOCBLOCKS_REQUEST_TIMEOUT", "DOCBLOCKS_REGISTRY", "TEST_ADAPTER", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{RequestTimeout: 10 * time.Second, LogLevel: "info", LogFormat: "console"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.QuietMissing() {
		t.Fatalf("quiet mode must be off by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DOCBLOCKS_GRAPHQL_URL", "http://localhost:3000/api/graphql")
	t.Setenv("DOCBLOCKS_REQUEST_TIMEOUT", "2s")
	t.Setenv("DOCBLOCKS_REGISTRY", "registry.yaml")
	t.Setenv("TEST_ADAPTER", "sqlite")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GraphQLURL != "http://localhost:3000/api/graphql" || cfg.RequestTimeout != 2*time.Second || cfg.Registry != "registry.yaml" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.QuietMissing() {
		t.Fatalf("TEST_ADAPTER must enable quiet mode")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("DOCBLOCKS_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", LogFormat: "json"}.Logger(&buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("list", "Post").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["level"] != "warn" || entry["list"] != "Post" || entry["message"] != "shown" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestLoggerConsoleFallbackLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "chatty"}.Logger(&buf)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Fatalf("unexpected console output: %q", out)
	}
}
