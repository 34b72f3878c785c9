package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookvoice/internal/config"
)

func TestDefaultValidatesWithInstance(t *testing.T) {
	cfg := config.Default()
	cfg.Remote.Instance = "tts-gpu-1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with instance should validate: %v", err)
	}
}

func TestValidateRequiresInstance(t *testing.T) {
	cfg := config.Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error without remote.instance")
	}
	if !strings.Contains(err.Error(), "remote.instance") {
		t.Fatalf("expected remote.instance in error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero transfer concurrency", func(c *config.Config) { c.Transfer.Concurrency = 0 }},
		{"negative transfer retries", func(c *config.Config) { c.Transfer.Retries = -1 }},
		{"zero conversion timeout", func(c *config.Config) { c.Conversion.TimeoutSeconds = 0 }},
		{"zero conversion workers", func(c *config.Config) { c.Conversion.Workers = 0 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"empty zone", func(c *config.Config) { c.Remote.Zone = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Remote.Instance = "tts-gpu-1"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[remote]
zone = "europe-west4-b"
instance = "tts-gpu-1"
user = "converter"

[transfer]
concurrency = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Transfer.Concurrency != 4 {
		t.Fatalf("expected transfer concurrency 4, got %d", cfg.Transfer.Concurrency)
	}
	if cfg.Remote.Zone != "europe-west4-b" {
		t.Fatalf("unexpected zone %q", cfg.Remote.Zone)
	}
	// Unset sections keep defaults.
	if cfg.Conversion.TimeoutSeconds != 3600 {
		t.Fatalf("expected default conversion timeout, got %d", cfg.Conversion.TimeoutSeconds)
	}
	if !filepath.IsAbs(cfg.Paths.StagingDir) {
		t.Fatalf("expected staging dir to be absolute, got %q", cfg.Paths.StagingDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	_, _, exists, err := config.Load(missing)
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	// Defaults fail validation because remote.instance is unset.
	if err == nil {
		t.Fatal("expected validation error from bare defaults")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[transfer]") {
		t.Fatal("sample config missing transfer section")
	}
}

func TestRemoteHome(t *testing.T) {
	cfg := config.Default()
	cfg.Remote.User = "alex"
	if got := cfg.RemoteHome(); got != "/home/alex" {
		t.Fatalf("RemoteHome() = %q", got)
	}
}
