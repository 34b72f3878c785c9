// Package testsupport provides shared helpers for package tests: disposable
// configurations and stubbed external binaries.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"bookvoice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StagingDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Remote.Project = "test-project"
	cfgVal.Remote.Zone = "us-central1-a"
	cfgVal.Remote.Instance = "tts-gpu"
	cfgVal.Remote.User = "converter"
	cfgVal.Remote.SetupScript = filepath.Join(base, "setup_remote.sh")
	cfgVal.Metadata.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMetadata enables cover lookup with the given credentials.
func WithMetadata(apiKey, engineID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metadata.Enabled = true
		b.cfg.Metadata.APIKey = apiKey
		b.cfg.Metadata.SearchEngineID = engineID
	}
}

// WithTransferConcurrency overrides the transfer gate size.
func WithTransferConcurrency(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transfer.Concurrency = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"gcloud", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
