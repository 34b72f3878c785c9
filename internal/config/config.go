package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains local directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Remote contains configuration for the GPU host reached through gcloud.
type Remote struct {
	Project             string `toml:"project"`
	Zone                string `toml:"zone"`
	Instance            string `toml:"instance"`
	User                string `toml:"user"`
	GitRepo             string `toml:"git_repo"`
	GitBranch           string `toml:"git_branch"`
	SetupScript         string `toml:"setup_script"`
	SetupTimeoutSeconds int    `toml:"setup_timeout_seconds"`
}

// Transfer contains configuration for uploads and downloads to the remote host.
type Transfer struct {
	Concurrency    int `toml:"concurrency"`
	TimeoutSeconds int `toml:"timeout_seconds"`
	Retries        int `toml:"retries"`
}

// Conversion contains configuration for the remote text-to-speech run.
type Conversion struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	Retries        int `toml:"retries"`
	Workers        int `toml:"workers"`
}

// Metadata contains configuration for cover lookup and tag embedding.
type Metadata struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	SearchEngineID string `toml:"search_engine_id"`
	BaseURL        string `toml:"base_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for bookvoice.
//
// Configuration sections by subsystem:
//   - Paths: local staging and log directories
//   - Remote: GPU host identity and provisioning inputs
//   - Transfer: scp concurrency, timeout, and retry budget
//   - Conversion: remote TTS timeout, retry budget, and worker count
//   - Metadata: Google Custom Search cover lookup and tag embedding
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Remote     Remote     `toml:"remote"`
	Transfer   Transfer   `toml:"transfer"`
	Conversion Conversion `toml:"conversion"`
	Metadata   Metadata   `toml:"metadata"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bookvoice/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bookvoice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Remote.SetupScript, err = expandPath(c.Remote.SetupScript); err != nil {
		return fmt.Errorf("remote.setup_script: %w", err)
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Metadata.BaseURL == "" {
		c.Metadata.BaseURL = defaultMetadataBaseURL
	}
	return nil
}

// EnsureDirectories creates the local directories a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GcloudBinary returns the gcloud executable name.
func (c *Config) GcloudBinary() string {
	return "gcloud"
}

// FFmpegBinary returns the ffmpeg executable name used for tag embedding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// RemoteHome returns the remote user's home directory used for staging.
func (c *Config) RemoteHome() string {
	return "/home/" + c.Remote.User
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
