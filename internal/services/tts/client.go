// Package tts invokes the remote text-to-speech container and classifies
// its failures for the retry policy.
package tts

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"bookvoice/internal/language"
	"bookvoice/internal/services"
	"bookvoice/internal/services/gcloud"
)

// Converter runs one remote conversion for a staged book.
type Converter interface {
	Convert(ctx context.Context, remoteKey, fileName, languageCode string, onOutput func(string)) error
}

// Stager manages the per-book staging directories on the remote host.
type Stager interface {
	BookInputDir(remoteKey string) string
	BookOutputDir(remoteKey string) string
	PrepareBook(ctx context.Context, remoteKey string) error
	CleanupBook(ctx context.Context, remoteKey string) error
}

// Option configures the client.
type Option func(*Client)

// WithModelsDir overrides the remote models cache mounted into the container.
func WithModelsDir(dir string) Option {
	return func(c *Client) {
		if dir != "" {
			c.modelsDir = dir
		}
	}
}

// Client wraps the dockerized TTS engine on the remote host. Staging is
// keyed by the book's remote key so a retried upload or conversion always
// lands in the same place and concurrent books never share directories.
type Client struct {
	exec       gcloud.Executor
	image      string
	remoteHome string
	modelsDir  string
	workers    int
}

// New constructs a conversion client. image is the docker tag produced by
// remote provisioning; remoteHome is the staging root on the host.
func New(exec gcloud.Executor, image, remoteHome string, workers int, opts ...Option) (*Client, error) {
	if exec == nil {
		return nil, errors.New("remote executor required")
	}
	if strings.TrimSpace(image) == "" {
		return nil, errors.New("docker image required")
	}
	if strings.TrimSpace(remoteHome) == "" {
		return nil, errors.New("remote home required")
	}
	if workers < 1 {
		workers = 1
	}
	client := &Client{
		exec:       exec,
		image:      image,
		remoteHome: remoteHome,
		modelsDir:  path.Join(remoteHome, "models"),
		workers:    workers,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

var (
	_ Converter = (*Client)(nil)
	_ Stager    = (*Client)(nil)
)

// BookInputDir returns the remote staging directory for a book's upload.
func (c *Client) BookInputDir(remoteKey string) string {
	return path.Join(c.remoteHome, "input", remoteKey)
}

// BookOutputDir returns the remote directory the container writes audio into.
func (c *Client) BookOutputDir(remoteKey string) string {
	return path.Join(c.remoteHome, "output", remoteKey)
}

// PrepareBook creates the remote staging directories for one book.
func (c *Client) PrepareBook(ctx context.Context, remoteKey string) error {
	cmd := fmt.Sprintf("mkdir -p %s %s", c.BookInputDir(remoteKey), c.BookOutputDir(remoteKey))
	return c.exec.Run(ctx, cmd, nil)
}

// CleanupBook removes a book's remote staging directories. Best effort;
// callers log rather than fail on error.
func (c *Client) CleanupBook(ctx context.Context, remoteKey string) error {
	cmd := fmt.Sprintf("rm -rf %s %s", c.BookInputDir(remoteKey), c.BookOutputDir(remoteKey))
	return c.exec.Run(ctx, cmd, nil)
}

// Convert runs the TTS container against the staged ebook fileName under
// the book's input directory. The engine is chosen per language: VITS when
// the code supports it, fairseq otherwise. Output lines stream to onOutput
// when provided.
func (c *Client) Convert(ctx context.Context, remoteKey, fileName, languageCode string, onOutput func(string)) error {
	if strings.TrimSpace(remoteKey) == "" {
		return services.Wrap(services.ErrValidation, "convert", "docker run", "remote key required", nil)
	}
	if strings.TrimSpace(fileName) == "" {
		return services.Wrap(services.ErrValidation, "convert", "docker run", "staged file required", nil)
	}
	code := language.ToISO3(languageCode)
	if code == "" {
		return services.Wrap(services.ErrValidation, "convert", "docker run",
			fmt.Sprintf("unknown language code %q", languageCode), nil)
	}

	engine := "fairseq"
	if language.VITSSupported(code) {
		engine = "vits"
	}

	safeFile := strings.ReplaceAll(path.Base(fileName), `"`, `\"`)
	cmd := fmt.Sprintf(
		"docker run --rm --gpus all -v %s:/app/input -v %s:/app/output -v %s:/app/models %s "+
			"--headless --device gpu --ebook \"/app/input/%s\" --output_dir /app/output "+
			"--language %s --output_format m4b --tts_engine %s --num_workers %d",
		c.BookInputDir(remoteKey), c.BookOutputDir(remoteKey), c.modelsDir, c.image,
		safeFile, code, engine, c.workers,
	)

	var unprocessable string
	err := c.exec.Run(ctx, cmd, func(line string) {
		if unprocessable == "" {
			if match := matchUnprocessable(line); match != "" {
				unprocessable = match
			}
		}
		if onOutput != nil {
			onOutput(line)
		}
	})
	if err != nil {
		if unprocessable != "" {
			return services.Wrap(services.ErrUnprocessable, "convert", "docker run", unprocessable, err)
		}
		return err
	}
	return nil
}

// Output fragments that mean the ebook itself cannot be converted; retrying
// would fail the same way.
var unprocessablePatterns = []string{
	"unable to parse",
	"cannot parse",
	"drm protected",
	"drm-protected",
	"unsupported format",
	"corrupt",
	"invalid ebook",
	"no text extracted",
}

func matchUnprocessable(line string) string {
	lowered := strings.ToLower(line)
	for _, pattern := range unprocessablePatterns {
		if strings.Contains(lowered, pattern) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
