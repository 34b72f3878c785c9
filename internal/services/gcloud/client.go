// Package gcloud wraps the gcloud compute CLI for file transfer and remote
// command execution against the GPU host.
package gcloud

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"bookvoice/internal/services"
)

// Transfer moves files between the local machine and the remote host.
type Transfer interface {
	Upload(ctx context.Context, localPath, remotePath string) error
	Download(ctx context.Context, remotePath, localPath string) error
}

// Executor runs commands on the remote host over ssh.
type Executor interface {
	Run(ctx context.Context, command string, onOutput func(string)) error
}

// CommandRunner abstracts local process execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithBinary overrides the default gcloud binary name.
func WithBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithRunner injects a custom command runner (primarily for tests).
func WithRunner(runner CommandRunner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// Client invokes gcloud compute scp/ssh against a single instance.
type Client struct {
	binary   string
	project  string
	zone     string
	instance string
	user     string
	runner   CommandRunner
}

// New constructs a gcloud client for the given instance.
func New(project, zone, instance, user string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(zone) == "" {
		return nil, errors.New("zone required")
	}
	if strings.TrimSpace(instance) == "" {
		return nil, errors.New("instance required")
	}
	if strings.TrimSpace(user) == "" {
		return nil, errors.New("remote user required")
	}
	client := &Client{
		binary:   "gcloud",
		project:  strings.TrimSpace(project),
		zone:     strings.TrimSpace(zone),
		instance: strings.TrimSpace(instance),
		user:     strings.TrimSpace(user),
		runner:   commandRunner{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

var (
	_ Transfer = (*Client)(nil)
	_ Executor = (*Client)(nil)
)

func (c *Client) target() string {
	return c.user + "@" + c.instance
}

func (c *Client) commonFlags() []string {
	flags := []string{"--zone", c.zone}
	if c.project != "" {
		flags = append(flags, "--project", c.project)
	}
	return flags
}

// Upload copies a local file or directory to the remote host.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string) error {
	args := append([]string{"compute", "scp", "--recurse"}, c.commonFlags()...)
	args = append(args, localPath, c.target()+":"+remotePath)
	if err := c.runner.Run(ctx, c.binary, args, nil); err != nil {
		return classify(ctx, err, "upload", "scp")
	}
	return nil
}

// Download copies a remote file or directory to the local machine.
func (c *Client) Download(ctx context.Context, remotePath, localPath string) error {
	args := append([]string{"compute", "scp", "--recurse"}, c.commonFlags()...)
	args = append(args, c.target()+":"+remotePath, localPath)
	if err := c.runner.Run(ctx, c.binary, args, nil); err != nil {
		return classify(ctx, err, "download", "scp")
	}
	return nil
}

// Run executes a shell command on the remote host, streaming combined
// output lines to onOutput when provided.
func (c *Client) Run(ctx context.Context, command string, onOutput func(string)) error {
	args := append([]string{"compute", "ssh", c.target()}, c.commonFlags()...)
	args = append(args, "--command", command)
	if err := c.runner.Run(ctx, c.binary, args, onOutput); err != nil {
		return classify(ctx, err, "remote", "ssh")
	}
	return nil
}

func classify(ctx context.Context, err error, stage, operation string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, stage, operation, "deadline exceeded", err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return services.Wrap(services.ErrTransient, stage, operation, "cancelled", ctx.Err())
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return services.Wrap(services.ErrEnvironment, stage, operation, "gcloud not found on PATH", err)
	}
	return services.Wrap(services.ErrTransient, stage, operation, "command failed", err)
}

var commandContext = exec.CommandContext

type commandRunner struct{}

func (commandRunner) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := commandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", binary, err)
	}

	var tail []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if onStdout != nil {
			onStdout(line)
		}
		tail = append(tail, line)
		if len(tail) > 8 {
			tail = tail[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return fmt.Errorf("read %s output: %w", binary, err)
	}
	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			return fmt.Errorf("%s failed: %w: %s", binary, err, strings.Join(tail, "; "))
		}
		return fmt.Errorf("%s failed: %w", binary, err)
	}
	return nil
}
