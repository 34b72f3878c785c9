// Package remoteenv prepares the remote GPU host: it uploads the setup
// script and runs it so the conversion container image exists before any
// book is processed. Failures here are fatal to the whole run.
package remoteenv

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"bookvoice/internal/logging"
	"bookvoice/internal/services"
	"bookvoice/internal/services/gcloud"
)

// Endpoint describes the ready remote environment.
type Endpoint struct {
	// Image is the docker tag the conversion stage must run.
	Image string
	// RemoteHome is the staging root on the host.
	RemoteHome string
}

// Provisioner drives the one-time remote setup.
type Provisioner struct {
	transfer   gcloud.Transfer
	exec       gcloud.Executor
	setupPath  string
	remoteHome string
	gitRepo    string
	gitBranch  string
	logger     *slog.Logger
}

// New constructs a Provisioner. setupPath is the local setup script;
// remoteHome is the remote user's home directory.
func New(transfer gcloud.Transfer, exec gcloud.Executor, setupPath, remoteHome, gitRepo, gitBranch string, logger *slog.Logger) (*Provisioner, error) {
	if transfer == nil || exec == nil {
		return nil, fmt.Errorf("transfer and executor clients required")
	}
	if strings.TrimSpace(setupPath) == "" {
		return nil, fmt.Errorf("setup script path required")
	}
	if strings.TrimSpace(remoteHome) == "" {
		return nil, fmt.Errorf("remote home required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provisioner{
		transfer:   transfer,
		exec:       exec,
		setupPath:  setupPath,
		remoteHome: remoteHome,
		gitRepo:    gitRepo,
		gitBranch:  gitBranch,
		logger:     logging.NewComponentLogger(logger, "remoteenv"),
	}, nil
}

// RepoName flattens a git URL into the identifier the setup script and
// image tag use.
func RepoName(repo string) string {
	name := strings.TrimPrefix(repo, "https://github.com/")
	name = strings.TrimSuffix(name, ".git")
	return strings.ReplaceAll(name, "/", "-")
}

// ImageTag returns the docker tag the setup script builds.
func (p *Provisioner) ImageTag() string {
	return fmt.Sprintf("ebook-converter-custom:%s-%s", RepoName(p.gitRepo), p.gitBranch)
}

// EnsureReady uploads and executes the setup script. It is safe to call on
// an already-provisioned host; the script is idempotent unless forceRebuild
// is set.
func (p *Provisioner) EnsureReady(ctx context.Context, forceRebuild bool) (Endpoint, error) {
	scriptName := path.Base(p.setupPath)
	remoteScript := path.Join(p.remoteHome, scriptName)

	p.logger.Info("uploading setup script", logging.String("script", scriptName))
	if err := p.transfer.Upload(ctx, p.setupPath, p.remoteHome); err != nil {
		return Endpoint{}, services.Wrap(services.ErrEnvironment, "setup", "upload script", "", err)
	}

	if err := p.exec.Run(ctx, fmt.Sprintf("chmod +x %s", remoteScript), nil); err != nil {
		return Endpoint{}, services.Wrap(services.ErrEnvironment, "setup", "chmod script", "", err)
	}

	cmd := fmt.Sprintf("bash %s %q %q %q %q",
		remoteScript, p.gitRepo, p.gitBranch, RepoName(p.gitRepo), fmt.Sprintf("%t", forceRebuild))
	p.logger.Info("executing setup script",
		logging.String("repo", p.gitRepo),
		logging.String("branch", p.gitBranch),
		logging.Bool("force_rebuild", forceRebuild),
	)
	if err := p.exec.Run(ctx, cmd, func(line string) {
		p.logger.Debug("setup output", logging.String("line", line))
	}); err != nil {
		return Endpoint{}, services.Wrap(services.ErrEnvironment, "setup", "run script", "", err)
	}

	p.logger.Info("remote environment ready", logging.String("image", p.ImageTag()))
	return Endpoint{Image: p.ImageTag(), RemoteHome: p.remoteHome}, nil
}
