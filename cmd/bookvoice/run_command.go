package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bookvoice/internal/config"
	"bookvoice/internal/logging"
	"bookvoice/internal/metadata"
	"bookvoice/internal/remoteenv"
	"bookvoice/internal/services"
	"bookvoice/internal/services/gcloud"
	"bookvoice/internal/services/tts"
	"bookvoice/internal/stage"
	"bookvoice/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		monolingual  string
		exclusions   string
		numThreads   int
		forceRebuild bool
	)

	cmd := &cobra.Command{
		Use:   "run EBOOKS_DIR AUDIOBOOKS_DIR",
		Short: "Convert every unconverted ebook in the library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if numThreads > 0 {
				cfg.Transfer.Concurrency = numThreads
			}
			inputs := planInputs{
				ebooksRoot:     args[0],
				audiobooksRoot: args[1],
				monolingual:    monolingual,
				exclusionsPath: exclusions,
			}
			return runPipeline(cmd, cfg, inputs, forceRebuild)
		},
	}

	cmd.Flags().StringVar(&monolingual, "monolingual", "", "Treat the whole library as one language (ISO 639 code)")
	cmd.Flags().StringVar(&exclusions, "exclusions", "", "File listing library-relative paths to skip")
	cmd.Flags().IntVar(&numThreads, "num-threads", 0, "Concurrent uploads/downloads (default from config)")
	cmd.Flags().BoolVar(&forceRebuild, "force-docker-image-rebuild", false, "Rebuild the remote conversion image even if present")

	return cmd
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, inputs planInputs, forceRebuild bool) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runStamp := time.Now().UTC().Format("20060102T150405Z")
	logger, err := logging.NewWithFile(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir,
		fmt.Sprintf("bookvoice-%s.log", runStamp))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logger.With(logging.String("run_id", uuid.NewString()))

	audiobooksRoot, err := config.ExpandPath(inputs.audiobooksRoot)
	if err != nil {
		return fmt.Errorf("resolve audiobooks directory: %w", err)
	}
	if info, statErr := os.Stat(audiobooksRoot); statErr != nil || !info.IsDir() {
		return services.Wrap(services.ErrPlanning, "plan", "configure",
			fmt.Sprintf("audiobooks directory %q is not a readable directory", audiobooksRoot), statErr)
	}
	lock := flock.New(filepath.Join(audiobooksRoot, ".bookvoice.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another bookvoice run is already processing %s", audiobooksRoot)
	}
	defer func() { _ = lock.Unlock() }()

	queued, skipped, warnings, err := planLibrary(inputs, logger)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		logger.Warn(warning.Message, logging.String(logging.FieldBookKey, warning.RelativeKey))
	}
	if len(queued) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing to convert: %d book(s) already have audiobooks.\n", len(skipped))
		return nil
	}

	gc, err := gcloud.New(cfg.Remote.Project, cfg.Remote.Zone, cfg.Remote.Instance, cfg.Remote.User,
		gcloud.WithBinary(cfg.GcloudBinary()))
	if err != nil {
		return err
	}

	provisioner, err := remoteenv.New(gc, gc, cfg.Remote.SetupScript, cfg.RemoteHome(),
		cfg.Remote.GitRepo, cfg.Remote.GitBranch, logger)
	if err != nil {
		return err
	}
	setupCtx, setupCancel := context.WithTimeout(signalCtx,
		time.Duration(cfg.Remote.SetupTimeoutSeconds)*time.Second)
	endpoint, err := provisioner.EnsureReady(setupCtx, forceRebuild)
	setupCancel()
	if err != nil {
		return err
	}

	converter, err := tts.New(gc, endpoint.Image, endpoint.RemoteHome, cfg.Conversion.Workers)
	if err != nil {
		return err
	}

	var lookup metadata.Lookup
	if cfg.Metadata.Enabled && cfg.Metadata.APIKey != "" && cfg.Metadata.SearchEngineID != "" {
		lookup, err = metadata.NewSearchClient(cfg.Metadata.APIKey, cfg.Metadata.SearchEngineID,
			cfg.Metadata.BaseURL, time.Duration(cfg.Metadata.RequestTimeout)*time.Second)
		if err != nil {
			return err
		}
	}
	embedder := metadata.NewEmbedder(cfg.FFmpegBinary())

	transferTimeout := time.Duration(cfg.Transfer.TimeoutSeconds) * time.Second
	conversionTimeout := time.Duration(cfg.Conversion.TimeoutSeconds) * time.Second
	handlers := []stage.Handler{
		stage.NewUploadHandler(gc, converter, transferTimeout, cfg.Transfer.Retries),
		stage.NewConvertHandler(converter, logger, conversionTimeout, cfg.Conversion.Retries),
		stage.NewDownloadHandler(gc, converter, cfg.Paths.StagingDir, transferTimeout, cfg.Transfer.Retries),
		stage.NewPostProcessHandler(lookup, embedder, converter, cfg.Paths.StagingDir, logger, 0),
	}

	manager, err := workflow.New(logger, handlers, cfg.Transfer.Concurrency)
	if err != nil {
		return err
	}

	summary, runErr := manager.Run(signalCtx, queued, skipped)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	return nil
}
