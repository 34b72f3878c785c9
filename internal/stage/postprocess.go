package stage

import (
	"context"
	"log/slog"
	"path/filepath"

	"bookvoice/internal/fileutil"
	"bookvoice/internal/library"
	"bookvoice/internal/logging"
	"bookvoice/internal/metadata"
	"bookvoice/internal/services"
	"bookvoice/internal/services/tts"
)

// Tagger writes metadata into a finished audiobook file.
type Tagger interface {
	Embed(ctx context.Context, path, title string, cover metadata.Image) error
}

// PostProcessHandler tags the downloaded audiobook, moves it to its final
// library location, and clears the book's staging directories. Metadata
// problems degrade to a warning; only the final move can fail the book.
type PostProcessHandler struct {
	lookup     metadata.Lookup
	tagger     Tagger
	stager     tts.Stager
	stagingDir string
	logger     *slog.Logger
	retries    int
}

// NewPostProcessHandler constructs the post-processing stage. lookup may be
// nil when cover search is disabled.
func NewPostProcessHandler(lookup metadata.Lookup, tagger Tagger, stager tts.Stager, stagingDir string, logger *slog.Logger, retries int) *PostProcessHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PostProcessHandler{
		lookup:     lookup,
		tagger:     tagger,
		stager:     stager,
		stagingDir: stagingDir,
		logger:     logger,
		retries:    retries,
	}
}

func (h *PostProcessHandler) Name() string               { return "postprocess" }
func (h *PostProcessHandler) Processing() library.Status { return library.StatusPostProcessing }
func (h *PostProcessHandler) Gate() Gate                 { return GateNone }
func (h *PostProcessHandler) Retries() int               { return h.retries }

func (h *PostProcessHandler) Execute(ctx context.Context, book *library.Book) error {
	logger := logging.WithContext(ctx, h.logger)
	title := metadata.FormatTitle(book.DisplayTitle())

	var cover metadata.Image
	if h.lookup != nil {
		found, err := h.lookup.CoverImage(ctx, title)
		if err != nil {
			h.warn(book, "cover lookup failed")
			logger.Warn("cover lookup failed", logging.Error(err))
		} else {
			cover = found
		}
	}

	if h.tagger != nil {
		if err := h.tagger.Embed(ctx, book.LocalArtifact, title, cover); err != nil {
			h.warn(book, metadata.EmbedError(err))
			logger.Warn("metadata embed failed", logging.Error(err))
		}
	}

	if err := fileutil.EnsureDir(filepath.Dir(book.OutputPath)); err != nil {
		return services.Wrap(services.ErrTransient, "postprocess", "create output directory", book.OutputPath, err)
	}
	if err := fileutil.MoveFile(book.LocalArtifact, book.OutputPath); err != nil {
		return services.Wrap(services.ErrTransient, "postprocess", "move audiobook", book.OutputPath, err)
	}

	// Staging cleanup is best effort; the next run overwrites keyed paths.
	if h.stager != nil {
		if err := h.stager.CleanupBook(ctx, book.RemoteKey); err != nil {
			logger.Warn("remote staging cleanup failed", logging.Error(err))
		}
	}
	localDir := filepath.Join(h.stagingDir, book.RemoteKey)
	if err := fileutil.RemoveTree(localDir); err != nil {
		logger.Warn("local staging cleanup failed", logging.Error(err))
	}
	return nil
}

func (h *PostProcessHandler) warn(book *library.Book, note string) {
	if book.Warning == "" {
		book.Warning = note
		return
	}
	book.Warning += "; " + note
}
