package stage

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bookvoice/internal/fileutil"
	"bookvoice/internal/library"
	"bookvoice/internal/services"
	"bookvoice/internal/services/gcloud"
	"bookvoice/internal/services/tts"
)

// DownloadHandler pulls a converted book's output directory into local
// staging and records the audio artifact on the book.
type DownloadHandler struct {
	transfer   gcloud.Transfer
	stager     tts.Stager
	stagingDir string
	timeout    time.Duration
	retries    int
}

// NewDownloadHandler constructs the download stage. stagingDir is the local
// root each book gets a keyed subdirectory under.
func NewDownloadHandler(transfer gcloud.Transfer, stager tts.Stager, stagingDir string, timeout time.Duration, retries int) *DownloadHandler {
	return &DownloadHandler{transfer: transfer, stager: stager, stagingDir: stagingDir, timeout: timeout, retries: retries}
}

func (h *DownloadHandler) Name() string               { return "download" }
func (h *DownloadHandler) Processing() library.Status { return library.StatusDownloading }
func (h *DownloadHandler) Gate() Gate                 { return GateTransfer }
func (h *DownloadHandler) Retries() int               { return h.retries }

// LocalDir returns the book's local staging directory.
func (h *DownloadHandler) LocalDir(book *library.Book) string {
	return filepath.Join(h.stagingDir, book.RemoteKey)
}

func (h *DownloadHandler) Execute(ctx context.Context, book *library.Book) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	localDir := h.LocalDir(book)
	if err := fileutil.EnsureDir(localDir); err != nil {
		return services.Wrap(services.ErrTransient, "download", "create staging", localDir, err)
	}
	if err := h.transfer.Download(ctx, h.stager.BookOutputDir(book.RemoteKey), localDir); err != nil {
		return err
	}
	artifact, err := findAudiobook(localDir)
	if err != nil {
		return err
	}
	book.LocalArtifact = artifact
	return nil
}

// findAudiobook locates the audio file the container produced. The remote
// output layout varies between engine versions, so the whole tree is
// searched; ties break on path order for determinism.
func findAudiobook(dir string) (string, error) {
	var matches []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".m4b") {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		return "", services.Wrap(services.ErrTransient, "download", "scan staging", dir, walkErr)
	}
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrUnprocessable, "download", "locate artifact", "conversion produced no m4b file", nil)
	}
	sort.Strings(matches)
	return matches[0], nil
}
