package stage

import (
	"context"
	"path"
	"path/filepath"
	"time"

	"bookvoice/internal/library"
	"bookvoice/internal/services"
	"bookvoice/internal/services/gcloud"
	"bookvoice/internal/services/tts"
)

// UploadHandler stages a book's ebook file on the remote host.
type UploadHandler struct {
	transfer gcloud.Transfer
	stager   tts.Stager
	timeout  time.Duration
	retries  int
}

// NewUploadHandler constructs the upload stage. timeout bounds one attempt.
func NewUploadHandler(transfer gcloud.Transfer, stager tts.Stager, timeout time.Duration, retries int) *UploadHandler {
	return &UploadHandler{transfer: transfer, stager: stager, timeout: timeout, retries: retries}
}

func (h *UploadHandler) Name() string               { return "upload" }
func (h *UploadHandler) Processing() library.Status { return library.StatusUploading }
func (h *UploadHandler) Gate() Gate                 { return GateTransfer }
func (h *UploadHandler) Retries() int               { return h.retries }

// Execute prepares the book's remote staging directories and copies the
// chosen ebook into its input directory. The destination is keyed by the
// book's remote key, so a retry overwrites its own earlier partial upload.
func (h *UploadHandler) Execute(ctx context.Context, book *library.Book) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.stager.PrepareBook(ctx, book.RemoteKey); err != nil {
		return services.Wrap(services.ErrTransient, "upload", "prepare staging", book.RemoteKey, err)
	}
	dest := path.Join(h.stager.BookInputDir(book.RemoteKey), filepath.Base(book.SourcePath))
	return h.transfer.Upload(ctx, book.SourcePath, dest)
}
