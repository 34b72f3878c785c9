package stage

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"bookvoice/internal/library"
	"bookvoice/internal/logging"
	"bookvoice/internal/services/tts"
)

// ConvertHandler runs the remote TTS container for one staged book. It is
// gated by the conversion mutex: at most one conversion runs at a time.
type ConvertHandler struct {
	converter tts.Converter
	logger    *slog.Logger
	timeout   time.Duration
	retries   int
}

// NewConvertHandler constructs the conversion stage. timeout bounds one
// container run; a run that exceeds it is killed and may be retried.
func NewConvertHandler(converter tts.Converter, logger *slog.Logger, timeout time.Duration, retries int) *ConvertHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ConvertHandler{converter: converter, logger: logger, timeout: timeout, retries: retries}
}

func (h *ConvertHandler) Name() string               { return "convert" }
func (h *ConvertHandler) Processing() library.Status { return library.StatusConverting }
func (h *ConvertHandler) Gate() Gate                 { return GateConvert }
func (h *ConvertHandler) Retries() int               { return h.retries }

func (h *ConvertHandler) Execute(ctx context.Context, book *library.Book) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	logger := logging.WithContext(ctx, h.logger)
	onOutput := func(line string) {
		logger.Debug(line, logging.String(logging.FieldComponent, "tts"))
	}
	return h.converter.Convert(ctx, book.RemoteKey, filepath.Base(book.SourcePath), book.LanguageCode, onOutput)
}
