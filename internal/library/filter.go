package library

import (
	"log/slog"

	"bookvoice/internal/fileutil"
	"bookvoice/internal/logging"
)

// Filter applies the resumability check to planned books: a book whose
// output path already exists is marked Skipped, everything else Queued.
//
// The check is a pure existence test with no side effects; it never creates,
// reserves, or validates the output path. A zero-byte or truncated file
// still counts as complete, which keeps the completed-file-on-disk contract
// simple and crash-safe at the cost of not detecting corrupt outputs.
func Filter(books []*Book, logger *slog.Logger) (queued, skipped []*Book) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "filter")
	for _, book := range books {
		if fileutil.PathExists(book.OutputPath) {
			book.Status = StatusSkipped
			skipped = append(skipped, book)
			logger.Debug("output already present",
				logging.String(logging.FieldBookKey, book.RelativeKey),
				logging.String("output", book.OutputPath),
			)
			continue
		}
		book.Status = StatusQueued
		queued = append(queued, book)
	}
	return queued, skipped
}
