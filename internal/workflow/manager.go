package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookvoice/internal/library"
	"bookvoice/internal/logging"
	"bookvoice/internal/services"
	"bookvoice/internal/stage"
)

const defaultRetryBackoff = 5 * time.Second

// Option configures the manager.
type Option func(*Manager)

// WithRetryBackoff overrides the wait between stage attempts.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(m *Manager) {
		m.backoff = backoff
	}
}

// Manager runs the upload, convert, download, and post-process stages for
// every queued book. Transfers run up to the configured concurrency; the
// remote GPU handles one conversion at a time, so the convert gate holds a
// single slot. Gates are held per attempt, never across a retry wait.
type Manager struct {
	logger   *slog.Logger
	handlers []stage.Handler

	transferSlots chan struct{}
	convertSlot   chan struct{}
	backoff       time.Duration
}

// New constructs a manager. handlers run in order for each book;
// transferConcurrency bounds how many books may upload or download at once.
func New(logger *slog.Logger, handlers []stage.Handler, transferConcurrency int, opts ...Option) (*Manager, error) {
	if len(handlers) == 0 {
		return nil, errors.New("at least one stage handler required")
	}
	if transferConcurrency < 1 {
		transferConcurrency = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	manager := &Manager{
		logger:        logger,
		handlers:      handlers,
		transferSlots: make(chan struct{}, transferConcurrency),
		convertSlot:   make(chan struct{}, 1),
		backoff:       defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(manager)
	}
	return manager, nil
}

// Run processes every queued book to a terminal state and returns the run
// summary. Books are admitted to the worker pool in planning order over an
// unbuffered channel, so admission is FIFO rather than a race between
// per-book goroutines. Cancellation stops admissions immediately, lets
// in-flight stages finish, and marks everything unfinished aborted. A fatal
// environment failure on one book cancels the rest; the summary still
// accounts for every book, and the fatal error is returned alongside it.
func (m *Manager) Run(ctx context.Context, queued, skipped []*library.Book) (*RunSummary, error) {
	runID := uuid.NewString()
	started := time.Now()
	summary := &RunSummary{
		RunID:   runID,
		Planned: len(queued) + len(skipped),
		Skipped: len(skipped),
	}
	logger := m.logger.With(logging.String("run_id", runID))
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("queued", len(queued)),
		logging.Int("skipped", len(skipped)),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		fatalOnce sync.Once
		fatalErr  error
	)

	results := make(chan *library.Book)
	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		for book := range results {
			summary.record(book)
		}
	}()

	// One worker more than the transfer limit, so the single serialized
	// conversion never occupies a transfer slot's worth of the pool.
	workers := cap(m.transferSlots) + 1
	if workers > len(queued) {
		workers = len(queued)
	}
	jobs := make(chan *library.Book)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for book := range jobs {
				if err := m.processBook(runCtx, logger, book); err != nil {
					fatalOnce.Do(func() {
						fatalErr = err
						cancel()
					})
				}
				results <- book
			}
		}()
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		defer close(jobs)
		for _, book := range queued {
			select {
			case jobs <- book:
			case <-runCtx.Done():
				m.abort(book, logger.With(logging.String(logging.FieldBookKey, book.RelativeKey)))
				results <- book
			}
		}
	}()

	wg.Wait()
	<-dispatched
	close(results)
	<-aggregated

	summary.Duration = time.Since(started)
	logger.Info("run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("aborted", summary.Aborted),
		logging.Duration("duration", summary.Duration),
	)
	return summary, fatalErr
}

// processBook walks one book through every stage. The returned error is
// non-nil only for fatal failures that should cancel the whole run.
func (m *Manager) processBook(ctx context.Context, logger *slog.Logger, book *library.Book) error {
	bookCtx := services.WithBookKey(ctx, book.RelativeKey)
	bookCtx = services.WithRequestID(bookCtx, uuid.NewString())
	bookLogger := logging.WithContext(bookCtx, logger)

	for _, handler := range m.handlers {
		if bookCtx.Err() != nil {
			m.abort(book, bookLogger)
			return nil
		}
		stageCtx := services.WithStage(bookCtx, handler.Name())
		acquire, release := m.gate(handler.Gate())
		err := stage.Run(stageCtx, stage.Options{
			Logger:  logger,
			Handler: handler,
			Book:    book,
			Acquire: acquire,
			Release: release,
			Backoff: m.backoff,
		})
		if err == nil {
			continue
		}
		if bookCtx.Err() != nil || errors.Is(err, context.Canceled) {
			m.abort(book, bookLogger)
			return nil
		}
		book.SetFailed(services.Details(err).Message)
		bookLogger.Error("book failed",
			logging.String(logging.FieldEventType, "book_failed"),
			logging.String("stage", handler.Name()),
			logging.Error(err),
		)
		if services.IsFatal(err) {
			return err
		}
		return nil
	}

	book.Status = library.StatusCompleted
	bookLogger.Info("book completed",
		logging.String(logging.FieldEventType, "book_completed"),
	)
	return nil
}

func (m *Manager) abort(book *library.Book, logger *slog.Logger) {
	book.Status = library.StatusAborted
	if book.FailureReason == "" {
		book.FailureReason = "run cancelled"
	}
	logger.Warn("book aborted",
		logging.String(logging.FieldEventType, "book_aborted"),
	)
}

// gate returns acquire and release callbacks for a stage gate, or nil for
// ungated stages. Acquisition blocks until a slot frees or the context ends.
func (m *Manager) gate(g stage.Gate) (func(context.Context) error, func()) {
	var slots chan struct{}
	switch g {
	case stage.GateTransfer:
		slots = m.transferSlots
	case stage.GateConvert:
		slots = m.convertSlot
	default:
		return nil, nil
	}
	acquire := func(ctx context.Context) error {
		select {
		case slots <- struct{}{}:
			// A slot freed by a finishing stage can race with run
			// cancellation; cancellation wins so no new attempt starts.
			if err := ctx.Err(); err != nil {
				<-slots
				return err
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	release := func() {
		<-slots
	}
	return acquire, release
}
