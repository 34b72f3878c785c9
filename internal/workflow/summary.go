package workflow

import (
	"time"

	"bookvoice/internal/library"
)

// Failure records one book that did not reach completion.
type Failure struct {
	Key    string
	Reason string
}

// Warning records a non-fatal note on a completed book.
type Warning struct {
	Key  string
	Note string
}

// RunSummary aggregates the outcome of one pipeline run.
type RunSummary struct {
	RunID     string
	Planned   int
	Skipped   int
	Completed int
	Failed    int
	Aborted   int
	Failures  []Failure
	Warnings  []Warning
	Duration  time.Duration
}

// Processed returns the number of books that reached a terminal state this
// run, excluding books skipped at planning time.
func (s *RunSummary) Processed() int {
	return s.Completed + s.Failed + s.Aborted
}

func (s *RunSummary) record(book *library.Book) {
	switch book.Status {
	case library.StatusCompleted:
		s.Completed++
		if book.Warning != "" {
			s.Warnings = append(s.Warnings, Warning{Key: book.RelativeKey, Note: book.Warning})
		}
	case library.StatusFailed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Key: book.RelativeKey, Reason: book.FailureReason})
	case library.StatusAborted:
		s.Aborted++
	}
}
