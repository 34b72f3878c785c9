package stage

import (
	"context"

	"bookvoice/internal/library"
)

// Gate identifies which concurrency resource a stage occupies while it runs.
type Gate int

const (
	// GateNone stages run without admission control.
	GateNone Gate = iota
	// GateTransfer stages count against the transfer concurrency limit.
	GateTransfer
	// GateConvert stages hold the conversion mutex; at most one runs at a
	// time across the whole run.
	GateConvert
)

// Handler describes the contract the run manager needs from each stage.
type Handler interface {
	// Name is the stage's log label.
	Name() string
	// Processing is the book status while the stage runs.
	Processing() library.Status
	// Gate is the concurrency resource the stage occupies.
	Gate() Gate
	// Retries is the number of re-attempts allowed after a transient
	// failure; terminal failures are never retried.
	Retries() int
	// Execute performs the stage. It must honor ctx cancellation and carry
	// its own per-attempt timeout for remote calls.
	Execute(ctx context.Context, book *library.Book) error
}
