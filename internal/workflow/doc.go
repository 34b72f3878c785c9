// Package workflow drives the conversion pipeline: it admits queued books
// to per-book goroutines, enforces the transfer concurrency limit and the
// single-conversion gate, and aggregates per-book outcomes into a run
// summary.
package workflow
