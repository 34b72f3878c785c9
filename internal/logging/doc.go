// Package logging builds the slog loggers used across the pipeline and
// standardizes the structured fields attached to records.
//
// Two handlers are provided: a console handler for interactive runs and a
// JSON handler for machine-readable logs. Context annotations written by
// internal/services (book key, stage, correlation ID) are folded into every
// record through WithContext.
package logging
