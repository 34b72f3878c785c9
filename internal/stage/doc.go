// Package stage defines the conversion pipeline stages and the retrying
// runner that executes them. Each handler owns one step of a book's journey
// from ebook to shelved audiobook; the runner applies the retry budget and
// holds the stage's concurrency gate only while an attempt is in flight.
package stage
