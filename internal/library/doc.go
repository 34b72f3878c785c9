// Package library discovers convertible books in an ebook library and owns
// the per-book lifecycle model the pipeline drives.
//
// The scanner walks the library root in one of two modes. In multilingual
// mode the top-level directory names resolve to language codes; directories
// that do not resolve are reported as warnings and excluded. In monolingual
// mode every directory holding a recognized ebook becomes a book with the
// fixed language code. Exclusions prune subtrees before language resolution.
//
// Resumability is a pure filesystem check: a book whose output path already
// exists is skipped. There is no job ledger; the completed file on disk is
// the only source of truth.
package library
