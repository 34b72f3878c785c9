package library_test

import (
	"os"
	"path/filepath"
	"testing"

	"bookvoice/internal/library"
)

func TestFilterSkipsExistingOutputs(t *testing.T) {
	dir := t.TempDir()
	done := &library.Book{
		RelativeKey: "English/BookA",
		OutputPath:  filepath.Join(dir, "BookA TTS", "BookA TTS.m4b"),
		Status:      library.StatusDiscovered,
	}
	if err := os.MkdirAll(filepath.Dir(done.OutputPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Zero-byte outputs deliberately count as complete.
	if err := os.WriteFile(done.OutputPath, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	pending := &library.Book{
		RelativeKey: "English/BookB",
		OutputPath:  filepath.Join(dir, "BookB TTS", "BookB TTS.m4b"),
		Status:      library.StatusDiscovered,
	}

	queued, skipped := library.Filter([]*library.Book{done, pending}, nil)
	if len(skipped) != 1 || skipped[0] != done {
		t.Fatalf("expected BookA skipped, got %+v", skipped)
	}
	if done.Status != library.StatusSkipped {
		t.Fatalf("skipped status = %q", done.Status)
	}
	if len(queued) != 1 || queued[0] != pending {
		t.Fatalf("expected BookB queued, got %+v", queued)
	}
	if pending.Status != library.StatusQueued {
		t.Fatalf("queued status = %q", pending.Status)
	}
}

func TestFilterHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	book := &library.Book{
		RelativeKey: "BookC",
		OutputPath:  filepath.Join(dir, "BookC TTS", "BookC TTS.m4b"),
	}
	library.Filter([]*library.Book{book}, nil)
	if _, err := os.Stat(filepath.Dir(book.OutputPath)); !os.IsNotExist(err) {
		t.Fatal("filter must not create or reserve output paths")
	}
}

func TestStatusHelpers(t *testing.T) {
	if !library.IsTransfer(library.StatusUploading) || !library.IsTransfer(library.StatusDownloading) {
		t.Fatal("uploading/downloading occupy the transfer gate")
	}
	if library.IsTransfer(library.StatusConverting) {
		t.Fatal("converting does not occupy the transfer gate")
	}
	for _, status := range []library.Status{library.StatusSkipped, library.StatusCompleted, library.StatusFailed, library.StatusAborted} {
		if !library.IsTerminal(status) {
			t.Fatalf("%s should be terminal", status)
		}
	}
	if library.IsTerminal(library.StatusQueued) {
		t.Fatal("queued is not terminal")
	}
	if status, ok := library.ParseStatus(" Completed "); !ok || status != library.StatusCompleted {
		t.Fatalf("ParseStatus = (%q, %v)", status, ok)
	}
	if _, ok := library.ParseStatus("nonsense"); ok {
		t.Fatal("unknown status must not parse")
	}
}
