package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories first.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteBook creates a book directory with one ebook file under root and
// returns the book directory path.
func WriteBook(t testing.TB, root, relativeKey, fileName string) string {
	t.Helper()

	dir := filepath.Join(root, filepath.FromSlash(relativeKey))
	WriteFile(t, filepath.Join(dir, fileName), []byte("ebook"))
	return dir
}
