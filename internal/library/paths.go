package library

import (
	"path/filepath"
	"strings"
)

// Recognized ebook extensions in selection priority order.
var formatPriority = []string{".epub", ".azw3", ".azw", ".mobi", ".txt", ".pdf"}

func formatRank(name string) (int, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for i, candidate := range formatPriority {
		if ext == candidate {
			return i, true
		}
	}
	return 0, false
}

// OutputPathFor computes the deterministic final audiobook path for a book
// directory. The audiobook lands next to its siblings under the audiobooks
// root, in a "<name> TTS" directory mirroring the book's relative location.
func OutputPathFor(audiobooksRoot, relativeKey, name string) string {
	title := name + " TTS"
	parent := filepath.Dir(filepath.FromSlash(relativeKey))
	if parent == "." {
		return filepath.Join(audiobooksRoot, title, title+".m4b")
	}
	return filepath.Join(audiobooksRoot, parent, title, title+".m4b")
}

// RemoteKeyFor derives the remote staging identifier from a relative key.
// Path separators and spaces are flattened so the key is safe as a single
// remote file-system component.
func RemoteKeyFor(relativeKey string) string {
	key := normalizeKey(relativeKey)
	key = strings.ReplaceAll(key, "/", "__")
	key = strings.ReplaceAll(key, " ", "_")
	return key
}
