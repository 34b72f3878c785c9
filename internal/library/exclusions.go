package library

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// ExclusionSet holds normalized relative directory keys that must never
// produce books. Matching is transitive: excluding a directory excludes
// every directory beneath it.
type ExclusionSet struct {
	keys map[string]struct{}
}

// NewExclusionSet builds a set from relative path strings. Entries are
// slash-normalized and trimmed; empty entries are ignored.
func NewExclusionSet(entries []string) ExclusionSet {
	keys := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		normalized := normalizeKey(entry)
		if normalized == "" {
			continue
		}
		keys[normalized] = struct{}{}
	}
	return ExclusionSet{keys: keys}
}

// LoadExclusionFile reads one relative path per line, ignoring blank lines
// and '#' comments. A missing file yields an empty set.
func LoadExclusionFile(path string) (ExclusionSet, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewExclusionSet(nil), nil
		}
		return ExclusionSet{}, fmt.Errorf("open exclusion list: %w", err)
	}
	defer file.Close()

	var entries []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return ExclusionSet{}, fmt.Errorf("read exclusion list: %w", err)
	}
	return NewExclusionSet(entries), nil
}

// Contains reports whether relativeKey or any of its ancestors is excluded.
func (s ExclusionSet) Contains(relativeKey string) bool {
	if len(s.keys) == 0 {
		return false
	}
	key := normalizeKey(relativeKey)
	for key != "" && key != "." {
		if _, ok := s.keys[key]; ok {
			return true
		}
		key = path.Dir(key)
	}
	return false
}

// Len returns the number of distinct excluded keys.
func (s ExclusionSet) Len() int {
	return len(s.keys)
}

func normalizeKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	key = strings.Trim(key, "/")
	if key == "" {
		return ""
	}
	return path.Clean(key)
}
