package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.m4b")
	if PathExists(file) {
		t.Fatal("expected missing file to be absent")
	}
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	// Zero-byte files still count as present.
	if !PathExists(file) {
		t.Fatal("expected zero-byte file to be present")
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	payload := []byte("audiobook bytes")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestMoveFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "book.m4b")
	dst := filepath.Join(dir, "library", "English", "Book TTS", "Book TTS.m4b")
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if PathExists(src) {
		t.Fatal("expected source to be gone after move")
	}
	if !PathExists(dst) {
		t.Fatal("expected destination to exist after move")
	}
}

func TestRemoveTreeToleratesMissing(t *testing.T) {
	if err := RemoveTree(filepath.Join(t.TempDir(), "never-created")); err != nil {
		t.Fatalf("remove missing tree: %v", err)
	}
}
