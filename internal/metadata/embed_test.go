package metadata

import (
	"strings"
	"testing"
)

func TestBuildEmbedArgsWithCover(t *testing.T) {
	args := buildEmbedArgs("/out/Book TTS.m4b", "/out/cover-1.jpg", "Book TTS", "/out/Book TTS.m4b.tagged.m4b")
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-i /out/Book TTS.m4b",
		"-i /out/cover-1.jpg",
		"-map 0 -map 1",
		"-c copy",
		"-disposition:v:0 attached_pic",
		"-metadata title=Book TTS",
		"-f mp4",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("args missing %q: %s", fragment, joined)
		}
	}
}

func TestBuildEmbedArgsTitleOnly(t *testing.T) {
	args := buildEmbedArgs("/out/a.m4b", "", "A Title", "/out/a.m4b.tagged.m4b")
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "attached_pic") || strings.Contains(joined, "-map") {
		t.Fatalf("cover flags must be absent without cover: %s", joined)
	}
	if !strings.Contains(joined, "-metadata title=A Title") {
		t.Fatalf("title missing: %s", joined)
	}
}

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"the_left_hand.of-darkness", "The Left Hand Of Darkness"},
		{"Dune", "Dune"},
		{"book  2", "Book 2"},
		{"---", "---"},
	}
	for _, tt := range tests {
		if got := FormatTitle(tt.input); got != tt.expected {
			t.Errorf("FormatTitle(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
