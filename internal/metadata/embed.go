package metadata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"

	"bookvoice/internal/services"
)

var commandContext = exec.CommandContext

// Embedder writes title and cover tags into an m4b file in place.
type Embedder struct {
	binary string
}

// NewEmbedder constructs an Embedder using the given ffmpeg binary.
func NewEmbedder(binary string) *Embedder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Embedder{binary: binary}
}

// Embed tags the audiobook at path with title and, when cover data is
// present, attaches the cover image. The file is rewritten atomically via a
// sibling temp file.
func (e *Embedder) Embed(ctx context.Context, path, title string, cover Image) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("audiobook path required")
	}

	var coverPath string
	if len(cover.Data) > 0 {
		ext := ".jpg"
		if strings.Contains(cover.MIME, "png") {
			ext = ".png"
		}
		tmp, err := os.CreateTemp(filepath.Dir(path), "cover-*"+ext)
		if err != nil {
			return services.Wrap(services.ErrMetadata, "postprocess", "embed", "write cover temp", err)
		}
		coverPath = tmp.Name()
		defer os.Remove(coverPath)
		if _, err := tmp.Write(cover.Data); err != nil {
			tmp.Close()
			return services.Wrap(services.ErrMetadata, "postprocess", "embed", "write cover temp", err)
		}
		if err := tmp.Close(); err != nil {
			return services.Wrap(services.ErrMetadata, "postprocess", "embed", "write cover temp", err)
		}
	}

	outPath := path + ".tagged.m4b"
	defer os.Remove(outPath)

	args := buildEmbedArgs(path, coverPath, title, outPath)
	cmd := commandContext(ctx, e.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(lastLines(string(output), 4))
		return services.Wrap(services.ErrMetadata, "postprocess", "embed", detail, err)
	}

	if err := os.Rename(outPath, path); err != nil {
		return services.Wrap(services.ErrMetadata, "postprocess", "embed", "replace original", err)
	}
	return nil
}

// buildEmbedArgs assembles the ffmpeg invocation. Stream copy only; the
// audio is never re-encoded.
func buildEmbedArgs(inPath, coverPath, title, outPath string) []string {
	args := []string{"-y", "-i", inPath}
	if coverPath != "" {
		args = append(args, "-i", coverPath, "-map", "0", "-map", "1")
	}
	args = append(args, "-c", "copy")
	if coverPath != "" {
		args = append(args, "-disposition:v:0", "attached_pic")
	}
	if title != "" {
		args = append(args, "-metadata", "title="+title)
	}
	args = append(args, "-f", "mp4", outPath)
	return args
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}

// FormatTitle normalizes a book directory name into a display title:
// separators collapse to spaces and words are title-cased.
func FormatTitle(name string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'':
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return name
	}
	return cases.Title(xlanguage.Und, cases.NoLower).String(title)
}

// EmbedError formats a degraded post-processing note for the run summary.
func EmbedError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("metadata not embedded: %s", services.Details(err).Message)
}
