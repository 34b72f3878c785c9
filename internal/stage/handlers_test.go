package stage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bookvoice/internal/library"
	"bookvoice/internal/logging"
	"bookvoice/internal/metadata"
	"bookvoice/internal/services"
)

type fakeTransfer struct {
	uploads    [][2]string
	downloads  [][2]string
	uploadErr  error
	onDownload func(remotePath, localPath string) error
}

func (f *fakeTransfer) Upload(ctx context.Context, localPath, remotePath string) error {
	f.uploads = append(f.uploads, [2]string{localPath, remotePath})
	return f.uploadErr
}

func (f *fakeTransfer) Download(ctx context.Context, remotePath, localPath string) error {
	f.downloads = append(f.downloads, [2]string{remotePath, localPath})
	if f.onDownload != nil {
		return f.onDownload(remotePath, localPath)
	}
	return nil
}

type fakeStager struct {
	prepared []string
	cleaned  []string
}

func (f *fakeStager) BookInputDir(remoteKey string) string  { return "/home/tts/input/" + remoteKey }
func (f *fakeStager) BookOutputDir(remoteKey string) string { return "/home/tts/output/" + remoteKey }

func (f *fakeStager) PrepareBook(ctx context.Context, remoteKey string) error {
	f.prepared = append(f.prepared, remoteKey)
	return nil
}

func (f *fakeStager) CleanupBook(ctx context.Context, remoteKey string) error {
	f.cleaned = append(f.cleaned, remoteKey)
	return nil
}

func TestUploadHandlerStagesIntoKeyedDirectory(t *testing.T) {
	transfer := &fakeTransfer{}
	stager := &fakeStager{}
	handler := NewUploadHandler(transfer, stager, 0, 2)
	book := &library.Book{
		SourcePath: "/library/Fiction/Dune/dune.epub",
		RemoteKey:  "fiction__dune",
	}

	if err := handler.Execute(context.Background(), book); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(stager.prepared) != 1 || stager.prepared[0] != "fiction__dune" {
		t.Fatalf("prepared = %v, want [fiction__dune]", stager.prepared)
	}
	if len(transfer.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(transfer.uploads))
	}
	wantDest := "/home/tts/input/fiction__dune/dune.epub"
	if transfer.uploads[0][1] != wantDest {
		t.Fatalf("upload dest = %q, want %q", transfer.uploads[0][1], wantDest)
	}
}

type fakeConverter struct {
	remoteKey string
	fileName  string
	language  string
	err       error
}

func (f *fakeConverter) Convert(ctx context.Context, remoteKey, fileName, languageCode string, onOutput func(string)) error {
	f.remoteKey = remoteKey
	f.fileName = fileName
	f.language = languageCode
	if onOutput != nil {
		onOutput("progress: 50%")
	}
	return f.err
}

func TestConvertHandlerPassesStagedFile(t *testing.T) {
	converter := &fakeConverter{}
	handler := NewConvertHandler(converter, logging.NewNop(), 0, 1)
	book := &library.Book{
		SourcePath:   "/library/Dune/dune.epub",
		RemoteKey:    "dune",
		LanguageCode: "eng",
	}

	if err := handler.Execute(context.Background(), book); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if converter.remoteKey != "dune" || converter.fileName != "dune.epub" || converter.language != "eng" {
		t.Fatalf("Convert called with (%q, %q, %q)", converter.remoteKey, converter.fileName, converter.language)
	}
}

func TestDownloadHandlerLocatesArtifact(t *testing.T) {
	staging := t.TempDir()
	transfer := &fakeTransfer{
		onDownload: func(remotePath, localPath string) error {
			nested := filepath.Join(localPath, "Dune TTS")
			if err := os.MkdirAll(nested, 0o755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(nested, "Dune TTS.m4b"), []byte("audio"), 0o644)
		},
	}
	handler := NewDownloadHandler(transfer, &fakeStager{}, staging, 0, 2)
	book := &library.Book{RemoteKey: "dune"}

	if err := handler.Execute(context.Background(), book); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := filepath.Join(staging, "dune", "Dune TTS", "Dune TTS.m4b")
	if book.LocalArtifact != want {
		t.Fatalf("LocalArtifact = %q, want %q", book.LocalArtifact, want)
	}
	if len(transfer.downloads) != 1 || transfer.downloads[0][0] != "/home/tts/output/dune" {
		t.Fatalf("downloads = %v", transfer.downloads)
	}
}

func TestDownloadHandlerMissingArtifactIsTerminal(t *testing.T) {
	handler := NewDownloadHandler(&fakeTransfer{}, &fakeStager{}, t.TempDir(), 0, 2)
	book := &library.Book{RemoteKey: "dune"}

	err := handler.Execute(context.Background(), book)
	if !errors.Is(err, services.ErrUnprocessable) {
		t.Fatalf("Execute() error = %v, want unprocessable", err)
	}
	if services.IsRetryable(err) {
		t.Fatal("missing artifact should not be retried")
	}
}

type fakeLookup struct {
	image metadata.Image
	err   error
}

func (f *fakeLookup) CoverImage(ctx context.Context, title string) (metadata.Image, error) {
	return f.image, f.err
}

type fakeTagger struct {
	path  string
	title string
	cover metadata.Image
	err   error
}

func (f *fakeTagger) Embed(ctx context.Context, path, title string, cover metadata.Image) error {
	f.path = path
	f.title = title
	f.cover = cover
	return f.err
}

func TestPostProcessHandlerMovesToFinalLocation(t *testing.T) {
	staging := t.TempDir()
	output := t.TempDir()
	artifact := filepath.Join(staging, "dune", "Dune TTS.m4b")
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(artifact, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	lookup := &fakeLookup{image: metadata.Image{Data: []byte("jpeg"), MIME: "image/jpeg"}}
	tagger := &fakeTagger{}
	stager := &fakeStager{}
	handler := NewPostProcessHandler(lookup, tagger, stager, staging, logging.NewNop(), 1)
	book := &library.Book{
		Name:          "Dune",
		RemoteKey:     "dune",
		LocalArtifact: artifact,
		OutputPath:    filepath.Join(output, "Dune TTS", "Dune TTS.m4b"),
	}

	if err := handler.Execute(context.Background(), book); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if _, err := os.Stat(book.OutputPath); err != nil {
		t.Fatalf("final audiobook missing: %v", err)
	}
	if tagger.title != "Dune TTS" {
		t.Fatalf("embed title = %q, want %q", tagger.title, "Dune TTS")
	}
	if len(tagger.cover.Data) == 0 {
		t.Fatal("cover not passed to tagger")
	}
	if book.Warning != "" {
		t.Fatalf("warning = %q, want empty", book.Warning)
	}
	if len(stager.cleaned) != 1 || stager.cleaned[0] != "dune" {
		t.Fatalf("cleaned = %v, want [dune]", stager.cleaned)
	}
	if _, err := os.Stat(filepath.Join(staging, "dune")); !os.IsNotExist(err) {
		t.Fatal("local staging directory not removed")
	}
}

func TestPostProcessHandlerMetadataFailureIsWarning(t *testing.T) {
	staging := t.TempDir()
	output := t.TempDir()
	artifact := filepath.Join(staging, "dune", "Dune TTS.m4b")
	if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(artifact, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	lookup := &fakeLookup{err: services.Wrap(services.ErrMetadata, "postprocess", "cover search", "quota", nil)}
	tagger := &fakeTagger{err: services.Wrap(services.ErrMetadata, "postprocess", "embed", "ffmpeg exit 1", nil)}
	handler := NewPostProcessHandler(lookup, tagger, &fakeStager{}, staging, logging.NewNop(), 1)
	book := &library.Book{
		Name:          "Dune",
		RemoteKey:     "dune",
		LocalArtifact: artifact,
		OutputPath:    filepath.Join(output, "Dune TTS", "Dune TTS.m4b"),
	}

	if err := handler.Execute(context.Background(), book); err != nil {
		t.Fatalf("Execute() error = %v (metadata failures must not fail the book)", err)
	}
	if _, err := os.Stat(book.OutputPath); err != nil {
		t.Fatalf("final audiobook missing: %v", err)
	}
	if book.Warning == "" {
		t.Fatal("expected warning recorded on book")
	}
}
