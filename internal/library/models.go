package library

import "strings"

// Status represents the lifecycle of a book within a single run.
type Status string

const (
	StatusDiscovered     Status = "discovered"
	StatusSkipped        Status = "skipped"
	StatusQueued         Status = "queued"
	StatusUploading      Status = "uploading"
	StatusConverting     Status = "converting"
	StatusDownloading    Status = "downloading"
	StatusPostProcessing Status = "postprocessing"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
	StatusAborted        Status = "aborted"
)

var allStatuses = []Status{
	StatusDiscovered,
	StatusSkipped,
	StatusQueued,
	StatusUploading,
	StatusConverting,
	StatusDownloading,
	StatusPostProcessing,
	StatusCompleted,
	StatusFailed,
	StatusAborted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var transferStatuses = map[Status]struct{}{
	StatusUploading:   {},
	StatusDownloading: {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTransfer reports whether a status occupies a transfer gate slot.
func IsTransfer(status Status) bool {
	_, ok := transferStatuses[status]
	return ok
}

// IsTerminal reports whether a status ends the book's run.
func IsTerminal(status Status) bool {
	switch status {
	case StatusSkipped, StatusCompleted, StatusFailed, StatusAborted:
		return true
	default:
		return false
	}
}

// Book represents one ebook-to-audiobook unit of work.
type Book struct {
	// SourcePath is the absolute path of the chosen ebook file.
	SourcePath string
	// RelativeKey is the book directory path relative to the library root.
	// It is the stable identity used for resumability and staging.
	RelativeKey string
	// Name is the book directory's base name.
	Name string
	// LanguageCode is the resolved ISO 639-2 code.
	LanguageCode string
	// OutputPath is the final audiobook location; its existence at planning
	// time marks the book as already done.
	OutputPath string
	// RemoteKey is the staging identifier used on the remote host.
	RemoteKey string
	// LocalArtifact is the downloaded audio file in local staging, set once
	// the download stage succeeds.
	LocalArtifact string

	Status        Status
	FailureReason string
	// Warning carries a non-fatal post-processing note (e.g. cover lookup
	// failed) on an otherwise completed book.
	Warning string
}

// SetFailed marks the book failed with the given reason.
func (b *Book) SetFailed(reason string) {
	b.Status = StatusFailed
	b.FailureReason = reason
}

// DisplayTitle is the audiobook title used for output naming and metadata.
func (b *Book) DisplayTitle() string {
	return b.Name + " TTS"
}
