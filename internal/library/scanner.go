package library

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"bookvoice/internal/language"
	"bookvoice/internal/logging"
	"bookvoice/internal/services"
)

// Warning records a non-fatal planning observation tied to a library path.
type Warning struct {
	RelativeKey string
	Message     string
}

// Plan is the ordered result of a library scan.
type Plan struct {
	Books    []*Book
	Warnings []Warning
}

// ScannerOptions configures a Scanner. Exclusions and the language table are
// immutable inputs; the scanner never consults process-wide state.
type ScannerOptions struct {
	EbooksRoot     string
	AudiobooksRoot string
	// MonolingualCode switches the scanner to monolingual mode when set.
	// It must resolve to a known ISO 639-2 code.
	MonolingualCode string
	Exclusions      ExclusionSet
	Logger          *slog.Logger
}

// Scanner walks the ebook library and produces candidate books.
type Scanner struct {
	ebooksRoot      string
	audiobooksRoot  string
	monolingualCode string
	exclusions      ExclusionSet
	logger          *slog.Logger
}

// NewScanner validates the options and constructs a Scanner.
func NewScanner(opts ScannerOptions) (*Scanner, error) {
	if strings.TrimSpace(opts.EbooksRoot) == "" {
		return nil, services.Wrap(services.ErrPlanning, "scan", "configure", "ebooks root is required", nil)
	}
	if strings.TrimSpace(opts.AudiobooksRoot) == "" {
		return nil, services.Wrap(services.ErrPlanning, "scan", "configure", "audiobooks root is required", nil)
	}
	code := strings.TrimSpace(opts.MonolingualCode)
	if code != "" {
		resolved := language.ToISO3(code)
		if resolved == "" {
			return nil, services.Wrap(services.ErrPlanning, "scan", "configure",
				fmt.Sprintf("unknown monolingual language code %q", code), nil)
		}
		code = resolved
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		ebooksRoot:      opts.EbooksRoot,
		audiobooksRoot:  opts.AudiobooksRoot,
		monolingualCode: code,
		exclusions:      opts.Exclusions,
		logger:          logging.NewComponentLogger(logger, "scanner"),
	}, nil
}

// Plan walks the library and returns the ordered candidate books. The order
// only affects logging and admission order; correctness does not depend on
// it.
func (s *Scanner) Plan() (*Plan, error) {
	if info, err := os.Stat(s.ebooksRoot); err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrPlanning, "scan", "walk",
			fmt.Sprintf("library root %q is not a readable directory", s.ebooksRoot), err)
	}

	plan := &Plan{}
	seen := make(map[string]string)

	if s.monolingualCode != "" {
		if err := s.walk(s.ebooksRoot, "", s.monolingualCode, plan, seen); err != nil {
			return nil, err
		}
		return plan, nil
	}

	entries, err := os.ReadDir(s.ebooksRoot)
	if err != nil {
		return nil, services.Wrap(services.ErrPlanning, "scan", "walk", "read library root", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if s.exclusions.Contains(name) {
			s.logger.Debug("excluded language directory", logging.String("dir", name))
			continue
		}
		code, ok := language.DirectoryCode(name)
		if !ok {
			plan.Warnings = append(plan.Warnings, Warning{
				RelativeKey: name,
				Message:     fmt.Sprintf("no language mapping for directory %q; subtree skipped", name),
			})
			s.logger.Warn("no language mapping for directory",
				logging.String("dir", name),
				logging.String(logging.FieldEventType, "language_unmapped"),
			)
			continue
		}
		if err := s.walk(filepath.Join(s.ebooksRoot, name), name, code, plan, seen); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// walk descends below dir looking for book directories. A directory holding
// at least one recognized ebook becomes a book and is not descended into.
func (s *Scanner) walk(dir, relKey, langCode string, plan *Plan, seen map[string]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return services.Wrap(services.ErrPlanning, "scan", "walk", fmt.Sprintf("read directory %q", dir), err)
	}

	chosen, extras := pickEbook(entries)
	if chosen != "" && relKey != "" {
		if prior, dup := seen[strings.ToLower(relKey)]; dup {
			return services.Wrap(services.ErrPlanning, "scan", "walk",
				fmt.Sprintf("duplicate book key %q (also %q)", relKey, prior), nil)
		}
		seen[strings.ToLower(relKey)] = relKey

		if len(extras) > 0 {
			plan.Warnings = append(plan.Warnings, Warning{
				RelativeKey: relKey,
				Message:     fmt.Sprintf("multiple ebook files; using %q, ignoring %s", chosen, strings.Join(extras, ", ")),
			})
		}
		name := path.Base(relKey)
		book := &Book{
			SourcePath:   filepath.Join(dir, chosen),
			RelativeKey:  relKey,
			Name:         name,
			LanguageCode: langCode,
			OutputPath:   OutputPathFor(s.audiobooksRoot, relKey, name),
			RemoteKey:    RemoteKeyFor(relKey),
			Status:       StatusDiscovered,
		}
		plan.Books = append(plan.Books, book)
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		childKey := entry.Name()
		if relKey != "" {
			childKey = relKey + "/" + childKey
		}
		if s.exclusions.Contains(childKey) {
			s.logger.Debug("excluded directory", logging.String("dir", childKey))
			continue
		}
		if err := s.walk(filepath.Join(dir, entry.Name()), childKey, langCode, plan, seen); err != nil {
			return err
		}
	}
	return nil
}

// pickEbook selects the best ebook file among entries by format priority,
// then name. It returns the chosen file name and any ignored candidates.
func pickEbook(entries []os.DirEntry) (string, []string) {
	type candidate struct {
		name string
		rank int
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if rank, ok := formatRank(entry.Name()); ok {
			candidates = append(candidates, candidate{name: entry.Name(), rank: rank})
		}
	}
	if len(candidates) == 0 {
		return "", nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].name < candidates[j].name
	})
	extras := make([]string, 0, len(candidates)-1)
	for _, c := range candidates[1:] {
		extras = append(extras, c.name)
	}
	return candidates[0].name, extras
}
