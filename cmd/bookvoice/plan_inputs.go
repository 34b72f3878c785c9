package main

import (
	"fmt"
	"log/slog"

	"bookvoice/internal/config"
	"bookvoice/internal/library"
)

type planInputs struct {
	ebooksRoot     string
	audiobooksRoot string
	monolingual    string
	exclusionsPath string
}

// planLibrary scans the ebook library and splits the plan into queued and
// skipped books. Shared by `run` and `plan`.
func planLibrary(in planInputs, logger *slog.Logger) (queued, skipped []*library.Book, warnings []library.Warning, err error) {
	ebooksRoot, err := config.ExpandPath(in.ebooksRoot)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve ebooks directory: %w", err)
	}
	audiobooksRoot, err := config.ExpandPath(in.audiobooksRoot)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve audiobooks directory: %w", err)
	}

	exclusions := library.NewExclusionSet(nil)
	if in.exclusionsPath != "" {
		path, err := config.ExpandPath(in.exclusionsPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("resolve exclusions file: %w", err)
		}
		exclusions, err = library.LoadExclusionFile(path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load exclusions: %w", err)
		}
	}

	scanner, err := library.NewScanner(library.ScannerOptions{
		EbooksRoot:      ebooksRoot,
		AudiobooksRoot:  audiobooksRoot,
		MonolingualCode: in.monolingual,
		Exclusions:      exclusions,
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	plan, err := scanner.Plan()
	if err != nil {
		return nil, nil, nil, err
	}

	queued, skipped = library.Filter(plan.Books, logger)
	return queued, skipped, plan.Warnings, nil
}
