package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookvoice/internal/language"
	"bookvoice/internal/library"
	"bookvoice/internal/logging"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var (
		monolingual string
		exclusions  string
	)

	cmd := &cobra.Command{
		Use:         "plan EBOOKS_DIR AUDIOBOOKS_DIR",
		Short:       "Show what a run would convert without touching the remote host",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			queued, skipped, warnings, err := planLibrary(planInputs{
				ebooksRoot:     args[0],
				audiobooksRoot: args[1],
				monolingual:    monolingual,
				exclusionsPath: exclusions,
			}, logging.NewNop())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(queued)+len(skipped))
			for _, book := range queued {
				rows = append(rows, planRow(book, "convert"))
			}
			for _, book := range skipped {
				rows = append(rows, planRow(book, "skip"))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Book", "Language", "Source", "Action"},
				rows,
			))
			fmt.Fprintf(out, "\n%d to convert, %d already done.\n", len(queued), len(skipped))
			for _, warning := range warnings {
				fmt.Fprintf(out, "warning: %s: %s\n", warning.RelativeKey, warning.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monolingual, "monolingual", "", "Treat the whole library as one language (ISO 639 code)")
	cmd.Flags().StringVar(&exclusions, "exclusions", "", "File listing library-relative paths to skip")

	return cmd
}

func planRow(book *library.Book, action string) []string {
	return []string{
		book.RelativeKey,
		language.Display(book.LanguageCode),
		filepath.Base(book.SourcePath),
		action,
	}
}
