package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bookvoice/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List the languages the scanner recognizes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, entry := range language.Known() {
				engine := "fairseq"
				if language.VITSSupported(entry[0]) {
					engine = "vits"
				}
				rows = append(rows, []string{entry[0], entry[1], engine})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Code", "Language", "Engine"},
				rows,
			))
			return nil
		},
	}
}
