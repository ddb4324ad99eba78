package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/nikbrunner/omnihist/internal/exporter"
	"github.com/nikbrunner/omnihist/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.html>",
		Short: "Import history from a Netscape HTML export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer file.Close()

			entries, err := importer.ParseHTMLHistory(file)
			if err != nil {
				return fmt.Errorf("parse HTML: %w", err)
			}

			added, skipped, err := a.db.Import(a.ctx, entries)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s entries", humanize.Comma(int64(added)))
			if skipped > 0 {
				fmt.Fprintf(out, " (%s duplicates skipped)", humanize.Comma(int64(skipped)))
			}
			fmt.Fprintln(out)
			return nil
		},
	}
}

func newExportCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Export history to Netscape HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()

			var outputPath string
			if len(args) == 1 {
				outputPath = args[0]
			} else {
				var err error
				outputPath, err = exporter.DefaultExportPath()
				if err != nil {
					return fmt.Errorf("default export path: %w", err)
				}
			}

			entries, err := a.db.Recent(a.ctx, -1)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(entries)), 0644); err != nil {
				return fmt.Errorf("write file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s entries to %s\n", humanize.Comma(int64(len(entries))), outputPath)
			return nil
		},
	}
}
