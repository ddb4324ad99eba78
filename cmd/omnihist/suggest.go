package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/nikbrunner/omnihist/internal/tui"
	"github.com/spf13/cobra"
)

func newSuggestCmd(appFn func() *app) *cobra.Command {
	var plain, asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <text...>",
		Short: "Print one suggestion batch for the given text",
		Long: `Run one input-changed event and print the resulting suggestions.

Each suggestion prints as its URL followed by the omnibox description
markup. Repeating the same text prints nothing: it is debounced.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			var batch []model.Suggestion
			err := a.engine.OnInputChanged(a.ctx, text, func(s []model.Suggestion) {
				batch = s
			})
			if err != nil {
				return err
			}

			if asJSON {
				if batch == nil {
					batch = []model.Suggestion{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(batch)
			}

			for _, s := range batch {
				description := s.Description
				if plain {
					description = tui.PlainText(description)
				}
				fmt.Fprintf(out, "%s\t%s\n", s.Content, description)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "strip description markup")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
