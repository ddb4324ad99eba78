package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newOpenCmd(appFn func() *app, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <text...>",
		Short: "Resolve text like the omnibox Enter key and open it",
		Long: `Resolve committed text to a URL and open it in the default browser.

With the windowed strategy, text that parses as an absolute URL opens
directly. With the cached strategy, only a URL from the last 'suggest'
batch opens directly. Anything else opens the history search page.
The persisted session is cleared afterwards.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			url, err := a.engine.OnInputEntered(a.ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if opts.dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), url)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", url)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the resolved URL instead of opening it")
	return cmd
}
