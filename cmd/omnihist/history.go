package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

func newVisitCmd(appFn func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "visit <url> [title...]",
		Short: "Record a page visit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFn()
			url := args[0]
			title := strings.Join(args[1:], " ")

			if err := a.db.RecordVisit(a.ctx, url, title, time.Now()); err != nil {
				return fmt.Errorf("record visit: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded visit to %s\n", url)
			return nil
		},
	}
}

func newHistoryCmd(appFn func() *app) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently visited pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFn()
			out := cmd.OutOrStdout()

			if clearAll {
				if err := a.db.Clear(a.ctx); err != nil {
					return fmt.Errorf("clear history: %w", err)
				}
				fmt.Fprintln(out, "History cleared")
				return nil
			}

			entries, err := a.db.Recent(a.ctx, limit)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet")
				return nil
			}

			for _, e := range entries {
				visits := "visit"
				if e.VisitCount != 1 {
					visits = "visits"
				}
				fmt.Fprintf(out, "%-14s %5s %-6s %s  %s\n",
					humanize.Time(e.LastVisitTime),
					humanize.Comma(int64(e.VisitCount)),
					visits,
					e.URL,
					e.Title,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "maximum entries to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all recorded history")
	return cmd
}
