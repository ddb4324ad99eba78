package main

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/omnihist/internal/logging"
	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/nikbrunner/omnihist/internal/tui"
	"github.com/spf13/cobra"
)

// cli is the state of one invocation: parsed flags and the app opened for
// the selected command.
type cli struct {
	opts options
	app  *app
}

// execute runs the command line and releases the app even when the command
// fails.
func execute(args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	root := newRootCmd(c)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer c.close()
	return root.Execute()
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Close()
		c.app = nil
	}
}

// newRootCmd builds the command tree. The root command runs the
// interactive omnibox; subcommands expose each engine event on its own.
func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "omnihist [text...]",
		Short: "Keyword search over browsing history",
		Long: `omnihist - an omnibox for your browsing history.

Type to get ranked history suggestions with highlighted matches. Enter
opens the selected page, or the history search page when nothing is
selected.

Session state (the last text and the last suggested URLs) is persisted, so
'suggest' followed by 'open' behaves like typing then pressing Enter.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}

			logger, logFile, err := newLogger(cmd == cmd.Root())
			if err != nil {
				return err
			}
			ctx := logging.WithComponent(logging.WithContext(cmd.Context(), logger), "cli")
			ctx = logging.WithSession(ctx, model.GenerateUUID())

			a, err := openApp(ctx, &c.opts, navigatorFor(&c.opts))
			if err != nil {
				if logFile != nil {
					logFile.Close()
				}
				return err
			}
			a.logFile = logFile
			c.app = a
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.OutOrStdout(), c.app, strings.Join(args, " "))
		},
	}

	root.PersistentFlags().StringVar(&c.opts.configPath, "config", "", "config file (default ~/.config/omnihist/config.json)")
	root.PersistentFlags().StringVar(&c.opts.dbPath, "db", "", "history database (default ~/.config/omnihist/history.db)")
	root.PersistentFlags().StringVar(&c.opts.strategy, "strategy", "", "suggestion strategy: windowed or cached")

	appFn := func() *app { return c.app }
	root.AddCommand(
		newSuggestCmd(appFn),
		newOpenCmd(appFn, &c.opts),
		newVisitCmd(appFn),
		newHistoryCmd(appFn),
		newImportCmd(appFn),
		newExportCmd(appFn),
	)

	return root
}

// runTUI runs the interactive omnibox.
func runTUI(out io.Writer, a *app, text string) error {
	omnibox := tui.NewApp(tui.AppParams{
		Context: a.ctx,
		Engine:  a.engine,
		Text:    text,
	})

	p := tea.NewProgram(omnibox, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run omnibox: %w", err)
	}

	if opened := finalModel.(tui.App).Opened(); opened != "" {
		fmt.Fprintf(out, "Opening: %s\n", opened)
	}
	return nil
}
