// Package tui hosts a suggestion engine behind a terminal omnibox.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/omnihist/internal/logging"
	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/nikbrunner/omnihist/internal/suggest"
	"github.com/nikbrunner/omnihist/internal/tui/layout"
)

// Omnibox is the engine surface the App drives.
type Omnibox interface {
	OnInputStarted(ctx context.Context)
	OnInputChanged(ctx context.Context, text string, suggest suggest.SuggestFunc) error
	OnInputEntered(ctx context.Context, text string) (string, error)
	OnInputCancelled(ctx context.Context) error
	DefaultSuggestion() string
}

// MessageType determines the styling of the status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageError
	MessageSuccess
)

// suggestionsMsg carries the outcome of one input-changed event.
type suggestionsMsg struct {
	text        string
	suggestions []model.Suggestion
	delivered   bool
	err         error
}

// enteredMsg carries the outcome of a commit.
type enteredMsg struct {
	url string
	err error
}

// copiedMsg carries the outcome of a clipboard write.
type copiedMsg struct {
	url string
	err error
}

// App is the bubbletea model for the omnibox.
type App struct {
	ctx          context.Context
	engine       Omnibox
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig
	clipboard    func(string) error
	inputs       *inputSequencer

	input              textinput.Model
	initialText        string
	defaultDescription string
	suggestions        []model.Suggestion
	cursor             int // 0 = default row, i+1 = suggestions[i]

	messageText string
	messageType MessageType

	opened    string
	cancelled bool

	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Context      context.Context // optional, carries the logger
	Engine       Omnibox
	Text         string               // optional initial input
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Clipboard    func(string) error   // optional, uses the system clipboard if nil
}

// NewApp creates a new App with the given parameters and starts an
// omnibox session on the engine.
func NewApp(params AppParams) App {
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithComponent(ctx, "tui")

	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	input := textinput.New()
	input.Placeholder = "Search history..."
	input.CharLimit = layoutCfg.Input.CharLimit
	input.Width = layoutCfg.Input.Width
	input.SetValue(params.Text)
	input.Focus()

	params.Engine.OnInputStarted(ctx)

	return App{
		ctx:                ctx,
		engine:             params.Engine,
		keys:               keys,
		styles:             styles,
		layoutConfig:       layoutCfg,
		clipboard:          copyFn,
		inputs:             &inputSequencer{},
		input:              input,
		initialText:        params.Text,
		defaultDescription: params.Engine.DefaultSuggestion(),
		width:              80,
		height:             24,
	}
}

// Input returns the current omnibox text.
func (a App) Input() string {
	return a.input.Value()
}

// Cursor returns the selected row: 0 is the default row.
func (a App) Cursor() int {
	return a.cursor
}

// Suggestions returns the suggestions on screen.
func (a App) Suggestions() []model.Suggestion {
	return a.suggestions
}

// DefaultDescription returns the placeholder row's markup.
func (a App) DefaultDescription() string {
	return a.defaultDescription
}

// Message returns the status message and its type.
func (a App) Message() (string, MessageType) {
	return a.messageText, a.messageType
}

// Opened returns the URL navigated to, or "" if nothing was committed.
func (a App) Opened() string {
	return a.opened
}

// Cancelled returns true if the user dismissed the omnibox.
func (a App) Cancelled() bool {
	return a.cancelled
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if strings.TrimSpace(a.initialText) != "" {
		return tea.Batch(textinput.Blink, a.inputChanged(a.initialText))
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case suggestionsMsg:
		return a.handleSuggestions(msg), nil

	case enteredMsg:
		if msg.err != nil {
			a.setMessage(msg.err.Error(), MessageError)
			return a, nil
		}
		a.opened = msg.url
		return a, tea.Quit

	case copiedMsg:
		if msg.err != nil {
			a.setMessage("Copy failed: "+msg.err.Error(), MessageError)
		} else {
			a.setMessage("Copied "+msg.url, MessageSuccess)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.cancelled = true
		a.inputs.barrier(func() {
			if err := a.engine.OnInputCancelled(a.ctx); err != nil {
				logging.FromContext(a.ctx).Error().Err(err).Msg("cancel failed")
			}
		})
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.suggestions) {
			a.cursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil

	case key.Matches(msg, a.keys.Enter):
		return a, a.inputEntered(a.selectedText())

	case key.Matches(msg, a.keys.Yank):
		if a.cursor == 0 {
			a.setMessage("Select a suggestion to copy its URL", MessageError)
			return a, nil
		}
		return a, a.copyURL(a.suggestions[a.cursor-1].Content)
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		a.clearMessage()
		return a, tea.Batch(cmd, a.inputChanged(after))
	}
	return a, cmd
}

func (a App) handleSuggestions(msg suggestionsMsg) App {
	log := logging.FromContext(a.ctx)
	a.defaultDescription = a.engine.DefaultSuggestion()

	if errors.Is(msg.err, suggest.ErrStale) {
		return a
	}
	if msg.err != nil {
		log.Error().Err(msg.err).Str("text", msg.text).Msg("suggestions failed")
		a.setMessage(msg.err.Error(), MessageError)
		return a
	}

	// Results for text the user has already edited away from.
	if strings.TrimSpace(msg.text) != strings.TrimSpace(a.input.Value()) {
		return a
	}

	switch {
	case msg.delivered:
		a.suggestions = msg.suggestions
		a.cursor = 0
	case strings.TrimSpace(msg.text) == "":
		a.suggestions = nil
		a.cursor = 0
	}
	return a
}

// selectedText is what a commit would submit: the selected suggestion's
// URL, or the typed text on the default row.
func (a App) selectedText() string {
	if a.cursor > 0 && a.cursor <= len(a.suggestions) {
		return a.suggestions[a.cursor-1].Content
	}
	return a.input.Value()
}

// inputChanged returns the command feeding text to the engine. A command
// overtaken by a newer keystroke before it runs reports ErrStale.
func (a App) inputChanged(text string) tea.Cmd {
	ctx, engine, inputs := a.ctx, a.engine, a.inputs
	ticket := inputs.next()
	return func() tea.Msg {
		msg := suggestionsMsg{text: text, err: suggest.ErrStale}
		inputs.run(ticket, func() {
			msg.err = engine.OnInputChanged(ctx, text, func(s []model.Suggestion) {
				msg.suggestions = s
				msg.delivered = true
			})
		})
		return msg
	}
}

func (a App) inputEntered(text string) tea.Cmd {
	ctx, engine, inputs := a.ctx, a.engine, a.inputs
	return func() tea.Msg {
		var msg enteredMsg
		inputs.barrier(func() {
			msg.url, msg.err = engine.OnInputEntered(ctx, text)
		})
		return msg
	}
}

func (a App) copyURL(url string) tea.Cmd {
	write := a.clipboard
	return func() tea.Msg {
		return copiedMsg{url: url, err: write(url)}
	}
}

func (a *App) setMessage(text string, t MessageType) {
	a.messageText = text
	a.messageType = t
}

func (a *App) clearMessage() {
	a.messageText = ""
	a.messageType = MessageNone
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
