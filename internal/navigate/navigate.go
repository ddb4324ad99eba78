// Package navigate sends resolved omnibox targets to a browser.
package navigate

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/nikbrunner/omnihist/internal/logging"
)

// Browser opens URLs with the platform's default handler.
// Navigation is fire-and-forget: the opener process is started, not awaited.
type Browser struct {
	goos  string
	start func(name string, args ...string) error
}

// NewBrowser creates a Browser for the running platform.
func NewBrowser() *Browser {
	return &Browser{goos: runtime.GOOS, start: startCommand}
}

// Navigate opens url in the default browser.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	name, args, err := openerCommand(b.goos, url)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().
		Str("url", logging.TruncateURL(url, 80)).
		Str("opener", name).
		Msg("opening url")

	if err := b.start(name, args...); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return nil
}

// openerCommand returns the command that opens url on goos.
func openerCommand(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("no url opener for %s", goos)
	}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Recorder remembers navigations instead of performing them.
type Recorder struct {
	mu   sync.Mutex
	urls []string
}

// Navigate records url.
func (r *Recorder) Navigate(_ context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
	return nil
}

// URLs returns the recorded URLs in navigation order.
func (r *Recorder) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

// Last returns the most recent URL, or "" if none.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.urls) == 0 {
		return ""
	}
	return r.urls[len(r.urls)-1]
}
