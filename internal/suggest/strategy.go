package suggest

import (
	"fmt"
	"time"
)

// Strategy selects how the engine queries history and resolves commits.
type Strategy struct {
	Name string

	// MaxResults caps each suggestion batch.
	MaxResults int

	// Window restricts the first history query to recent visits; 0 = full history.
	Window time.Duration

	// FallbackToFullHistory retries once without Window when the windowed
	// query finds nothing.
	FallbackToFullHistory bool

	// CacheCandidateURLs persists each batch's URLs and resolves commits by
	// membership in that list instead of by URL parsing.
	CacheCandidateURLs bool
}

// Windowed searches the last week first and falls back to full history.
// Commits navigate directly when the text parses as an absolute URL.
func Windowed() Strategy {
	return Strategy{
		Name:                  "windowed",
		MaxResults:            11,
		Window:                7 * 24 * time.Hour,
		FallbackToFullHistory: true,
	}
}

// Cached searches full history once and persists the suggested URLs.
// Commits navigate directly only to a previously suggested URL.
func Cached() Strategy {
	return Strategy{
		Name:               "cached",
		MaxResults:         16,
		CacheCandidateURLs: true,
	}
}

// ParseStrategy returns the named strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "windowed", "":
		return Windowed(), nil
	case "cached":
		return Cached(), nil
	default:
		return Strategy{}, fmt.Errorf("unknown strategy %q (want windowed or cached)", name)
	}
}
