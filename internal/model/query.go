package model

import "time"

// Query is a bounded history lookup.
type Query struct {
	Text       string
	MaxResults int       // <= 0 = no cap
	StartTime  time.Time // zero = full history
}

// Windowed reports whether the query is restricted to a start time.
func (q Query) Windowed() bool {
	return !q.StartTime.IsZero()
}
