package config

import (
	"sync/atomic"
	"time"
)

// DefaultLookahead is how long before its start a tile becomes visible
const DefaultLookahead = 2 * time.Second

// MinLookahead is the floor used by the UI when adjusting the window
const MinLookahead = 250 * time.Millisecond

// Lookahead is the shared lookahead window. One scheduler reads it every
// frame; the overlay, key bindings and config watcher may write it at any
// time. A write is seen by the next read.
type Lookahead struct {
	v atomic.Int64
}

// NewLookahead creates a cell holding d
func NewLookahead(d time.Duration) *Lookahead {
	l := &Lookahead{}
	l.Store(d)
	return l
}

// Load returns the current window
func (l *Lookahead) Load() time.Duration {
	return time.Duration(l.v.Load())
}

// Store replaces the window. Values <= 0 are stored as given.
func (l *Lookahead) Store(d time.Duration) {
	l.v.Store(int64(d))
}

// Adjust adds delta, clamping the result at min, and returns the new value
func (l *Lookahead) Adjust(delta, min time.Duration) time.Duration {
	for {
		old := l.v.Load()
		next := time.Duration(old) + delta
		if next < min {
			next = min
		}
		if l.v.CompareAndSwap(old, int64(next)) {
			return next
		}
	}
}
