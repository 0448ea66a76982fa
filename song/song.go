// Package song schedules a compiled score against the wall clock.
//
// A tile is pending until it comes within the lookahead window of its start,
// active while it falls and sounds, and expired (dropped from the live view)
// once its end has passed. Views hold pointers into the score; tiles are
// never copied or mutated by scheduling.
package song

import (
	"time"

	"go-synthy/config"
	"go-synthy/debug"
	"go-synthy/score"
)

// Song owns a score and the scheduler's pending and active views
type Song struct {
	score     score.Score
	lookahead *config.Lookahead
	epoch     time.Time

	pending []*score.Tile // ascending start, head = next to show
	active  []*score.Tile // ascending start, head = next to expire
}

// New creates a song over a start-sorted score. The lookahead cell is shared
// with whatever configures it.
func New(s score.Score, lookahead *config.Lookahead) *Song {
	song := &Song{score: s, lookahead: lookahead}
	song.Start(time.Now())
	return song
}

// Start (re)captures the scheduling epoch and puts every tile back into the
// pending view
func (s *Song) Start(epoch time.Time) {
	s.epoch = epoch
	s.pending = make([]*score.Tile, len(s.score))
	for i := range s.score {
		s.pending[i] = &s.score[i]
	}
	s.active = s.active[:0]
	debug.Log("song", "start: %d tiles, span %v", len(s.score), s.score.Span())
}

// Restart rewinds playback to a new epoch
func (s *Song) Restart(epoch time.Time) {
	debug.Log("song", "restart after %v", epoch.Sub(s.epoch))
	s.Start(epoch)
}

// Update moves tiles between views for the given wall-clock time.
// Calling it again with the same time does nothing.
func (s *Song) Update(now time.Time) {
	window := s.lookahead.Load()

	for len(s.pending) > 0 {
		t := s.pending[0]
		if now.Before(s.epoch.Add(t.Start - window)) {
			break
		}
		s.pending = s.pending[1:]
		s.active = append(s.active, t)
	}

	// Only the head is checked: a short tile queued behind a longer one stays
	// active until the longer one expires.
	for len(s.active) > 0 {
		t := s.active[0]
		if now.Before(s.epoch.Add(t.End())) {
			break
		}
		s.active = s.active[1:]
	}

	debug.LogEvery(600, "song", "update: pending=%d active=%d window=%v", len(s.pending), len(s.active), window)
}

// Active returns the live view, ascending by start
func (s *Song) Active() []*score.Tile {
	return s.active
}

// Pending returns how many tiles have not become visible yet
func (s *Song) Pending() int {
	return len(s.pending)
}

// Done reports whether every tile has expired
func (s *Song) Done() bool {
	return len(s.pending) == 0 && len(s.active) == 0
}

// Score returns the immutable tile collection
func (s *Song) Score() score.Score {
	return s.score
}

// Epoch returns the instant playback began
func (s *Song) Epoch() time.Time {
	return s.epoch
}

// Lookahead returns the current window
func (s *Song) Lookahead() time.Duration {
	return s.lookahead.Load()
}

// Elapsed returns song time at now
func (s *Song) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.epoch)
}
