// Package timeline merges independently timed tracks into one canonical,
// relative-delta event sequence.
//
// Absolute-time sequences reuse Event.Delta to hold the absolute stamp, so a
// Track can be moved between the two representations with ToAbsTime and
// ToRelTime without allocating a second event type.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go-synthy/midi"
)

var (
	ErrMissingEndOfTrack = errors.New("track has no end-of-track marker")
	ErrNonMonotonic      = errors.New("timeline goes backwards")
	ErrTimeOverflow      = errors.New("absolute time overflows")
)

// Track is an ordered event sequence with deltas relative to the previous
// event in the same track
type Track []midi.Event

// Timeline is the merged sequence, terminated by exactly one end marker
type Timeline []midi.Event

// ToAbsTime rewrites every delta as the running sum from the track start
func ToAbsTime(t Track) (Track, error) {
	out := make(Track, len(t))
	var now uint64
	for i, ev := range t {
		now += uint64(ev.Delta)
		if now > math.MaxUint32 {
			return nil, fmt.Errorf("event %d at %dms: %w", i, now, ErrTimeOverflow)
		}
		ev.Delta = uint32(now)
		out[i] = ev
	}
	return out, nil
}

// ToRelTime rewrites absolute stamps as differences from the previous event
func ToRelTime(t Track) (Track, error) {
	out := make(Track, len(t))
	var now uint32
	for i, ev := range t {
		if ev.Delta < now {
			return nil, fmt.Errorf("event %d at %dms after %dms: %w", i, ev.Delta, now, ErrNonMonotonic)
		}
		stamp := ev.Delta
		ev.Delta = stamp - now
		now = stamp
		out[i] = ev
	}
	return out, nil
}

// FixTrackEnd removes all end markers from a relative sequence, carrying
// their deltas into the next retained event, and appends a single end marker
// holding whatever time is left over.
func FixTrackEnd(t Track) Timeline {
	out := make(Timeline, 0, len(t)+1)
	var accum uint32
	for _, ev := range t {
		if ev.Kind == midi.KindEndOfTrack {
			accum += ev.Delta
			continue
		}
		ev.Delta += accum
		accum = 0
		out = append(out, ev)
	}
	return append(out, midi.End(accum))
}

// Merge combines tracks into one timeline. Events are ordered by absolute
// time; simultaneous events keep track order, then intra-track order.
func Merge(tracks []Track) (Timeline, error) {
	var all Track
	for i, t := range tracks {
		if !hasEnd(t) {
			return nil, fmt.Errorf("track %d: %w", i, ErrMissingEndOfTrack)
		}
		abs, err := ToAbsTime(t)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		all = append(all, abs...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Delta < all[j].Delta
	})

	rel, err := ToRelTime(all)
	if err != nil {
		return nil, err
	}
	return FixTrackEnd(rel), nil
}

func hasEnd(t Track) bool {
	return len(t) > 0 && t[len(t)-1].Kind == midi.KindEndOfTrack
}

// End returns the absolute time of the track's last event
func End(t Track) uint64 {
	var sum uint64
	for _, ev := range t {
		sum += uint64(ev.Delta)
	}
	return sum
}

// Duration is the total time covered by the timeline
func (tl Timeline) Duration() time.Duration {
	return time.Duration(End(Track(tl))) * time.Millisecond
}
