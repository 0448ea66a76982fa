// Package recording turns Standard MIDI Files into owned event tracks.
package recording

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"

	"go-synthy/config"
	"go-synthy/debug"
	"go-synthy/midi"
	"go-synthy/timeline"
)

// ErrTimeFormat is returned when tempo mode meets a non-metric file
var ErrTimeFormat = errors.New("tempo conversion needs metric ticks")

// DefaultBPM applies when a file carries no tempo event
const DefaultBPM = 120.0

// Options controls tick conversion
type Options struct {
	TickMode config.TickMode
}

// Load reads and converts the file at path
func Load(path string, opts Options) ([]timeline.Track, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Convert(s, opts)
}

// Read parses and converts an SMF stream
func Read(r io.Reader, opts Options) ([]timeline.Track, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("parse midi: %w", err)
	}
	return Convert(s, opts)
}

// Convert copies every track into owned events with millisecond deltas
func Convert(s *smf.SMF, opts Options) ([]timeline.Track, error) {
	toMs := func(ticks uint64) uint64 { return ticks }

	if opts.TickMode == config.TickModeTempo {
		mt, ok := s.TimeFormat.(smf.MetricTicks)
		if !ok {
			return nil, fmt.Errorf("%v: %w", s.TimeFormat, ErrTimeFormat)
		}
		bpm := firstTempo(s)
		msPerTick := 60000.0 / (bpm * float64(uint16(mt)))
		toMs = func(ticks uint64) uint64 {
			return uint64(math.Round(float64(ticks) * msPerTick))
		}
		debug.Log("load", "tempo mode: %.2f bpm, %d ticks/4th", bpm, uint16(mt))
	}

	tracks := make([]timeline.Track, 0, len(s.Tracks))
	for i, tr := range s.Tracks {
		out, err := convertTrack(tr, toMs)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		tracks = append(tracks, out)
	}
	debug.Log("load", "%d tracks", len(tracks))
	return tracks, nil
}

// convertTrack maps absolute ticks rather than each delta, so rounding
// never accumulates along the track
func convertTrack(tr smf.Track, toMs func(uint64) uint64) (timeline.Track, error) {
	out := make(timeline.Track, 0, len(tr))
	var ticks, prevMs uint64
	for _, ev := range tr {
		ticks += uint64(ev.Delta)
		absMs := toMs(ticks)
		delta := absMs - prevMs
		if delta > math.MaxUint32 {
			return nil, timeline.ErrTimeOverflow
		}
		prevMs = absMs

		e := eventFrom(ev.Message)
		e.Delta = uint32(delta)
		out = append(out, e)
	}
	return out, nil
}

func eventFrom(msg smf.Message) midi.Event {
	var channel, key, velocity uint8
	switch {
	case msg.Is(smf.MetaEndOfTrackMsg):
		return midi.Event{Kind: midi.KindEndOfTrack}
	case msg.GetNoteStart(&channel, &key, &velocity):
		return midi.Event{Kind: midi.KindNoteOn, Key: key, Channel: channel, Velocity: velocity}
	case msg.GetNoteEnd(&channel, &key):
		return midi.Event{Kind: midi.KindNoteOff, Key: key, Channel: channel}
	}
	return midi.Event{Kind: midi.KindOther}
}

func firstTempo(s *smf.SMF) float64 {
	for _, tr := range s.Tracks {
		for _, ev := range tr {
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				return bpm
			}
		}
	}
	return DefaultBPM
}
