package score

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"go-synthy/debug"
	"go-synthy/keys"
	"go-synthy/midi"
	"go-synthy/timeline"
)

// Tile is a compiled note interval
type Tile struct {
	Note   int           // key index, 0..keys.Count-1
	Start  time.Duration // from song start
	Length time.Duration
}

// End is when the tile stops sounding
func (t Tile) End() time.Duration {
	return t.Start + t.Length
}

func (t Tile) String() string {
	return fmt.Sprintf("%s@%v+%v", keys.Name(t.Note), t.Start, t.Length)
}

// Stats counts what the compiler emitted and what it dropped
type Stats struct {
	Tiles        int
	OutOfRange   int // note events outside the 88-key range
	Unmatched    int // note-off with no pending note-on
	Retriggered  int // note-on while the key was already pending
	Unterminated int // note-on never closed before the timeline ended
}

// Dropped is the total of all skipped events
func (s Stats) Dropped() int {
	return s.OutOfRange + s.Unmatched + s.Retriggered + s.Unterminated
}

type pendingStart struct {
	at uint64
	ok bool
}

// Compile pairs note-on/note-off events into tiles, in the order the
// note-offs are encountered. The first note-on for a key wins until a
// note-off closes it.
func Compile(tl timeline.Timeline) ([]Tile, Stats) {
	var (
		starts [keys.Count]pendingStart
		tiles  []Tile
		stats  Stats
		now    uint64
	)

	for _, ev := range tl {
		now += uint64(ev.Delta)
		if !ev.IsNote() {
			continue
		}

		idx, err := keys.Index(ev.Key)
		if err != nil {
			stats.OutOfRange++
			continue
		}

		switch ev.Kind {
		case midi.KindNoteOn:
			if starts[idx].ok {
				stats.Retriggered++
				continue
			}
			starts[idx] = pendingStart{at: now, ok: true}

		case midi.KindNoteOff:
			start := starts[idx]
			if !start.ok {
				stats.Unmatched++
				continue
			}
			tiles = append(tiles, Tile{
				Note:   idx,
				Start:  ms(start.at),
				Length: ms(now - start.at),
			})
			starts[idx] = pendingStart{}
		}
	}

	for _, s := range starts {
		if s.ok {
			stats.Unterminated++
		}
	}
	stats.Tiles = len(tiles)
	return tiles, stats
}

func ms(v uint64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// Sort orders tiles by start, ties by key index
func Sort(tiles []Tile) {
	sort.SliceStable(tiles, func(i, j int) bool {
		if tiles[i].Start != tiles[j].Start {
			return tiles[i].Start < tiles[j].Start
		}
		return tiles[i].Note < tiles[j].Note
	})
}

// Score is a song's immutable, start-sorted tile collection
type Score []Tile

// Build merges the tracks, compiles tiles and sorts them.
// Merge failures are fatal and no score is returned.
func Build(tracks []timeline.Track) (Score, Stats, error) {
	tl, err := timeline.Merge(tracks)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("merge tracks: %w", err)
	}

	tiles, stats := Compile(tl)
	Sort(tiles)

	debug.Log("score", "compiled %d tiles from %d tracks (%d events, %v), dropped out-of-range=%d unmatched=%d retriggered=%d unterminated=%d",
		stats.Tiles, len(tracks), len(tl), tl.Duration(),
		stats.OutOfRange, stats.Unmatched, stats.Retriggered, stats.Unterminated)

	return Score(tiles), stats, nil
}

// Span is when the last tile ends
func (s Score) Span() time.Duration {
	var end time.Duration
	for _, t := range s {
		if e := t.End(); e > end {
			end = e
		}
	}
	return end
}

// Keys lists the distinct key indices used, ascending
func (s Score) Keys() []int {
	used := lo.Uniq(lo.Map(s, func(t Tile, _ int) int { return t.Note }))
	sort.Ints(used)
	return used
}
