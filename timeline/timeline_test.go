package timeline

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"go-synthy/midi"
)

func twoTracks() []Track {
	return []Track{
		{midi.On(0, 60), midi.Off(500, 60), midi.End(0)},
		{midi.On(100, 64), midi.Off(200, 64), midi.End(900)},
	}
}

func TestRoundTrip(t *testing.T) {
	track := Track{midi.On(0, 60), midi.On(10, 62), midi.Off(0, 62), midi.Off(250, 60), midi.End(40)}
	abs, err := ToAbsTime(track)
	if err != nil {
		t.Fatalf("ToAbsTime: %v", err)
	}
	if abs[3].Delta != 260 || abs[4].Delta != 300 {
		t.Fatalf("unexpected absolute stamps: %+v", abs)
	}
	rel, err := ToRelTime(abs)
	if err != nil {
		t.Fatalf("ToRelTime: %v", err)
	}
	if !reflect.DeepEqual(rel, track) {
		t.Fatalf("round trip changed track:\n got  %+v\n want %+v", rel, track)
	}
}

func TestToAbsTimeOverflow(t *testing.T) {
	track := Track{midi.On(math.MaxUint32, 60), midi.End(1)}
	if _, err := ToAbsTime(track); !errors.Is(err, ErrTimeOverflow) {
		t.Fatalf("expected ErrTimeOverflow, got %v", err)
	}
}

func TestToRelTimeRejectsBackwards(t *testing.T) {
	abs := Track{midi.On(100, 60), midi.Off(50, 60)}
	if _, err := ToRelTime(abs); !errors.Is(err, ErrNonMonotonic) {
		t.Fatalf("expected ErrNonMonotonic, got %v", err)
	}
}

func TestFixTrackEnd(t *testing.T) {
	rel := Track{midi.On(0, 60), midi.End(30), midi.Off(20, 60), midi.End(5), midi.End(7)}
	got := FixTrackEnd(rel)
	want := Timeline{midi.On(0, 60), midi.Off(50, 60), midi.End(12)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestMergeOrdersByAbsoluteTime(t *testing.T) {
	tl, err := Merge(twoTracks())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := Timeline{
		midi.On(0, 60),
		midi.On(100, 64),
		midi.Off(200, 64),
		midi.Off(200, 60),
		midi.End(700),
	}
	if !reflect.DeepEqual(tl, want) {
		t.Fatalf("got %+v, want %+v", tl, want)
	}
}

func TestMergeSingleEndMarker(t *testing.T) {
	tl, err := Merge(twoTracks())
	if err != nil {
		t.Fatal(err)
	}
	ends := 0
	for _, ev := range tl {
		if ev.Kind == midi.KindEndOfTrack {
			ends++
		}
	}
	if ends != 1 || tl[len(tl)-1].Kind != midi.KindEndOfTrack {
		t.Fatalf("expected exactly one trailing end marker, got %d in %+v", ends, tl)
	}
}

func TestMergeSumInvariant(t *testing.T) {
	tracks := []Track{
		{midi.On(10, 60), midi.Off(10, 60), midi.End(3000)},
		{midi.On(0, 40), midi.Off(700, 40), midi.End(0)},
		{midi.End(1200)},
	}
	var want uint64
	for _, tr := range tracks {
		if e := End(tr); e > want {
			want = e
		}
	}
	tl, err := Merge(tracks)
	if err != nil {
		t.Fatal(err)
	}
	if got := End(Track(tl)); got != want {
		t.Fatalf("sum of deltas = %d, want %d", got, want)
	}
	if tl.Duration().Milliseconds() != int64(want) {
		t.Fatalf("Duration = %v", tl.Duration())
	}
}

func TestMergeStableTies(t *testing.T) {
	// Same stamp in both tracks: track 0's off must stay ahead of track 1's on.
	tracks := []Track{
		{midi.On(0, 60), midi.Off(100, 60), midi.End(0)},
		{midi.On(100, 60), midi.Off(100, 60), midi.End(0)},
	}
	tl, err := Merge(tracks)
	if err != nil {
		t.Fatal(err)
	}
	kinds := []midi.Kind{tl[0].Kind, tl[1].Kind, tl[2].Kind, tl[3].Kind}
	want := []midi.Kind{midi.KindNoteOn, midi.KindNoteOff, midi.KindNoteOn, midi.KindNoteOff}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("tie order = %v, want %v", kinds, want)
	}
}

func TestMergeDeterministic(t *testing.T) {
	first, err := Merge(twoTracks())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := Merge(twoTracks())
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("merge %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestMergeMissingEnd(t *testing.T) {
	tracks := []Track{
		{midi.On(0, 60), midi.End(10)},
		{midi.On(0, 62), midi.Off(10, 62)},
	}
	if _, err := Merge(tracks); !errors.Is(err, ErrMissingEndOfTrack) {
		t.Fatalf("expected ErrMissingEndOfTrack, got %v", err)
	}
	if _, err := Merge([]Track{{}}); !errors.Is(err, ErrMissingEndOfTrack) {
		t.Fatalf("empty track: expected ErrMissingEndOfTrack, got %v", err)
	}
}
