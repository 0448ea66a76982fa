package midi

import (
	"reflect"
	"sync"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestKeyStateIgnoresOutOfRange(t *testing.T) {
	ks := NewKeyState()
	ks.Press(10)
	ks.Press(127)
	ks.Press(60)
	snap := ks.Snapshot()
	for i, held := range snap {
		if held != (i == 39) {
			t.Fatalf("key %d held=%v", i, held)
		}
	}
	ks.Release(60)
	if ks.Snapshot()[39] {
		t.Fatal("key still held after release")
	}
}

func TestKeyStateConcurrentAccess(t *testing.T) {
	ks := NewKeyState()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			ks.Press(uint8(21 + i%88))
			ks.Release(uint8(21 + i%88))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = ks.Snapshot()
		}
	}()
	wg.Wait()
	if ks.Snapshot() != [88]bool{} {
		t.Fatal("balanced press/release left keys held")
	}
}

func TestKeyboardHandleUpdatesState(t *testing.T) {
	ks := NewKeyState()
	kb, err := NewKeyboardController("test", nil, ks)
	if err != nil {
		t.Fatal(err)
	}

	kb.handle(gomidi.NoteOn(0, 60, 90))
	if !ks.Snapshot()[39] {
		t.Fatal("note-on did not press key")
	}
	ev := <-kb.NoteEvents()
	if !ev.On || ev.Note != 60 || ev.Velocity != 90 {
		t.Fatalf("unexpected event %+v", ev)
	}

	// Note-on with zero velocity releases
	kb.handle(gomidi.NoteOn(0, 60, 0))
	if ks.Snapshot()[39] {
		t.Fatal("zero-velocity note-on did not release key")
	}
	if ev := <-kb.NoteEvents(); ev.On {
		t.Fatalf("expected release event, got %+v", ev)
	}

	kb.handle(gomidi.NoteOn(0, 64, 90))
	kb.handle(gomidi.NoteOff(0, 64))
	if ks.Snapshot()[43] {
		t.Fatal("note-off did not release key")
	}

	kb.handle(gomidi.ControlChange(0, 64, 127))
	if err := kb.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestKeyboardCloseReleasesOnlyItsOwnKeys(t *testing.T) {
	ks := NewKeyState()
	a, _ := NewKeyboardController("a", nil, ks)
	b, _ := NewKeyboardController("b", nil, ks)

	a.handle(gomidi.NoteOn(0, 60, 90))
	a.handle(gomidi.NoteOn(0, 62, 90))
	b.handle(gomidi.NoteOn(0, 60, 90))
	b.handle(gomidi.NoteOn(0, 64, 90))

	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if !ks.Snapshot()[39] {
		t.Error("key 60 is still held on b")
	}
	if ks.Snapshot()[41] {
		t.Error("key 62 was only held on a")
	}
	if !ks.Snapshot()[43] {
		t.Error("key 64 is held on b")
	}

	// Events after close are ignored
	a.handle(gomidi.NoteOn(0, 65, 90))
	if ks.Snapshot()[44] {
		t.Error("closed keyboard pressed a key")
	}

	b.handle(gomidi.NoteOff(0, 60))
	if ks.Snapshot()[39] {
		t.Error("key 60 should be released")
	}
}

func TestKeyboardRepeatedNoteOnPressesOnce(t *testing.T) {
	ks := NewKeyState()
	kb, _ := NewKeyboardController("kb", nil, ks)
	kb.handle(gomidi.NoteOn(0, 60, 90))
	kb.handle(gomidi.NoteOn(0, 60, 90))
	kb.handle(gomidi.NoteOff(0, 60))
	if ks.Snapshot()[39] {
		t.Fatal("a single note-off should release a repeated note-on")
	}
	// Stray note-off from this keyboard must not undo another keyboard
	ks.Press(60)
	kb.handle(gomidi.NoteOff(0, 60))
	if !ks.Snapshot()[39] {
		t.Fatal("unmatched note-off released a key held elsewhere")
	}
}

func TestSelectPorts(t *testing.T) {
	names := []string{"Midi Through Port-0", "Digital Piano MIDI 1", "Launchpad X LPX MIDI"}

	if got := SelectPorts(names, ""); !reflect.DeepEqual(got, names[1:]) {
		t.Errorf("any: got %v", got)
	}
	if got := SelectPorts(names, "digital piano"); !reflect.DeepEqual(got, []string{"Digital Piano MIDI 1"}) {
		t.Errorf("by name: got %v", got)
	}
	if got := SelectPorts(names, "nothing"); len(got) != 0 {
		t.Errorf("no match: got %v", got)
	}
}
