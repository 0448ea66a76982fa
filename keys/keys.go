package keys

import (
	"errors"
	"fmt"
)

// Piano key range (A0..C8)
const (
	Count   = 88
	Lowest  = 21
	Highest = Lowest + Count - 1

	WhiteCount = 52
)

// ErrOutOfRange is returned for pitches the keyboard can't show
var ErrOutOfRange = errors.New("pitch outside supported key range")

// Index converts a MIDI pitch into a 0-based key index
func Index(pitch uint8) (int, error) {
	if pitch < Lowest || pitch > Highest {
		return -1, fmt.Errorf("pitch %d: %w", pitch, ErrOutOfRange)
	}
	return int(pitch) - Lowest, nil
}

// Valid reports whether idx is a usable key index
func Valid(idx int) bool {
	return idx >= 0 && idx < Count
}

// Pitch converts a key index back to its MIDI pitch
func Pitch(idx int) uint8 {
	return uint8(idx + Lowest)
}

// KeyType identifies white and black keys
type KeyType int

const (
	White KeyType = iota
	Black
)

func (k KeyType) String() string {
	if k == Black {
		return "black"
	}
	return "white"
}

// TypeOf classifies a key index
func TypeOf(idx int) KeyType {
	switch Pitch(idx) % 12 {
	case 1, 3, 6, 8, 10:
		return Black
	}
	return White
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns a readable note name for a key index (e.g. "A0", "C4")
func Name(idx int) string {
	if !Valid(idx) {
		return "?"
	}
	p := Pitch(idx)
	octave := int(p)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[p%12], octave)
}
