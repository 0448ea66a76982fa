package midi

// Kind classifies a recorded event
type Kind uint8

const (
	KindOther Kind = iota
	KindNoteOn
	KindNoteOff
	KindEndOfTrack
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindEndOfTrack:
		return "end-of-track"
	}
	return "other"
}

// Event is one timestamped occurrence from a recording.
// Delta is in milliseconds since the previous event of the same sequence.
type Event struct {
	Delta    uint32
	Kind     Kind
	Key      uint8
	Channel  uint8
	Velocity uint8
}

// On builds a note-on event
func On(delta uint32, key uint8) Event {
	return Event{Delta: delta, Kind: KindNoteOn, Key: key, Velocity: 100}
}

// Off builds a note-off event
func Off(delta uint32, key uint8) Event {
	return Event{Delta: delta, Kind: KindNoteOff, Key: key}
}

// End builds an end-of-track marker
func End(delta uint32) Event {
	return Event{Delta: delta, Kind: KindEndOfTrack}
}

// IsNote reports whether the event carries a key
func (e Event) IsNote() bool {
	return e.Kind == KindNoteOn || e.Kind == KindNoteOff
}
