package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

// NoteEvent is sent when a key is pressed or released on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
	On       bool
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events from the controller
	NoteEvents() <-chan NoteEvent

	// Lifecycle
	Close() error
}
