package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-synthy/keys"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	state    *KeyState

	mu      sync.Mutex
	pressed [keys.Count]bool // keys this keyboard holds in state
	closed  bool

	noteChan chan NoteEvent
}

// NewKeyboardController creates a keyboard controller (input only).
// Held keys are mirrored into state. Note events are also offered on
// NoteEvents; they are dropped when nobody keeps up.
func NewKeyboardController(id string, inPort drivers.In, state *KeyState) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		inPort:   inPort,
		state:    state,
		noteChan: make(chan NoteEvent, 32),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

// handle runs on the driver's listener goroutine
func (kb *KeyboardController) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	var ev NoteEvent

	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		ev = NoteEvent{Note: note, Velocity: velocity, Channel: channel, On: true}
	case msg.GetNoteEnd(&channel, &note):
		ev = NoteEvent{Note: note, Channel: channel}
	default:
		return
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}

	if idx, err := keys.Index(note); err == nil && kb.pressed[idx] != ev.On {
		kb.pressed[idx] = ev.On
		if ev.On {
			kb.state.Press(note)
		} else {
			kb.state.Release(note)
		}
	}

	select {
	case kb.noteChan <- ev:
	default:
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// Close stops listening and releases the keys this keyboard still holds
func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return nil
	}
	kb.closed = true
	for idx, down := range kb.pressed {
		if down {
			kb.state.Release(keys.Pitch(idx))
		}
	}
	kb.pressed = [keys.Count]bool{}
	close(kb.noteChan)
	return nil
}
