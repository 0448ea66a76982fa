package midi

import (
	"sync"

	"go-synthy/keys"
)

// KeyState is the table of physically held keys, shared by every connected
// keyboard. Listeners write it from their own goroutines; renderers take a
// Snapshot once per frame. A key stays held while any keyboard holds it.
type KeyState struct {
	mu   sync.Mutex
	held [keys.Count]int // keyboards holding each key
}

// NewKeyState creates an empty table
func NewKeyState() *KeyState {
	return &KeyState{}
}

// Press marks the key for pitch as held. Pitches outside the keyboard are ignored.
func (ks *KeyState) Press(pitch uint8) {
	idx, err := keys.Index(pitch)
	if err != nil {
		return
	}
	ks.mu.Lock()
	ks.held[idx]++
	ks.mu.Unlock()
}

// Release undoes one Press of pitch
func (ks *KeyState) Release(pitch uint8) {
	idx, err := keys.Index(pitch)
	if err != nil {
		return
	}
	ks.mu.Lock()
	if ks.held[idx] > 0 {
		ks.held[idx]--
	}
	ks.mu.Unlock()
}

// Snapshot copies the whole table
func (ks *KeyState) Snapshot() [keys.Count]bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	var out [keys.Count]bool
	for i, n := range ks.held {
		out[i] = n > 0
	}
	return out
}
