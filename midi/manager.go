package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-synthy/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	portName    string // substring match, empty = any keyboard
	state       *KeyState
}

// NewDeviceManager creates a device manager feeding state.
// portName restricts which input ports are opened.
func NewDeviceManager(portName string, state *KeyState) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		portName:    portName,
		state:       state,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// InPorts lists input ports, giving up after timeout (CoreMIDI can hang)
func InPorts(timeout time.Duration) ([]drivers.In, bool) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ports := <-ch:
		return ports, true
	case <-time.After(timeout):
		return nil, false
	}
}

func (dm *DeviceManager) scan() {
	inPorts, ok := InPorts(3 * time.Second)
	if !ok {
		// User needs to run: sudo killall coreaudiod midiserver
		debug.Log("device", "port scan timed out")
		return
	}

	names := lo.Map(inPorts, func(p drivers.In, _ int) string { return p.String() })
	wanted := SelectPorts(names, dm.portName)

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		id := inPort.String()
		if !lo.Contains(wanted, id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, inPorts[i], dm.state)
		if err != nil {
			debug.Log("device", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		debug.Log("device", "connected %s", id)
		dm.emit(DeviceEvent{
			Type:       DeviceConnected,
			Controller: kb,
			ID:         id,
		})
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		c := dm.controllers[id]
		c.Close()
		delete(dm.controllers, id)
		debug.Log("device", "disconnected %s", id)
		dm.emit(DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		})
	}
	dm.mu.Unlock()
}

// emit never blocks the poller; a slow UI just misses the notification
func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// SelectPorts picks the input ports to open. With a name, ports containing
// it (case-insensitive) are used; otherwise every port except loopbacks.
func SelectPorts(names []string, want string) []string {
	want = strings.ToLower(want)
	return lo.Filter(names, func(name string, _ int) bool {
		lower := strings.ToLower(name)
		if want != "" {
			return strings.Contains(lower, want)
		}
		return !isLoopback(lower)
	})
}

func isLoopback(name string) bool {
	return strings.Contains(name, "through") || strings.Contains(name, "loopback")
}
