package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/samber/lo"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-synthy/keys"
	"go-synthy/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "poll":
		pollDevices()
	case "keys":
		port := ""
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		echoKeys(port)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list         - List all MIDI ports")
	fmt.Println("  poll         - Poll for device changes")
	fmt.Println("  keys [PORT]  - Print held keys as you play")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := gomidi.GetInPorts()
		outs := gomidi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		names := lo.Map(r.ins, func(p drivers.In, _ int) string { return p.String() })
		selected := midi.SelectPorts(names, "")
		for i, name := range names {
			mark := " "
			if lo.Contains(selected, name) {
				mark = "*"
			}
			fmt.Printf(" %s%d: %s\n", mark, i, name)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n* = opened by default")
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a keyboard to test. Ctrl+C to exit.")

	last := ""
	for {
		ins, ok := midi.InPorts(3 * time.Second)
		if !ok {
			fmt.Println("  port scan timed out")
			time.Sleep(2 * time.Second)
			continue
		}

		names := lo.Map(ins, func(p drivers.In, _ int) string { return p.String() })
		current := strings.Join(names, ",")

		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", names)
			for _, name := range midi.SelectPorts(names, "") {
				fmt.Printf("  -> would open %s\n", name)
			}
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}

// echoKeys runs the device manager and prints the held-key table on change
func echoKeys(port string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	state := midi.NewKeyState()
	dm := midi.NewDeviceManager(port, state)
	go dm.Run(ctx)

	fmt.Println("Play some keys. Ctrl+C to exit.")

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-dm.Events():
			if !ok {
				return
			}
			if ev.Type == midi.DeviceConnected {
				fmt.Printf("connected: %s\n", ev.ID)
				go printNotes(ev.ID, ev.Controller)
			} else {
				fmt.Printf("disconnected: %s\n", ev.ID)
			}
		case <-ticker.C:
			held := state.Snapshot()
			var names []string
			for idx, down := range held {
				if down {
					names = append(names, keys.Name(idx))
				}
			}
			current := strings.Join(names, " ")
			if current != last {
				fmt.Printf("held: [%s]\n", current)
				last = current
			}
		}
	}
}

// printNotes echoes a controller's note events until it disconnects
func printNotes(id string, c midi.Controller) {
	for ev := range c.NoteEvents() {
		name := "?"
		if idx, err := keys.Index(ev.Note); err == nil {
			name = keys.Name(idx)
		}
		if ev.On {
			fmt.Printf("  %s: on  %-4s ch%d vel %d\n", id, name, ev.Channel+1, ev.Velocity)
		} else {
			fmt.Printf("  %s: off %-4s ch%d\n", id, name, ev.Channel+1)
		}
	}
}
