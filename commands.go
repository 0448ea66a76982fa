package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"go-synthy/keys"
	"go-synthy/midi"
	"go-synthy/score"
	"go-synthy/tui"
	"go-synthy/window"
)

func playCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play FILE",
		Short: "Play a MIDI file in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			s.watch(ctx)

			// Hot-plug keyboards in the background
			state := midi.NewKeyState()
			deviceMgr := midi.NewDeviceManager(s.cfg.InputPort, state)
			go deviceMgr.Run(ctx)

			m := tui.NewModel(s.song, state, deviceMgr, s.cell, s.theme, s.cfg.ShowOverlay)
			p := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return s.persist()
		},
	}
}

func windowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "window FILE",
		Short: "Play a MIDI file in a desktop window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			s.watch(ctx)

			state := midi.NewKeyState()
			deviceMgr := midi.NewDeviceManager(s.cfg.InputPort, state)
			go deviceMgr.Run(ctx)

			g := window.New(s.song, state, s.cell, s.theme, s.cfg.ShowOverlay, s.cfg.ViewportFraction)
			if err := window.Run(g, "go-synthy - "+filepath.Base(args[0])); err != nil {
				return err
			}
			return s.persist()
		},
	}
}

func tilesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tiles FILE",
		Short: "Print the compiled tiles of a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			sc, stats, err := compile(args[0], cfg)
			if err != nil {
				return err
			}
			writeTiles(cmd.OutOrStdout(), sc, stats)
			return nil
		},
	}
}

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List MIDI input ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, ok := midi.InPorts(3 * time.Second)
			if !ok {
				return fmt.Errorf("port scan timed out (on macOS try: sudo killall coreaudiod midiserver)")
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "no MIDI input ports")
				return nil
			}
			for i, p := range ports {
				fmt.Fprintf(out, "%d: %s\n", i, p.String())
			}
			return nil
		},
	}
}

// writeTiles renders the score and compile stats as tables
func writeTiles(w io.Writer, sc score.Score, stats score.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Key", "Note", "Start", "Length", "End"})
	for i, tile := range sc {
		name := keys.Name(tile.Note)
		if keys.TypeOf(tile.Note) == keys.Black {
			name = text.FgHiBlack.Sprint(name)
		}
		t.AppendRow(table.Row{i, tile.Note, name, tile.Start, tile.Length, tile.End()})
	}
	t.AppendFooter(table.Row{"", "", "", "span", "", sc.Span()})
	t.Render()

	used := lo.Map(sc.Keys(), func(k int, _ int) string { return keys.Name(k) })

	s := table.NewWriter()
	s.SetOutputMirror(w)
	s.SetStyle(table.StyleLight)
	s.AppendRows([]table.Row{
		{"tiles", stats.Tiles},
		{"keys", strings.Join(used, " ")},
		{"out of range", stats.OutOfRange},
		{"unmatched off", stats.Unmatched},
		{"retriggered", stats.Retriggered},
		{"unterminated", stats.Unterminated},
		{"dropped", stats.Dropped()},
	})
	s.Render()
}
