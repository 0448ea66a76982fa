package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "go-synthy",
		Short:         "Falling-note piano roll for MIDI files",
		Version:       appVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/go-synthy/config.json)")
	flags.DurationVar(&opts.lookahead, "lookahead", 0, "how far ahead tiles appear, e.g. 2s")
	flags.StringVar(&opts.tickMode, "tick-mode", "", "raw (1 tick = 1ms) or tempo")
	flags.StringVar(&opts.port, "port", "", "MIDI input port name to listen on (substring)")
	flags.BoolVar(&opts.debug, "debug", false, "write a debug log to ~/.config/go-synthy/debug.log")

	root.AddCommand(
		playCmd(opts),
		windowCmd(opts),
		tilesCmd(opts),
		portsCmd(),
	)
	return root
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "unknown"
	}
	return bi.Main.Version
}
