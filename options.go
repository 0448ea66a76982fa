package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-synthy/config"
	"go-synthy/debug"
	"go-synthy/recording"
	"go-synthy/score"
	"go-synthy/song"
	"go-synthy/theme"
)

// options are the persistent flags; set flags override the config file
type options struct {
	configPath string
	lookahead  time.Duration
	tickMode   string
	port       string
	debug      bool
}

// session is everything a front-end needs to play one file
type session struct {
	cfg        *config.Config
	configPath string
	cell       *config.Lookahead
	initial    time.Duration // lookahead when playback started
	song       *song.Song
	theme      *theme.Theme
	stats      score.Stats
}

// resolve loads the config file and applies the flags set on cmd
func (o *options) resolve(cmd *cobra.Command) (*config.Config, string, error) {
	if o.debug {
		if err := debug.Enable(); err != nil {
			return nil, "", fmt.Errorf("enable debug log: %w", err)
		}
	}

	path := o.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config %s: %w", path, err)
	}

	flags := cmd.Flags()
	if flags.Changed("lookahead") {
		cfg.LookaheadMs = o.lookahead.Milliseconds()
	}
	if flags.Changed("tick-mode") {
		cfg.TickMode = config.TickMode(o.tickMode)
	}
	if flags.Changed("port") {
		cfg.InputPort = o.port
	}

	switch cfg.TickMode {
	case "", config.TickModeRaw, config.TickModeTempo:
	default:
		return nil, "", fmt.Errorf("unknown tick mode %q (want raw or tempo)", cfg.TickMode)
	}

	debug.Log("config", "%s: lookahead=%dms tick=%s port=%q", path, cfg.LookaheadMs, cfg.TickMode, cfg.InputPort)
	return cfg, path, nil
}

// compile loads a recording into a score
func compile(path string, cfg *config.Config) (score.Score, score.Stats, error) {
	tracks, err := recording.Load(path, recording.Options{TickMode: cfg.TickMode})
	if err != nil {
		return nil, score.Stats{}, err
	}
	sc, stats, err := score.Build(tracks)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return sc, stats, nil
}

// open prepares a song ready to play
func (o *options) open(cmd *cobra.Command, path string) (*session, error) {
	cfg, cfgPath, err := o.resolve(cmd)
	if err != nil {
		return nil, err
	}

	sc, stats, err := compile(path, cfg)
	if err != nil {
		return nil, err
	}

	palette, err := theme.LoadOrDefault(cfg.Palette)
	if err != nil {
		debug.Log("theme", "palette %s: %v, using built-in", cfg.Palette, err)
	}

	window := cfg.Lookahead()
	if window < config.MinLookahead {
		window = config.MinLookahead
	}
	cell := config.NewLookahead(window)

	return &session{
		cfg:        cfg,
		configPath: cfgPath,
		cell:       cell,
		initial:    window,
		song:       song.New(sc, cell),
		theme:      theme.New(palette),
		stats:      stats,
	}, nil
}

// watch hot-reloads the lookahead while ctx lives
func (s *session) watch(ctx context.Context) {
	w, err := config.NewWatcher(s.configPath, s.cell)
	if err != nil {
		// Config directory may not exist yet
		debug.Log("config", "not watching: %v", err)
		return
	}
	go w.Run(ctx)
}

// persist writes a lookahead changed during playback back to the config
// file. Only the lookahead is touched; flag overrides stay out of the file.
func (s *session) persist() error {
	d := s.cell.Load()
	if d == s.initial {
		return nil
	}
	cfg, err := config.LoadFrom(s.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", s.configPath, err)
	}
	cfg.LookaheadMs = d.Milliseconds()
	if err := cfg.SaveTo(s.configPath); err != nil {
		return fmt.Errorf("save config %s: %w", s.configPath, err)
	}
	debug.Log("config", "saved lookahead %v to %s", d, s.configPath)
	return nil
}
