package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Lookahead() != DefaultLookahead || cfg.TickMode != TickModeRaw {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.LookaheadMs = 3500
	cfg.InputPort = "Digital Piano"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Lookahead() != 3500*time.Millisecond || got.InputPort != "Digital Piano" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"lookaheadMs": 1000}`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ViewportFraction != 0.85 || !got.ShowOverlay {
		t.Fatalf("defaults not kept: %+v", got)
	}
}

func TestConfigPathUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".config", "go-synthy", "config.json"); path != want {
		t.Fatalf("ConfigPath = %q, want %q", path, want)
	}
}

func TestLookaheadAdjustClamps(t *testing.T) {
	l := NewLookahead(time.Second)
	if got := l.Adjust(-900*time.Millisecond, MinLookahead); got != MinLookahead {
		t.Fatalf("Adjust = %v, want %v", got, MinLookahead)
	}
	if got := l.Adjust(time.Second, MinLookahead); got != time.Second+MinLookahead {
		t.Fatalf("Adjust = %v", got)
	}
}

func TestLookaheadConcurrentWriters(t *testing.T) {
	l := NewLookahead(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Adjust(time.Millisecond, 0)
				_ = l.Load()
			}
		}()
	}
	wg.Wait()
	if got := l.Load(); got != 8000*time.Millisecond {
		t.Fatalf("lost updates: %v", got)
	}
}

func TestWatcherReloadsLookahead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := DefaultConfig().SaveTo(path); err != nil {
		t.Fatal(err)
	}

	cell := NewLookahead(DefaultLookahead)
	w, err := NewWatcher(path, cell)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	cfg := DefaultConfig()
	cfg.LookaheadMs = 4200
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cell.Load() == 4200*time.Millisecond {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("lookahead not reloaded, still %v", cell.Load())
}

func TestWatcherKeepsLookaheadWhenFileMovesAway(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	cfg := DefaultConfig()
	cfg.LookaheadMs = 5000
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	cell := NewLookahead(5 * time.Second)
	w, err := NewWatcher(path, cell)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.Rename(path, path+"~"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := cell.Load(); got != 5*time.Second {
		t.Fatalf("lookahead after rename = %v, want 5s", got)
	}

	// Moving it back is a Create and reloads
	cfg.LookaheadMs = 3000
	if err := cfg.SaveTo(path + "~"); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(path+"~", path); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cell.Load() == 3*time.Second {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("lookahead not reloaded after rename back, still %v", cell.Load())
}
