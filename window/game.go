// Package window draws the falling-note view in a desktop window.
package window

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"go-synthy/config"
	"go-synthy/debug"
	"go-synthy/keys"
	"go-synthy/midi"
	"go-synthy/song"
	"go-synthy/theme"
)

const (
	windowW    = 1248
	windowH    = 720
	minWindowW = 416
	minWindowH = 240

	// LookaheadStep is how far +/- move the window
	LookaheadStep = 250 * time.Millisecond
)

// Game implements ebiten.Game over a scheduled song
type Game struct {
	song      *song.Song
	keys      *midi.KeyState
	lookahead *config.Lookahead
	theme     *theme.Theme
	layout    *keys.Layout

	overlay  bool
	fraction float64 // share of the window height given to the roll
	viewW    int
	viewH    int
	now      time.Time
}

// New creates a game. fraction outside (0,1) falls back to the default.
func New(s *song.Song, state *midi.KeyState, lookahead *config.Lookahead, th *theme.Theme, showOverlay bool, fraction float64) *Game {
	if fraction <= 0 || fraction >= 1 {
		fraction = config.DefaultConfig().ViewportFraction
	}
	return &Game{
		song:      s,
		keys:      state,
		lookahead: lookahead,
		theme:     th,
		layout:    keys.NewLayout(keys.DefaultBlackWidth),
		overlay:   showOverlay,
		fraction:  fraction,
		viewW:     windowW,
		viewH:     windowH,
		now:       s.Epoch(),
	}
}

// Run opens the window and blocks until it is closed
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(minWindowW, minWindowH, -1, -1)
	ebiten.SetWindowTitle(title)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (g *Game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyQ):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		g.lookahead.Adjust(LookaheadStep, config.MinLookahead)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		g.lookahead.Adjust(-LookaheadStep, config.MinLookahead)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.song.Restart(time.Now())
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.overlay = !g.overlay
	}

	g.now = time.Now()
	g.song.Update(g.now)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.theme.RGBA(theme.RoleBG))

	w := float64(g.viewW)
	rollH := float64(g.viewH) * g.fraction
	kbH := float64(g.viewH) - rollH

	placements := g.song.Placements(g.now, rollH)
	var sounding [keys.Count]bool
	for _, p := range placements {
		r := TileRect(p, g.layout, w, rollH)
		if !r.Empty() {
			fillRect(screen, r, g.theme.TileRGBA(p.Tile.Note))
		}
		if p.TimeToDie > 0 && p.TimeToDie <= p.Tile.Length {
			sounding[p.Tile.Note] = true
		}
	}

	// Hit line
	ebitenutil.DrawRect(screen, 0, rollH-1, w, 2, g.theme.RGBA(theme.RoleMuted))

	held := g.keys.Snapshot()
	for _, pass := range []keys.KeyType{keys.White, keys.Black} {
		for idx := 0; idx < keys.Count; idx++ {
			if g.layout.Keys[idx].Type != pass {
				continue
			}
			fillRect(screen, KeyRect(idx, g.layout, w, rollH+1, kbH-1), g.keyColor(idx, held[idx], sounding[idx]))
		}
	}

	if g.overlay {
		ebitenutil.DebugPrintAt(screen, g.overlayText(), 8, 8)
	}
	debug.LogEvery(600, "window", "fps=%.1f tiles=%d", ebiten.ActualFPS(), len(placements))
}

func (g *Game) Layout(outsideW, outsideH int) (int, int) {
	if outsideW < minWindowW {
		outsideW = minWindowW
	}
	if outsideH < minWindowH {
		outsideH = minWindowH
	}
	g.viewW = outsideW
	g.viewH = outsideH
	return outsideW, outsideH
}

func (g *Game) keyColor(idx int, held, sounding bool) color.Color {
	switch {
	case held:
		return g.theme.RGBA(theme.RoleHeld)
	case sounding:
		return g.theme.TileRGBA(idx)
	case keys.TypeOf(idx) == keys.Black:
		return g.theme.RGBA(theme.RoleSurface)
	}
	return g.theme.RGBA(theme.RoleFG)
}

func (g *Game) overlayText() string {
	return fmt.Sprintf("lookahead %v  tiles %d  active %d  pending %d  time %v\n+/- lookahead  r restart  esc hide  q quit",
		g.song.Lookahead(), len(g.song.Score()), len(g.song.Active()), g.song.Pending(),
		g.song.Elapsed(g.now).Truncate(100*time.Millisecond))
}

func fillRect(dst *ebiten.Image, r Rect, c color.Color) {
	ebitenutil.DrawRect(dst, r.X, r.Y, r.W, r.H, c)
}
