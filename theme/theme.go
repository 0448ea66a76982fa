package theme

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"go-synthy/keys"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Tile      rune // █ falling tile body
	TileEdge  rune // ▀ tile top/bottom half cell
	WhiteKey  rune // ▔ idle white key
	BlackKey  rune // ▆ idle black key
	HeldKey   rune // █ key physically held
	Sounding  rune // ▒ key whose tile is sounding
	HitLine   rune // ─ line tiles land on
	Separator rune // │
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Tile:      '█',
			TileEdge:  '▀',
			WhiteKey:  '▔',
			BlackKey:  '▆',
			HeldKey:   '█',
			Sounding:  '▒',
			HitLine:   '─',
			Separator: '│',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG        = 0.0  // night
	RoleSurface   = 0.1  // panels
	RoleMuted     = 0.25 // help text, idle keys
	RoleBlackTile = 0.4  // tiles on black keys
	RoleWhiteTile = 0.55 // tiles on white keys
	RoleHeld      = 0.75 // keys held on the keyboard
	RoleAccent    = 0.85 // overlay values
	RoleFG        = 1.0  // text
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Held() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleHeld))
}

// Tile returns the tile colour for a key index
func (t *Theme) Tile(note int) lipgloss.Color {
	return rgbToLipgloss(t.tileRGB(note))
}

// TileRGBA is Tile for pixel renderers
func (t *Theme) TileRGBA(note int) color.RGBA {
	return toRGBA(t.tileRGB(note))
}

func (t *Theme) tileRGB(note int) RGB {
	if keys.TypeOf(note) == keys.Black {
		return t.Palette.Lookup(RoleBlackTile)
	}
	return t.Palette.Lookup(RoleWhiteTile)
}

// RGBA returns a pixel colour for any normalized value 0-1
func (t *Theme) RGBA(norm float64) color.RGBA {
	return toRGBA(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

func toRGBA(c RGB) color.RGBA {
	return color.RGBA{c[0], c[1], c[2], 0xff}
}
