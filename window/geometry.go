package window

import (
	"go-synthy/keys"
	"go-synthy/song"
)

// Rect is a pixel rectangle with float coordinates
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle covers no pixels
func (r Rect) Empty() bool {
	return !(r.W > 0 && r.H > 0)
}

// TileRect places an active tile inside a roll of the given size. The
// rectangle is clipped to the roll.
func TileRect(p song.Placement, layout *keys.Layout, width, rollH float64) Rect {
	x, w := layout.Span(p.Tile.Note, width)
	top, bottom := max(p.Y, 0), min(p.Y+p.Height, rollH)
	return Rect{X: x, Y: top, W: w, H: bottom - top}
}

// KeyRect places a key on the keyboard strip below the roll. Black keys are
// shorter and drawn after the white ones.
func KeyRect(idx int, layout *keys.Layout, width, top, height float64) Rect {
	x, w := layout.Span(idx, width)
	if layout.Keys[idx].Type == keys.Black {
		return Rect{X: x, Y: top, W: w, H: height * 0.6}
	}
	// 1px gap between white keys
	return Rect{X: x, Y: top, W: max(w-1, 1), H: height}
}
