package keys

// Key is one key's placement on the keyboard strip
type Key struct {
	Type KeyType
	X    float64 // left edge, in white-key widths
}

// Layout maps every key index to its horizontal placement.
// Black keys straddle the boundary between the two white keys around them.
type Layout struct {
	Keys       [Count]Key
	BlackWidth float64 // black key width, in white-key widths
}

// DefaultBlackWidth is the usual black/white key width ratio
const DefaultBlackWidth = 0.6

// NewLayout builds the layout for the full 88-key range
func NewLayout(blackWidth float64) *Layout {
	l := &Layout{BlackWidth: blackWidth}
	pos := 0.0
	for i := 0; i < Count; i++ {
		if TypeOf(i) == White {
			l.Keys[i] = Key{Type: White, X: pos}
			pos++
		} else {
			l.Keys[i] = Key{Type: Black, X: pos - blackWidth/2}
		}
	}
	return l
}

// Width returns the key's width in white-key widths
func (l *Layout) Width(idx int) float64 {
	if l.Keys[idx].Type == Black {
		return l.BlackWidth
	}
	return 1
}

// Span returns the horizontal extent of the key scaled to a strip of totalWidth
func (l *Layout) Span(idx int, totalWidth float64) (x, w float64) {
	scale := totalWidth / WhiteCount
	return l.Keys[idx].X * scale, l.Width(idx) * scale
}
