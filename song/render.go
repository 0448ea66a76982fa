package song

import (
	"time"

	"go-synthy/score"
)

// Placement pairs an active tile with its vertical render coordinates.
// Y is the tile's top edge; the bottom edge reaches height when the tile
// starts and the top edge reaches it when the tile ends.
type Placement struct {
	Tile      *score.Tile
	TimeToDie time.Duration
	Height    float64
	Y         float64
}

// TimeToDie is how long until the tile ends, floored at zero
func TimeToDie(epoch, now time.Time, t *score.Tile) time.Duration {
	d := epoch.Add(t.End()).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// VerticalHeight scales the tile length to the viewport height
func VerticalHeight(height float64, length, window time.Duration) float64 {
	return height * length.Seconds() / window.Seconds()
}

// VerticalPosition maps remaining time onto the viewport
func VerticalPosition(height float64, timeToDie, window time.Duration) float64 {
	return height * (1 - timeToDie.Seconds()/window.Seconds())
}

// Placements computes coordinates for every active tile at now
func (s *Song) Placements(now time.Time, height float64) []Placement {
	window := s.lookahead.Load()
	out := make([]Placement, len(s.active))
	for i, t := range s.active {
		ttd := TimeToDie(s.epoch, now, t)
		out[i] = Placement{
			Tile:      t,
			TimeToDie: ttd,
			Height:    VerticalHeight(height, t.Length, window),
			Y:         VerticalPosition(height, ttd, window),
		}
	}
	return out
}
