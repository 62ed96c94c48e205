package sim

import (
	"math"

	"github.com/dimspell/trapline/internal/model"
)

// overlapsX reports whether an actor whose left edge is at x shares any
// horizontal span with the platform.
func overlapsX(x float64, plat model.Platform) bool {
	return x+PlayerWidth > plat.X && x < plat.Right()
}

// landing finds the first platform top the actor's feet cross while moving
// from prevY to nextY, which is the highest one when several are crossed in
// the same tick. Feet exactly on a top at the start count as above it, so a
// standing actor keeps landing on its platform every tick.
func landing(platforms []model.Platform, prevY, nextX, nextY float64) (top float64, ok bool) {
	prevFeet := prevY + PlayerHeight
	nextFeet := nextY + PlayerHeight
	for _, plat := range platforms {
		if !overlapsX(nextX, plat) {
			continue
		}
		if prevFeet > plat.Y || nextFeet < plat.Y {
			continue
		}
		if !ok || plat.Y < top {
			top, ok = plat.Y, true
		}
	}
	return top, ok
}

// supporting returns the index of the platform whose top is within
// CrackProximity of the actor's feet, the closest one if several are. -1 when
// there is none.
func supporting(s *model.GameState) int {
	p := s.Player
	feet := p.Y + PlayerHeight

	best := -1
	bestGap := 0.0
	for i, plat := range s.Platforms {
		if !overlapsX(p.X, plat) {
			continue
		}
		gap := math.Abs(plat.Y - feet)
		if gap > CrackProximity {
			continue
		}
		if best < 0 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	return best
}
