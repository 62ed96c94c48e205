package sim

import (
	"math"

	"github.com/dimspell/trapline/internal/model"
)

// Step advances the authoritative state by dt milliseconds. It is a no-op
// unless the game is Playing.
func Step(s *model.GameState, in Input, dt float64) {
	if s.Status != model.StatusPlaying {
		return
	}
	dt = clampStep(dt)
	p := &s.Player

	dir := in.Dir
	if p.Reversed {
		dir = -dir
		p.ReverseMs -= dt
		if p.ReverseMs <= 0 {
			p.ReverseMs = 0
			p.Reversed = false
		}
	}

	p.VX = float64(dir) * MoveSpeed

	if in.Jump && p.Grounded {
		p.VY = JumpImpulse
		p.Grounded = false
	}

	p.VY = math.Min(p.VY+Gravity*dt, MaxFallSpeed)

	nextX := p.X + p.VX*dt
	nextY := p.Y + p.VY*dt

	p.Grounded = false
	if p.VY > 0 {
		if top, ok := landing(s.Platforms, p.Y, nextX, nextY); ok {
			nextY = top - PlayerHeight
			p.VY = 0
			p.Grounded = true
		}
	}

	p.X = nextX
	p.Y = nextY

	if p.X >= s.LevelLength {
		s.SetStatus(model.StatusWon)
		return
	}
	if p.Y > DeathY {
		if s.Revives <= 0 {
			s.SetStatus(model.StatusLost)
			return
		}
		s.Revives--
		respawn(s)
	}

	s.ElapsedMs += dt
}

func clampStep(dt float64) float64 {
	if dt < 0 || math.IsNaN(dt) {
		return 0
	}
	return math.Min(dt, MaxStepMs)
}

// respawn moves the actor to the closest platform starting before its
// current horizontal position, or the first platform if none does.
func respawn(s *model.GameState) {
	p := &s.Player
	if len(s.Platforms) == 0 {
		p.X, p.Y, p.VX, p.VY = 0, 0, 0, 0
		p.Grounded = false
		return
	}

	best := -1
	for i, plat := range s.Platforms {
		if plat.X >= p.X {
			continue
		}
		if best < 0 || p.X-plat.X < p.X-s.Platforms[best].X {
			best = i
		}
	}
	if best < 0 {
		best = 0
	}
	placeOn(p, s.Platforms[best])
}
