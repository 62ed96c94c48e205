package sim

import (
	"slices"

	"github.com/dimspell/trapline/internal/model"
	"github.com/pion/randutil"
)

// ApplyTrap applies a trap intent to the authoritative state. Intents are
// ignored outside Playing. It reports whether the state changed.
func ApplyTrap(s *model.GameState, kind model.TrapKind, rng randutil.MathRandomGenerator) bool {
	if s.Status != model.StatusPlaying {
		return false
	}

	p := &s.Player
	switch kind {
	case model.TrapBomb:
		sign := 1.0
		if rng.Intn(2) == 0 {
			sign = -1
		}
		p.VX = sign * BombSpeedX
		p.VY = BombImpulseY
		p.Grounded = false
		return true
	case model.TrapCrack:
		i := supporting(s)
		if i < 0 {
			return false
		}
		s.Platforms = slices.Delete(s.Platforms, i, i+1)
		p.Grounded = false
		return true
	case model.TrapReverse:
		p.Reversed = true
		p.ReverseMs = ReverseDurationMs
		return true
	default:
		return false
	}
}
