package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
	"github.com/dimspell/trapline/internal/wire"
)

// CooldownTick is how often Run advances the trap countdowns.
const CooldownTick = 100 * time.Millisecond

// CooldownFor returns the time a trap kind stays unavailable after use.
func CooldownFor(kind model.TrapKind) time.Duration {
	switch kind {
	case model.TrapBomb:
		return sim.BombCooldown
	case model.TrapCrack:
		return sim.CrackCooldown
	case model.TrapReverse:
		return sim.ReverseCooldown
	default:
		return 0
	}
}

// Cooldowns tracks the remaining time per trap kind on the Trapper.
type Cooldowns struct {
	mu        sync.Mutex
	remaining map[model.TrapKind]time.Duration
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{remaining: make(map[model.TrapKind]time.Duration)}
}

// Use starts the countdown for kind, or reports false while it is running.
func (c *Cooldowns) Use(kind model.TrapKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining[kind] > 0 {
		return false
	}
	c.remaining[kind] = CooldownFor(kind)
	return true
}

// Advance counts every running cooldown down by elapsed.
func (c *Cooldowns) Advance(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, left := range c.remaining {
		if left -= elapsed; left > 0 {
			c.remaining[kind] = left
		} else {
			delete(c.remaining, kind)
		}
	}
}

func (c *Cooldowns) Remaining(kind model.TrapKind) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining[kind]
}

// Snapshot returns the remaining time of every kind, zero when ready.
func (c *Cooldowns) Snapshot() map[model.TrapKind]time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[model.TrapKind]time.Duration, len(model.TrapKinds))
	for _, kind := range model.TrapKinds {
		out[kind] = c.remaining[kind]
	}
	return out
}

func (c *Cooldowns) Reset() {
	c.mu.Lock()
	clear(c.remaining)
	c.mu.Unlock()
}

// TriggerTrap sends a trap intent to the Runner. The cooldown is only
// checked here; the Runner applies whatever it receives.
func (s *Session) TriggerTrap(kind model.TrapKind) error {
	if !kind.Valid() {
		return ErrUnknownTrap
	}
	if s.role != model.RoleTrapper {
		return ErrWrongRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.screen == ScreenLeft:
		return ErrSessionClosed
	case s.state == nil || s.state.Status != model.StatusPlaying:
		return ErrNotPlaying
	}
	if !s.cooldowns.Use(kind) {
		return ErrTrapCoolingDown
	}

	s.send(wire.TrapTrigger, wire.Trap{Kind: kind})
	slog.Debug("Trap triggered", logging.Kind(kind))
	return nil
}

// AdvanceCooldowns counts the trap cooldowns down. Run calls it every
// CooldownTick.
func (s *Session) AdvanceCooldowns(elapsed time.Duration) {
	s.cooldowns.Advance(elapsed)
}

func (s *Session) Cooldowns() map[model.TrapKind]time.Duration {
	return s.cooldowns.Snapshot()
}
