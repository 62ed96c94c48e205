package session

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dimspell/trapline/internal/sim"
)

// Run steps the session on every tick of ticks and keeps the presence and
// cooldown timers going until ctx is done or the session is left. Leaving
// ends Run with a nil error.
func (s *Session) Run(ctx context.Context, ticks TickSource) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.screen == ScreenLeft {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.stopRun = cancel
	s.mu.Unlock()

	defer ticks.Stop()

	presence := backoff.NewTicker(backoff.NewConstantBackOff(sim.PresenceInterval))
	defer presence.Stop()

	cooldown := backoff.NewTicker(backoff.NewConstantBackOff(CooldownTick))
	defer cooldown.Stop()
	lastCooldown := time.Now()

	for {
		select {
		case <-ctx.Done():
			if s.Screen() == ScreenLeft {
				return nil
			}
			return ctx.Err()
		case now := <-ticks.C():
			s.Step(now)
		case <-presence.C:
			switch s.Screen() {
			case ScreenLobby, ScreenActive:
				s.Announce()
			}
		case now := <-cooldown.C:
			s.AdvanceCooldowns(now.Sub(lastCooldown))
			lastCooldown = now
		}
	}
}
