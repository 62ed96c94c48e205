package session

import (
	"log/slog"
	"time"

	"github.com/dimspell/trapline/internal/metrics"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
	"github.com/dimspell/trapline/internal/wire"
)

// Step runs one tick at now: it applies every queued message, then on the
// Runner advances the simulation and sends a full snapshot of the result.
// The first tick of a game advances nothing, it only marks the start time.
func (s *Session) Step(now time.Time) {
	start := time.Now()
	msgs := s.inbox.Drain()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenLeft {
		return
	}

	for _, payload := range msgs {
		s.dispatch(payload)
	}

	if s.role != model.RoleRunner || s.state == nil {
		return
	}

	if s.state.Status == model.StatusPlaying && !s.lastTick.IsZero() {
		dt := float64(now.Sub(s.lastTick)) / float64(time.Millisecond)
		before := s.state.Status
		sim.Step(s.state, s.input.Input(), dt)
		if s.state.Status != before {
			slog.Info("Game is over", "status", s.state.Status.String(),
				"elapsedMs", s.state.ElapsedMs, "revives", s.state.Revives)
		}
	}
	s.lastTick = now

	s.send(wire.StateSnapshot, s.state)
	metrics.TickDuration.Observe(time.Since(start).Seconds())
}
