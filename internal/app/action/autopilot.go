package action

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/session"
	"github.com/dimspell/trapline/internal/sim"
)

const (
	pilotInterval = 50 * time.Millisecond

	// Distance to the platform edge at which the Runner jumps.
	jumpMargin = 40.0
)

// autopilot stands in for a player: the Runner holds right and jumps near
// platform edges, the Trapper fires traps as they come off cooldown.
type autopilot struct {
	session   *session.Session
	controls  *session.Controls
	autoTraps bool

	started bool
}

// Drive plays until the game reaches a terminal status or ctx is done.
func (a *autopilot) Drive(ctx context.Context) error {
	ticker := backoff.NewTicker(backoff.NewConstantBackOff(pilotInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if done, err := a.step(ctx); done || err != nil {
			return err
		}
	}
}

func (a *autopilot) step(ctx context.Context) (bool, error) {
	role := a.session.Role()

	if role == model.RoleRunner && !a.started {
		if !a.session.RemotePresent() {
			return false, nil
		}
		if err := a.session.Start(ctx); err != nil {
			return true, err
		}
		a.started = true
		a.controls.Press(sim.KeyRight)
	}

	state, ok := a.session.State()
	if !ok {
		return false, nil
	}
	if state.Status.Terminal() {
		slog.Info("Game has finished", logging.Role(role), "status", state.Status.String(),
			"elapsedMs", state.ElapsedMs, "revives", state.Revives)
		return true, nil
	}

	switch role {
	case model.RoleRunner:
		if nearEdge(state) {
			a.controls.Press(sim.KeyJump)
		} else {
			a.controls.Release(sim.KeyJump)
		}
	case model.RoleTrapper:
		if a.autoTraps && state.Status == model.StatusPlaying {
			a.fireTraps()
		}
	}
	return false, nil
}

func (a *autopilot) fireTraps() {
	for _, kind := range model.TrapKinds {
		err := a.session.TriggerTrap(kind)
		switch {
		case err == nil:
			slog.Info("Trap sent", logging.Kind(kind))
		case errors.Is(err, session.ErrTrapCoolingDown):
		default:
			slog.Debug("Could not send trap", logging.Kind(kind), logging.Error(err))
		}
	}
}

// nearEdge reports whether the actor stands close to the right edge of the
// platform under its feet.
func nearEdge(state model.GameState) bool {
	p := state.Player
	if !p.Grounded {
		return false
	}
	feet := p.Y + sim.PlayerHeight
	for _, plat := range state.Platforms {
		if p.X+sim.PlayerWidth < plat.X || p.X > plat.Right() {
			continue
		}
		if feet >= plat.Y-1 && feet <= plat.Y+1 {
			return plat.Right()-(p.X+sim.PlayerWidth) < jumpMargin
		}
	}
	return false
}
