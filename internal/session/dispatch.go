package session

import (
	"log/slog"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/metrics"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
	"github.com/dimspell/trapline/internal/wire"
)

// dispatch routes one inbound message by kind. Malformed messages and
// messages meant for the other role are dropped. It must be called with mu
// held.
func (s *Session) dispatch(payload []byte) {
	et := wire.ParseEventType(payload)
	if len(payload) == 0 || !et.Valid() {
		slog.Debug("Dropping unknown message", "size", len(payload))
		return
	}
	metrics.MessagesReceived.WithLabelValues(et.String()).Inc()

	switch et {
	case wire.PresencePing, wire.JoinAck:
		s.markPresent(et)
	case wire.JoinAnnounce:
		decodeAndHandle(payload, et, s.handleAnnounce)
	case wire.Chat:
		decodeAndHandle(payload, et, s.handleChat)
	case wire.StartSession:
		decodeAndHandle(payload, et, s.handleStart)
	case wire.StateSnapshot:
		decodeAndHandle(payload, et, s.handleSnapshot)
	case wire.TrapTrigger:
		decodeAndHandle(payload, et, s.handleTrap)
	default:
		// Signaling belongs to the transport.
		slog.Debug("Ignoring message", logging.Kind(et))
	}
}

func decodeAndHandle[T any](payload []byte, et wire.EventType, handler func(T)) {
	_, msg, err := wire.DecodeTyped[T](payload)
	if err != nil {
		slog.Debug("Dropping malformed message", logging.Kind(et), logging.Error(err))
		return
	}
	handler(msg.Content)
}

func (s *Session) markPresent(et wire.EventType) {
	if !s.present.Swap(true) {
		slog.Info("Remote peer is present", logging.Role(s.role.Remote()), "via", et.String())
	}
}

func (s *Session) handleAnnounce(msg wire.Announce) {
	if msg.Role == s.role {
		slog.Warn("Another peer announced the same role", logging.Role(msg.Role))
		return
	}
	s.markPresent(wire.JoinAnnounce)
	s.send(wire.JoinAck, wire.Empty{})
}

func (s *Session) handleChat(msg model.ChatMessage) {
	s.chat.Append(msg)
}

func (s *Session) handleStart(msg wire.Start) {
	if s.role != model.RoleTrapper {
		return
	}
	// Geometry only. The actor and the Playing status arrive with the
	// first snapshot.
	s.state = &model.GameState{
		Status:      model.StatusIdle,
		Platforms:   append([]model.Platform(nil), msg.Platforms...),
		LevelLength: msg.LevelLength,
	}
	s.screen = ScreenActive
	s.cooldowns.Reset()
}

// handleSnapshot replaces the Trapper's view wholesale. The last snapshot
// received wins, even when it is older than the one it replaces.
func (s *Session) handleSnapshot(snapshot model.GameState) {
	if s.role != model.RoleTrapper {
		return
	}
	s.state = &snapshot
	s.screen = ScreenActive
}

func (s *Session) handleTrap(msg wire.Trap) {
	if s.role != model.RoleRunner || s.state == nil {
		return
	}
	if !sim.ApplyTrap(s.state, msg.Kind, s.rng) {
		slog.Debug("Trap ignored", logging.Kind(msg.Kind), "status", s.state.Status.String())
		return
	}
	metrics.TrapsApplied.WithLabelValues(msg.Kind.String()).Inc()
	slog.Debug("Trap applied", logging.Kind(msg.Kind))
}
