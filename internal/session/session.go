// Package session runs one peer of a two-role game session. The Runner owns
// the authoritative simulation and replicates it; the Trapper mirrors the
// snapshots it receives and sends trap intents back.
//
// Inbound messages are queued by the transport and drained at the start of
// every Step, so the order in which they affect the game is the order of the
// queue. Run drives Step from a TickSource next to the presence and cooldown
// timers; tests call Step directly.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/levelgen"
	"github.com/dimspell/trapline/internal/metrics"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
	"github.com/dimspell/trapline/internal/transport"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/google/uuid"
	"github.com/pion/randutil"
)

var (
	ErrSessionClosed   = errors.New("session has been left")
	ErrWrongRole       = errors.New("operation is not available for this role")
	ErrNotPlaying      = errors.New("game is not in progress")
	ErrTrapCoolingDown = errors.New("trap is cooling down")
	ErrUnknownTrap     = errors.New("unknown trap kind")
	ErrEmptyMessage    = errors.New("chat message is empty")
)

type Screen int

const (
	ScreenLobby Screen = iota
	ScreenActive
	ScreenLeft
)

func (s Screen) String() string {
	switch s {
	case ScreenLobby:
		return "lobby"
	case ScreenActive:
		return "active"
	case ScreenLeft:
		return "left"
	default:
		return fmt.Sprintf("Screen(%d)", int(s))
	}
}

// LevelSource provides the geometry of a new game. It must not fail.
type LevelSource interface {
	Load(ctx context.Context) levelgen.Level
}

// InputSource samples the Runner's controls once per tick.
type InputSource interface {
	Input() sim.Input
}

type fallbackLevels struct{}

func (fallbackLevels) Load(context.Context) levelgen.Level { return levelgen.Fallback() }

type Config struct {
	Role      model.Role
	Transport transport.Transport

	// Address is the loopback channel name or the relay URL.
	Address string

	// Levels defaults to the fallback level.
	Levels LevelSource

	// Input defaults to a fresh Controls.
	Input InputSource

	Rand randutil.MathRandomGenerator
}

type Session struct {
	role   model.Role
	id     string
	tr     transport.Transport
	addr   string
	levels LevelSource
	input  InputSource
	rng    randutil.MathRandomGenerator

	inbox   *Inbox
	present atomic.Bool

	mu        sync.Mutex
	screen    Screen
	state     *model.GameState
	lastTick  time.Time
	chat      *ChatLog
	cooldowns *Cooldowns
	stopRun   context.CancelFunc

	leaveOnce sync.Once
	leaveErr  error
}

func New(cfg Config) (*Session, error) {
	if !cfg.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", cfg.Role)
	}
	if cfg.Transport == nil {
		return nil, errors.New("session requires a transport")
	}
	if cfg.Levels == nil {
		cfg.Levels = fallbackLevels{}
	}
	if cfg.Input == nil {
		cfg.Input = NewControls()
	}
	if cfg.Rand == nil {
		cfg.Rand = randutil.NewMathRandomGenerator()
	}

	metrics.InitSession()

	return &Session{
		role:      cfg.Role,
		id:        uuid.New().String(),
		tr:        cfg.Transport,
		addr:      cfg.Address,
		levels:    cfg.Levels,
		input:     cfg.Input,
		rng:       cfg.Rand,
		inbox:     NewInbox(),
		screen:    ScreenLobby,
		chat:      NewChatLog(),
		cooldowns: NewCooldowns(),
	}, nil
}

func (s *Session) Role() model.Role { return s.role }

// Join connects the transport and announces the local role. A failed connect
// leaves the session in the lobby so the caller can retry.
func (s *Session) Join(ctx context.Context) error {
	if s.Screen() == ScreenLeft {
		return ErrSessionClosed
	}

	s.tr.OnMessage(s.inbox.Push)
	if err := s.tr.Connect(ctx, s.role, s.addr); err != nil {
		return fmt.Errorf("could not join the session: %w", err)
	}

	slog.Info("Joined the session", logging.Role(s.role), logging.PeerID(s.id))
	s.Announce()
	return nil
}

// Start begins a new game on the Runner: it loads a level, resets the
// authoritative state to Playing and tells the Trapper about the geometry.
func (s *Session) Start(ctx context.Context) error {
	if s.role != model.RoleRunner {
		return ErrWrongRole
	}
	if s.Screen() == ScreenLeft {
		return ErrSessionClosed
	}

	level := s.levels.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenLeft {
		return ErrSessionClosed
	}

	state := sim.NewGame(level.Platforms, level.LevelLength)
	state.SetStatus(model.StatusPlaying)
	s.state = state
	s.screen = ScreenActive
	s.lastTick = time.Time{}

	s.send(wire.StartSession, wire.Start{LevelLength: level.LevelLength, Platforms: level.Platforms})
	s.send(wire.StateSnapshot, state.Clone())

	slog.Info("Game has started", "platforms", len(level.Platforms), "levelLength", level.LevelLength)
	return nil
}

// Announce broadcasts the local role. Run calls it every PresenceInterval.
func (s *Session) Announce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenLeft {
		return
	}
	s.send(wire.JoinAnnounce, wire.Announce{Role: s.role})
}

// Leave stops Run, clears the presence flag and disconnects the transport.
// Only the first call does anything.
func (s *Session) Leave() error {
	s.leaveOnce.Do(func() {
		s.mu.Lock()
		s.screen = ScreenLeft
		stop := s.stopRun
		s.mu.Unlock()

		if stop != nil {
			stop()
		}
		s.present.Store(false)
		s.leaveErr = s.tr.Disconnect()
		slog.Info("Left the session", logging.Role(s.role))
	})
	return s.leaveErr
}

// RemotePresent reports whether the other peer has ever been heard from.
func (s *Session) RemotePresent() bool { return s.present.Load() }

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

// State returns a copy of the authoritative state on the Runner or of the
// last snapshot on the Trapper. ok is false before the first game.
func (s *Session) State() (state model.GameState, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return model.GameState{}, false
	}
	return s.state.Clone(), true
}

func (s *Session) Chat() []model.ChatMessage { return s.chat.Messages() }

// send must be called with mu held.
func (s *Session) send(et wire.EventType, content any) {
	s.tr.Send(wire.Compose(et, wire.Message{From: s.id, Content: content}))
	metrics.MessagesSent.WithLabelValues(et.String()).Inc()
}
