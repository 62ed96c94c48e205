// Package loopback delivers messages between transports of the same process
// that joined the same channel name. Nothing is negotiated and nothing is lost.
package loopback

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/metrics"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/google/uuid"
	"github.com/kelindar/event"
)

const DefaultChannel = "trapline"

var ErrAlreadyConnected = errors.New("loopback transport already connected")

const frameEvent = 0x01

// frame is what travels on a channel. From lets a subscriber skip its own
// messages, a broadcast channel reaches everyone else.
type frame struct {
	From    string
	Payload []byte
}

func (frame) Type() uint32 { return frameEvent }

// Hub keeps the named channels alive while at least one transport uses them.
type Hub struct {
	mu       sync.Mutex
	channels map[string]*channel
}

type channel struct {
	bus  *event.Dispatcher
	refs int
}

var DefaultHub = NewHub()

func NewHub() *Hub {
	return &Hub{channels: make(map[string]*channel)}
}

func (h *Hub) join(name string) *event.Dispatcher {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.channels[name]
	if !ok {
		ch = &channel{bus: event.NewDispatcher()}
		h.channels[name] = ch
	}
	ch.refs++
	return ch.bus
}

func (h *Hub) leave(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.channels[name]
	if !ok {
		return
	}
	ch.refs--
	if ch.refs > 0 {
		return
	}
	delete(h.channels, name)
	if err := ch.bus.Close(); err != nil {
		slog.Debug("Could not close loopback channel", logging.Channel(name), logging.Error(err))
	}
}

// Channels returns the number of open channels.
func (h *Hub) Channels() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}

type Transport struct {
	hub *Hub
	id  string

	mu          sync.Mutex
	name        string
	bus         *event.Dispatcher
	unsubscribe context.CancelFunc
	handler     func([]byte)
}

func New(hub *Hub) *Transport {
	if hub == nil {
		hub = DefaultHub
	}
	return &Transport{
		hub: hub,
		id:  uuid.New().String(),
	}
}

func (t *Transport) ID() string { return t.id }

// Connect subscribes to the channel called name and returns right away.
func (t *Transport) Connect(_ context.Context, role model.Role, name string) error {
	if name == "" {
		name = DefaultChannel
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bus != nil {
		return ErrAlreadyConnected
	}

	bus := t.hub.join(name)
	t.name = name
	t.bus = bus
	t.unsubscribe = event.SubscribeTo(bus, frameEvent, t.receive)

	slog.Debug("Joined loopback channel", logging.Channel(name), logging.Role(role), logging.PeerID(t.id))
	return nil
}

func (t *Transport) receive(f frame) {
	if f.From == t.id {
		return
	}
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()

	if handler != nil {
		handler(f.Payload)
	}
}

func (t *Transport) Send(payload []byte) {
	t.mu.Lock()
	bus := t.bus
	t.mu.Unlock()

	if bus == nil {
		slog.Debug("Dropping message, loopback transport is not connected",
			logging.Kind(wire.ParseEventType(payload)))
		metrics.MessagesDropped.WithLabelValues("not_connected").Inc()
		return
	}
	event.Publish(bus, frame{From: t.id, Payload: bytes.Clone(payload)})
}

func (t *Transport) OnMessage(fn func(payload []byte)) {
	t.mu.Lock()
	t.handler = fn
	t.mu.Unlock()
}

func (t *Transport) Disconnect() error {
	t.mu.Lock()
	name, bus, unsubscribe := t.name, t.bus, t.unsubscribe
	t.name, t.bus, t.unsubscribe = "", nil, nil
	t.mu.Unlock()

	if bus == nil {
		return nil
	}
	unsubscribe()
	t.hub.leave(name)
	return nil
}
