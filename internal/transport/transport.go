// Package transport defines the capability both session roles talk through
// and selects one of its variants from configuration.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/transport/loopback"
	"github.com/dimspell/trapline/internal/transport/peer"
	"github.com/pion/webrtc/v4"
)

var ErrUnknownMode = errors.New("unknown connection mode")

// Transport is a best-effort message pipe between the two peers of a session.
//
// Connect makes the transport ready to send and receive; it may return before
// the remote peer is reachable. Send never blocks and never fails: a message
// that cannot be delivered yet is dropped. OnMessage registers the single
// callback every inbound message is handed to. Disconnect releases everything
// and may be called any number of times, connected or not.
type Transport interface {
	Connect(ctx context.Context, role model.Role, addr string) error
	Send(payload []byte)
	OnMessage(fn func(payload []byte))
	Disconnect() error
}

var (
	_ Transport = (*loopback.Transport)(nil)
	_ Transport = (*peer.Transport)(nil)
)

type Config struct {
	Mode model.ConnectionMode

	// Hub scopes loopback channel names, nil means the process-wide hub.
	Hub *loopback.Hub

	ICEServers []webrtc.ICEServer

	// API overrides the WebRTC engine settings, mainly for tests.
	API *webrtc.API

	// Room is the relay room both peers join.
	Room string
}

// New returns the transport variant picked by cfg.Mode.
func New(cfg Config) (Transport, error) {
	switch cfg.Mode {
	case model.ModeLoopback:
		return loopback.New(cfg.Hub), nil
	case model.ModePeer:
		t := peer.New(cfg.ICEServers...)
		t.API = cfg.API
		t.Room = cfg.Room
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}
}
