// Package peer carries session messages over a WebRTC data channel whose
// negotiation goes through the signaling relay.
//
// The Runner initiates: it opens the data channel and sends the offer. The
// Trapper announces itself and answers. Both sides trade ICE candidates until
// the channel opens, after which the relay is no longer needed.
package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/metrics"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

const dataChannelLabel = "trapline"

var ErrAlreadyConnected = errors.New("peer transport already connected")

// Initiator reports whether role opens the data channel and sends the offer.
func Initiator(role model.Role) bool {
	return role == model.RoleRunner
}

type Transport struct {
	ICEServers []webrtc.ICEServer

	// API builds the peer connection, nil means pion defaults.
	API *webrtc.API

	Room string

	id   string
	role model.Role

	mu      sync.Mutex
	signal  SignalConn
	pc      *webrtc.PeerConnection
	dc      DataChannel
	handler func([]byte)
	cancel  context.CancelFunc
	done    chan struct{}

	// Candidates that arrived before the remote description, owned by the
	// signaling read loop.
	pending []webrtc.ICECandidateInit
}

func New(iceServers ...webrtc.ICEServer) *Transport {
	return &Transport{
		ICEServers: iceServers,
		id:         uuid.New().String(),
	}
}

func (t *Transport) ID() string { return t.id }

// Connect joins the relay room at relayURL and starts the negotiation. It
// returns once the local side is set up; the data channel opens later.
func (t *Transport) Connect(ctx context.Context, role model.Role, relayURL string) error {
	t.mu.Lock()
	connected := t.signal != nil
	t.mu.Unlock()
	if connected {
		return ErrAlreadyConnected
	}

	signal, err := DialSignaler(ctx, relayURL, t.Room)
	if err != nil {
		return fmt.Errorf("could not reach the signaling relay: %w", err)
	}

	pc, err := t.newPeerConnection()
	if err != nil {
		_ = signal.Close()
		return fmt.Errorf("could not create peer connection: %w", err)
	}

	// The negotiation outlives ctx, it only bounds the dial.
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	t.mu.Lock()
	t.role = role
	t.signal = signal
	t.pc = pc
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	t.setupPeerConnection(loopCtx, pc)

	if Initiator(role) {
		if err := t.openDataChannel(pc); err != nil {
			cancel()
			close(done)
			_ = t.Disconnect()
			return err
		}
		if err := t.sendOffer(loopCtx, pc); err != nil {
			cancel()
			close(done)
			_ = t.Disconnect()
			return err
		}
	} else {
		t.writeSignal(loopCtx, wire.Build(wire.JoinAnnounce, t.id, wire.Announce{Role: role}))
	}

	go t.readLoop(loopCtx, signal, done)

	slog.Info("Joined signaling relay", logging.Role(role), logging.PeerID(t.id), "relay", relayURL)
	return nil
}

func (t *Transport) newPeerConnection() (*webrtc.PeerConnection, error) {
	cfg := webrtc.Configuration{ICEServers: t.ICEServers}
	if t.API != nil {
		return t.API.NewPeerConnection(cfg)
	}
	return webrtc.NewPeerConnection(cfg)
}

func (t *Transport) setupPeerConnection(ctx context.Context, pc *webrtc.PeerConnection) {
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		t.writeSignal(ctx, wire.Build(wire.SignalCandidate, t.id, wire.Candidate{
			Role:      t.role,
			Candidate: c.ToJSON(),
		}))
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		slog.Debug("Peer connection state has changed", "state", state.String(), logging.Role(t.role))
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if Initiator(t.role) {
			slog.Debug("Ignoring data channel opened by the remote", "label", dc.Label())
			return
		}
		t.attach(dc)
	})
}

func (t *Transport) openDataChannel(pc *webrtc.PeerConnection) error {
	ordered := false
	maxRetransmits := uint16(0)
	dc, err := pc.CreateDataChannel(dataChannelLabel, &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		return fmt.Errorf("could not create data channel: %w", err)
	}
	t.attach(dc)
	return nil
}

// attach makes dc the channel Send writes to and routes its messages to the
// handler. The open event is reported as a presence ping so that the session
// learns about the peer without waiting for the next announcement.
func (t *Transport) attach(dc DataChannel) {
	t.mu.Lock()
	t.dc = dc
	t.mu.Unlock()

	dc.OnOpen(func() {
		slog.Info("Data channel is open", "label", dc.Label(), logging.Role(t.role))
		t.deliver(wire.Build(wire.PresencePing, t.id, wire.Empty{}))
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		t.deliver(msg.Data)
	})
	dc.OnClose(func() {
		slog.Info("Data channel has been closed", "label", dc.Label(), logging.Role(t.role))
	})
}

func (t *Transport) deliver(payload []byte) {
	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()

	if handler != nil {
		handler(payload)
	}
}

// Send writes payload to the data channel when it is open and drops it
// otherwise.
func (t *Transport) Send(payload []byte) {
	t.mu.Lock()
	dc := t.dc
	t.mu.Unlock()

	if dc == nil || dc.ReadyState() != webrtc.DataChannelStateOpen {
		slog.Debug("Dropping message, data channel is not open", logging.Kind(wire.ParseEventType(payload)))
		metrics.MessagesDropped.WithLabelValues("channel_not_open").Inc()
		return
	}
	if err := dc.Send(payload); err != nil {
		slog.Warn("Could not send a message", logging.Kind(wire.ParseEventType(payload)), logging.Error(err))
		metrics.MessagesDropped.WithLabelValues("send_error").Inc()
	}
}

func (t *Transport) OnMessage(fn func(payload []byte)) {
	t.mu.Lock()
	t.handler = fn
	t.mu.Unlock()
}

// Disconnect closes the data channel, the peer connection and the relay
// connection. It is safe to call more than once.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	signal, pc, dc, cancel, done := t.signal, t.pc, t.dc, t.cancel, t.done
	t.signal, t.pc, t.dc, t.cancel, t.done = nil, nil, nil, nil, nil
	t.mu.Unlock()

	if dc != nil {
		if err := dc.Close(); err != nil {
			slog.Debug("Could not close the data channel", logging.Error(err))
		}
	}

	var err error
	if pc != nil {
		err = pc.Close()
	}
	if signal != nil {
		if err := signal.Close(); err != nil {
			slog.Debug("Could not close the signaling connection", logging.Error(err))
		}
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	return err
}
