package peer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/pion/webrtc/v4"
)

// readLoop owns pending while it runs and clears it on exit.
func (t *Transport) readLoop(ctx context.Context, signal SignalConn, done chan struct{}) {
	defer func() {
		t.pending = nil
		close(done)
	}()

	for {
		payload, err := signal.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Warn("Signaling connection has been lost", logging.Error(err), logging.Role(t.role))
			}
			return
		}
		t.handleSignal(ctx, payload)
	}
}

// handleSignal routes one relay frame. The relay broadcasts to the whole room
// without addressing, so every handler filters on the sender role.
func (t *Transport) handleSignal(ctx context.Context, payload []byte) {
	var err error
	switch et := wire.ParseEventType(payload); et {
	case wire.JoinAnnounce:
		err = decodeAndHandle(ctx, payload, t.handleAnnounce)
	case wire.SignalOffer:
		err = decodeAndHandle(ctx, payload, t.handleOffer)
	case wire.SignalAnswer:
		err = decodeAndHandle(ctx, payload, t.handleAnswer)
	case wire.SignalCandidate:
		err = decodeAndHandle(ctx, payload, t.handleCandidate)
	default:
		slog.Debug("Ignoring signaling message", logging.Kind(et))
		return
	}
	if err != nil {
		slog.Warn("Could not handle signaling message", logging.Kind(wire.ParseEventType(payload)), logging.Error(err))
	}
}

func decodeAndHandle[T any](ctx context.Context, payload []byte, handler func(ctx context.Context, msg T) error) error {
	_, msg, err := wire.DecodeTyped[T](payload)
	if err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}
	return handler(ctx, msg.Content)
}

func (t *Transport) peerConnection() *webrtc.PeerConnection {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pc
}

// handleAnnounce repeats the offer for a Trapper that joined the room after
// it was first sent.
func (t *Transport) handleAnnounce(ctx context.Context, msg wire.Announce) error {
	if !Initiator(t.role) || msg.Role == t.role {
		return nil
	}
	pc := t.peerConnection()
	if pc == nil || pc.RemoteDescription() != nil {
		return nil
	}
	desc := pc.LocalDescription()
	if desc == nil {
		return nil
	}
	slog.Debug("Repeating the offer for a late peer", logging.Role(msg.Role))
	t.writeSignal(ctx, wire.Build(wire.SignalOffer, t.id, wire.Description{Role: t.role, Description: *desc}))
	return nil
}

func (t *Transport) sendOffer(ctx context.Context, pc *webrtc.PeerConnection) error {
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("could not create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("could not set local description: %w", err)
	}
	t.writeSignal(ctx, wire.Build(wire.SignalOffer, t.id, wire.Description{Role: t.role, Description: offer}))
	return nil
}

func (t *Transport) handleOffer(ctx context.Context, msg wire.Description) error {
	if Initiator(t.role) || msg.Role == t.role {
		return nil
	}
	pc := t.peerConnection()
	if pc == nil {
		return nil
	}
	if pc.RemoteDescription() != nil {
		slog.Debug("Ignoring repeated offer")
		return nil
	}

	if err := pc.SetRemoteDescription(msg.Description); err != nil {
		return fmt.Errorf("could not set remote description: %w", err)
	}
	t.flushCandidates(pc)

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return fmt.Errorf("could not create answer: %w", err)
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		return fmt.Errorf("could not set local description: %w", err)
	}
	t.writeSignal(ctx, wire.Build(wire.SignalAnswer, t.id, wire.Description{Role: t.role, Description: answer}))
	return nil
}

func (t *Transport) handleAnswer(_ context.Context, msg wire.Description) error {
	if !Initiator(t.role) || msg.Role == t.role {
		return nil
	}
	pc := t.peerConnection()
	if pc == nil {
		return nil
	}
	if pc.RemoteDescription() != nil {
		slog.Debug("Ignoring repeated answer")
		return nil
	}

	if err := pc.SetRemoteDescription(msg.Description); err != nil {
		return fmt.Errorf("could not set remote description: %w", err)
	}
	t.flushCandidates(pc)
	return nil
}

func (t *Transport) handleCandidate(_ context.Context, msg wire.Candidate) error {
	if msg.Role == t.role {
		return nil
	}
	pc := t.peerConnection()
	if pc == nil {
		return nil
	}
	if pc.RemoteDescription() == nil {
		t.pending = append(t.pending, msg.Candidate)
		return nil
	}
	addCandidate(pc, msg.Candidate)
	return nil
}

func (t *Transport) flushCandidates(pc *webrtc.PeerConnection) {
	for _, c := range t.pending {
		addCandidate(pc, c)
	}
	t.pending = nil
}

// addCandidate logs and skips candidates pion rejects.
func addCandidate(pc *webrtc.PeerConnection, c webrtc.ICECandidateInit) {
	if err := pc.AddICECandidate(c); err != nil {
		slog.Debug("Ignoring ICE candidate", "candidate", c.Candidate, logging.Error(err))
	}
}

func (t *Transport) writeSignal(ctx context.Context, payload []byte) {
	t.mu.Lock()
	signal := t.signal
	t.mu.Unlock()

	if signal == nil || payload == nil {
		return
	}
	if err := signal.Write(ctx, payload); err != nil && ctx.Err() == nil {
		slog.Warn("Could not write to the signaling relay", logging.Kind(wire.ParseEventType(payload)), logging.Error(err))
	}
}
