package peer

import (
	"context"
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
)

type fakeDataChannel struct {
	label string
	state webrtc.DataChannelState

	mu   sync.Mutex
	sent [][]byte

	onOpen    func()
	onClose   func()
	onMessage func(msg webrtc.DataChannelMessage)
}

func newFakeDataChannel(state webrtc.DataChannelState) *fakeDataChannel {
	return &fakeDataChannel{label: dataChannelLabel, state: state}
}

func (f *fakeDataChannel) Label() string                       { return f.label }
func (f *fakeDataChannel) ReadyState() webrtc.DataChannelState { return f.state }
func (f *fakeDataChannel) OnOpen(fn func())                    { f.onOpen = fn }
func (f *fakeDataChannel) OnClose(fn func())                   { f.onClose = fn }

func (f *fakeDataChannel) OnMessage(fn func(msg webrtc.DataChannelMessage)) {
	f.onMessage = fn
}

func (f *fakeDataChannel) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeDataChannel) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

func (f *fakeDataChannel) Close() error {
	if f.state == webrtc.DataChannelStateClosed {
		return errors.New("already closed")
	}
	f.state = webrtc.DataChannelStateClosed
	if f.onClose != nil {
		f.onClose()
	}
	return nil
}

// fakeSignal records what the transport writes to the relay and replays
// frames pushed to inbound.
type fakeSignal struct {
	mu      sync.Mutex
	written [][]byte
	inbound chan []byte
}

func (f *fakeSignal) Read(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-f.inbound:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeSignal) Write(_ context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, payload)
	return nil
}

func (f *fakeSignal) Close() error { return nil }

func (f *fakeSignal) Written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.written...)
}
