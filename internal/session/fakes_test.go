package session

import (
	"context"
	"sync"
	"testing"

	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu          sync.Mutex
	sent        [][]byte
	handler     func([]byte)
	connectErr  error
	disconnects int
}

func (f *fakeTransport) Connect(context.Context, model.Role, string) error { return f.connectErr }

func (f *fakeTransport) Send(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, payload)
}

func (f *fakeTransport) OnMessage(fn func([]byte)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return nil
}

// deliver plays the transport receiving payload from the remote peer.
func (f *fakeTransport) deliver(t *testing.T, payload []byte) {
	t.Helper()
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	require.NotNil(t, handler, "session never registered a message handler, call Join first")
	handler(payload)
}

func (f *fakeTransport) count(et wire.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, p := range f.sent {
		if wire.ParseEventType(p) == et {
			n++
		}
	}
	return n
}

func (f *fakeTransport) last(et wire.EventType) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if wire.ParseEventType(f.sent[i]) == et {
			return f.sent[i]
		}
	}
	return nil
}
