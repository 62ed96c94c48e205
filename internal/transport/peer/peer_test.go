package peer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dimspell/trapline/internal/app/logger"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/relay/relaytest"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.SetDiscardLogger()
}

type recorder struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (r *recorder) push(p []byte) {
	r.mu.Lock()
	r.msgs = append(r.msgs, p)
	r.mu.Unlock()
}

func (r *recorder) has(et wire.EventType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if wire.ParseEventType(m) == et {
			return true
		}
	}
	return false
}

func TestSend_DroppedUntilOpen(t *testing.T) {
	tr := New()
	tr.Send(wire.Build(wire.PresencePing, tr.ID(), wire.Empty{}))

	dc := newFakeDataChannel(webrtc.DataChannelStateConnecting)
	tr.attach(dc)
	tr.Send(wire.Build(wire.PresencePing, tr.ID(), wire.Empty{}))
	assert.Empty(t, dc.Sent())

	dc.state = webrtc.DataChannelStateOpen
	payload := wire.Build(wire.Chat, tr.ID(), model.ChatMessage{ID: "1", Text: "hi"})
	tr.Send(payload)
	assert.Equal(t, [][]byte{payload}, dc.Sent())
}

func TestAttach_OpenIsReportedAsPresence(t *testing.T) {
	tr := New()
	rec := &recorder{}
	tr.OnMessage(rec.push)

	dc := newFakeDataChannel(webrtc.DataChannelStateConnecting)
	tr.attach(dc)

	dc.state = webrtc.DataChannelStateOpen
	dc.onOpen()
	assert.True(t, rec.has(wire.PresencePing))

	dc.onMessage(webrtc.DataChannelMessage{Data: wire.Build(wire.JoinAck, "remote", wire.Empty{})})
	assert.True(t, rec.has(wire.JoinAck))
}

func TestDisconnect_Idempotent(t *testing.T) {
	tr := New()
	assert.NoError(t, tr.Disconnect())

	dc := newFakeDataChannel(webrtc.DataChannelStateOpen)
	tr.attach(dc)
	assert.NoError(t, tr.Disconnect())
	assert.Equal(t, webrtc.DataChannelStateClosed, dc.state)
	assert.NoError(t, tr.Disconnect())

	// Nothing is sent after a disconnect.
	tr.Send([]byte{byte(wire.PresencePing)})
	assert.Empty(t, dc.Sent())
}

func TestConnect_RelayUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tr := New()
	err := tr.Connect(ctx, model.RoleRunner, "ws://127.0.0.1:1/signal")
	assert.Error(t, err)
	assert.NoError(t, tr.Disconnect())
}

func loopbackAPI() *webrtc.API {
	se := webrtc.SettingEngine{}
	se.SetIncludeLoopbackCandidate(true)
	se.SetNetworkTypes([]webrtc.NetworkType{webrtc.NetworkTypeUDP4})
	return webrtc.NewAPI(webrtc.WithSettingEngine(se))
}

func TestPeer_NegotiatesThroughRelay(t *testing.T) {
	if testing.Short() {
		t.Skip("opens real sockets")
	}

	_, relayURL := relaytest.Start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	runner := New()
	runner.API = loopbackAPI()
	runnerIn := &recorder{}
	runner.OnMessage(runnerIn.push)

	trapper := New()
	trapper.API = loopbackAPI()
	trapperIn := &recorder{}
	trapper.OnMessage(trapperIn.push)

	// The Runner joins first, the Trapper's announcement triggers the
	// repeated offer.
	require.NoError(t, runner.Connect(ctx, model.RoleRunner, relayURL))
	defer runner.Disconnect()
	assert.ErrorIs(t, runner.Connect(ctx, model.RoleRunner, relayURL), ErrAlreadyConnected)

	require.NoError(t, trapper.Connect(ctx, model.RoleTrapper, relayURL))
	defer trapper.Disconnect()

	require.Eventually(t, func() bool {
		return runnerIn.has(wire.PresencePing) && trapperIn.has(wire.PresencePing)
	}, 10*time.Second, 20*time.Millisecond, "data channel never opened")

	// The channel is unreliable, keep sending until something lands.
	require.Eventually(t, func() bool {
		runner.Send(wire.Build(wire.Chat, runner.ID(), model.ChatMessage{ID: "1", Sender: model.RoleRunner, Text: "gl"}))
		return trapperIn.has(wire.Chat)
	}, 5*time.Second, 50*time.Millisecond)

	assert.NoError(t, trapper.Disconnect())
	assert.NoError(t, runner.Disconnect())
}
