package transport

import (
	"testing"

	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/transport/loopback"
	"github.com/dimspell/trapline/internal/transport/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsVariant(t *testing.T) {
	tr, err := New(Config{Mode: model.ModeLoopback})
	require.NoError(t, err)
	assert.IsType(t, &loopback.Transport{}, tr)

	tr, err = New(Config{Mode: model.ModePeer, Room: "r1"})
	require.NoError(t, err)
	require.IsType(t, &peer.Transport{}, tr)
	assert.Equal(t, "r1", tr.(*peer.Transport).Room)

	_, err = New(Config{Mode: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestDisconnect_NeverConnected(t *testing.T) {
	for _, mode := range []model.ConnectionMode{model.ModeLoopback, model.ModePeer} {
		tr, err := New(Config{Mode: mode})
		require.NoError(t, err)
		assert.NoError(t, tr.Disconnect())
		assert.NoError(t, tr.Disconnect())
	}
}
