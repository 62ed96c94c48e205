package wire

import (
	"io"
	"testing"

	"github.com/dimspell/trapline/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() model.GameState {
	return model.GameState{
		Status: model.StatusPlaying,
		Platforms: []model.Platform{
			{ID: 1, X: 0, Y: 400, Width: 300, Height: 20},
			{ID: 2, X: 380.5, Y: 360.25, Width: 180, Height: 20},
		},
		Player: model.PlayerState{
			X: 120.125, Y: 368, VX: 0.28, VY: -0.1,
			Grounded: false, Reversed: true, ReverseMs: 1234.5,
		},
		Revives:     2,
		ElapsedMs:   98765.4321,
		LevelLength: 4000,
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, codec := range []*Codec{NewJSONCodec(), NewCBORCodec()} {
		t.Run(codec.Name, func(t *testing.T) {
			prev := DefaultCodec
			DefaultCodec = codec
			t.Cleanup(func() { DefaultCodec = prev })

			want := sampleState()
			payload := Build(StateSnapshot, "runner-1", want)

			et, msg, err := DecodeTyped[model.GameState](payload)
			require.NoError(t, err)
			assert.Equal(t, StateSnapshot, et)
			assert.Equal(t, "runner-1", msg.From)
			assert.Equal(t, want, msg.Content)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	_, _, err := DecodeTyped[Empty](nil)
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	_, _, err = DecodeTyped[Empty]([]byte{0xff, '{', '}'})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, _, err = DecodeTyped[model.GameState]([]byte{byte(StateSnapshot), '{', 'x'})
	assert.Error(t, err)
}

func TestParseEventType(t *testing.T) {
	assert.Equal(t, EventType(0), ParseEventType(nil))
	assert.Equal(t, TrapTrigger, ParseEventType(Build(TrapTrigger, "", Trap{Kind: model.TrapBomb})))
	assert.True(t, SignalCandidate.IsSignal())
	assert.False(t, Chat.IsSignal())
	assert.Equal(t, "Unknown", EventType(99).String())
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("cbor")
	require.NoError(t, err)
	assert.Equal(t, "cbor", c.Name)
	assert.True(t, c.Binary)
	assert.False(t, NewJSONCodec().Binary)

	_, err = CodecByName("xml")
	assert.Error(t, err)
}
