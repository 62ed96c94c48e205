package peer

import (
	"context"
	"io"

	"github.com/pion/webrtc/v4"
)

// DataChannel is the part of *webrtc.DataChannel the transport relies on.
type DataChannel interface {
	Label() string
	ReadyState() webrtc.DataChannelState
	OnOpen(f func())
	OnMessage(f func(msg webrtc.DataChannelMessage))
	OnClose(f func())
	Send(data []byte) error
	io.Closer
}

var _ DataChannel = (*webrtc.DataChannel)(nil)

// SignalConn is the ordered, reliable pipe to the signaling relay.
type SignalConn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
	Close() error
}
