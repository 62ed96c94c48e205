package peer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/dimspell/trapline/internal/wire"
)

const (
	SubProtocol = "trapline-signal"
	DefaultRoom = "trapline"

	dialTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second

	// Offers carry every gathered candidate, the default 32KiB is tight.
	readLimit = 1 << 20
)

// Signaler is a websocket connection to the relay, joined to a single room.
type Signaler struct {
	conn *websocket.Conn
}

var _ SignalConn = (*Signaler)(nil)

func DialSignaler(ctx context.Context, relayURL, room string) (*Signaler, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay address %q: %w", relayURL, err)
	}
	if room == "" {
		room = DefaultRoom
	}
	q := u.Query()
	q.Set("room", room)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{
		Subprotocols: []string{SubProtocol},
	})
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(readLimit)
	return &Signaler{conn: conn}, nil
}

func (s *Signaler) Read(ctx context.Context) ([]byte, error) {
	_, payload, err := s.conn.Read(ctx)
	return payload, err
}

func (s *Signaler) Write(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(ctx, frameType(wire.DefaultCodec), payload)
}

func frameType(codec *wire.Codec) websocket.MessageType {
	if codec.Binary {
		return websocket.MessageBinary
	}
	return websocket.MessageText
}

func (s *Signaler) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
