package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/fxamacker/cbor/v2"
)

var DefaultCodec = NewJSONCodec()

var ErrUnknownEvent = errors.New("unknown event type")

type Codec struct {
	Name      string
	Binary    bool // frames are not valid UTF-8 text
	Marshal   func(v any) ([]byte, error)
	Unmarshal func(data []byte, v any) error
}

func NewJSONCodec() *Codec {
	return &Codec{
		Name:      "json",
		Marshal:   json.Marshal,
		Unmarshal: json.Unmarshal,
	}
}

func NewCBORCodec() *Codec {
	return &Codec{
		Name:      "cbor",
		Binary:    true,
		Marshal:   cbor.Marshal,
		Unmarshal: cbor.Unmarshal,
	}
}

// CodecByName resolves the codec configured for a session.
func CodecByName(name string) (*Codec, error) {
	switch name {
	case "", "json":
		return NewJSONCodec(), nil
	case "cbor":
		return NewCBORCodec(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
}

// Compose encodes a message prefixed with a single byte holding its type.
func Compose(msgType EventType, msg Message) []byte {
	msg.Type = msgType

	payload := MustEncode(msg)
	payload = append([]byte{byte(msgType)}, payload...)
	return payload
}

func ComposeTyped[T any](msgType EventType, msg MessageContent[T]) []byte {
	msg.Type = msgType

	payload := MustEncode(msg)
	payload = append([]byte{byte(msgType)}, payload...)
	return payload
}

func MustEncode(m any) []byte {
	out, err := Encode(m)
	if err != nil {
		panic(err)
	}
	return out
}

func Encode(m any) ([]byte, error) {
	out, err := DefaultCodec.Marshal(m)
	if err != nil {
		slog.Error("Could not marshal the message", logging.Error(err))
		return nil, err
	}
	return out, nil
}

func DecodeTyped[T any](payload []byte) (et EventType, m MessageContent[T], err error) {
	if len(payload) == 0 {
		return et, m, io.ErrShortBuffer
	}
	et = EventType(payload[0])
	if !et.Valid() {
		return 0, m, ErrUnknownEvent
	}
	if err = DefaultCodec.Unmarshal(payload[1:], &m); err != nil {
		return 0, m, err
	}
	return et, m, nil
}

func ParseEventType(payload []byte) EventType {
	if len(payload) == 0 {
		return 0
	}
	return EventType(payload[0])
}
