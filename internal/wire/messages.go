package wire

import (
	"github.com/dimspell/trapline/internal/model"
	"github.com/pion/webrtc/v4"
)

// Message is the envelope of every frame sent over a transport or the relay.
type Message struct {
	From    string    `json:"from,omitempty"`
	Type    EventType `json:"type"`
	Content any       `json:"content,omitempty"`
}

type MessageContent[T any] struct {
	From    string    `json:"from,omitempty"`
	Type    EventType `json:"type"`
	Content T         `json:"content"`
}

type Empty struct{}

type Announce struct {
	Role model.Role `json:"role"`
}

type Start struct {
	LevelLength float64          `json:"levelLength"`
	Platforms   []model.Platform `json:"platforms"`
}

type Trap struct {
	Kind model.TrapKind `json:"kind"`
}

// Description carries an offer or an answer. Role is the sender's role, the
// relay has no addressing so the receiver filters on it.
type Description struct {
	Role        model.Role                `json:"role"`
	Description webrtc.SessionDescription `json:"description"`
}

type Candidate struct {
	Role      model.Role              `json:"role"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// Build composes a typed message in one call.
func Build[T any](msgType EventType, from string, content T) []byte {
	return ComposeTyped(msgType, MessageContent[T]{From: from, Content: content})
}
