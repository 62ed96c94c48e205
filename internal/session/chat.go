package session

import (
	"strings"
	"sync"
	"time"

	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/google/uuid"
)

// ChatLog is append-only. Messages seen before, by id, are ignored.
type ChatLog struct {
	mu   sync.Mutex
	seen map[string]struct{}
	msgs []model.ChatMessage
}

func NewChatLog() *ChatLog {
	return &ChatLog{seen: make(map[string]struct{})}
}

func (l *ChatLog) Append(msg model.ChatMessage) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[msg.ID]; ok {
		return false
	}
	l.seen[msg.ID] = struct{}{}
	l.msgs = append(l.msgs, msg)
	return true
}

func (l *ChatLog) Messages() []model.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.ChatMessage(nil), l.msgs...)
}

// SendChat appends a message from the local role to the log and sends it.
func (s *Session) SendChat(text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == ScreenLeft {
		return model.ChatMessage{}, ErrSessionClosed
	}

	msg := model.ChatMessage{
		ID:        uuid.New().String(),
		Sender:    s.role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
	s.chat.Append(msg)
	s.send(wire.Chat, msg)
	return msg, nil
}
