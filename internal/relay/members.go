package relay

import (
	"sync"

	"github.com/coder/websocket"
)

type Members struct {
	sync.RWMutex

	ws map[string]*websocket.Conn
}

func NewMembers() *Members {
	return &Members{ws: make(map[string]*websocket.Conn)}
}

func (m *Members) Set(id string, member *websocket.Conn) {
	m.Lock()
	if _, exists := m.ws[id]; !exists {
		m.ws[id] = member
	}
	m.Unlock()
}

func (m *Members) Delete(id string) {
	m.Lock()
	delete(m.ws, id)
	m.Unlock()
}

func (m *Members) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.ws)
}

// Range calls f for every member but skip, until f returns false.
func (m *Members) Range(skip string, f func(id string, ws *websocket.Conn) bool) {
	m.RLock()
	defer m.RUnlock()
	for id, member := range m.ws {
		if id == skip {
			continue
		}
		if next := f(id, member); !next {
			return
		}
	}
}
