package session

import "sync"

// Inbox collects raw inbound messages between two ticks. Push is called from
// transport goroutines, Drain from the tick.
type Inbox struct {
	mu   sync.Mutex
	msgs [][]byte
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (q *Inbox) Push(payload []byte) {
	q.mu.Lock()
	q.msgs = append(q.msgs, payload)
	q.mu.Unlock()
}

// Drain returns the queued messages in arrival order and empties the queue.
func (q *Inbox) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.msgs
	q.msgs = nil
	return msgs
}
