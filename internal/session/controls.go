package session

import (
	"sync"

	"github.com/dimspell/trapline/internal/sim"
)

// Controls is the Runner's pressed-key set, written by the input layer and
// sampled by the tick.
type Controls struct {
	mu      sync.Mutex
	pressed sim.Pressed
}

func NewControls() *Controls {
	return &Controls{pressed: make(sim.Pressed)}
}

func (c *Controls) Press(k sim.Key) {
	c.mu.Lock()
	c.pressed[k] = true
	c.mu.Unlock()
}

func (c *Controls) Release(k sim.Key) {
	c.mu.Lock()
	delete(c.pressed, k)
	c.mu.Unlock()
}

func (c *Controls) Input() sim.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pressed.Input()
}
