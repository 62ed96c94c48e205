package session

import "time"

// TickSource paces the simulation.
type TickSource interface {
	C() <-chan time.Time
	Stop()
}

type wallClock struct {
	ticker *time.Ticker
}

// NewWallClock ticks rate times per second.
func NewWallClock(rate int) TickSource {
	if rate <= 0 {
		rate = 60
	}
	return &wallClock{ticker: time.NewTicker(time.Second / time.Duration(rate))}
}

func (w *wallClock) C() <-chan time.Time { return w.ticker.C }
func (w *wallClock) Stop()               { w.ticker.Stop() }

// ManualTicks delivers exactly the ticks it is given.
type ManualTicks struct {
	c chan time.Time
}

func NewManualTicks() *ManualTicks {
	return &ManualTicks{c: make(chan time.Time)}
}

// Tick blocks until the session has taken the tick.
func (m *ManualTicks) Tick(now time.Time) { m.c <- now }

func (m *ManualTicks) C() <-chan time.Time { return m.c }
func (m *ManualTicks) Stop()               {}
