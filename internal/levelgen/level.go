// Package levelgen obtains level geometry from the level-generation service
// and substitutes a fixed level whenever the service cannot provide one.
package levelgen

import (
	"errors"
	"fmt"

	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/sim"
)

var ErrInvalidLevel = errors.New("invalid level")

type Level struct {
	LevelLength float64          `json:"levelLength"`
	Platforms   []model.Platform `json:"platforms"`
}

// Validate checks that the level can be played: platforms are ordered by X,
// have unique ids and positive sizes, stay above the death line and the last
// one reaches sim.LevelLength. A missing length is taken as sim.LevelLength,
// any other length is rejected.
func (l *Level) Validate() error {
	switch l.LevelLength {
	case 0:
		l.LevelLength = sim.LevelLength
	case sim.LevelLength:
	default:
		return fmt.Errorf("%w: level length %.0f, want %.0f", ErrInvalidLevel, l.LevelLength, sim.LevelLength)
	}
	if len(l.Platforms) == 0 {
		return fmt.Errorf("%w: no platforms", ErrInvalidLevel)
	}

	ids := make(map[int]struct{}, len(l.Platforms))
	for i, p := range l.Platforms {
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("%w: duplicate platform id %d", ErrInvalidLevel, p.ID)
		}
		ids[p.ID] = struct{}{}

		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: platform %d has no area", ErrInvalidLevel, p.ID)
		}
		if p.X < 0 || p.Y < 0 || p.Y >= sim.DeathY {
			return fmt.Errorf("%w: platform %d is out of bounds", ErrInvalidLevel, p.ID)
		}
		if i > 0 && p.X < l.Platforms[i-1].X {
			return fmt.Errorf("%w: platform %d is out of order", ErrInvalidLevel, p.ID)
		}
	}

	if last := l.Platforms[len(l.Platforms)-1]; last.Right() < l.LevelLength {
		return fmt.Errorf("%w: platforms end at %.0f before %.0f", ErrInvalidLevel, last.Right(), l.LevelLength)
	}
	return nil
}

// Fallback returns the fixed level used when generation fails. Each call
// returns a fresh copy.
func Fallback() Level {
	const y, h = 560.0, 24.0
	return Level{
		LevelLength: sim.LevelLength,
		Platforms: []model.Platform{
			{ID: 0, X: 0, Y: y, Width: 420, Height: h},
			{ID: 1, X: 520, Y: 520, Width: 260, Height: h},
			{ID: 2, X: 880, Y: 480, Width: 240, Height: h},
			{ID: 3, X: 1220, Y: 520, Width: 300, Height: h},
			{ID: 4, X: 1620, Y: y, Width: 260, Height: h},
			{ID: 5, X: 1980, Y: 500, Width: 220, Height: h},
			{ID: 6, X: 2300, Y: 460, Width: 260, Height: h},
			{ID: 7, X: 2660, Y: 500, Width: 240, Height: h},
			{ID: 8, X: 3000, Y: 540, Width: 300, Height: h},
			{ID: 9, X: 3400, Y: 500, Width: 260, Height: h},
			{ID: 10, X: 3760, Y: 540, Width: 300, Height: h},
		},
	}
}
