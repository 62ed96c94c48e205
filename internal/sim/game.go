package sim

import (
	"github.com/dimspell/trapline/internal/model"
)

// NewGame builds a fresh authoritative state in Idle status with the actor
// standing on the first platform.
func NewGame(platforms []model.Platform, levelLength float64) *model.GameState {
	s := &model.GameState{
		Status:      model.StatusIdle,
		Platforms:   append([]model.Platform(nil), platforms...),
		Revives:     InitialRevives,
		LevelLength: levelLength,
	}
	if len(s.Platforms) > 0 {
		placeOn(&s.Player, s.Platforms[0])
	}
	return s
}

// placeOn puts the actor at rest in the middle of the platform's top.
func placeOn(p *model.PlayerState, plat model.Platform) {
	p.X = plat.X + (plat.Width-PlayerWidth)/2
	p.Y = plat.Y - PlayerHeight
	p.VX = 0
	p.VY = 0
	p.Grounded = true
}
