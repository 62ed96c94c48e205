package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusIdle, StatusPlaying, true},
		{StatusIdle, StatusWon, false},
		{StatusPlaying, StatusWon, true},
		{StatusPlaying, StatusLost, true},
		{StatusPlaying, StatusIdle, false},
		{StatusWon, StatusPlaying, false},
		{StatusLost, StatusWon, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestGameState_SetStatusTerminal(t *testing.T) {
	g := &GameState{Status: StatusPlaying}
	assert.True(t, g.SetStatus(StatusWon))
	assert.False(t, g.SetStatus(StatusLost))
	assert.Equal(t, StatusWon, g.Status)
}

func TestGameState_CloneIsDeep(t *testing.T) {
	g := &GameState{Platforms: []Platform{{ID: 1, X: 10}}}
	c := g.Clone()
	c.Platforms[0].X = 99
	c.Platforms = append(c.Platforms, Platform{ID: 2})

	assert.Equal(t, 10.0, g.Platforms[0].X)
	assert.Len(t, g.Platforms, 1)
}

func TestRole_Remote(t *testing.T) {
	assert.Equal(t, RoleTrapper, RoleRunner.Remote())
	assert.Equal(t, RoleRunner, RoleTrapper.Remote())
	assert.False(t, Role("spectator").Valid())
}
