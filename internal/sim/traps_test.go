package sim

import (
	"math"
	"testing"

	"github.com/dimspell/trapline/internal/model"
	"github.com/pion/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyTrap_Bomb(t *testing.T) {
	s := newPlaying(floor())
	require.True(t, s.Player.Grounded)

	ok := ApplyTrap(s, model.TrapBomb, randutil.NewMathRandomGenerator())

	assert.True(t, ok)
	assert.Equal(t, BombSpeedX, math.Abs(s.Player.VX))
	assert.Equal(t, BombImpulseY, s.Player.VY)
	assert.False(t, s.Player.Grounded)
}

func TestApplyTrap_CrackIsIdempotent(t *testing.T) {
	platforms := []model.Platform{
		{ID: 1, X: 0, Y: 400, Width: 200, Height: 20},
		{ID: 2, X: 300, Y: 400, Width: 200, Height: 20},
	}
	s := newPlaying(platforms...)

	require.True(t, ApplyTrap(s, model.TrapCrack, nil))
	assert.Equal(t, -1, s.PlatformIndex(1))
	assert.Len(t, s.Platforms, 1)

	after := s.Clone()
	assert.False(t, ApplyTrap(s, model.TrapCrack, nil))
	assert.Equal(t, after, s.Clone())
}

func TestApplyTrap_CrackBeneathAirborneActor(t *testing.T) {
	s := newPlaying(model.Platform{ID: 7, X: 0, Y: 400, Width: 200, Height: 20})
	s.Player.Y = 400 - PlayerHeight - CrackProximity/2
	s.Player.Grounded = false

	assert.True(t, ApplyTrap(s, model.TrapCrack, nil))
	assert.Empty(t, s.Platforms)
}

func TestApplyTrap_SecondCrackSparesPlatformBelow(t *testing.T) {
	platforms := []model.Platform{
		{ID: 1, X: 0, Y: 400, Width: 200, Height: 20},
		{ID: 2, X: 0, Y: 440, Width: 200, Height: 20},
	}
	s := newPlaying(platforms...)

	require.True(t, ApplyTrap(s, model.TrapCrack, nil))
	require.Equal(t, []model.Platform{platforms[1]}, s.Platforms)

	after := s.Clone()
	assert.False(t, ApplyTrap(s, model.TrapCrack, nil))
	assert.Equal(t, after, s.Clone())
}

func TestApplyTrap_CrackOutOfReach(t *testing.T) {
	s := newPlaying(model.Platform{ID: 7, X: 0, Y: 400, Width: 200, Height: 20})
	s.Player.Y = 100

	assert.False(t, ApplyTrap(s, model.TrapCrack, nil))
	assert.Len(t, s.Platforms, 1)
}

func TestApplyTrap_ReverseResetsInsteadOfStacking(t *testing.T) {
	s := newPlaying(floor())

	require.True(t, ApplyTrap(s, model.TrapReverse, nil))
	Step(s, Input{Dir: Right}, frameMs)
	Step(s, Input{Dir: Right}, frameMs)
	require.Less(t, s.Player.ReverseMs, ReverseDurationMs)

	require.True(t, ApplyTrap(s, model.TrapReverse, nil))
	assert.True(t, s.Player.Reversed)
	assert.Equal(t, ReverseDurationMs, s.Player.ReverseMs)
}

func TestApplyTrap_IgnoredOutsidePlaying(t *testing.T) {
	s := NewGame([]model.Platform{floor()}, LevelLength)
	for _, kind := range model.TrapKinds {
		assert.False(t, ApplyTrap(s, kind, randutil.NewMathRandomGenerator()))
	}

	s.SetStatus(model.StatusPlaying)
	s.SetStatus(model.StatusLost)
	assert.False(t, ApplyTrap(s, model.TrapReverse, nil))
	assert.False(t, s.Player.Reversed)
}

func TestApplyTrap_UnknownKind(t *testing.T) {
	s := newPlaying(floor())
	assert.False(t, ApplyTrap(s, model.TrapKind("anvil"), nil))
}
