package sim

import "time"

// Units: positions in pixels, time in milliseconds, velocities in px/ms.
const (
	MaxStepMs         = 50.0
	Gravity           = 0.0018
	JumpImpulse       = -0.62
	MoveSpeed         = 0.28
	MaxFallSpeed      = 1.1
	LevelLength       = 4000.0
	DeathY            = 720.0
	PlayerWidth       = 24.0
	PlayerHeight      = 32.0
	InitialRevives    = 3
	ReverseDurationMs = 4000.0
	BombSpeedX        = 0.5
	BombImpulseY      = -0.55
	CrackProximity    = 4.0 // feet within this distance of a top count as on it
)

// Sender-side trap cooldowns and the presence announce interval.
const (
	BombCooldown     = 5 * time.Second
	CrackCooldown    = 8 * time.Second
	ReverseCooldown  = 10 * time.Second
	PresenceInterval = 2 * time.Second
)
