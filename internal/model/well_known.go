package model

// Role decides which side of a session owns the simulation.
type Role string

const (
	RoleRunner  Role = "runner"
	RoleTrapper Role = "trapper"
)

func (r Role) String() string { return string(r) }

func (r Role) Valid() bool {
	return r == RoleRunner || r == RoleTrapper
}

// Remote returns the role played by the other peer.
func (r Role) Remote() Role {
	if r == RoleRunner {
		return RoleTrapper
	}
	return RoleRunner
}

// ConnectionMode selects the transport variant. It is chosen once when the
// session starts and never changes afterwards.
type ConnectionMode string

const (
	ModeLoopback ConnectionMode = "loopback"
	ModePeer     ConnectionMode = "peer"
)

func (m ConnectionMode) String() string { return string(m) }

func (m ConnectionMode) Valid() bool {
	return m == ModeLoopback || m == ModePeer
}

// TrapKind names an adversarial event the Trapper can inject.
type TrapKind string

const (
	TrapBomb    TrapKind = "bomb"
	TrapCrack   TrapKind = "crack"
	TrapReverse TrapKind = "reverse"
)

// TrapKinds lists every known trap in a stable order.
var TrapKinds = []TrapKind{TrapBomb, TrapCrack, TrapReverse}

func (k TrapKind) String() string { return string(k) }

func (k TrapKind) Valid() bool {
	switch k {
	case TrapBomb, TrapCrack, TrapReverse:
		return true
	default:
		return false
	}
}
