package model

// Status is the progression of a game. Idle moves to Playing, Playing moves
// to Won or Lost, and the terminal states never change again.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

func (s Status) String() string { return string(s) }

func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// CanTransition reports whether the status may move from s to next.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusIdle:
		return next == StatusPlaying
	case StatusPlaying:
		return next == StatusWon || next == StatusLost
	default:
		return false
	}
}

// Platform is a piece of static level geometry. X and Y mark the top-left
// corner, Y grows downwards.
type Platform struct {
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (p Platform) Right() float64 { return p.X + p.Width }

type PlayerState struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`

	Grounded bool `json:"grounded"`

	// Reversed inverts the horizontal input until ReverseMs runs out.
	Reversed  bool    `json:"reversed"`
	ReverseMs float64 `json:"reverseMs"`
}

// GameState is the aggregate replicated from the Runner to the Trapper.
type GameState struct {
	Status      Status      `json:"status"`
	Platforms   []Platform  `json:"platforms"`
	Player      PlayerState `json:"player"`
	Revives     int         `json:"revives"`
	ElapsedMs   float64     `json:"elapsedMs"`
	LevelLength float64     `json:"levelLength"`
}

// SetStatus moves the game to next if the progression allows it.
func (g *GameState) SetStatus(next Status) bool {
	if !g.Status.CanTransition(next) {
		return false
	}
	g.Status = next
	return true
}

// Clone returns a deep copy that shares no memory with g.
func (g *GameState) Clone() GameState {
	out := *g
	if g.Platforms != nil {
		out.Platforms = make([]Platform, len(g.Platforms))
		copy(out.Platforms, g.Platforms)
	}
	return out
}

// PlatformIndex returns the position of the platform with the given id or -1.
func (g *GameState) PlatformIndex(id int) int {
	for i, p := range g.Platforms {
		if p.ID == id {
			return i
		}
	}
	return -1
}
