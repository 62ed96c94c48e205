package sim

// Direction is the discrete horizontal input.
type Direction int

const (
	Left  Direction = -1
	None  Direction = 0
	Right Direction = 1
)

type Input struct {
	Dir  Direction
	Jump bool
}

// Key is a pressed control on the Runner side.
type Key uint8

const (
	KeyLeft Key = iota + 1
	KeyRight
	KeyJump
)

// Pressed is the set of currently held keys.
type Pressed map[Key]bool

// Input resolves the held keys into a single input. Holding both directions
// cancels out.
func (p Pressed) Input() Input {
	var in Input
	if p[KeyLeft] {
		in.Dir--
	}
	if p[KeyRight] {
		in.Dir++
	}
	in.Jump = p[KeyJump]
	return in
}
