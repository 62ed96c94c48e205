package wire

type EventType uint

const (
	_ EventType = iota
	PresencePing
	JoinAnnounce
	JoinAck
	Chat
	StartSession
	StateSnapshot
	TrapTrigger
	SignalOffer
	SignalAnswer
	SignalCandidate
)

func (e EventType) String() string {
	switch e {
	case PresencePing:
		return "PresencePing"
	case JoinAnnounce:
		return "JoinAnnounce"
	case JoinAck:
		return "JoinAck"
	case Chat:
		return "Chat"
	case StartSession:
		return "StartSession"
	case StateSnapshot:
		return "StateSnapshot"
	case TrapTrigger:
		return "TrapTrigger"
	case SignalOffer:
		return "SignalOffer"
	case SignalAnswer:
		return "SignalAnswer"
	case SignalCandidate:
		return "SignalCandidate"
	default:
		return "Unknown"
	}
}

func (e EventType) Valid() bool {
	return e >= PresencePing && e <= SignalCandidate
}

// IsSignal reports whether the event belongs to the negotiation phase.
func (e EventType) IsSignal() bool {
	return e == SignalOffer || e == SignalAnswer || e == SignalCandidate
}
