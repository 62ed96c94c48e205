package action

var (
	// Relay
	defaultRelayAddr = "localhost:5050"

	// Level service
	defaultLevelAddr = "localhost:5051"

	// For TURN server
	defaultTurnPublicIP = "127.0.0.1"
	defaultTurnRealm    = "trapline"
)

const defaultTurnPort = 3478

var defaultAllowedOrigins = []string{"*"}
