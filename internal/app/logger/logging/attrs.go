package logging

import (
	"fmt"
	"log/slog"
)

func Error(err error) slog.Attr {
	if err == nil {
		slog.Error("Going to log nil error")
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

func PeerID(peerID string) slog.Attr {
	return slog.String("peerId", peerID)
}

func Role(role fmt.Stringer) slog.Attr {
	return slog.String("role", role.String())
}

func Kind(kind fmt.Stringer) slog.Attr {
	return slog.String("kind", kind.String())
}

func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}
