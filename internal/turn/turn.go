// Package turn runs an optional TURN server next to the signaling relay, for
// peers that cannot reach each other directly.
package turn

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strconv"

	"github.com/pion/stun/v2"
	"github.com/pion/turn/v3"
)

type Config struct {
	// IP address peers use to reach the server.
	PublicIPAddr string

	Port int

	Realm string

	// Credentials as "user=pass,user=pass".
	Users string
}

func DefaultConfig() Config {
	return Config{
		PublicIPAddr: "127.0.0.1",
		Port:         3478,
		Realm:        "trapline",
	}
}

var credentials = regexp.MustCompile(`(\w+)=(\w+)`)

// ParseUsers turns the Users string into TURN auth keys.
func ParseUsers(users, realm string) (map[string][]byte, error) {
	matches := credentials.FindAllStringSubmatch(users, -1)
	if len(matches) == 0 {
		return nil, errors.New("no TURN credentials configured")
	}
	keys := make(map[string][]byte, len(matches))
	for _, kv := range matches {
		keys[kv[1]] = turn.GenerateAuthKey(kv[1], realm, kv[2])
	}
	return keys, nil
}

func Start(cfg Config) (*turn.Server, error) {
	publicIP := net.ParseIP(cfg.PublicIPAddr)
	if publicIP == nil {
		return nil, fmt.Errorf("invalid TURN public address %q", cfg.PublicIPAddr)
	}
	keys, err := ParseUsers(cfg.Users, cfg.Realm)
	if err != nil {
		return nil, err
	}

	udpListener, err := net.ListenPacket("udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(cfg.Port)))
	if err != nil {
		return nil, fmt.Errorf("could not create TURN listener: %w", err)
	}

	s, err := turn.NewServer(turn.ServerConfig{
		Realm: cfg.Realm,
		AuthHandler: func(username string, realm string, srcAddr net.Addr) ([]byte, bool) { // nolint: revive
			key, ok := keys[username]
			return key, ok
		},
		PacketConnConfigs: []turn.PacketConnConfig{
			{
				PacketConn: &stunLogger{udpListener},
				RelayAddressGenerator: &turn.RelayAddressGeneratorStatic{
					RelayAddress: publicIP,
					Address:      "0.0.0.0",
				},
			},
		},
	})
	if err != nil {
		_ = udpListener.Close()
		return nil, fmt.Errorf("could not start TURN server: %w", err)
	}

	slog.Info("TURN server is running", "port", cfg.Port, "publicIP", cfg.PublicIPAddr, "realm", cfg.Realm)
	return s, nil
}

// stunLogger wraps a PacketConn and logs the STUN packets going through it.
type stunLogger struct {
	net.PacketConn
}

func (s *stunLogger) WriteTo(p []byte, addr net.Addr) (n int, err error) {
	if n, err = s.PacketConn.WriteTo(p, addr); err == nil && stun.IsMessage(p) {
		msg := &stun.Message{Raw: p}
		if err = msg.Decode(); err != nil {
			return
		}
		slog.Debug("Outbound STUN", "message", msg.String(), "addr", addr.String())
	}
	return
}

func (s *stunLogger) ReadFrom(p []byte) (n int, addr net.Addr, err error) {
	if n, addr, err = s.PacketConn.ReadFrom(p); err == nil && stun.IsMessage(p[:n]) {
		msg := &stun.Message{Raw: append([]byte(nil), p[:n]...)}
		if err = msg.Decode(); err != nil {
			return
		}
		slog.Debug("Inbound STUN", "message", msg.String(), "addr", addr.String())
	}
	return
}
