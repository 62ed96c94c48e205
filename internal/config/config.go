// Package config resolves the settings of a peer: built-in defaults, then an
// optional TOML file, then TRAPLINE_* environment variables. Command-line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/dimspell/trapline/internal/model"
	"github.com/dimspell/trapline/internal/wire"
	"github.com/pion/stun/v2"
	"github.com/pion/webrtc/v4"
)

const EnvPrefix = "TRAPLINE_"

type Config struct {
	Role model.Role           `env:"ROLE"`
	Mode model.ConnectionMode `env:"MODE"`

	// Channel is the loopback channel name.
	Channel string `env:"CHANNEL"`

	RelayURL string `env:"RELAY_URL"`
	Room     string `env:"ROOM"`

	ICEServers    []string `env:"ICE_SERVERS" envSeparator:","`
	ICEUsername   string   `env:"ICE_USERNAME"`
	ICECredential string   `env:"ICE_CREDENTIAL"`

	LevelURL     string        `env:"LEVEL_URL"`
	LevelTimeout time.Duration `env:"LEVEL_TIMEOUT"`

	Codec       string `env:"CODEC"`
	TickRate    int    `env:"TICK_RATE"`
	MetricsAddr string `env:"METRICS_ADDR"`
}

func Default() Config {
	return Config{
		Mode:         model.ModeLoopback,
		Channel:      "trapline",
		RelayURL:     "ws://localhost:5050/signal",
		Room:         "trapline",
		ICEServers:   []string{"stun:stun.l.google.com:19302"},
		LevelTimeout: 3 * time.Second,
		Codec:        "json",
		TickRate:     60,
	}
}

// fileConfig maps the TOML keys.
type fileConfig struct {
	Role          string   `toml:"role"`
	Mode          string   `toml:"mode"`
	Channel       string   `toml:"channel"`
	RelayURL      string   `toml:"relay_url"`
	Room          string   `toml:"room"`
	ICEServers    []string `toml:"ice_servers"`
	ICEUsername   string   `toml:"ice_username"`
	ICECredential string   `toml:"ice_credential"`
	LevelURL      string   `toml:"level_url"`
	LevelTimeout  string   `toml:"level_timeout"`
	Codec         string   `toml:"codec"`
	TickRate      int      `toml:"tick_rate"`
	MetricsAddr   string   `toml:"metrics_addr"`
}

// Load resolves the configuration from defaults, the file at path (skipped
// when empty) and the process environment.
func Load(path string) (Config, error) {
	return load(path, env.Options{Prefix: EnvPrefix})
}

func load(path string, opts env.Options) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (cfg *Config) overlayFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("role") {
		cfg.Role = model.Role(strings.TrimSpace(raw.Role))
	}
	if meta.IsDefined("mode") {
		cfg.Mode = model.ConnectionMode(strings.TrimSpace(raw.Mode))
	}
	if meta.IsDefined("channel") {
		cfg.Channel = strings.TrimSpace(raw.Channel)
	}
	if meta.IsDefined("relay_url") {
		cfg.RelayURL = strings.TrimSpace(raw.RelayURL)
	}
	if meta.IsDefined("room") {
		cfg.Room = strings.TrimSpace(raw.Room)
	}
	if meta.IsDefined("ice_servers") {
		cfg.ICEServers = raw.ICEServers
	}
	if meta.IsDefined("ice_username") {
		cfg.ICEUsername = raw.ICEUsername
	}
	if meta.IsDefined("ice_credential") {
		cfg.ICECredential = raw.ICECredential
	}
	if meta.IsDefined("level_url") {
		cfg.LevelURL = strings.TrimSpace(raw.LevelURL)
	}
	if meta.IsDefined("level_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.LevelTimeout))
		if err != nil {
			return fmt.Errorf("load config: level_timeout: %w", err)
		}
		cfg.LevelTimeout = d
	}
	if meta.IsDefined("codec") {
		cfg.Codec = strings.TrimSpace(raw.Codec)
	}
	if meta.IsDefined("tick_rate") {
		cfg.TickRate = raw.TickRate
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Role != "" && !cfg.Role.Valid() {
		errs = append(errs, fmt.Errorf("unknown role %q", cfg.Role))
	}
	if !cfg.Mode.Valid() {
		errs = append(errs, fmt.Errorf("unknown connection mode %q", cfg.Mode))
	}
	if _, err := wire.CodecByName(cfg.Codec); err != nil {
		errs = append(errs, err)
	}
	if cfg.TickRate < 1 || cfg.TickRate > 240 {
		errs = append(errs, fmt.Errorf("tick rate %d out of range 1..240", cfg.TickRate))
	}
	if cfg.LevelTimeout <= 0 {
		errs = append(errs, errors.New("level timeout must be positive"))
	}
	if cfg.LevelURL != "" {
		if u, err := url.Parse(cfg.LevelURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("invalid level service address %q", cfg.LevelURL))
		}
	}

	if cfg.Mode == model.ModePeer {
		if u, err := url.Parse(cfg.RelayURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, fmt.Errorf("invalid relay address %q", cfg.RelayURL))
		}
		for _, raw := range cfg.ICEServers {
			if _, err := stun.ParseURI(raw); err != nil {
				errs = append(errs, fmt.Errorf("invalid ICE server %q: %w", raw, err))
			}
		}
	}
	return errors.Join(errs...)
}

// WebRTCICEServers converts the configured URLs. Credentials are attached to
// TURN servers only.
func (cfg *Config) WebRTCICEServers() []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(cfg.ICEServers))
	for _, raw := range cfg.ICEServers {
		server := webrtc.ICEServer{URLs: []string{raw}}
		if u, err := stun.ParseURI(raw); err == nil && (u.Scheme == stun.SchemeTypeTURN || u.Scheme == stun.SchemeTypeTURNS) {
			server.Username = cfg.ICEUsername
			server.Credential = cfg.ICECredential
		}
		servers = append(servers, server)
	}
	return servers
}
