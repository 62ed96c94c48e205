package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dimspell/trapline/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trapline.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func noEnv() env.Options {
	return env.Options{Prefix: EnvPrefix, Environment: map[string]string{}}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Mode = model.ModePeer
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
role = "trapper"
mode = "peer"
room = "lobby-7"
ice_servers = ["stun:127.0.0.1:3478", "turn:127.0.0.1:3478?transport=udp"]
ice_username = "runner"
ice_credential = "secret"
level_timeout = "750ms"
`)

	cfg, err := load(path, noEnv())
	require.NoError(t, err)

	assert.Equal(t, model.RoleTrapper, cfg.Role)
	assert.Equal(t, model.ModePeer, cfg.Mode)
	assert.Equal(t, "lobby-7", cfg.Room)
	assert.Equal(t, 750*time.Millisecond, cfg.LevelTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().RelayURL, cfg.RelayURL)
	assert.Equal(t, 60, cfg.TickRate)
	require.NoError(t, cfg.Validate())

	servers := cfg.WebRTCICEServers()
	require.Len(t, servers, 2)
	assert.Empty(t, servers[0].Username)
	assert.Equal(t, "runner", servers[1].Username)
	assert.Equal(t, "secret", servers[1].Credential)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, `
mode = "peer"
tick_rate = 30
`)
	opts := noEnv()
	opts.Environment = map[string]string{
		"TRAPLINE_MODE":        "loopback",
		"TRAPLINE_CODEC":       "cbor",
		"TRAPLINE_ICE_SERVERS": "stun:a.example:3478,stun:b.example:3478",
	}

	cfg, err := load(path, opts)
	require.NoError(t, err)
	assert.Equal(t, model.ModeLoopback, cfg.Mode)
	assert.Equal(t, "cbor", cfg.Codec)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, []string{"stun:a.example:3478", "stun:b.example:3478"}, cfg.ICEServers)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := load(writeFile(t, `mode = `), noEnv())
	assert.Error(t, err)

	_, err = load(writeFile(t, `colour = "red"`), noEnv())
	assert.ErrorContains(t, err, "colour")

	_, err = load(writeFile(t, `level_timeout = "soon"`), noEnv())
	assert.Error(t, err)

	_, err = load(filepath.Join(t.TempDir(), "missing.toml"), noEnv())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"role", func(c *Config) { c.Role = "spectator" }},
		{"mode", func(c *Config) { c.Mode = "carrier-pigeon" }},
		{"codec", func(c *Config) { c.Codec = "xml" }},
		{"tick rate", func(c *Config) { c.TickRate = 0 }},
		{"level timeout", func(c *Config) { c.LevelTimeout = 0 }},
		{"level url", func(c *Config) { c.LevelURL = "ftp://levels" }},
		{"relay url", func(c *Config) { c.Mode = model.ModePeer; c.RelayURL = "http://relay" }},
		{"ice server", func(c *Config) { c.Mode = model.ModePeer; c.ICEServers = []string{"http://nope"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
