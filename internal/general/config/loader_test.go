package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ws://localhost:5000/ws", cfg.Socket.URL)
	assert.Equal(t, 20*time.Second, cfg.Socket.HandshakeTimeout)
	assert.Equal(t, time.Second, cfg.Socket.BackoffBase)
	assert.Equal(t, 5, cfg.Socket.MaxReconnects)
	assert.Equal(t, EtaSourceHeuristic, cfg.Directions.EtaSource)
	assert.Equal(t, 4*time.Second, cfg.Tracking.MapUpdateInterval)
}

func TestLoadLayersEnvOverDefaults(t *testing.T) {
	t.Setenv("GHARSEWA_SOCKET__URL", "wss://rt.gharsewa.example/ws")
	t.Setenv("GHARSEWA_SOCKET__MAX_RECONNECTS", "3")
	t.Setenv("GHARSEWA_API__TIMEOUT", "2s")
	t.Setenv("GHARSEWA_DIRECTIONS__ETA_SOURCE", "provider")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wss://rt.gharsewa.example/ws", cfg.Socket.URL)
	assert.Equal(t, 3, cfg.Socket.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, EtaSourceProvider, cfg.Directions.EtaSource)

	// untouched keys keep their defaults
	assert.Equal(t, 30*time.Second, cfg.Socket.BackoffCap)
}

func TestLoadLayersEnvOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("socket:\n  url: wss://from-file.example/ws\napi:\n  token: file-token\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("GHARSEWA_CONFIG", path)
	t.Setenv("GHARSEWA_SOCKET__URL", "wss://from-env.example/ws")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "wss://from-env.example/ws", cfg.Socket.URL, "env must win over the file")
	assert.Equal(t, "file-token", cfg.API.Token, "file must win over defaults")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Setenv("GHARSEWA_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := New()
	cfg.Socket.URL = " "
	cfg.Tracking.MapUpdateInterval = 10 * time.Second
	cfg.Directions.EtaSource = "vibes"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "socket.url is required")
	assert.ErrorContains(t, err, "tracking.map_update_interval must be between 3s and 5s")
	assert.ErrorContains(t, err, "directions.eta_source must be heuristic or provider")
}

func TestLoadRejectsOutOfRangeInterval(t *testing.T) {
	t.Setenv("GHARSEWA_TRACKING__MAP_UPDATE_INTERVAL", "10s")
	_, err := Load()
	assert.ErrorContains(t, err, "map_update_interval")
}
