package config

import (
	"errors"
	"strings"
	"time"
)

// EtaSource selects which duration a tracking screen displays when both the
// distance heuristic and a provider route are available. The two disagree in
// the field, so the precedence is configuration, not a guess.
type EtaSource string

const (
	EtaSourceHeuristic EtaSource = "heuristic" // ceil(km * 2) minutes
	EtaSourceProvider  EtaSource = "provider"  // directions provider duration
)

// Config holds everything the client engine needs to run.
type Config struct {
	Socket struct {
		URL              string        `koanf:"url"`               // ws:// or wss:// endpoint
		HandshakeTimeout time.Duration `koanf:"handshake_timeout"` // transport-level connect timeout
		BackoffBase      time.Duration `koanf:"backoff_base"`      // first reconnect delay
		BackoffCap       time.Duration `koanf:"backoff_cap"`       // upper bound on a single delay
		MaxReconnects    int           `koanf:"max_reconnects"`    // attempts before giving up
	} `koanf:"socket"`

	API struct {
		BaseURL string        `koanf:"base_url"`
		Token   string        `koanf:"token"` // bearer token, also feeds the authenticate frame
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"api"`

	Directions struct {
		BaseURL     string    `koanf:"base_url"`
		AccessToken string    `koanf:"access_token"`
		Profile     string    `koanf:"profile"`
		EtaSource   EtaSource `koanf:"eta_source"`
	} `koanf:"directions"`

	Tracking struct {
		MapUpdateInterval time.Duration `koanf:"map_update_interval"` // 3s..5s
		RefetchDebounce   time.Duration `koanf:"refetch_debounce"`
		PollInterval      time.Duration `koanf:"poll_interval"`
	} `koanf:"tracking"`

	Redis struct {
		Addr string `koanf:"addr"` // empty disables the notification mirror
	} `koanf:"redis"`
}

// New returns a Config populated with defaults. Load layers file and env on
// top of this.
func New() *Config {
	cfg := &Config{}

	cfg.Socket.URL = "ws://localhost:5000/ws"
	cfg.Socket.HandshakeTimeout = 20 * time.Second
	cfg.Socket.BackoffBase = time.Second
	cfg.Socket.BackoffCap = 30 * time.Second
	cfg.Socket.MaxReconnects = 5

	cfg.API.BaseURL = "http://localhost:5000"
	cfg.API.Timeout = 10 * time.Second

	cfg.Directions.BaseURL = "https://api.mapbox.com"
	cfg.Directions.Profile = "driving-traffic"
	cfg.Directions.EtaSource = EtaSourceHeuristic

	cfg.Tracking.MapUpdateInterval = 4 * time.Second
	cfg.Tracking.RefetchDebounce = 500 * time.Millisecond
	cfg.Tracking.PollInterval = 30 * time.Second

	return cfg
}

// Validate checks required fields and basic ranges.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Socket.URL) == "" {
		problems = append(problems, "socket.url is required")
	}
	if c.Socket.BackoffBase <= 0 {
		problems = append(problems, "socket.backoff_base must be positive")
	}
	if c.Socket.BackoffCap < c.Socket.BackoffBase {
		problems = append(problems, "socket.backoff_cap must be >= socket.backoff_base")
	}
	if c.Socket.MaxReconnects < 1 {
		problems = append(problems, "socket.max_reconnects must be >= 1")
	}

	if strings.TrimSpace(c.API.BaseURL) == "" {
		problems = append(problems, "api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}

	switch c.Directions.EtaSource {
	case EtaSourceHeuristic, EtaSourceProvider:
	default:
		problems = append(problems, "directions.eta_source must be heuristic or provider")
	}

	if c.Tracking.MapUpdateInterval < 3*time.Second || c.Tracking.MapUpdateInterval > 5*time.Second {
		problems = append(problems, "tracking.map_update_interval must be between 3s and 5s")
	}
	if c.Tracking.RefetchDebounce <= 0 {
		problems = append(problems, "tracking.refetch_debounce must be positive")
	}
	if c.Tracking.PollInterval <= 0 {
		problems = append(problems, "tracking.poll_interval must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
