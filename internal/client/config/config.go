// Package config loads runtime settings for the Daybreak CLI.
// Sources are layered: defaults, then an optional JSON file, then flags.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerEndpointURL: base URL of the backend HTTP API.
//   - MeetingDirectoryURL: base URL of the public meeting directory.
//   - DatabasePath: path of the local SQLite database file.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - SyncMaxAttempts: delivery attempts before a queue entry is parked.
type Config struct {
	ServerEndpointURL   string
	MeetingDirectoryURL string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	SyncMaxAttempts     int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://127.0.0.1:8080"
	c.MeetingDirectoryURL = "http://127.0.0.1:8080/api/directory"
	c.DatabasePath = "daybreak.db"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncMaxAttempts = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
