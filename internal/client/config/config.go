package config

import (
	"fmt"
	"time"
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "XBCLI_CONFIG"

// OutputFormat selects how commands print server data.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds runtime settings for the account CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: deadline applied to every call to the server; zero
//     means no deadline.
//   - Output: "text" for aligned key/value lines, "json" for one JSON
//     document per command, suitable for piping into jq.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	Output             OutputFormat
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 5 * time.Second
	c.Output = OutputText
}

// Validate rejects settings the CLI cannot run with.
func (c *Config) Validate() error {
	if c.ServerEndpointAddr == "" {
		return fmt.Errorf("server address is empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout %s is negative", c.RequestTimeout)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want %q or %q)", c.Output, OutputText, OutputJSON)
	}
	return nil
}

// LoadConfig applies defaults, then overlays values from JSON (if present)
// and command-line flags. Later sources take precedence over earlier ones.
// The merged result is validated.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
