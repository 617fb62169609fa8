// Package config loads tokeninfo settings from YAML, .env files and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"solana-token-info/internal/enrich"
	"solana-token-info/internal/solana"
	"solana-token-info/internal/token"
)

// Environment variables that override file values.
const (
	EnvRPCEndpoint = "SOLANA_RPC_ENDPOINT"
	EnvLogLevel    = "TOKENINFO_LOG_LEVEL"
)

// Config is the root configuration structure.
type Config struct {
	RPC        RPC        `yaml:"rpc"`
	Enrichment Enrichment `yaml:"enrichment"`
	Batch      Batch      `yaml:"batch"`
	Logging    Logging    `yaml:"logging"`
	Server     Server     `yaml:"server"`
}

// RPC configures the Solana JSON-RPC client.
type RPC struct {
	Endpoint  string        `yaml:"endpoint"`   // supports ${VAR} expansion
	Timeout   time.Duration `yaml:"timeout"`    // per-request HTTP timeout
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int           `yaml:"burst"`
}

// Enrichment configures off-chain metadata fetching.
type Enrichment struct {
	Timeout      time.Duration `yaml:"timeout"`
	DNSTimeout   time.Duration `yaml:"dns_timeout"`
	MaxBodyBytes int           `yaml:"max_body_bytes"`
}

// Batch configures multi-address aggregation.
type Batch struct {
	Concurrency  int           `yaml:"concurrency"`
	TokenTimeout time.Duration `yaml:"token_timeout"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Server configures serve mode.
type Server struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		RPC: RPC{
			Endpoint: solana.DefaultEndpoint,
			Timeout:  solana.DefaultTimeout,
		},
		Enrichment: Enrichment{
			Timeout:      enrich.DefaultTimeout,
			DNSTimeout:   enrich.DefaultDNSTimeout,
			MaxBodyBytes: enrich.DefaultMaxBodySize,
		},
		Batch: Batch{
			Concurrency:  token.DefaultConcurrency,
			TokenTimeout: token.DefaultTokenTimeout,
		},
		Logging: Logging{
			Level:  "warn",
			Format: "console",
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML file on top of the defaults, expands ${VAR} references
// and applies environment overrides. The caller validates once every
// override is in place. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRPCEndpoint); v != "" {
		c.RPC.Endpoint = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("rpc.endpoint is required")
	}
	u, err := url.Parse(c.RPC.Endpoint)
	if err != nil {
		return fmt.Errorf("rpc.endpoint: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("rpc.endpoint: invalid url scheme %q (expected http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("rpc.endpoint: invalid url (missing host)")
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("rpc.timeout must be > 0")
	}
	if c.RPC.RateLimit < 0 {
		return fmt.Errorf("rpc.rate_limit must be >= 0")
	}
	if c.RPC.RateLimit > 0 && c.RPC.Burst <= 0 {
		return fmt.Errorf("rpc.burst must be > 0 when rate_limit is set")
	}
	if c.Enrichment.Timeout <= 0 {
		return fmt.Errorf("enrichment.timeout must be > 0")
	}
	if c.Enrichment.DNSTimeout <= 0 {
		return fmt.Errorf("enrichment.dns_timeout must be > 0")
	}
	if c.Enrichment.MaxBodyBytes <= 0 {
		return fmt.Errorf("enrichment.max_body_bytes must be > 0")
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be > 0")
	}
	if c.Batch.TokenTimeout <= 0 {
		return fmt.Errorf("batch.token_timeout must be > 0")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q (expected console or json)", c.Logging.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// LoadEnvFile loads environment variables from a .env file if it exists.
// Variables already set in the environment are left untouched.
func LoadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
