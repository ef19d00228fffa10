package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxUploadSize is the hard cap on a single uploaded file (100 MiB).
const MaxUploadSize int64 = 100 * 1024 * 1024

// Config is the full runtime configuration of the upload gateway.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	IPFS    IPFSConfig    `yaml:"ipfs"`
	Pinning PinningConfig `yaml:"pinning"`
	Logging LoggingConfig `yaml:"logging"`

	// Gateways are the HTTP gateway bases a CID is appended to, in response order.
	Gateways []string `yaml:"gateways"`
}

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	Port          int    `yaml:"port"`            // PORT
	CORSOrigin    string `yaml:"cors_origin"`     // CORS_ORIGIN
	MaxUploadSize int64  `yaml:"max_upload_size"` // bytes; defaults to MaxUploadSize
}

// IPFSConfig describes how to reach the primary IPFS node's RPC API
type IPFSConfig struct {
	Host       string        `yaml:"host"`        // IPFS_HOST
	Port       int           `yaml:"port"`        // IPFS_PORT
	Protocol   string        `yaml:"protocol"`    // IPFS_PROTOCOL, http or https
	Timeout    time.Duration `yaml:"timeout"`     // IPFS_TIMEOUT, zero means no client timeout
	CIDVersion int           `yaml:"cid_version"` // 0 or 1
}

// PinningConfig configures the optional remote pinning service
type PinningConfig struct {
	APIKey      string        `yaml:"api_key"`      // NFT_STORAGE_API_KEY
	APIURL      string        `yaml:"api_url"`      // NFT_STORAGE_API_URL
	GatewayBase string        `yaml:"gateway_base"` // REPLICA_GATEWAY
	Timeout     time.Duration `yaml:"timeout"`      // PINNING_TIMEOUT
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Colors     bool   `yaml:"colors"`      // LOG_COLORS
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// DefaultGateways are the public gateways used when none are configured.
var DefaultGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://dweb.link/ipfs/",
}

// Default returns a config populated with the stock defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          3000,
			CORSOrigin:    "*",
			MaxUploadSize: MaxUploadSize,
		},
		IPFS: IPFSConfig{
			Host:     "ipfs",
			Port:     5001,
			Protocol: "http",
		},
		Pinning: PinningConfig{
			APIURL:      "https://api.nft.storage",
			GatewayBase: "https://nftstorage.link/ipfs/",
		},
		Logging: LoggingConfig{
			Colors: true,
		},
		Gateways: append([]string(nil), DefaultGateways...),
	}
}

// APIURL returns the base URL of the IPFS node's RPC API.
func (c IPFSConfig) APIURL() string {
	return fmt.Sprintf("%s://%s:%d", c.Protocol, c.Host, c.Port)
}

// ListenAddr returns the address the HTTP server binds to.
func (c ServerConfig) ListenAddr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Load builds the config: defaults, then the YAML file named by PINNER_CONFIG (if any),
// then environment variables. Priority: env > file > defaults.
func Load() (*Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("PINNER_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := DecodeStrict(f, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment values. Empty values keep the current setting.
func (c *Config) applyEnv(getenv func(string) string) error {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := get("CORS_ORIGIN"); v != "" {
		c.Server.CORSOrigin = v
	}
	if v := get("IPFS_HOST"); v != "" {
		c.IPFS.Host = v
	}
	if v := get("IPFS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid IPFS_PORT %q: %w", v, err)
		}
		c.IPFS.Port = port
	}
	if v := get("IPFS_PROTOCOL"); v != "" {
		c.IPFS.Protocol = strings.ToLower(v)
	}
	if v := get("IPFS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid IPFS_TIMEOUT %q: %w", v, err)
		}
		c.IPFS.Timeout = d
	}
	if v := get("NFT_STORAGE_API_KEY"); v != "" {
		c.Pinning.APIKey = v
	}
	if v := get("NFT_STORAGE_API_URL"); v != "" {
		c.Pinning.APIURL = v
	}
	if v := get("REPLICA_GATEWAY"); v != "" {
		c.Pinning.GatewayBase = v
	}
	if v := get("PINNING_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PINNING_TIMEOUT %q: %w", v, err)
		}
		c.Pinning.Timeout = d
	}
	if v := get("IPFS_GATEWAYS"); v != "" {
		c.Gateways = splitList(v)
	}
	if v := get("LOG_COLORS"); v != "" {
		c.Logging.Colors = parseBool(v, c.Logging.Colors)
	}

	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string, def bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
