package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`

	// GatewayToken authenticates companion mods connecting over the
	// websocket gateway.
	GatewayToken string `yaml:"gateway_token"`
	// APIToken is the static bearer token the orchestrator calls with.
	APIToken string `yaml:"api_token"`

	AdminUser string `yaml:"admin_user"`
	AdminPass string `yaml:"admin_pass"`

	// SinkURL is where normalized chat messages are POSTed. Empty
	// disables inbound forwarding.
	SinkURL string `yaml:"sink_url"`

	// DefaultPreset is the speaker label for channels without one.
	DefaultPreset string `yaml:"default_preset"`
}

// Load reads configuration from a YAML file, applies environment
// overrides for secrets, fills defaults, and validates.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Secrets prefer the environment over the file
	if v := os.Getenv("MINEBRIDGE_GATEWAY_TOKEN"); v != "" {
		cfg.GatewayToken = v
	}
	if v := os.Getenv("MINEBRIDGE_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("MINEBRIDGE_ADMIN_PASS"); v != "" {
		cfg.AdminPass = v
	}
	if v := os.Getenv("MINEBRIDGE_SINK_URL"); v != "" {
		cfg.SinkURL = v
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "minebridge.db")
	}
	if cfg.DefaultPreset == "" {
		cfg.DefaultPreset = "Agent"
	}
	if cfg.AdminUser == "" {
		cfg.AdminUser = "admin"
	}
	if cfg.AdminPass == "" {
		cfg.AdminPass = "admin"
	}

	if cfg.GatewayToken == "" {
		return nil, fmt.Errorf("gateway_token is required (or set MINEBRIDGE_GATEWAY_TOKEN)")
	}
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("api_token is required (or set MINEBRIDGE_API_TOKEN)")
	}

	return &cfg, nil
}
