// Package config holds the daemon and CLI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/klingon-exchange/klingon-dlc/internal/chain"
	"github.com/klingon-exchange/klingon-dlc/internal/dlc"
	"github.com/klingon-exchange/klingon-dlc/pkg/logging"
)

// Config holds all configuration for dlcd and dlctx.
type Config struct {
	// Network is the Bitcoin network addresses are decoded and rendered for.
	Network chain.Network `yaml:"network"`

	// DataDir is the directory holding config.yaml.
	DataDir string `yaml:"data_dir"`

	RPC     RPCConfig     `yaml:"rpc"`
	Policy  PolicyConfig  `yaml:"policy"`
	Logging LoggingConfig `yaml:"logging"`
}

// RPCConfig holds JSON-RPC server settings.
type RPCConfig struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// EnableWebSocket serves JSON-RPC and build events on /ws.
	EnableWebSocket bool `yaml:"enable_websocket"`

	// AllowedOrigins restricts CORS and WebSocket origins. Empty allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PolicyConfig holds the transaction construction constants. Every value is
// passed to the builder explicitly.
type PolicyConfig struct {
	// DustLimit in satoshis. 0 selects the relay-policy dust check.
	DustLimit uint64 `yaml:"dust_limit"`

	WitnessScaleFactor uint64 `yaml:"witness_scale_factor"`
	FundTxBaseWeight   uint64 `yaml:"fund_tx_base_weight"`
	CetBaseWeight      uint64 `yaml:"cet_base_weight"`
	TxInputBaseWeight  uint64 `yaml:"tx_input_base_weight"`
	TxVersion          int32  `yaml:"tx_version"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// File is the log file path (empty for stderr).
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	p := dlc.DefaultPolicy()
	return &Config{
		Network: chain.Mainnet,
		DataDir: "~/.klingon-dlc",
		RPC: RPCConfig{
			Listen:          "127.0.0.1:8334",
			EnableWebSocket: true,
			AllowedOrigins:  []string{},
		},
		Policy: PolicyConfig{
			DustLimit:          p.DustLimit,
			WitnessScaleFactor: p.WitnessScaleFactor,
			FundTxBaseWeight:   p.FundTxBaseWeight,
			CetBaseWeight:      p.CetBaseWeight,
			TxInputBaseWeight:  p.TxInputBaseWeight,
			TxVersion:          p.TxVersion,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigFileName is the default config file name.
const ConfigFileName = "config.yaml"

// LoadConfig loads configuration from dataDir/config.yaml.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(dataDir string) (*Config, error) {
	configPath := ConfigPath(dataDir)

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.DataDir = dataDir
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir
	return cfg, nil
}

// LoadFile reads a config file. Keys missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Klingon DLC Configuration\n# Generated automatically on first run\n\n")
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the network and policy.
func (c *Config) Validate() error {
	if _, err := chain.Parse(string(c.Network)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.DLCPolicy().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DLCPolicy converts the policy section into builder parameters.
func (c *Config) DLCPolicy() dlc.Policy {
	return dlc.Policy{
		TxVersion:          c.Policy.TxVersion,
		DustLimit:          c.Policy.DustLimit,
		WitnessScaleFactor: c.Policy.WitnessScaleFactor,
		FundTxBaseWeight:   c.Policy.FundTxBaseWeight,
		CetBaseWeight:      c.Policy.CetBaseWeight,
		TxInputBaseWeight:  c.Policy.TxInputBaseWeight,
	}
}

// ChainParams returns the params for the configured network.
func (c *Config) ChainParams() (*chain.Params, error) {
	return chain.Parse(string(c.Network))
}

// ConfigPath returns the full path to the config file for the given data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(expandPath(dataDir), ConfigFileName)
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

// Logger builds the root logger described by the logging section. The
// returned close function releases the log file, if any.
func (c *Config) Logger() (*logging.Logger, func() error, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	if c.Logging.File == "" {
		return logging.New(cfg), func() error { return nil }, nil
	}

	f, err := os.OpenFile(expandPath(c.Logging.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	cfg.Output = f
	return logging.New(cfg), f.Close, nil
}
