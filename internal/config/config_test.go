package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klingon-exchange/klingon-dlc/internal/chain"
	"github.com/klingon-exchange/klingon-dlc/internal/dlc"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Network != chain.Mainnet {
		t.Errorf("expected mainnet, got %s", cfg.Network)
	}
	if cfg.RPC.Listen != "127.0.0.1:8334" {
		t.Errorf("expected 127.0.0.1:8334, got %s", cfg.RPC.Listen)
	}
	if !cfg.RPC.EnableWebSocket {
		t.Error("expected EnableWebSocket to be true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Logging.Level)
	}
	if cfg.DLCPolicy() != dlc.DefaultPolicy() {
		t.Errorf("default policy mismatch: %+v", cfg.DLCPolicy())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %s, want %s", cfg.DataDir, dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Klingon DLC Configuration") {
		t.Error("missing config header")
	}
	if !strings.Contains(string(data), "dust_limit: 1000") {
		t.Errorf("default dust limit not written:\n%s", data)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "network: regtest\npolicy:\n  dust_limit: 0\nlogging:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Network != chain.Regtest {
		t.Errorf("network = %s, want regtest", cfg.Network)
	}
	policy := cfg.DLCPolicy()
	if policy.DustLimit != 0 {
		t.Errorf("dust limit = %d, want 0", policy.DustLimit)
	}
	if policy.FundTxBaseWeight != dlc.DefaultFundTxBaseWeight || policy.WitnessScaleFactor != 4 {
		t.Errorf("unspecified policy keys lost their defaults: %+v", policy)
	}
	if cfg.RPC.Listen != "127.0.0.1:8334" {
		t.Errorf("rpc listen = %s, want default", cfg.RPC.Listen)
	}

	params, err := cfg.ChainParams()
	if err != nil {
		t.Fatalf("ChainParams: %v", err)
	}
	if params.Bech32HRP != "bcrt" {
		t.Errorf("Bech32HRP = %s, want bcrt", params.Bech32HRP)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown network", "network: dogecoin\n"},
		{"zero scale factor", "policy:\n  witness_scale_factor: 0\n"},
		{"bad tx version", "policy:\n  tx_version: 0\n"},
		{"malformed yaml", "network: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "dlc.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := DefaultConfig()
	cfg.Network = chain.Signet
	cfg.Policy.DustLimit = 546
	cfg.RPC.AllowedOrigins = []string{"http://localhost:3000"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Network != chain.Signet || loaded.Policy.DustLimit != 546 {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.RPC.AllowedOrigins) != 1 {
		t.Errorf("allowed origins = %v", loaded.RPC.AllowedOrigins)
	}
}

func TestConfigPath(t *testing.T) {
	if got := ConfigPath("/var/lib/dlc"); got != "/var/lib/dlc/config.yaml" {
		t.Errorf("ConfigPath = %s", got)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ConfigPath("~/.dlc"); got != filepath.Join(home, ".dlc", ConfigFileName) {
		t.Errorf("ConfigPath(~) = %s", got)
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.File = filepath.Join(t.TempDir(), "dlc.log")

	logger, closeFn, err := cfg.Logger()
	if err != nil {
		t.Fatalf("Logger: %v", err)
	}
	logger.Info("started", "network", cfg.Network)
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "started") {
		t.Errorf("log file missing entry: %s", data)
	}
}
