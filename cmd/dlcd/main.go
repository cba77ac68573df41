// Package main provides the dlcd daemon - a stateless JSON-RPC service that
// builds DLC transaction sets.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/klingon-exchange/klingon-dlc/internal/chain"
	"github.com/klingon-exchange/klingon-dlc/internal/config"
	"github.com/klingon-exchange/klingon-dlc/internal/rpc"
	"github.com/klingon-exchange/klingon-dlc/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	// Parse flags
	var (
		dataDir     = flag.String("data-dir", "~/.klingon-dlc", "Data directory")
		configFile  = flag.String("config", "", "Config file path (default: <data-dir>/config.yaml)")
		network     = flag.String("network", "", "Bitcoin network (mainnet, testnet, signet, regtest), overrides config")
		apiAddr     = flag.String("api", "", "JSON-RPC listen address, overrides config")
		dustLimit   = flag.Uint64("dust-limit", 0, "Dust limit in satoshis (0 = relay policy), overrides config")
		noWS        = flag.Bool("no-ws", false, "Disable the WebSocket endpoint")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	log := logging.New(logging.DefaultConfig())
	logging.SetDefault(log)

	if *showVersion {
		log.Infof("dlcd %s (commit: %s)", version, commit)
		os.Exit(0)
	}

	// Load or create config file
	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.LoadConfig(*dataDir)
	}
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Apply CLI overrides (explicitly set flags take precedence over the file)
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["network"] {
		cfg.Network = chain.Network(*network)
	}
	if set["api"] {
		cfg.RPC.Listen = *apiAddr
	}
	if set["dust-limit"] {
		cfg.Policy.DustLimit = *dustLimit
	}
	if *noWS {
		cfg.RPC.EnableWebSocket = false
	}
	if set["log-level"] {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	log, closeLog, err := cfg.Logger()
	if err != nil {
		logging.Fatal("Failed to set up logging", "error", err)
	}
	defer closeLog()
	logging.SetDefault(log)

	if *configFile != "" {
		log.Info("Config loaded", "path", *configFile)
	} else {
		log.Info("Config loaded", "path", config.ConfigPath(*dataDir))
	}

	rpcServer, err := rpc.NewServer(cfg)
	if err != nil {
		log.Fatal("Failed to create RPC server", "error", err)
	}
	if err := rpcServer.Start(cfg.RPC.Listen); err != nil {
		log.Fatal("Failed to start RPC server", "error", err)
	}

	printBanner(log, cfg, rpcServer.Addr())

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	log.Info("Shutting down...")

	if err := rpcServer.Stop(); err != nil {
		log.Error("Error stopping RPC server", "error", err)
	}

	log.Info("Goodbye!")
}

func printBanner(log *logging.Logger, cfg *config.Config, addr string) {
	dust := "relay policy"
	if cfg.Policy.DustLimit > 0 {
		dust = "protocol"
	}

	log.Info("")
	log.Info("=================================================")
	log.Info("  dlcd " + version)
	log.Info("=================================================")
	log.Info("  Network:    " + string(cfg.Network))
	log.Info("  JSON-RPC:   http://" + addr)
	if cfg.RPC.EnableWebSocket {
		log.Info("  WebSocket:  ws://" + addr + "/ws")
	}
	log.Info("  Dust:       "+dust, "limit", cfg.Policy.DustLimit)
	log.Info("=================================================")
	log.Info("")
}
