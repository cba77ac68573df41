// Package main provides dlctx - a one-shot CLI that reads a contract request
// as JSON and prints the built transaction set.
//
// Usage:
//
//	dlctx [flags] [request.json]
//
// The request is read from stdin when no file is given.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klingon-exchange/klingon-dlc/internal/api"
	"github.com/klingon-exchange/klingon-dlc/internal/chain"
	"github.com/klingon-exchange/klingon-dlc/internal/config"
	"github.com/klingon-exchange/klingon-dlc/internal/dlc"
	"github.com/klingon-exchange/klingon-dlc/pkg/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process exit, so it can be driven from tests.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dlctx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configFile = fs.String("config", "", "Config file path (optional)")
		network    = fs.String("network", "", "Bitcoin network, overrides config")
		dustLimit  = fs.Uint64("dust-limit", 0, "Dust limit in satoshis (0 = relay policy), overrides config")
		decode     = fs.String("decode", "", "Decode a hex transaction instead of building")
		psbts      = fs.Bool("psbt", false, "Include unsigned PSBTs in the output")
		verbose    = fs.Bool("v", false, "Debug logging to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logging.New(&logging.Config{Level: level, Output: stderr})

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			log.Error("Failed to load config", "error", err)
			return 1
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "network":
			cfg.Network = chain.Network(*network)
		case "dust-limit":
			cfg.Policy.DustLimit = *dustLimit
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		return 1
	}
	params, err := cfg.ChainParams()
	if err != nil {
		log.Error("Invalid network", "error", err)
		return 1
	}

	if *decode != "" {
		out, err := api.DecodeTransaction(*decode, params.Chain)
		if err != nil {
			log.Error("Failed to decode transaction", "error", err)
			return 1
		}
		return printJSON(stdout, log, out)
	}

	input := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			log.Error("Failed to open request", "error", err)
			return 1
		}
		defer f.Close()
		input = f
	}

	var req api.CreateTransactionsRequest
	if err := json.NewDecoder(input).Decode(&req); err != nil {
		log.Error("Failed to parse request", "error", err)
		return 1
	}
	req.IncludePSBT = req.IncludePSBT || *psbts

	b, err := dlc.NewBuilder(cfg.DLCPolicy(), dlc.WithLogger(log.Component("dlc")))
	if err != nil {
		log.Error("Invalid policy", "error", err)
		return 1
	}
	resp, err := api.Build(b, &req, params.Chain)
	if err != nil {
		var cerr *dlc.ContractError
		if errors.As(err, &cerr) {
			fmt.Fprintf(stderr, "%s: %v\n", dlc.ErrorKind(err), err)
			return 3
		}
		log.Error("Failed to build contract", "error", err)
		return 1
	}
	return printJSON(stdout, log, resp)
}

func printJSON(w io.Writer, log *logging.Logger, v interface{}) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error("Failed to write output", "error", err)
		return 1
	}
	return 0
}
