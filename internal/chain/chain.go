// Package chain defines the Bitcoin networks contracts can be built for.
// All network values are hardcoded here - no external configuration needed.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// Network names a Bitcoin network.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Signet  Network = "signet"
	Regtest Network = "regtest"
)

// AddressType represents the address encoding format.
type AddressType string

const (
	AddressP2PKH       AddressType = "p2pkh"       // Legacy (1...)
	AddressP2SH        AddressType = "p2sh"        // Script hash (3...)
	AddressP2WPKH      AddressType = "p2wpkh"      // Native SegWit (bc1q...)
	AddressP2WSH       AddressType = "p2wsh"       // SegWit script (bc1q...)
	AddressP2SH_P2WPKH AddressType = "p2sh-p2wpkh" // Nested SegWit (3...)
	AddressP2TR        AddressType = "p2tr"        // Taproot (bc1p...)
)

// Params contains the parameters for one network.
type Params struct {
	Network Network
	Name    string

	// Bech32HRP is the human-readable prefix of segwit addresses.
	Bech32HRP string

	// Chain is the btcd parameter set used for address encoding and decoding.
	Chain *chaincfg.Params

	// Features
	SupportsSegWit  bool
	SupportsTaproot bool

	DefaultAddressType AddressType
}

var registry = make(map[Network]*Params)

// Register adds network params to the registry.
func Register(params *Params) {
	registry[params.Network] = params
}

// Get returns params for a network.
func Get(network Network) (*Params, bool) {
	params, ok := registry[network]
	return params, ok
}

// List returns all registered networks, sorted by name.
func List() []Network {
	nets := make([]Network, 0, len(registry))
	for n := range registry {
		nets = append(nets, n)
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i] < nets[j] })
	return nets
}

// IsSupported returns true if the network is registered.
func IsSupported(network Network) bool {
	_, ok := registry[network]
	return ok
}

// Parse resolves a network name. The aliases "main", "bitcoin", "test" and
// "testnet3" are accepted.
func Parse(name string) (*Params, error) {
	n := Network(strings.ToLower(strings.TrimSpace(name)))
	switch n {
	case "main", "bitcoin":
		n = Mainnet
	case "test", "testnet3":
		n = Testnet
	}
	params, ok := registry[n]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", name)
	}
	return params, nil
}
