package chain

import "github.com/btcsuite/btcd/chaincfg"

func init() {
	Register(&Params{
		Network:            Mainnet,
		Name:               "Bitcoin",
		Bech32HRP:          chaincfg.MainNetParams.Bech32HRPSegwit, // bc
		Chain:              &chaincfg.MainNetParams,
		SupportsSegWit:     true,
		SupportsTaproot:    true,
		DefaultAddressType: AddressP2WPKH,
	})

	// testnet3
	Register(&Params{
		Network:            Testnet,
		Name:               "Bitcoin Testnet",
		Bech32HRP:          chaincfg.TestNet3Params.Bech32HRPSegwit, // tb
		Chain:              &chaincfg.TestNet3Params,
		SupportsSegWit:     true,
		SupportsTaproot:    true,
		DefaultAddressType: AddressP2WPKH,
	})

	Register(&Params{
		Network:            Signet,
		Name:               "Bitcoin Signet",
		Bech32HRP:          chaincfg.SigNetParams.Bech32HRPSegwit, // tb
		Chain:              &chaincfg.SigNetParams,
		SupportsSegWit:     true,
		SupportsTaproot:    true,
		DefaultAddressType: AddressP2WPKH,
	})

	Register(&Params{
		Network:            Regtest,
		Name:               "Bitcoin Regtest",
		Bech32HRP:          chaincfg.RegressionNetParams.Bech32HRPSegwit, // bcrt
		Chain:              &chaincfg.RegressionNetParams,
		SupportsSegWit:     true,
		SupportsTaproot:    true,
		DefaultAddressType: AddressP2WPKH,
	})
}
