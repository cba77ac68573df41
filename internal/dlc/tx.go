package dlc

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/mempool"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SerializeTx serializes a transaction to lowercase hex in wire format.
// Unsigned contract transactions carry no witness, so this is the legacy
// encoding and hashes to the txid.
func SerializeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// DeserializeTx deserializes a transaction from hex.
func DeserializeTx(hexStr string) (*wire.MsgTx, error) {
	data, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to deserialize: %w", err)
	}
	return tx, nil
}

// TxSummary is a decoded view of a transaction.
type TxSummary struct {
	TxID     string        `json:"txid"`
	Version  int32         `json:"version"`
	LockTime uint32        `json:"locktime"`
	Vin      []VinSummary  `json:"vin"`
	Vout     []VoutSummary `json:"vout"`
	VSize    int64         `json:"vsize"`
}

// VinSummary describes one input.
type VinSummary struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Sequence uint32 `json:"sequence"`
}

// VoutSummary describes one output.
type VoutSummary struct {
	N            int    `json:"n"`
	Value        int64  `json:"value"`
	ScriptPubKey string `json:"scriptPubKey"`
	Type         string `json:"type"`
	Address      string `json:"address,omitempty"`
}

// Summarize decodes tx into a TxSummary. Addresses are rendered for net when
// the output script is a standard template.
func Summarize(tx *wire.MsgTx, net *chaincfg.Params) *TxSummary {
	s := &TxSummary{
		TxID:     tx.TxHash().String(),
		Version:  tx.Version,
		LockTime: tx.LockTime,
		Vin:      make([]VinSummary, len(tx.TxIn)),
		Vout:     make([]VoutSummary, len(tx.TxOut)),
		VSize:    mempool.GetTxVirtualSize(btcutil.NewTx(tx)),
	}
	for i, in := range tx.TxIn {
		s.Vin[i] = VinSummary{
			TxID:     in.PreviousOutPoint.Hash.String(),
			Vout:     in.PreviousOutPoint.Index,
			Sequence: in.Sequence,
		}
	}
	for i, out := range tx.TxOut {
		class, addrs, _, _ := txscript.ExtractPkScriptAddrs(out.PkScript, net)
		v := VoutSummary{
			N:            i,
			Value:        out.Value,
			ScriptPubKey: hex.EncodeToString(out.PkScript),
			Type:         class.String(),
		}
		if len(addrs) == 1 {
			v.Address = addrs[0].EncodeAddress()
		}
		s.Vout[i] = v
	}
	return s
}

// FundingPSBT wraps the unsigned funding transaction in a PSBT for the
// parties' wallets to sign their own inputs.
// Nested segwit inputs move their redeem script from the scriptSig into the
// PSBT input, since a PSBT's unsigned tx must have empty scriptSigs.
func FundingPSBT(txs *Transactions) (string, error) {
	unsigned := txs.Fund.Copy()
	redeemScripts := make([][]byte, len(unsigned.TxIn))
	for i, in := range unsigned.TxIn {
		if len(in.SignatureScript) == 0 {
			continue
		}
		pushes, err := txscript.PushedData(in.SignatureScript)
		if err != nil || len(pushes) != 1 {
			return "", fmt.Errorf("input %d: unexpected scriptSig", i)
		}
		redeemScripts[i] = pushes[0]
		in.SignatureScript = nil
	}

	packet, err := psbt.NewFromUnsignedTx(unsigned)
	if err != nil {
		return "", fmt.Errorf("failed to create funding psbt: %w", err)
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return "", fmt.Errorf("failed to create psbt updater: %w", err)
	}
	for i, redeem := range redeemScripts {
		if redeem == nil {
			continue
		}
		if err := updater.AddInRedeemScript(redeem, i); err != nil {
			return "", fmt.Errorf("failed to add redeem script: %w", err)
		}
	}
	return packet.B64Encode()
}

// SpendFundingPSBT wraps a CET or the refund in a PSBT carrying the funding
// output as witness UTXO and the 2-of-2 witness script, which is all a signer
// needs to produce a signature for the single input.
func SpendFundingPSBT(txs *Transactions, tx *wire.MsgTx) (string, error) {
	packet, err := psbt.NewFromUnsignedTx(tx.Copy())
	if err != nil {
		return "", fmt.Errorf("failed to create psbt: %w", err)
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return "", fmt.Errorf("failed to create psbt updater: %w", err)
	}

	fundOut := txs.Fund.TxOut[txs.FundOutputIndex]
	if err := updater.AddInWitnessUtxo(wire.NewTxOut(fundOut.Value, fundOut.PkScript), 0); err != nil {
		return "", fmt.Errorf("failed to add witness utxo: %w", err)
	}
	if err := updater.AddInWitnessScript(txs.FundingScript, 0); err != nil {
		return "", fmt.Errorf("failed to add witness script: %w", err)
	}
	if err := updater.AddInSighashType(txscript.SigHashAll, 0); err != nil {
		return "", fmt.Errorf("failed to add sighash type: %w", err)
	}
	return packet.B64Encode()
}
