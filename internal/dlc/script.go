package dlc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"

	"github.com/klingon-exchange/klingon-dlc/pkg/helpers"
)

// BuildFundingScript creates the 2-of-2 multisig witness script locking the
// contract collateral.
//
// Script structure:
//
//	OP_2 <pubkey_low> <pubkey_high> OP_2 OP_CHECKMULTISIG
//
// The keys are ordered by their serialized bytes so both parties derive the
// same script regardless of who is offering.
func BuildFundingScript(offerPubKey, acceptPubKey []byte) ([]byte, error) {
	if err := validateFundPubKey(offerPubKey); err != nil {
		return nil, newError(ErrInvalidScript, PartyOffer, "fundPubkey", NoRow, "%v", err)
	}
	if err := validateFundPubKey(acceptPubKey); err != nil {
		return nil, newError(ErrInvalidScript, PartyAccept, "fundPubkey", NoRow, "%v", err)
	}

	first, second := offerPubKey, acceptPubKey
	if helpers.CompareBytes(first, second) > 0 {
		first, second = second, first
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_2)
	builder.AddData(first)
	builder.AddData(second)
	builder.AddOp(txscript.OP_2)
	builder.AddOp(txscript.OP_CHECKMULTISIG)

	return builder.Script()
}

// PayToWitnessScriptHash returns the P2WSH scriptPubKey for a witness script:
// OP_0 <sha256(script)>.
func PayToWitnessScriptHash(witnessScript []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(chainhash.HashB(witnessScript)).
		Script()
}

// validateFundPubKey requires a 33-byte compressed point on secp256k1.
func validateFundPubKey(pubKey []byte) error {
	if len(pubKey) != btcec.PubKeyBytesLenCompressed {
		return fmt.Errorf("pubkey must be %d bytes (compressed), got %d",
			btcec.PubKeyBytesLenCompressed, len(pubKey))
	}
	if _, err := btcec.ParsePubKey(pubKey); err != nil {
		return fmt.Errorf("pubkey is not a valid point: %w", err)
	}
	return nil
}

// validateScriptPubKey requires a non-empty script that parses into opcodes.
func validateScriptPubKey(script []byte) error {
	if len(script) == 0 {
		return fmt.Errorf("script is empty")
	}
	if len(script) > txscript.MaxScriptSize {
		return fmt.Errorf("script is %d bytes, max %d", len(script), txscript.MaxScriptSize)
	}
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
	}
	if err := tokenizer.Err(); err != nil {
		return fmt.Errorf("malformed script: %w", err)
	}
	return nil
}

// redeemScriptToScriptSig wraps a nested-segwit redeem script into the single
// push scriptSig that spends it. Native segwit inputs have an empty scriptSig.
func redeemScriptToScriptSig(redeemScript []byte) ([]byte, error) {
	if len(redeemScript) == 0 {
		return nil, nil
	}
	return txscript.NewScriptBuilder().AddData(redeemScript).Script()
}
