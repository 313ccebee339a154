package rpcclient

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
)

// actionFunctionCall is the borsh variant index of the FunctionCall action.
const actionFunctionCall uint8 = 2

// FunctionCall is a function call action.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	// Deposit is in yoctoNEAR; nil means no deposit.
	Deposit *big.Int
}

// Transaction is an unsigned transaction made of function call actions.
type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []FunctionCall
}

// SignedTransaction is a transaction with its ed25519 signature.
type SignedTransaction struct {
	Transaction Transaction
	Signature   [ed25519.SignatureSize]byte
}

// Encode returns the borsh encoding of the transaction.
func (tx Transaction) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := tx.encode(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (tx Transaction) encode(enc *bin.Encoder) error {
	if err := enc.WriteString(tx.SignerID); err != nil {
		return err
	}
	if err := enc.WriteUint8(keyTypeED25519); err != nil {
		return err
	}
	if err := enc.WriteBytes(tx.PublicKey[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(tx.Nonce, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteString(tx.ReceiverID); err != nil {
		return err
	}
	if err := enc.WriteBytes(tx.BlockHash[:], false); err != nil {
		return err
	}
	// #nosec G115 -- a transaction holds a handful of actions
	if err := enc.WriteUint32(uint32(len(tx.Actions)), binary.LittleEndian); err != nil {
		return err
	}
	for _, a := range tx.Actions {
		if err := a.encode(enc); err != nil {
			return fmt.Errorf("failed to encode action %s: %w", a.MethodName, err)
		}
	}

	return nil
}

func (a FunctionCall) encode(enc *bin.Encoder) error {
	deposit, err := u128LittleEndian(a.Deposit)
	if err != nil {
		return err
	}

	if err := enc.WriteUint8(actionFunctionCall); err != nil {
		return err
	}
	if err := enc.WriteString(a.MethodName); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Args, true); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Gas, binary.LittleEndian); err != nil {
		return err
	}

	return enc.WriteBytes(deposit[:], false)
}

// Hash returns the sha256 of the borsh encoded transaction, the message that gets signed.
func (tx Transaction) Hash() ([32]byte, error) {
	b, err := tx.Encode()
	if err != nil {
		return [32]byte{}, err
	}

	return sha256.Sum256(b), nil
}

// Sign signs the transaction with key.
func (tx Transaction) Sign(key KeyPair) (SignedTransaction, error) {
	if key.PublicKey() != tx.PublicKey {
		return SignedTransaction{}, fmt.Errorf("key %s does not match transaction public key %s", key.PublicKey(), tx.PublicKey)
	}
	h, err := tx.Hash()
	if err != nil {
		return SignedTransaction{}, err
	}

	return SignedTransaction{Transaction: tx, Signature: key.Sign(h[:])}, nil
}

// Encode returns the borsh encoding of the signed transaction.
func (st SignedTransaction) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := st.Transaction.encode(enc); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(keyTypeED25519); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(st.Signature[:], false); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// HashString returns the base58 transaction hash, as shown by explorers.
func (st SignedTransaction) HashString() (string, error) {
	h, err := st.Transaction.Hash()
	if err != nil {
		return "", err
	}

	return base58.Encode(h[:]), nil
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func u128LittleEndian(v *big.Int) ([16]byte, error) {
	var out [16]byte
	if v == nil {
		return out, nil
	}
	if v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return out, fmt.Errorf("deposit %s out of u128 range", v)
	}

	be := v.FillBytes(make([]byte, len(out)))
	for i := range be {
		out[len(out)-1-i] = be[i]
	}

	return out, nil
}
