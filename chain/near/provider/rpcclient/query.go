package rpcclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Finality is the block finality a query is answered at.
type Finality string

const (
	FinalityFinal      Finality = "final"
	FinalityOptimistic Finality = "optimistic"
)

// ErrFunctionCall is returned when a view call fails inside the contract.
var ErrFunctionCall = errors.New("function call failed")

type callFunctionParams struct {
	RequestType string   `json:"request_type"`
	Finality    Finality `json:"finality"`
	AccountID   string   `json:"account_id"`
	MethodName  string   `json:"method_name"`
	ArgsBase64  string   `json:"args_base64"`
}

// CallFunctionResult is the outcome of a view call.
type CallFunctionResult struct {
	Result      []byte   `json:"-"`
	Logs        []string `json:"logs"`
	BlockHeight uint64   `json:"block_height"`
	BlockHash   string   `json:"block_hash"`
	// Error is set by older nodes instead of a json-rpc error.
	Error string `json:"error,omitempty"`
}

// UnmarshalJSON decodes result, which the node sends as an array of byte values.
func (r *CallFunctionResult) UnmarshalJSON(b []byte) error {
	type alias CallFunctionResult
	aux := struct {
		*alias

		Result []int `json:"result"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	r.Result = make([]byte, len(aux.Result))
	for i, v := range aux.Result {
		if v < 0 || v > 255 {
			return fmt.Errorf("invalid byte %d at index %d of call result", v, i)
		}
		r.Result[i] = byte(v)
	}

	return nil
}

// CallFunction runs a read-only method of contract with args as its JSON input.
func (c *Client) CallFunction(
	ctx context.Context, contract, method string, args []byte,
) (CallFunctionResult, error) {
	params := callFunctionParams{
		RequestType: "call_function",
		Finality:    FinalityFinal,
		AccountID:   contract,
		MethodName:  method,
		ArgsBase64:  base64.StdEncoding.EncodeToString(args),
	}

	var res CallFunctionResult
	if err := c.call(ctx, "query", params, &res); err != nil {
		return CallFunctionResult{}, err
	}
	if res.Error != "" {
		return CallFunctionResult{}, fmt.Errorf("%w: %s.%s: %s", ErrFunctionCall, contract, method, res.Error)
	}

	return res, nil
}

type viewAccessKeyParams struct {
	RequestType string   `json:"request_type"`
	Finality    Finality `json:"finality"`
	AccountID   string   `json:"account_id"`
	PublicKey   string   `json:"public_key"`
}

// AccessKey is the state of an access key.
type AccessKey struct {
	Nonce       uint64          `json:"nonce"`
	Permission  json.RawMessage `json:"permission"`
	BlockHeight uint64          `json:"block_height"`
	BlockHash   string          `json:"block_hash"`
	Error       string          `json:"error,omitempty"`
}

// ViewAccessKey returns the access key publicKey of account.
func (c *Client) ViewAccessKey(ctx context.Context, account string, publicKey PublicKey) (AccessKey, error) {
	params := viewAccessKeyParams{
		RequestType: "view_access_key",
		Finality:    FinalityFinal,
		AccountID:   account,
		PublicKey:   publicKey.String(),
	}

	var key AccessKey
	if err := c.call(ctx, "query", params, &key); err != nil {
		return AccessKey{}, err
	}
	if key.Error != "" {
		return AccessKey{}, fmt.Errorf("access key %s of %s: %s", publicKey, account, key.Error)
	}

	return key, nil
}

// BlockHeader is the subset of a block header the client uses.
type BlockHeader struct {
	Height    uint64 `json:"height"`
	Hash      string `json:"hash"`
	Timestamp uint64 `json:"timestamp"`
}

type blockResult struct {
	Header BlockHeader `json:"header"`
}

// LatestBlock returns the header of the latest final block.
func (c *Client) LatestBlock(ctx context.Context) (BlockHeader, error) {
	var res blockResult
	if err := c.call(ctx, "block", map[string]Finality{"finality": FinalityFinal}, &res); err != nil {
		return BlockHeader{}, err
	}

	return res.Header, nil
}

// DecodeHash decodes a base58 encoded 32 byte hash.
func DecodeHash(s string) ([32]byte, error) {
	var h [32]byte
	b, err := base58.Decode(s)
	if err != nil {
		return h, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("invalid hash %q: got %d bytes, want %d", s, len(b), len(h))
	}
	copy(h[:], b)

	return h, nil
}
