package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/chain/near/provider/rpcclient"
)

// KeySource returns the signing key of an account.
type KeySource interface {
	KeyPair(account string) (rpcclient.KeyPair, error)
}

// RPCClient submits calls over JSON-RPC, signing transactions locally.
type RPCClient struct {
	client *rpcclient.Client
	keys   KeySource

	mu    sync.Mutex
	cache map[string]rpcclient.KeyPair
}

var _ near.Client = (*RPCClient)(nil)

// NewRPCClient returns a client signing with keys loaded from keys.
func NewRPCClient(client *rpcclient.Client, keys KeySource) *RPCClient {
	return &RPCClient{
		client: client,
		keys:   keys,
		cache:  make(map[string]rpcclient.KeyPair),
	}
}

// Call signs and broadcasts a function call and returns its return value.
func (c *RPCClient) Call(ctx context.Context, req near.CallRequest) (json.RawMessage, error) {
	key, err := c.keyPair(req.Signer)
	if err != nil {
		return nil, err
	}

	out, err := c.client.SignAndSendFunctionCall(ctx, rpcclient.FunctionCallRequest{
		Signer:   req.Signer,
		Key:      key,
		Receiver: req.Receiver,
		Method:   req.Method,
		Args:     near.ArgsOrEmpty(req.Args),
		Gas:      uint64(req.EffectiveGas()),
		Deposit:  req.EffectiveDeposit().BigInt(),
	})
	if err != nil {
		return nil, err
	}

	value, err := out.ReturnValue()
	if err != nil {
		return nil, err
	}

	return asJSON(value), nil
}

// View runs a view call and returns its return value.
func (c *RPCClient) View(ctx context.Context, req near.ViewRequest) (json.RawMessage, error) {
	res, err := c.client.CallFunction(ctx, req.Receiver, req.Method, near.ArgsOrEmpty(req.Args))
	if err != nil {
		return nil, err
	}

	return asJSON(res.Result), nil
}

func (c *RPCClient) keyPair(account string) (rpcclient.KeyPair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kp, ok := c.cache[account]; ok {
		return kp, nil
	}

	kp, err := c.keys.KeyPair(account)
	if err != nil {
		return rpcclient.KeyPair{}, fmt.Errorf("failed to load signing key of %s: %w", account, err)
	}
	c.cache[account] = kp

	return kp, nil
}

// asJSON returns a method return value as JSON: null when empty, the raw bytes when they are
// JSON, otherwise a JSON string.
func asJSON(value []byte) json.RawMessage {
	if len(value) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(value) {
		return json.RawMessage(value)
	}
	b, _ := json.Marshal(string(value))

	return b
}
