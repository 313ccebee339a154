package lockedft

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/operations/optest"
)

type fakeClient struct {
	mu        sync.Mutex
	calls     []near.CallRequest
	views     []near.ViewRequest
	responses map[string]json.RawMessage
	err       error
}

func newFakeClient() *fakeClient {
	return &fakeClient{responses: make(map[string]json.RawMessage)}
}

func (c *fakeClient) Call(_ context.Context, req near.CallRequest) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, req)

	return c.answer(req.Method)
}

func (c *fakeClient) View(_ context.Context, req near.ViewRequest) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views = append(c.views, req)

	return c.answer(req.Method)
}

func (c *fakeClient) answer(method string) (json.RawMessage, error) {
	if c.err != nil {
		return nil, c.err
	}
	if resp, ok := c.responses[method]; ok {
		return resp, nil
	}

	return json.RawMessage("null"), nil
}

const tokenJSON = `{
	"locked_token_account_id": "wrap.testnet",
	"meta": {"spec": "ft-1.0.0", "name": "near at $10", "symbol": "near@10", "decimals": 24},
	"backup_trigger_account_id": null,
	"price_oracle_account_id": "priceoracle.testnet",
	"asset_id": "wrap.testnet",
	"minimum_unlock_price": {"multiplier": "100000", "decimals": 28}
}`

func TestFactoryViews(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses[MethodGetNumberOfTokens] = json.RawMessage(`2`)
	client.responses[MethodGetTokens] = json.RawMessage(`[` + tokenJSON + `]`)
	client.responses[MethodGetWhitelistedTokens] = json.RawMessage(`["wrap.testnet","aurora.testnet"]`)
	client.responses[MethodGetToken] = json.RawMessage(tokenJSON)
	deps := Deps{Client: client}
	bundle, reporter := optest.NewBundle(t)

	n, err := operations.ExecuteOperation(bundle, GetNumberOfTokensOp, deps, FactoryInput{Factory: "factory.testnet"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n.Output)

	tokens, err := operations.ExecuteOperation(bundle, GetTokensOp, deps,
		PageInput{Factory: "factory.testnet", FromIndex: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tokens.Output, 1)
	assert.Equal(t, "near@10", tokens.Output[0].Meta.Symbol)

	ids, err := operations.ExecuteOperation(bundle, GetWhitelistedTokensOp, deps,
		PageInput{Factory: "factory.testnet", FromIndex: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"wrap.testnet", "aurora.testnet"}, ids.Output)

	token, err := operations.ExecuteOperation(bundle, GetTokenOp, deps,
		TokenInput{Factory: "factory.testnet", TokenID: "near-10-0000"})
	require.NoError(t, err)
	assert.Equal(t, "wrap.testnet", token.Output.AssetID)
	assert.Nil(t, token.Output.BackupTriggerAccountID)
	assert.True(t, token.Output.MinimumUnlockPrice.Equal(near.NewPrice(100000, 28)))

	require.Len(t, client.views, 4)
	assert.JSONEq(t, `{}`, string(client.views[0].Args))
	assert.JSONEq(t, `{"from_index":0,"limit":10}`, string(client.views[1].Args))
	assert.JSONEq(t, `{"from_index":1,"limit":5}`, string(client.views[2].Args))
	assert.JSONEq(t, `{"token_id":"near-10-0000"}`, string(client.views[3].Args))
	for _, v := range client.views {
		assert.Equal(t, "factory.testnet", v.Receiver)
	}
	assert.Empty(t, client.calls)

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	assert.Len(t, reports, 4)
}

func TestGetTokenOp_NotFound(t *testing.T) {
	t.Parallel()

	bundle, _ := optest.NewBundle(t)

	_, err := operations.ExecuteOperation(bundle, GetTokenOp, Deps{Client: newFakeClient()},
		TokenInput{Factory: "factory.testnet", TokenID: "missing"})
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenViews(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses[MethodGetInfo] = json.RawMessage(`{
		"backup_trigger_account_id": "trigger.testnet",
		"price_oracle_account_id": "priceoracle.testnet",
		"asset_id": "wrap.testnet",
		"minimum_unlock_price": {"multiplier": "100000", "decimals": 28},
		"locked_token_account_id": "wrap.testnet",
		"status": {"Unlocking": {"initiated_timestamp": "1700000000000000000"}}
	}`)
	client.responses[MethodGetStatus] = json.RawMessage(`"Locked"`)
	deps := Deps{Client: client}
	bundle, _ := optest.NewBundle(t)
	in := AccountInput{Account: "near-10-0000.factory.testnet"}

	info, err := operations.ExecuteOperation(bundle, GetInfoOp, deps, in)
	require.NoError(t, err)
	assert.Equal(t, near.StatusUnlocking, info.Output.Status.Kind)
	assert.Equal(t, uint64(1700000000000000000), info.Output.Status.InitiatedTimestamp)
	require.NotNil(t, info.Output.BackupTriggerAccountID)
	assert.Equal(t, "trigger.testnet", *info.Output.BackupTriggerAccountID)

	status, err := operations.ExecuteOperation(bundle, GetStatusOp, deps, in)
	require.NoError(t, err)
	assert.Equal(t, near.StatusLocked, status.Output.Kind)

	for _, v := range client.views {
		assert.Equal(t, "near-10-0000.factory.testnet", v.Receiver)
	}
}

func TestTokenViews_DecodeError(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses[MethodGetStatus] = json.RawMessage(`"Burnt"`)
	bundle, _ := optest.NewBundle(t)

	_, err := operations.ExecuteOperation(bundle, GetStatusOp, Deps{Client: client},
		AccountInput{Account: "near-10-0000.factory.testnet"})
	require.ErrorContains(t, err, "failed to decode near-10-0000.factory.testnet.get_status result")
}

func TestTokenCalls(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	deps := Deps{Client: client}
	bundle, _ := optest.NewBundle(t)
	in := TokenCallInput{Account: "near-10-0000.factory.testnet", Signer: "trigger.testnet"}

	_, err := operations.ExecuteOperation(bundle, UnlockOp, deps, in)
	require.NoError(t, err)
	_, err = operations.ExecuteOperation(bundle, UnwrapOp, deps, in)
	require.NoError(t, err)
	_, err = operations.ExecuteOperation(bundle, UpdateMetaOp, deps, UpdateMetaInput{
		Account: in.Account,
		Signer:  "owner.testnet",
		Meta:    near.FungibleTokenMetadata{Spec: near.FTMetadataSpec, Name: "n", Symbol: "s", Decimals: 24},
	})
	require.NoError(t, err)

	require.Len(t, client.calls, 3)
	for _, c := range client.calls[:2] {
		assert.Equal(t, "trigger.testnet", c.Signer)
		assert.Equal(t, "1", c.EffectiveDeposit().String(), c.Method)
		assert.JSONEq(t, `{}`, string(c.Args))
	}
	assert.Equal(t, MethodUnlock, client.calls[0].Method)
	assert.Equal(t, MethodUnwrap, client.calls[1].Method)

	update := client.calls[2]
	assert.Equal(t, MethodUpdateMeta, update.Method)
	assert.True(t, update.EffectiveDeposit().IsZero())
	assert.JSONEq(t, `{"meta":{"spec":"ft-1.0.0","name":"n","symbol":"s","decimals":24}}`, string(update.Args))
}

func TestTokenCalls_Errors(t *testing.T) {
	t.Parallel()

	rejected := errors.New("Smart contract panicked: Requires attached deposit of exactly 1 yoctoNEAR")
	client := newFakeClient()
	client.err = rejected
	bundle, _ := optest.NewBundle(t)

	_, err := operations.ExecuteOperation(bundle, UnlockOp, Deps{Client: client},
		TokenCallInput{Account: "near-10-0000.factory.testnet", Signer: "trigger.testnet"})
	require.ErrorIs(t, err, rejected)

	_, err = operations.ExecuteOperation(bundle, UnwrapOp, Deps{Client: client},
		TokenCallInput{Account: "near-10-0000.factory.testnet", Signer: "Trigger"})
	require.ErrorIs(t, err, near.ErrInvalidAccountID)
	require.Len(t, client.calls, 1, "invalid signer never reaches the node")
}

func TestOperations(t *testing.T) {
	t.Parallel()

	registry := operations.NewOperationRegistry(Operations()...)
	defs := registry.Definitions()
	require.Len(t, defs, 9)

	op, err := registry.RetrieveLatest(GetInfoOp.ID())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", op.Version())
}
