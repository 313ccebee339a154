package provider

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/chain/near/provider/rpcclient"
)

// staticKeys serves a single key pair for every account.
type staticKeys struct {
	kp    rpcclient.KeyPair
	err   error
	loads int
}

func (s *staticKeys) KeyPair(string) (rpcclient.KeyPair, error) {
	s.loads++
	return s.kp, s.err
}

func Test_RPCChainProviderConfig_validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, RPCChainProviderConfig{NodeURL: "http://localhost:3030"}.validate())
	require.ErrorContains(t, RPCChainProviderConfig{}.validate(), "node url is required")
}

func Test_RPCChainProvider_Initialize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		giveNetwork string
		giveConfig  RPCChainProviderConfig
		wantErr     string
	}{
		{
			name:        "valid initialization",
			giveNetwork: "testnet",
			giveConfig:  RPCChainProviderConfig{NodeURL: "http://localhost:3030", CredentialsDir: t.TempDir()},
		},
		{
			name:       "missing network",
			giveConfig: RPCChainProviderConfig{NodeURL: "http://localhost:3030"},
			wantErr:    "network id is required",
		},
		{
			name:        "fails config validation",
			giveNetwork: "testnet",
			giveConfig:  RPCChainProviderConfig{},
			wantErr:     "node url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewRPCChainProvider(tt.giveNetwork, tt.giveConfig)

			got, err := p.Initialize(t.Context())
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			gotChain, ok := got.(near.Chain)
			require.True(t, ok, "expected got to be of type near.Chain")
			assert.Equal(t, tt.giveNetwork, gotChain.NetworkID)
			assert.Equal(t, tt.giveConfig.NodeURL, gotChain.NodeURL)
			assert.IsType(t, &RPCClient{}, gotChain.Client)
			assert.Equal(t, "NEAR RPC Chain Provider", p.Name())
			assert.Equal(t, got, p.BlockChain())

			again, err := p.Initialize(t.Context())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

// newViewNode answers every query with the given call result bytes.
func newViewNode(t *testing.T, result []byte) *httptest.Server {
	t.Helper()

	ints := make([]int, len(result))
	for i, b := range result {
		ints[i] = int(b)
	}
	encoded, err := json.Marshal(ints)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"dontcare","result":{"result":` + string(encoded) +
			`,"logs":[],"block_height":1,"block_hash":"h"}}`))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestRPCClient_View(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result []byte
		want   string
	}{
		{name: "json", result: []byte(`{"status":"Locked"}`), want: `{"status":"Locked"}`},
		{name: "empty", result: nil, want: `null`},
		{name: "raw bytes", result: []byte("plain"), want: `"plain"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node := newViewNode(t, tt.result)
			c := NewRPCClient(rpcclient.New(node.URL), &staticKeys{})

			got, err := c.View(t.Context(), near.ViewRequest{Receiver: "token.testnet", Method: "get_status"})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestRPCClient_Call_KeyErrors(t *testing.T) {
	t.Parallel()

	keys := &staticKeys{err: errors.New("no such file")}
	c := NewRPCClient(rpcclient.New("http://127.0.0.1:0"), keys)

	_, err := c.Call(t.Context(), near.CallRequest{Receiver: "f.testnet", Method: "new", Signer: "f.testnet"})
	require.ErrorContains(t, err, "failed to load signing key of f.testnet: no such file")
}

func TestRPCClient_Call(t *testing.T) {
	t.Parallel()

	kp := rpcclient.NewKeyPair(ed25519.NewKeyFromSeed(bytes.Repeat([]byte{5}, ed25519.SeedSize)))
	keys := &staticKeys{kp: kp}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)

		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case "query":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"dontcare","result":{"nonce":1,"permission":"FullAccess"}}`))
		case "block":
			hash := base58.Encode(bytes.Repeat([]byte{1}, 32))
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"dontcare","result":{"header":{"height":1,"hash":"` + hash + `"}}}`))
		case "broadcast_tx_commit":
			_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"dontcare","result":{"status":{"SuccessValue":""},"transaction":{"hash":"tx"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	c := NewRPCClient(rpcclient.New(server.URL), keys)

	for range 2 {
		got, err := c.Call(t.Context(), near.CallRequest{
			Receiver: "factory.testnet",
			Method:   "storage_deposit",
			Signer:   "factory.testnet",
			Deposit:  &near.OneYocto,
		})
		require.NoError(t, err)
		assert.JSONEq(t, `null`, string(got))
	}
	assert.Equal(t, 1, keys.loads, "signing key is loaded once per account")
}
