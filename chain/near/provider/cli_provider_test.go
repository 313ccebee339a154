package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
)

func Test_CLIChainProvider_Initialize(t *testing.T) {
	t.Parallel()

	t.Run("with runner", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{stdout: "true"}
		p := NewCLIChainProvider("testnet", CLIChainProviderConfig{
			NodeURL: "http://localhost:3030",
			Runner:  runner,
		})

		got, err := p.Initialize(t.Context())
		require.NoError(t, err)

		gotChain, ok := got.(near.Chain)
		require.True(t, ok, "expected got to be of type near.Chain")
		assert.Equal(t, "testnet", gotChain.NetworkID)
		assert.Equal(t, "NEAR CLI Chain Provider", p.Name())

		_, err = gotChain.View(t.Context(), near.ViewRequest{Receiver: "f.testnet", Method: "get_number_of_tokens"})
		require.NoError(t, err)
		require.Len(t, runner.calls, 1)
		assert.Equal(t, "near", runner.calls[0][0])
	})

	t.Run("missing network", func(t *testing.T) {
		t.Parallel()

		_, err := NewCLIChainProvider("", CLIChainProviderConfig{Runner: &fakeRunner{}}).Initialize(t.Context())
		require.ErrorContains(t, err, "network id is required")
	})

	t.Run("executable not found", func(t *testing.T) {
		t.Parallel()

		p := NewCLIChainProvider("testnet", CLIChainProviderConfig{Binary: "near-cli-that-does-not-exist"})
		_, err := p.Initialize(t.Context())
		require.ErrorContains(t, err, `near-cli executable "near-cli-that-does-not-exist" not found`)
	})
}
