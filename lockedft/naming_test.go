package lockedft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
)

func TestFactoryNaming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		title       string
		targetPrice uint64
		wantPrice   string
		wantTokenID string
	}{
		{name: "whole price", title: "near", targetPrice: 20000, wantPrice: "2", wantTokenID: "near-2-0000"},
		{name: "fractional price", title: "near", targetPrice: 15000, wantPrice: "1.5000", wantTokenID: "near-1-5000"},
		{name: "unpadded fraction", title: "near", targetPrice: 10005, wantPrice: "1.5", wantTokenID: "near-1-0005"},
		{name: "below one", title: "aurora", targetPrice: 1234, wantPrice: "0.1234", wantTokenID: "aurora-0-1234"},
		{name: "whitespace and case", title: "Wrapped NEAR", targetPrice: 30000, wantPrice: "3", wantTokenID: "wrappednear-3-0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			price := near.NewU128(tt.targetPrice)
			assert.Equal(t, tt.wantPrice, FormatPrice(price))
			assert.Equal(t, tt.wantTokenID, FactoryTokenID(tt.title, price))
			assert.Equal(t, tt.wantTokenID+".factory.testnet", FactoryTokenAccount(tt.title, price, "factory.testnet"))
		})
	}
}

func TestFactoryMetadata(t *testing.T) {
	t.Parallel()

	meta := near.FungibleTokenMetadata{Spec: near.FTMetadataSpec, Name: "ignored", Symbol: "ignored", Decimals: 24}
	got := FactoryMetadata(meta, "near", near.NewU128(25000))

	assert.Equal(t, "near at $2.5000", got.Name)
	assert.Equal(t, "near@2.5000", got.Symbol)
	assert.Equal(t, uint8(24), got.Decimals)
	assert.Equal(t, "ignored", meta.Name, "input is not modified")
}

func TestMinimumUnlockPrice(t *testing.T) {
	t.Parallel()

	got := MinimumUnlockPrice(near.NewU128(15000), 24)

	assert.Equal(t, uint8(28), got.Decimals)
	assert.Equal(t, "15000", got.Multiplier.String())
	// $1.5 with 24 decimals
	require.True(t, got.Equal(near.NewPrice(15, 25)))
}
