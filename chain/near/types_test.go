package near

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStatus_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give TokenStatus
		want string
	}{
		{name: "locked", give: TokenStatus{Kind: StatusLocked}, want: `"Locked"`},
		{name: "unlocked", give: TokenStatus{Kind: StatusUnlocked}, want: `"Unlocked"`},
		{
			name: "unlocking",
			give: TokenStatus{Kind: StatusUnlocking, InitiatedTimestamp: 1_700_000_000_000_000_000},
			want: `{"Unlocking":{"initiated_timestamp":"1700000000000000000"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := json.Marshal(tt.give)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			var got TokenStatus
			require.NoError(t, json.Unmarshal([]byte(tt.want), &got))
			assert.Equal(t, tt.give, got)
		})
	}
}

func TestTokenStatus_UnmarshalJSON_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`"Frozen"`, `{"Unlocking":{}}`, `{"Unlocking":{"initiated_timestamp":"soon"}}`, `42`} {
		var got TokenStatus
		require.Error(t, json.Unmarshal([]byte(in), &got), in)
	}

	_, err := json.Marshal(TokenStatus{Kind: "Frozen"})
	require.Error(t, err)
}

func TestTokenStatus_UnlocksAt(t *testing.T) {
	t.Parallel()

	_, ok := TokenStatus{Kind: StatusLocked}.UnlocksAt()
	assert.False(t, ok)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := TokenStatus{Kind: StatusUnlocking, InitiatedTimestamp: uint64(start.UnixNano())}
	at, ok := s.UnlocksAt()
	require.True(t, ok)
	assert.True(t, at.Equal(start.Add(24*time.Hour)))
	assert.Equal(t, "Unlocking(1704067200000000000)", s.String())
}

func TestTokenInfo_Decode(t *testing.T) {
	t.Parallel()

	raw := `{
		"backup_trigger_account_id": null,
		"price_oracle_account_id": "priceoracle.testnet",
		"asset_id": "aBTC",
		"minimum_unlock_price": {"multiplier": "150000", "decimals": 4},
		"locked_token_account_id": "btc.fakes.testnet",
		"status": "Locked"
	}`

	var info TokenInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))
	assert.Nil(t, info.BackupTriggerAccountID)
	assert.Equal(t, "priceoracle.testnet", info.PriceOracleAccountID)
	assert.Equal(t, "aBTC", info.AssetID)
	assert.True(t, info.MinimumUnlockPrice.Equal(NewPrice(15, 0)))
	assert.Equal(t, StatusLocked, info.Status.Kind)
}
