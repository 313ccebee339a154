package near

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FTMetadataSpec is the fungible token metadata standard version.
const FTMetadataSpec = "ft-1.0.0"

// FungibleTokenMetadata is the NEP-148 metadata of a fungible token.
type FungibleTokenMetadata struct {
	Spec          string  `json:"spec" mapstructure:"spec" yaml:"spec"`
	Name          string  `json:"name" mapstructure:"name" yaml:"name"`
	Symbol        string  `json:"symbol" mapstructure:"symbol" yaml:"symbol"`
	Icon          *string `json:"icon,omitempty" mapstructure:"icon" yaml:"icon,omitempty"`
	Reference     *string `json:"reference,omitempty" mapstructure:"reference" yaml:"reference,omitempty"`
	ReferenceHash *string `json:"reference_hash,omitempty" mapstructure:"reference_hash" yaml:"reference_hash,omitempty"`
	Decimals      uint8   `json:"decimals" mapstructure:"decimals" yaml:"decimals"`
}

// TokenArgs is the record the factory keeps for every token it created, as returned by
// get_token and get_tokens.
type TokenArgs struct {
	LockedTokenAccountID   string                `json:"locked_token_account_id"`
	Meta                   FungibleTokenMetadata `json:"meta"`
	BackupTriggerAccountID *string               `json:"backup_trigger_account_id"`
	PriceOracleAccountID   string                `json:"price_oracle_account_id"`
	AssetID                string                `json:"asset_id"`
	MinimumUnlockPrice     Price                 `json:"minimum_unlock_price"`
}

// TokenInfo is the state of a locked token contract, as returned by get_info.
type TokenInfo struct {
	BackupTriggerAccountID *string     `json:"backup_trigger_account_id"`
	PriceOracleAccountID   string      `json:"price_oracle_account_id"`
	AssetID                string      `json:"asset_id"`
	MinimumUnlockPrice     Price       `json:"minimum_unlock_price"`
	LockedTokenAccountID   string      `json:"locked_token_account_id"`
	Status                 TokenStatus `json:"status"`
}

// LockStatus is the lock state of a locked token.
type LockStatus string

const (
	StatusLocked    LockStatus = "Locked"
	StatusUnlocking LockStatus = "Unlocking"
	StatusUnlocked  LockStatus = "Unlocked"
)

// UnlockingDuration is how long a token stays Unlocking before it unlocks.
const UnlockingDuration = 24 * time.Hour

// TokenStatus is the status of a locked token. InitiatedTimestamp (block timestamp in
// nanoseconds) is only set while Unlocking.
//
// On the wire it is either a bare string ("Locked", "Unlocked") or
// {"Unlocking": {"initiated_timestamp": "<u64 as string>"}}.
type TokenStatus struct {
	Kind               LockStatus
	InitiatedTimestamp uint64
}

// UnlocksAt returns when an Unlocking token unlocks.
func (s TokenStatus) UnlocksAt() (time.Time, bool) {
	if s.Kind != StatusUnlocking {
		return time.Time{}, false
	}

	// #nosec G115 -- block timestamps fit in int64 nanoseconds until year 2262
	return time.Unix(0, int64(s.InitiatedTimestamp)).Add(UnlockingDuration), true
}

func (s TokenStatus) String() string {
	if s.Kind == StatusUnlocking {
		return fmt.Sprintf("%s(%d)", s.Kind, s.InitiatedTimestamp)
	}

	return string(s.Kind)
}

type unlockingStatus struct {
	Unlocking struct {
		InitiatedTimestamp string `json:"initiated_timestamp"`
	} `json:"Unlocking"`
}

func (s TokenStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusLocked, StatusUnlocked:
		return json.Marshal(string(s.Kind))
	case StatusUnlocking:
		var u unlockingStatus
		u.Unlocking.InitiatedTimestamp = strconv.FormatUint(s.InitiatedTimestamp, 10)

		return json.Marshal(u)
	default:
		return nil, fmt.Errorf("unknown token status %q", s.Kind)
	}
}

func (s *TokenStatus) UnmarshalJSON(b []byte) error {
	var kind string
	if err := json.Unmarshal(b, &kind); err == nil {
		switch LockStatus(kind) {
		case StatusLocked, StatusUnlocked:
			*s = TokenStatus{Kind: LockStatus(kind)}
			return nil
		default:
			return fmt.Errorf("unknown token status %q", kind)
		}
	}

	var u unlockingStatus
	if err := json.Unmarshal(b, &u); err != nil {
		return fmt.Errorf("invalid token status %s: %w", b, err)
	}
	if u.Unlocking.InitiatedTimestamp == "" {
		return fmt.Errorf("invalid token status %s", b)
	}
	ts, err := strconv.ParseUint(u.Unlocking.InitiatedTimestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unlocking timestamp %q: %w", u.Unlocking.InitiatedTimestamp, err)
	}
	*s = TokenStatus{Kind: StatusUnlocking, InitiatedTimestamp: ts}

	return nil
}
