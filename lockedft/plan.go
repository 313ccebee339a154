// Package lockedft builds the deployment of a locked fungible token factory and exposes typed
// operations over the factory and token contracts.
package lockedft

import (
	"errors"
	"fmt"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/deployment"
	"github.com/smartcontractkit/near-deployments-framework/internal/pointer"
)

// Method names of the factory, token and price oracle contracts.
const (
	MethodNew                  = "new"
	MethodStorageDeposit       = "storage_deposit"
	MethodWhitelistToken       = "whitelist_token"
	MethodCreateToken          = "create_token"
	MethodGetToken             = "get_token"
	MethodGetTokens            = "get_tokens"
	MethodGetNumberOfTokens    = "get_number_of_tokens"
	MethodGetWhitelistedTokens = "get_whitelisted_tokens"
	MethodGetInfo              = "get_info"
	MethodGetStatus            = "get_status"
	MethodUnlock               = "unlock"
	MethodUnwrap               = "unwrap"
	MethodUpdateMeta           = "update_meta"
	MethodOracleCall           = "oracle_call"
)

// CreateTokenGas is the gas attached to create_token unless configured otherwise.
const CreateTokenGas near.Gas = 200_000_000_000_000

// ErrInvalidPlan is returned by Plan.Validate.
var ErrInvalidPlan = errors.New("invalid plan")

// Token describes the token to whitelist and create.
type Token struct {
	// TokenID is the locked token account, e.g. "wrap.testnet".
	TokenID string
	// AssetID is the asset the price oracle reports for the token. It defaults to TokenID.
	AssetID string
	// Title names the created tokens, it must satisfy near.ValidateSymbol.
	Title string
	// Decimals is the whitelisted number of decimals.
	Decimals uint8
	// TargetPrice is the unlock price scaled by PriceScale.
	TargetPrice near.U128
	// Metadata is sent to create_token. Its decimals must equal Decimals.
	Metadata               near.FungibleTokenMetadata
	BackupTriggerAccountID *string
	PriceOracleAccountID   string
}

// OracleCall is the price oracle request closing the deployment.
type OracleCall struct {
	// ReceiverID receives the prices. It defaults to the derived token account.
	ReceiverID string
	// AssetIDs default to the asset of the token.
	AssetIDs []string
	Msg      string
	// Deposit defaults to one yoctoNEAR.
	Deposit *near.Balance
}

// Plan is the configuration of a deployment. The base account is both the factory account
// and the caller of every state changing step.
type Plan struct {
	BaseAccountID  string
	StorageDeposit near.Balance
	Token          Token
	// CreateTokenGas defaults to CreateTokenGas.
	CreateTokenGas near.Gas
	Oracle         OracleCall
	// AllowDecimalsMismatch lets the metadata decimals differ from the whitelisted decimals.
	// The factory rejects such a token with "Wrong decimals".
	AllowDecimalsMismatch bool
}

// TokenAccount returns the account get_info is queried on, the token id as a sub-account of
// the base account.
func (p Plan) TokenAccount() string {
	return near.DeriveSubAccount(p.Token.TokenID, p.BaseAccountID)
}

func (p Plan) assetID() string {
	if p.Token.AssetID != "" {
		return p.Token.AssetID
	}

	return p.Token.TokenID
}

func (p Plan) createTokenGas() near.Gas {
	if p.CreateTokenGas == 0 {
		return CreateTokenGas
	}

	return p.CreateTokenGas
}

func (p Plan) oracleReceiver() string {
	if p.Oracle.ReceiverID != "" {
		return p.Oracle.ReceiverID
	}

	return p.TokenAccount()
}

func (p Plan) oracleAssetIDs() []string {
	if len(p.Oracle.AssetIDs) > 0 {
		return p.Oracle.AssetIDs
	}

	return []string{p.assetID()}
}

func (p Plan) oracleDeposit() *near.Balance {
	if p.Oracle.Deposit != nil {
		return p.Oracle.Deposit
	}

	return oneYocto()
}

// Validate checks the plan before any step is submitted.
func (p Plan) Validate() error {
	accounts := []struct {
		field string
		id    string
	}{
		{"base account id", p.BaseAccountID},
		{"token id", p.Token.TokenID},
		{"asset id", p.assetID()},
		{"price oracle account id", p.Token.PriceOracleAccountID},
		{"oracle receiver id", p.oracleReceiver()},
	}
	if p.Token.BackupTriggerAccountID != nil {
		accounts = append(accounts, struct {
			field string
			id    string
		}{"backup trigger account id", *p.Token.BackupTriggerAccountID})
	}
	for _, a := range accounts {
		if err := near.ValidateAccountID(a.id); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidPlan, a.field, err)
		}
	}

	if err := near.ValidateSymbol(p.Token.Title); err != nil {
		return fmt.Errorf("%w: title: %w", ErrInvalidPlan, err)
	}
	if p.Token.TargetPrice.IsZero() {
		return fmt.Errorf("%w: target price must be greater than 0", ErrInvalidPlan)
	}
	if p.Token.Decimals > maxDecimals {
		return fmt.Errorf("%w: decimals %d exceed %d", ErrInvalidPlan, p.Token.Decimals, maxDecimals)
	}
	if p.Token.Metadata.Decimals != p.Token.Decimals && !p.AllowDecimalsMismatch {
		return fmt.Errorf("%w: metadata decimals %d differ from whitelisted decimals %d",
			ErrInvalidPlan, p.Token.Metadata.Decimals, p.Token.Decimals)
	}
	if p.createTokenGas() > near.MaxGas {
		return fmt.Errorf("%w: create_token gas %s exceeds %s", ErrInvalidPlan, p.createTokenGas(), near.MaxGas)
	}
	if err := near.ValidateAccountID(FactoryTokenAccount(p.Token.Title, p.Token.TargetPrice, p.BaseAccountID)); err != nil {
		return fmt.Errorf("%w: created token account: %w", ErrInvalidPlan, err)
	}

	return nil
}

// Steps returns the deployment steps in the order they run: new, storage_deposit,
// whitelist_token, create_token, get_token, get_info and oracle_call.
func (p Plan) Steps() []deployment.Step {
	base := p.BaseAccountID
	meta := p.Token.Metadata
	if meta.Spec == "" {
		meta.Spec = near.FTMetadataSpec
	}

	tokenArgs := map[string]any{
		"token_id":                  p.Token.TokenID,
		"target_price":              p.Token.TargetPrice,
		"metadata":                  meta,
		"backup_trigger_account_id": p.Token.BackupTriggerAccountID,
		"price_oracle_account_id":   p.Token.PriceOracleAccountID,
	}

	return []deployment.Step{
		{
			Receiver: base,
			Method:   MethodNew,
			Signer:   base,
		},
		{
			Receiver: base,
			Method:   MethodStorageDeposit,
			Signer:   base,
			Deposit:  pointer.To(p.StorageDeposit),
		},
		{
			Receiver: base,
			Method:   MethodWhitelistToken,
			Args: map[string]any{
				"token_id": p.Token.TokenID,
				"asset_id": p.assetID(),
				"title":    p.Token.Title,
				"decimals": p.Token.Decimals,
			},
			Signer: base,
		},
		{
			Receiver: base,
			Method:   MethodCreateToken,
			Args:     map[string]any{"token_args": tokenArgs},
			Signer:   base,
			Gas:      p.createTokenGas(),
		},
		{
			Receiver: base,
			Method:   MethodGetToken,
			Args:     map[string]any{"token_id": p.Token.TokenID},
			View:     true,
		},
		{
			Receiver: p.TokenAccount(),
			Method:   MethodGetInfo,
			View:     true,
		},
		{
			Receiver: p.Token.PriceOracleAccountID,
			Method:   MethodOracleCall,
			Args: map[string]any{
				"receiver_id": p.oracleReceiver(),
				"asset_ids":   p.oracleAssetIDs(),
				"msg":         p.Oracle.Msg,
			},
			Signer:  base,
			Deposit: p.oracleDeposit(),
		},
	}
}

// ExpectedToken returns the record get_token is expected to return once create_token
// succeeded.
func (p Plan) ExpectedToken() near.TokenArgs {
	meta := p.Token.Metadata
	if meta.Spec == "" {
		meta.Spec = near.FTMetadataSpec
	}

	return near.TokenArgs{
		LockedTokenAccountID:   p.Token.TokenID,
		Meta:                   FactoryMetadata(meta, p.Token.Title, p.Token.TargetPrice),
		BackupTriggerAccountID: p.Token.BackupTriggerAccountID,
		PriceOracleAccountID:   p.Token.PriceOracleAccountID,
		AssetID:                p.assetID(),
		MinimumUnlockPrice:     MinimumUnlockPrice(p.Token.TargetPrice, p.Token.Decimals),
	}
}
