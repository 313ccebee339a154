package lockedft

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/internal/pointer"
	"github.com/smartcontractkit/near-deployments-framework/operations"
)

// ErrTokenNotFound is returned by GetTokenOp when the factory has no token with the id.
var ErrTokenNotFound = errors.New("token not found")

// Deps are the dependencies of the factory and token operations.
type Deps struct {
	Client near.Client
}

// FactoryInput addresses a factory.
type FactoryInput struct {
	Factory string `json:"factory"`
}

// PageInput selects a page of a factory collection.
type PageInput struct {
	Factory   string `json:"factory"`
	FromIndex uint64 `json:"from_index"`
	Limit     uint64 `json:"limit"`
}

// TokenInput selects a token of a factory by id.
type TokenInput struct {
	Factory string `json:"factory"`
	TokenID string `json:"token_id"`
}

// AccountInput addresses a locked token contract.
type AccountInput struct {
	Account string `json:"account"`
}

// TokenCallInput is a state changing call on a locked token contract.
type TokenCallInput struct {
	Account string `json:"account"`
	Signer  string `json:"signer"`
}

// UpdateMetaInput replaces the metadata of a locked token contract.
type UpdateMetaInput struct {
	Account string                     `json:"account"`
	Signer  string                     `json:"signer"`
	Meta    near.FungibleTokenMetadata `json:"meta"`
}

var version1 = semver.MustParse("1.0.0")

// GetNumberOfTokensOp returns the number of tokens created by a factory.
var GetNumberOfTokensOp = operations.NewOperation(
	"lockedft-get-number-of-tokens",
	version1,
	"Returns the number of tokens created by the factory",
	func(b operations.Bundle, deps Deps, in FactoryInput) (uint64, error) {
		var n uint64
		err := view(b, deps, in.Factory, MethodGetNumberOfTokens, nil, &n)

		return n, err
	},
)

// GetTokensOp returns a page of the tokens created by a factory.
var GetTokensOp = operations.NewOperation(
	"lockedft-get-tokens",
	version1,
	"Returns a page of the tokens created by the factory",
	func(b operations.Bundle, deps Deps, in PageInput) ([]near.TokenArgs, error) {
		tokens := []near.TokenArgs{}
		err := view(b, deps, in.Factory, MethodGetTokens, pageArgs(in), &tokens)

		return tokens, err
	},
)

// GetWhitelistedTokensOp returns a page of the token ids whitelisted on a factory.
var GetWhitelistedTokensOp = operations.NewOperation(
	"lockedft-get-whitelisted-tokens",
	version1,
	"Returns a page of the token ids whitelisted on the factory",
	func(b operations.Bundle, deps Deps, in PageInput) ([]string, error) {
		ids := []string{}
		err := view(b, deps, in.Factory, MethodGetWhitelistedTokens, pageArgs(in), &ids)

		return ids, err
	},
)

// GetTokenOp returns the factory record of a token, ErrTokenNotFound when there is none.
var GetTokenOp = operations.NewOperation(
	"lockedft-get-token",
	version1,
	"Returns the factory record of a token",
	func(b operations.Bundle, deps Deps, in TokenInput) (near.TokenArgs, error) {
		var token *near.TokenArgs
		if err := view(b, deps, in.Factory, MethodGetToken, map[string]any{"token_id": in.TokenID}, &token); err != nil {
			return near.TokenArgs{}, err
		}
		if token == nil {
			return near.TokenArgs{}, operations.NewUnrecoverableError(
				fmt.Errorf("%w: %s on %s", ErrTokenNotFound, in.TokenID, in.Factory))
		}

		return *token, nil
	},
)

// GetInfoOp returns the state of a locked token contract.
var GetInfoOp = operations.NewOperation(
	"lockedft-get-info",
	version1,
	"Returns the state of a locked token contract",
	func(b operations.Bundle, deps Deps, in AccountInput) (near.TokenInfo, error) {
		var info near.TokenInfo
		err := view(b, deps, in.Account, MethodGetInfo, nil, &info)

		return info, err
	},
)

// GetStatusOp returns the lock status of a locked token contract.
var GetStatusOp = operations.NewOperation(
	"lockedft-get-status",
	version1,
	"Returns the lock status of a locked token contract",
	func(b operations.Bundle, deps Deps, in AccountInput) (near.TokenStatus, error) {
		var status near.TokenStatus
		err := view(b, deps, in.Account, MethodGetStatus, nil, &status)

		return status, err
	},
)

// UnlockOp unlocks a token. Only its backup trigger account may call it.
var UnlockOp = operations.NewOperation(
	"lockedft-unlock",
	version1,
	"Unlocks a locked token through its backup trigger account",
	func(b operations.Bundle, deps Deps, in TokenCallInput) (json.RawMessage, error) {
		return call(b, deps, in.Account, in.Signer, MethodUnlock, nil, oneYocto())
	},
)

// UnwrapOp returns the locked tokens of the signer once the token is unlocked.
var UnwrapOp = operations.NewOperation(
	"lockedft-unwrap",
	version1,
	"Returns the locked tokens of the signer once the token is unlocked",
	func(b operations.Bundle, deps Deps, in TokenCallInput) (json.RawMessage, error) {
		return call(b, deps, in.Account, in.Signer, MethodUnwrap, nil, oneYocto())
	},
)

// UpdateMetaOp replaces the metadata of a locked token. Only the owner may call it.
var UpdateMetaOp = operations.NewOperation(
	"lockedft-update-meta",
	version1,
	"Replaces the metadata of a locked token contract",
	func(b operations.Bundle, deps Deps, in UpdateMetaInput) (json.RawMessage, error) {
		return call(b, deps, in.Account, in.Signer, MethodUpdateMeta, map[string]any{"meta": in.Meta}, nil)
	},
)

// Operations returns the untyped operations of the package, for an operation registry.
func Operations() []*operations.Operation[any, any, any] {
	return []*operations.Operation[any, any, any]{
		GetNumberOfTokensOp.AsUntyped(),
		GetTokensOp.AsUntyped(),
		GetWhitelistedTokensOp.AsUntyped(),
		GetTokenOp.AsUntyped(),
		GetInfoOp.AsUntyped(),
		GetStatusOp.AsUntyped(),
		UnlockOp.AsUntyped(),
		UnwrapOp.AsUntyped(),
		UpdateMetaOp.AsUntyped(),
	}
}

func oneYocto() *near.Balance {
	return pointer.To(near.OneYocto)
}

func pageArgs(in PageInput) map[string]any {
	return map[string]any{"from_index": in.FromIndex, "limit": in.Limit}
}

func encodeArgs(method string, args map[string]any) (json.RawMessage, error) {
	if len(args) == 0 {
		return json.RawMessage("{}"), nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s args: %w", method, err)
	}

	return b, nil
}

func view(b operations.Bundle, deps Deps, account, method string, args map[string]any, out any) error {
	if err := near.ValidateAccountID(account); err != nil {
		return operations.NewUnrecoverableError(err)
	}
	raw, err := encodeArgs(method, args)
	if err != nil {
		return err
	}

	chain := near.Chain{Client: deps.Client}

	return chain.ViewInto(b.GetContext(), near.ViewRequest{Receiver: account, Method: method, Args: raw}, out)
}

func call(
	b operations.Bundle, deps Deps, account, signer, method string, args map[string]any, deposit *near.Balance,
) (json.RawMessage, error) {
	for _, id := range []string{account, signer} {
		if err := near.ValidateAccountID(id); err != nil {
			return nil, operations.NewUnrecoverableError(err)
		}
	}
	raw, err := encodeArgs(method, args)
	if err != nil {
		return nil, err
	}

	b.Logger.Infow("Calling locked token", "account", account, "method", method, "signer", signer)

	return deps.Client.Call(b.GetContext(), near.CallRequest{
		Receiver: account,
		Method:   method,
		Args:     raw,
		Signer:   signer,
		Deposit:  deposit,
	})
}
