package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartcontractkit/near-deployments-framework/chain"
	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/chain/near/provider/rpcclient"
)

// RPCChainProviderConfig holds the configuration to initialize the RPCChainProvider.
type RPCChainProviderConfig struct {
	// Required: The RPC URL of the NEAR node
	NodeURL string
	// Optional: The near-cli credentials directory, defaults to ~/.near-credentials
	CredentialsDir string
	// Optional: Signing keys, takes precedence over CredentialsDir
	Keys KeySource
	// Optional: Attempts for requests failing in transport, defaults to 1
	RetryAttempts uint
	RetryDelay    time.Duration
	// Optional: Headers sent with every request
	Headers map[string]string
	// Optional: Timeout of a single request
	Timeout time.Duration
}

// validate checks if the RPCChainProviderConfig is valid.
func (c RPCChainProviderConfig) validate() error {
	if c.NodeURL == "" {
		return errors.New("node url is required")
	}

	return nil
}

var _ chain.Provider = (*RPCChainProvider)(nil)

// RPCChainProvider provides a NEAR chain reached over JSON-RPC.
type RPCChainProvider struct {
	networkID string
	config    RPCChainProviderConfig

	chain *near.Chain
}

// NewRPCChainProvider creates a new RPCChainProvider for the given network.
func NewRPCChainProvider(networkID string, config RPCChainProviderConfig) *RPCChainProvider {
	return &RPCChainProvider{
		networkID: networkID,
		config:    config,
	}
}

// Initialize validates the configuration and sets up the chain client.
func (p *RPCChainProvider) Initialize(_ context.Context) (chain.BlockChain, error) {
	if p.chain != nil {
		return *p.chain, nil // Already initialized
	}

	if p.networkID == "" {
		return nil, errors.New("network id is required")
	}
	if err := p.config.validate(); err != nil {
		return nil, fmt.Errorf("failed to validate provider config: %w", err)
	}

	keys := p.config.Keys
	if keys == nil {
		dir := p.config.CredentialsDir
		if dir == "" {
			var err error
			if dir, err = rpcclient.DefaultCredentialsDir(); err != nil {
				return nil, err
			}
		}
		keys = rpcclient.Keystore{Dir: dir, NetworkID: p.networkID}
	}

	opts := []rpcclient.Option{rpcclient.WithHeaders(p.config.Headers)}
	if p.config.RetryAttempts > 0 {
		opts = append(opts, rpcclient.WithRetry(p.config.RetryAttempts, p.config.RetryDelay))
	}
	if p.config.Timeout > 0 {
		opts = append(opts, rpcclient.WithTimeout(p.config.Timeout))
	}

	p.chain = &near.Chain{
		NetworkID: p.networkID,
		NodeURL:   p.config.NodeURL,
		Client:    NewRPCClient(rpcclient.New(p.config.NodeURL, opts...), keys),
	}

	return *p.chain, nil
}

// Name returns the name of the RPCChainProvider.
func (*RPCChainProvider) Name() string {
	return "NEAR RPC Chain Provider"
}

// BlockChain returns the chain managed by this provider. You must call Initialize before using
// this method.
func (p *RPCChainProvider) BlockChain() chain.BlockChain {
	return *p.chain
}
