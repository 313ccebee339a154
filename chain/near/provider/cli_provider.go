package provider

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/smartcontractkit/near-deployments-framework/chain"
	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// CLIChainProviderConfig holds the configuration to initialize the CLIChainProvider.
type CLIChainProviderConfig struct {
	// Optional: The RPC URL passed to near-cli, near-cli picks its default for the network
	// when empty
	NodeURL string
	// Optional: The near-cli executable, defaults to "near"
	Binary string
	// Optional: Runs the commands, defaults to ExecRunner
	Runner CommandRunner
	Logger logger.Logger
}

var _ chain.Provider = (*CLIChainProvider)(nil)

// CLIChainProvider provides a NEAR chain reached through near-cli, signing with the keys
// near-cli holds.
type CLIChainProvider struct {
	networkID string
	config    CLIChainProviderConfig

	chain *near.Chain
}

// NewCLIChainProvider creates a new CLIChainProvider for the given network.
func NewCLIChainProvider(networkID string, config CLIChainProviderConfig) *CLIChainProvider {
	return &CLIChainProvider{
		networkID: networkID,
		config:    config,
	}
}

// Initialize resolves the near-cli executable and sets up the chain client.
func (p *CLIChainProvider) Initialize(_ context.Context) (chain.BlockChain, error) {
	if p.chain != nil {
		return *p.chain, nil // Already initialized
	}

	if p.networkID == "" {
		return nil, errors.New("network id is required")
	}

	binary := p.config.Binary
	if binary == "" {
		binary = DefaultCLIBinary
	}

	runner := p.config.Runner
	if runner == nil {
		path, err := exec.LookPath(binary)
		if err != nil {
			return nil, fmt.Errorf("near-cli executable %q not found: %w", binary, err)
		}
		binary = path
		runner = ExecRunner{}
	}

	lggr := p.config.Logger
	if lggr == nil {
		lggr = logger.Nop()
	}

	p.chain = &near.Chain{
		NetworkID: p.networkID,
		NodeURL:   p.config.NodeURL,
		Client: &CLIClient{
			Binary:    binary,
			NetworkID: p.networkID,
			NodeURL:   p.config.NodeURL,
			Runner:    runner,
			Logger:    lggr,
		},
	}

	return *p.chain, nil
}

// Name returns the name of the CLIChainProvider.
func (*CLIChainProvider) Name() string {
	return "NEAR CLI Chain Provider"
}

// BlockChain returns the chain managed by this provider. You must call Initialize before using
// this method.
func (p *CLIChainProvider) BlockChain() chain.BlockChain {
	return *p.chain
}
