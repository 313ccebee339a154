package deployment

import (
	"context"
	"fmt"

	"github.com/smartcontractkit/near-deployments-framework/chain"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// Environment holds what a deployment needs to run against a named environment, e.g.
// "testnet" or "mainnet".
type Environment struct {
	Name             string
	Logger           logger.Logger
	BlockChains      chain.BlockChains
	GetContext       func() context.Context
	OperationsBundle operations.Bundle
}

// NewEnvironment creates an environment whose operations are reported to reporter. The
// operation registry of the environment holds StepOp and ops.
func NewEnvironment(
	name string,
	lggr logger.Logger,
	chains chain.BlockChains,
	ctxGetter func() context.Context,
	reporter operations.Reporter,
	ops ...*operations.Operation[any, any, any],
) *Environment {
	registry := operations.NewOperationRegistry(append([]*operations.Operation[any, any, any]{StepOp.AsUntyped()}, ops...)...)

	return &Environment{
		Name:        name,
		Logger:      lggr,
		BlockChains: chains,
		GetContext:  ctxGetter,
		OperationsBundle: operations.NewBundle(
			ctxGetter,
			lggr,
			reporter,
			operations.WithOperationRegistry(registry),
		),
	}
}

// Runner returns a runner submitting steps to the NEAR chain of network.
func (e *Environment) Runner(network string, opts ...RunnerOption) (*Runner, error) {
	c, err := e.BlockChains.NearChain(network)
	if err != nil {
		return nil, fmt.Errorf("environment %s: %w", e.Name, err)
	}
	if c.Client == nil {
		return nil, fmt.Errorf("environment %s: chain %s has no client", e.Name, c.String())
	}

	return NewRunner(c.Client, e.OperationsBundle, opts...), nil
}
