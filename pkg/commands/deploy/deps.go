// Package deploy provides the CLI commands deploying and operating a locked token factory.
package deploy

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver of the report store

	"github.com/smartcontractkit/near-deployments-framework/chain"
	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/chain/near/provider"
	"github.com/smartcontractkit/near-deployments-framework/engine/config"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// ConfigLoaderFunc loads the deployment config from a file, falling back to the environment.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// ChainLoaderFunc returns the provider of the NEAR chain the network config points at.
type ChainLoaderFunc func(cfg config.NetworkConfig, lggr logger.Logger) (chain.Provider, error)

// ReporterLoaderFunc opens the report store of a run. The returned func releases it.
type ReporterLoaderFunc func(ctx context.Context, databaseURL, runID string) (operations.Reporter, func() error, error)

// defaultChainLoader builds a near-cli or JSON-RPC provider depending on the transport.
func defaultChainLoader(cfg config.NetworkConfig, lggr logger.Logger) (chain.Provider, error) {
	switch cfg.Transport {
	case config.TransportCLI:
		return provider.NewCLIChainProvider(cfg.NetworkID, provider.CLIChainProviderConfig{
			NodeURL: cfg.NodeURL,
			Binary:  cfg.CLIBinary,
			Logger:  lggr,
		}), nil
	case config.TransportRPC:
		return provider.NewRPCChainProvider(cfg.NetworkID, provider.RPCChainProviderConfig{
			NodeURL:        cfg.NodeURL,
			CredentialsDir: cfg.CredentialsDir,
			RetryAttempts:  cfg.RetryAttempts,
			Timeout:        cfg.RequestTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// defaultReporterLoader keeps reports in memory, or in Postgres when a database url is set.
func defaultReporterLoader(ctx context.Context, databaseURL, runID string) (operations.Reporter, func() error, error) {
	if databaseURL == "" {
		return operations.NewMemoryReporter(), func() error { return nil }, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report store: %w", err)
	}

	reporter := operations.NewSQLReporter(db, runID)
	if err := reporter.EnsureSchema(ctx); err != nil {
		_ = db.Close()

		return nil, nil, err
	}

	return reporter, db.Close, nil
}

// Deps holds the injectable dependencies of the deploy commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConfigLoader loads the deployment config.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// ChainLoader returns the chain provider.
	// Default: near-cli or JSON-RPC provider, per the configured transport
	ChainLoader ChainLoaderFunc

	// ReporterLoader opens the report store.
	// Default: in memory, or Postgres when reports.database_url is set
	ReporterLoader ReporterLoaderFunc

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = config.Load
	}
	if d.ChainLoader == nil {
		d.ChainLoader = defaultChainLoader
	}
	if d.ReporterLoader == nil {
		d.ReporterLoader = defaultReporterLoader
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Config holds the configuration of the deploy commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// nearChain initializes the provider and returns its NEAR chain through a lazily loaded
// BlockChains, so the chain is only reached once a command needs it.
func nearChain(ctx context.Context, p chain.Provider, network string, lggr logger.Logger) (chain.BlockChains, near.Chain, error) {
	chains := chain.NewLazyBlockChains(ctx, map[string]chain.ChainLoader{
		network: chain.ProviderLoader(p),
	}, lggr)

	c, err := chains.NearChain(network)
	if err != nil {
		return chain.BlockChains{}, near.Chain{}, fmt.Errorf("failed to initialize %s: %w", p.Name(), err)
	}

	return chains, c, nil
}
