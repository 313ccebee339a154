package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/deployment"
	"github.com/smartcontractkit/near-deployments-framework/engine/config"
	"github.com/smartcontractkit/near-deployments-framework/lockedft"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
)

// loadConfig loads the config named by --config and applies the --transport override.
func loadConfig(cmd *cobra.Command, cfg Config) (*config.Config, error) {
	deps := cfg.deps()

	path := flags.MustString(cmd.Flags().GetString("config"))
	c, err := deps.ConfigLoader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if f := cmd.Flags().Lookup("transport"); f != nil && f.Value.String() != "" {
		c.Network.Transport = f.Value.String()
	}
	if err := c.Network.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}

	return c, nil
}

// session is an environment opened for one command run.
type session struct {
	runID    string
	cfg      *config.Config
	env      *deployment.Environment
	chain    near.Chain
	reporter operations.Reporter
	close    func() error
}

// openSession connects to the configured network and opens the report store of a new run.
func openSession(ctx context.Context, cfg Config, c *config.Config) (*session, error) {
	deps := cfg.deps()

	p, err := deps.ChainLoader(c.Network, cfg.Logger)
	if err != nil {
		return nil, err
	}
	chains, nearChain, err := nearChain(ctx, p, c.Network.NetworkID, cfg.Logger)
	if err != nil {
		return nil, err
	}

	runID := deployment.NewRunID()
	reporter, closeFn, err := deps.ReporterLoader(ctx, c.Reports.DatabaseURL, runID)
	if err != nil {
		return nil, err
	}

	env := deployment.NewEnvironment(
		c.Network.NetworkID,
		cfg.Logger,
		chains,
		func() context.Context { return ctx },
		reporter,
		lockedft.Operations()...,
	)

	cfg.Logger.Infow("Opened session", "run", runID, "chain", nearChain.String())

	return &session{
		runID:    runID,
		cfg:      c,
		env:      env,
		chain:    nearChain,
		reporter: reporter,
		close:    closeFn,
	}, nil
}

// runner returns a step runner on the session chain.
func (s *session) runner() (*deployment.Runner, error) {
	return s.env.Runner(s.cfg.Network.NetworkID, deployment.WithStepTimeout(s.cfg.Network.StepTimeout))
}

// lockedftDeps returns the dependencies of the lockedft operations.
func (s *session) lockedftDeps() lockedft.Deps {
	return lockedft.Deps{Client: s.chain.Client}
}

// Close releases the report store.
func (s *session) Close() error {
	if s.close == nil {
		return nil
	}

	return s.close()
}

// withSession loads the config, opens a session and runs fn with it.
func withSession(cmd *cobra.Command, cfg Config, fn func(s *session) error) (err error) {
	c, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cfg, c)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	return fn(s)
}
