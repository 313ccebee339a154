// Package commands provides the CLI command packages of the NEAR deployer.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	app.AddCommand(cmds.All()...)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/near-deployments-framework/pkg/commands/deploy"
//
//	app.AddCommand(deploy.NewDeployCmd(deploy.Config{
//	    Logger: lggr,
//	    Deps:   deploy.Deps{...},  // inject mocks for testing
//	}))
//
// Every command reads the persistent --config flag, add it to the root with flags.Config.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/deploy"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/state"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr       logger.Logger
	deployDeps deploy.Deps
	stateDeps  *state.Deps
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// WithDeployDeps overrides the dependencies of the deploy, step, view, derive and token
// commands.
func (c *Commands) WithDeployDeps(deps deploy.Deps) *Commands {
	c.deployDeps = deps

	return c
}

// WithStateDeps overrides the dependencies of the state commands.
func (c *Commands) WithStateDeps(deps *state.Deps) *Commands {
	c.stateDeps = deps

	return c
}

func (c *Commands) deployConfig() deploy.Config {
	return deploy.Config{Logger: c.lggr, Deps: c.deployDeps}
}

// Deploy creates the deploy command running the full factory deployment.
func (c *Commands) Deploy() *cobra.Command {
	return deploy.NewDeployCmd(c.deployConfig())
}

// Step creates the step command submitting a single function call or view.
func (c *Commands) Step() *cobra.Command {
	return deploy.NewStepCmd(c.deployConfig())
}

// View creates the view command group reading the factory and its tokens.
func (c *Commands) View() *cobra.Command {
	return deploy.NewViewCmd(c.deployConfig())
}

// Derive creates the derive command printing locked token accounts.
func (c *Commands) Derive() *cobra.Command {
	return deploy.NewDeriveCmd(c.deployConfig())
}

// Token creates the token command group calling a locked token contract.
func (c *Commands) Token() *cobra.Command {
	return deploy.NewTokenCmd(c.deployConfig())
}

// State creates the state command group reading saved runs.
//
// Usage:
//
//	cmds := commands.New(lggr)
//	rootCmd.AddCommand(cmds.State())
func (c *Commands) State() *cobra.Command {
	return state.NewCommand(state.Config{
		Logger: c.lggr,
		Deps:   c.stateDeps,
	})
}

// All returns every command of the deployer.
func (c *Commands) All() []*cobra.Command {
	return []*cobra.Command{
		c.Deploy(),
		c.Step(),
		c.View(),
		c.Derive(),
		c.Token(),
		c.State(),
	}
}
