// Command near-deployer deploys a locked token factory to a NEAR network and operates the
// tokens it creates.
//
// Logging is configured with NEAR_LOG_LEVEL (debug, info, warn, error) and NEAR_LOG_FORMAT
// (console, json).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/pkg/commands"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	lcfg, err := logger.ParseConfig(os.Getenv("NEAR_LOG_LEVEL"), os.Getenv("NEAR_LOG_FORMAT"))
	if err != nil {
		return err
	}
	lggr, err := lcfg.New()
	if err != nil {
		return err
	}
	defer func() { _ = lggr.Sync() }()

	root := newRootCmd(lggr)
	root.SetArgs(args)

	return root.ExecuteContext(ctx)
}

func newRootCmd(lggr logger.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "near-deployer",
		Short:         "Deploy and operate a NEAR locked token factory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.Config(root)

	root.AddCommand(commands.New(lggr).All()...)

	return root
}
