// Package state provides CLI commands reading the saved state of deployment runs.
package state

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/deployment"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/output"
)

// NewCommand creates a new state command with all subcommands.
// The command requires an environment flag (-e) which is used by all subcommands.
//
// Usage:
//
//	rootCmd.AddCommand(state.NewCommand(state.Config{
//	    Logger: lggr,
//	}))
func NewCommand(cfg Config) *cobra.Command {
	// Apply defaults for optional dependencies
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "state",
		Short: "State commands",
	}

	cmd.AddCommand(newShowCmd(cfg))

	// The environment flag is persistent because all subcommands require it.
	cmd.PersistentFlags().
		StringP("environment", "e", "", "Deployment environment, the network id of the run (required)")
	_ = cmd.MarkPersistentFlagRequired("environment")

	return cmd
}

// runState is a saved run with the operation reports it recorded.
type runState struct {
	Run       deployment.RunRecord          `json:"run"`
	Succeeded bool                          `json:"succeeded"`
	Reports   []operations.Report[any, any] `json:"reports,omitempty"`
}

func newShowCmd(cfg Config) *cobra.Command {
	var withReports bool

	cmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show a saved deployment run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := cfg.deps()
			envKey := flags.MustString(cmd.Flags().GetString("environment"))
			runID := args[0]

			c, err := deps.ConfigLoader(flags.MustString(cmd.Flags().GetString("config")))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			dir := deployment.NewArtifactsDir(c.Reports.ArtifactsDir, envKey)

			run, err := deps.RunLoader(dir, runID)
			if err != nil {
				return fmt.Errorf("failed to load run %s: %w", runID, err)
			}
			out := runState{Run: run, Succeeded: run.Succeeded()}

			if withReports {
				if out.Reports, err = deps.ReportsLoader(dir, runID); err != nil {
					return fmt.Errorf("failed to load operation reports of run %s: %w", runID, err)
				}
			}

			cfg.Logger.Debugw("Loaded run", "run", runID, "environment", envKey, "reports", len(out.Reports))

			return output.Print(cmd, out)
		},
	}

	flags.Format(cmd)
	cmd.Flags().BoolVarP(&withReports, "reports", "r", false, "Include the operation reports of the run")

	return cmd
}
