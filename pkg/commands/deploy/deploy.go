package deploy

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/deployment"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/output"
)

// NewDeployCmd creates the "deploy" command running the full factory deployment: new,
// storage_deposit, whitelist_token, create_token, get_token, get_info and oracle_call.
func NewDeployCmd(cfg Config) *cobra.Command {
	var (
		dryRun    bool
		noPersist bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the locked token factory and create the configured token.",
		Long: "Runs the deployment steps in order and stops at the first failure. Steps that ran " +
			"are not rolled back. The run record and the operation reports are saved under " +
			"<artifacts_dir>/<network>.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd, cfg, dryRun, !noPersist)
		},
	}

	flags.Transport(cmd)
	flags.Format(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the steps without submitting them")
	cmd.Flags().BoolVar(&noPersist, "no-persist", false, "Do not save the run record and reports")

	return cmd
}

// runDeploy executes the deploy command logic.
func runDeploy(cmd *cobra.Command, cfg Config, dryRun, persist bool) (err error) {
	c, err := loadConfig(cmd, cfg)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid deployment config: %w", err)
	}
	plan, err := c.Deployment.Plan()
	if err != nil {
		return err
	}
	steps := plan.Steps()

	if dryRun {
		return output.Print(cmd, steps)
	}

	deps := cfg.deps()
	s, err := openSession(cmd.Context(), cfg, c)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	runner, err := s.runner()
	if err != nil {
		return err
	}

	cmd.PrintErrf("Deploying %s to %s (run %s)\n", plan.BaseAccountID, s.chain.String(), s.runID)

	record := deployment.RunRecord{
		ID:          s.runID,
		Environment: s.env.Name,
		Network:     c.Network.NetworkID,
		StartedAt:   deps.Now(),
	}
	results, runErr := runner.RunSequence(cmd.Context(), steps)
	record.FinishedAt = deps.Now()
	record.Results = results
	if runErr != nil {
		record.Error = runErr.Error()
	}

	if persist {
		if err := saveRun(cmd, s, c.Reports.ArtifactsDir, record); err != nil {
			return errors.Join(runErr, err)
		}
	}

	if err := output.Print(cmd, record); err != nil {
		return errors.Join(runErr, err)
	}

	return runErr
}

// saveRun writes the run record and the operation reports of the run.
func saveRun(cmd *cobra.Command, s *session, artifactsDir string, record deployment.RunRecord) error {
	dir := deployment.NewArtifactsDir(artifactsDir, s.env.Name)

	format, err := flags.GetFormat(cmd)
	if err != nil {
		return err
	}
	path, err := dir.SaveRun(record, format)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	reports, err := s.reporter.GetReports()
	if err != nil {
		return fmt.Errorf("failed to read operation reports: %w", err)
	}
	if err := dir.SaveOperationsReports(s.runID, reports); err != nil {
		return fmt.Errorf("failed to save operation reports: %w", err)
	}

	cmd.PrintErrf("Saved run record to %s\n", path)

	return nil
}
