package deploy

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/deployment"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/output"
)

type stepFlags struct {
	name     string
	receiver string
	method   string
	args     string
	signer   string
	gas      string
	deposit  string
	yocto    string
	view     bool
}

// NewStepCmd creates the "step" command submitting a single function call or view.
func NewStepCmd(cfg Config) *cobra.Command {
	var f stepFlags

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Submit a single function call or view.",
		Example: `  near-deployer step --receiver locked-ft.testnet --method get_token --args '{"token_id":"near_6"}' --view
  near-deployer step --receiver locked-ft.testnet --method storage_deposit --signer locked-ft.testnet --deposit 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			step, err := f.step()
			if err != nil {
				return err
			}

			return withSession(cmd, cfg, func(s *session) error {
				runner, err := s.runner()
				if err != nil {
					return err
				}
				resp, err := runner.RunStep(cmd.Context(), step)
				if err != nil {
					return err
				}

				return output.PrintRaw(cmd, resp)
			})
		},
	}

	flags.Transport(cmd)
	flags.Format(cmd)
	cmd.Flags().StringVar(&f.name, "name", "", "Label of the step in logs and reports")
	cmd.Flags().StringVar(&f.receiver, "receiver", "", "Account the method is called on (required)")
	cmd.Flags().StringVar(&f.method, "method", "", "Method name (required)")
	cmd.Flags().StringVar(&f.args, "args", "", "JSON object of method arguments")
	cmd.Flags().StringVar(&f.signer, "signer", "", "Signing account, required unless --view")
	cmd.Flags().StringVar(&f.gas, "gas", "", `Attached gas, raw or in Tgas ("200Tgas")`)
	cmd.Flags().StringVar(&f.deposit, "deposit", "", "Attached deposit in NEAR")
	cmd.Flags().StringVar(&f.yocto, "deposit-yocto", "", "Attached deposit in yoctoNEAR")
	cmd.Flags().BoolVar(&f.view, "view", false, "Run the method as a read-only view")
	_ = cmd.MarkFlagRequired("receiver")
	_ = cmd.MarkFlagRequired("method")
	cmd.MarkFlagsMutuallyExclusive("deposit", "deposit-yocto")
	flags.NearCLIAliases(cmd)

	return cmd
}

// step builds the step described by the flags.
func (f stepFlags) step() (deployment.Step, error) {
	step := deployment.Step{
		Name:     f.name,
		Receiver: f.receiver,
		Method:   f.method,
		Signer:   f.signer,
		View:     f.view,
	}

	if f.args != "" {
		if err := json.Unmarshal([]byte(f.args), &step.Args); err != nil {
			return deployment.Step{}, fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}

	if f.gas != "" {
		if f.view {
			return deployment.Step{}, errors.New("--gas cannot be used with --view")
		}
		gas, err := near.ParseGas(f.gas)
		if err != nil {
			return deployment.Step{}, fmt.Errorf("--gas: %w", err)
		}
		step.Gas = gas
	}

	switch {
	case f.deposit != "":
		deposit, err := near.ParseNEAR(f.deposit)
		if err != nil {
			return deployment.Step{}, fmt.Errorf("--deposit: %w", err)
		}
		step.Deposit = &deposit
	case f.yocto != "":
		deposit, err := near.ParseYocto(f.yocto)
		if err != nil {
			return deployment.Step{}, fmt.Errorf("--deposit-yocto: %w", err)
		}
		step.Deposit = &deposit
	}

	return step, step.Validate()
}
