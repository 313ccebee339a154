package deploy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/lockedft"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/output"
)

// NewTokenCmd creates the "token" command group calling a locked token contract. The account
// defaults to the account derived from deployment.token.token_id.
func NewTokenCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Call a locked token contract.",
	}

	cmd.PersistentFlags().String("signer", "", "Signing account (required)")
	_ = cmd.MarkPersistentFlagRequired("signer")

	cmd.AddCommand(
		newTokenCallCmd(cfg, "unlock", "Start unlocking the token, backup trigger account only", lockedft.UnlockOp),
		newTokenCallCmd(cfg, "unwrap", "Return the locked tokens of the signer once unlocked", lockedft.UnwrapOp),
		newUpdateMetaCmd(cfg),
	)

	return cmd
}

func newTokenCallCmd(
	cfg Config, use, short string, op *operations.Operation[lockedft.TokenCallInput, json.RawMessage, lockedft.Deps],
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [account]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				in := lockedft.TokenCallInput{
					Account: s.tokenAccount(args),
					Signer:  flags.MustString(cmd.Flags().GetString("signer")),
				}

				return executeAndPrintRaw(cmd, s, op, in)
			})
		},
	}
	flags.Transport(cmd)
	flags.Format(cmd)

	return cmd
}

func newUpdateMetaCmd(cfg Config) *cobra.Command {
	var metaFile string

	cmd := &cobra.Command{
		Use:   "update-meta [account]",
		Short: "Replace the token metadata with a JSON file, owner only",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := readMetadata(metaFile)
			if err != nil {
				return err
			}

			return withSession(cmd, cfg, func(s *session) error {
				in := lockedft.UpdateMetaInput{
					Account: s.tokenAccount(args),
					Signer:  flags.MustString(cmd.Flags().GetString("signer")),
					Meta:    meta,
				}

				return executeAndPrintRaw(cmd, s, lockedft.UpdateMetaOp, in)
			})
		},
	}

	flags.Transport(cmd)
	flags.Format(cmd)
	cmd.Flags().StringVar(&metaFile, "meta", "", "JSON file with the fungible token metadata (required)")
	_ = cmd.MarkFlagRequired("meta")

	return cmd
}

func readMetadata(path string) (near.FungibleTokenMetadata, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return near.FungibleTokenMetadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var meta near.FungibleTokenMetadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return near.FungibleTokenMetadata{}, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	if meta.Spec == "" {
		meta.Spec = near.FTMetadataSpec
	}
	if meta.Name == "" || meta.Symbol == "" {
		return near.FungibleTokenMetadata{}, fmt.Errorf("invalid metadata %s: name and symbol are required", path)
	}

	return meta, nil
}

func executeAndPrintRaw[IN any](
	cmd *cobra.Command, s *session, op *operations.Operation[IN, json.RawMessage, lockedft.Deps], in IN,
) error {
	report, err := operations.ExecuteOperation(s.env.OperationsBundle, op, s.lockedftDeps(), in)
	if err != nil {
		return err
	}

	return output.PrintRaw(cmd, report.Output)
}
