package deploy

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/lockedft"
	"github.com/smartcontractkit/near-deployments-framework/operations"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/output"
)

// defaultPageLimit is the page size of the factory listings.
const defaultPageLimit = 100

// NewViewCmd creates the "view" command group reading the factory and its locked tokens.
// The factory defaults to deployment.base_account_id and the token account to the account
// derived from deployment.token.token_id.
func NewViewCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Read the factory and its locked tokens.",
	}

	cmd.PersistentFlags().String("factory", "", "Factory account, defaults to deployment.base_account_id")

	cmd.AddCommand(
		newViewTokenCmd(cfg),
		newViewTokensCmd(cfg),
		newViewCountCmd(cfg),
		newViewWhitelistedCmd(cfg),
		newViewInfoCmd(cfg),
		newViewStatusCmd(cfg),
	)

	return cmd
}

func newViewTokenCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [token_id]",
		Short: "Show the factory record of a token, defaults to deployment.token.token_id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				in := lockedft.TokenInput{Factory: s.factory(cmd), TokenID: s.cfg.Deployment.Token.TokenID}
				if len(args) == 1 {
					in.TokenID = args[0]
				}
				if in.TokenID == "" {
					return errors.New("token id is required")
				}

				return executeAndPrint(cmd, s, lockedft.GetTokenOp, in)
			})
		},
	}
	viewFlags(cmd)

	return cmd
}

func newViewTokensCmd(cfg Config) *cobra.Command {
	var from, limit uint64

	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "List the tokens created by the factory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				return executeAndPrint(cmd, s, lockedft.GetTokensOp,
					lockedft.PageInput{Factory: s.factory(cmd), FromIndex: from, Limit: limit})
			})
		},
	}
	viewFlags(cmd)
	pageFlags(cmd, &from, &limit)

	return cmd
}

func newViewWhitelistedCmd(cfg Config) *cobra.Command {
	var from, limit uint64

	cmd := &cobra.Command{
		Use:   "whitelisted",
		Short: "List the token ids whitelisted on the factory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				return executeAndPrint(cmd, s, lockedft.GetWhitelistedTokensOp,
					lockedft.PageInput{Factory: s.factory(cmd), FromIndex: from, Limit: limit})
			})
		},
	}
	viewFlags(cmd)
	pageFlags(cmd, &from, &limit)

	return cmd
}

func newViewCountCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Show the number of tokens created by the factory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				return executeAndPrint(cmd, s, lockedft.GetNumberOfTokensOp, lockedft.FactoryInput{Factory: s.factory(cmd)})
			})
		},
	}
	viewFlags(cmd)

	return cmd
}

func newViewInfoCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [account]",
		Short: "Show the state of a locked token contract",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				return executeAndPrint(cmd, s, lockedft.GetInfoOp, lockedft.AccountInput{Account: s.tokenAccount(args)})
			})
		},
	}
	viewFlags(cmd)

	return cmd
}

func newViewStatusCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [account]",
		Short: "Show the lock status of a locked token contract",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(s *session) error {
				return executeAndPrint(cmd, s, lockedft.GetStatusOp, lockedft.AccountInput{Account: s.tokenAccount(args)})
			})
		},
	}
	viewFlags(cmd)

	return cmd
}

func viewFlags(cmd *cobra.Command) {
	flags.Transport(cmd)
	flags.Format(cmd)
}

func pageFlags(cmd *cobra.Command, from, limit *uint64) {
	cmd.Flags().Uint64Var(from, "from", 0, "Index of the first entry")
	cmd.Flags().Uint64Var(limit, "limit", defaultPageLimit, "Maximum number of entries")
}

// executeAndPrint runs op in the session bundle and prints its output.
func executeAndPrint[IN, OUT any](
	cmd *cobra.Command, s *session, op *operations.Operation[IN, OUT, lockedft.Deps], in IN,
) error {
	report, err := operations.ExecuteOperation(s.env.OperationsBundle, op, s.lockedftDeps(), in)
	if err != nil {
		return err
	}

	return output.Print(cmd, report.Output)
}

// factory returns the --factory account, or the configured base account.
func (s *session) factory(cmd *cobra.Command) string {
	if f := flags.MustString(cmd.Flags().GetString("factory")); f != "" {
		return f
	}

	return s.cfg.Deployment.BaseAccountID
}

// tokenAccount returns the account given as argument, or the account derived from the
// configured token id and base account.
func (s *session) tokenAccount(args []string) string {
	if len(args) == 1 {
		return args[0]
	}

	return near.DeriveSubAccount(s.cfg.Deployment.Token.TokenID, s.cfg.Deployment.BaseAccountID)
}
