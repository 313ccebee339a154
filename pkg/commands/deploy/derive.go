package deploy

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/lockedft"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/flags"
	"github.com/smartcontractkit/near-deployments-framework/pkg/commands/output"
)

// derivedAccount is the output of the derive command.
type derivedAccount struct {
	TokenID string `json:"token_id"`
	Base    string `json:"base"`
	Account string `json:"account"`
	// Set with --title and --target-price.
	Factory *factoryNaming `json:"factory,omitempty"`
}

// factoryNaming is how the factory names a token created for a title and a target price.
type factoryNaming struct {
	TokenID            string     `json:"token_id"`
	Account            string     `json:"account"`
	Name               string     `json:"name"`
	Symbol             string     `json:"symbol"`
	MinimumUnlockPrice near.Price `json:"minimum_unlock_price"`
}

// NewDeriveCmd creates the "derive" command printing the locked token account of a token id.
// It does not reach the network.
func NewDeriveCmd(cfg Config) *cobra.Command {
	var (
		title       string
		targetPrice string
		decimals    uint8
	)

	cmd := &cobra.Command{
		Use:   "derive <token_id> [base]",
		Short: "Print the locked token account derived from a token id.",
		Long: "Prints <token_id>.<base>. The base defaults to deployment.base_account_id. With --title " +
			"and --target-price it also prints the names the factory assigns to the created token.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := derivedAccount{TokenID: args[0]}
			if len(args) == 2 {
				out.Base = args[1]
			} else {
				c, err := cfg.deps().ConfigLoader(flags.MustString(cmd.Flags().GetString("config")))
				if err != nil {
					return fmt.Errorf("no base given and the config cannot be loaded: %w", err)
				}
				out.Base = c.Deployment.BaseAccountID
			}

			if err := near.ValidateAccountID(out.Base); err != nil {
				return fmt.Errorf("base: %w", err)
			}
			out.Account = near.DeriveSubAccount(out.TokenID, out.Base)
			if err := near.ValidateAccountID(out.Account); err != nil {
				return fmt.Errorf("derived account: %w", err)
			}

			if title != "" || targetPrice != "" {
				if title == "" || targetPrice == "" {
					return errors.New("--title and --target-price must be set together")
				}
				price, err := near.ParseU128(targetPrice)
				if err != nil {
					return fmt.Errorf("--target-price: %w", err)
				}
				meta := lockedft.FactoryMetadata(near.FungibleTokenMetadata{}, title, price)
				out.Factory = &factoryNaming{
					TokenID:            lockedft.FactoryTokenID(title, price),
					Account:            lockedft.FactoryTokenAccount(title, price, out.Base),
					Name:               meta.Name,
					Symbol:             meta.Symbol,
					MinimumUnlockPrice: lockedft.MinimumUnlockPrice(price, decimals),
				}
			}

			return output.Print(cmd, out)
		},
	}

	flags.Format(cmd)
	cmd.Flags().StringVar(&title, "title", "", "Whitelisted title of the token")
	cmd.Flags().StringVar(&targetPrice, "target-price", "", "Unlock price scaled by 10^4")
	cmd.Flags().Uint8Var(&decimals, "decimals", 0, "Whitelisted decimals of the token")

	return cmd
}
