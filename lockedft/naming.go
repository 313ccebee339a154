package lockedft

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
)

// PriceScale is the fixed point scale of target prices: a target price of 15000 is $1.5.
const PriceScale = 10_000

// priceDecimals is the number of decimals PriceScale adds to the whitelisted decimals.
const priceDecimals = 4

// maxDecimals keeps decimals+priceDecimals within a uint8.
const maxDecimals = math.MaxUint8 - priceDecimals

var bigPriceScale = big.NewInt(PriceScale)

func splitPrice(targetPrice near.U128) (*big.Int, *big.Int) {
	return new(big.Int).QuoRem(targetPrice.BigInt(), bigPriceScale, new(big.Int))
}

// FormatPrice renders a target price the way the factory names tokens. The fractional part is
// printed without padding, so 10005 renders as "1.5".
func FormatPrice(targetPrice near.U128) string {
	short, rem := splitPrice(targetPrice)
	if rem.Sign() > 0 {
		return fmt.Sprintf("%s.%s", short, rem)
	}

	return short.String()
}

// FormatTitle drops the whitespace of a whitelisted title.
func FormatTitle(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, title)
}

// FactoryTokenID returns the id the factory assigns to a token created for title at
// targetPrice, "<title>-<whole>-<fraction padded to 4 digits>" in lower case.
func FactoryTokenID(title string, targetPrice near.U128) string {
	short, rem := splitPrice(targetPrice)

	return strings.ToLower(fmt.Sprintf("%s-%s-%04d", FormatTitle(title), short, rem.Int64()))
}

// FactoryTokenAccount returns the account the factory deploys the token created for title at
// targetPrice to.
func FactoryTokenAccount(title string, targetPrice near.U128, factory string) string {
	return near.DeriveSubAccount(FactoryTokenID(title, targetPrice), factory)
}

// FactoryMetadata returns meta with the name and symbol the factory overwrites them with.
func FactoryMetadata(meta near.FungibleTokenMetadata, title string, targetPrice near.U128) near.FungibleTokenMetadata {
	name := FormatTitle(title)
	price := FormatPrice(targetPrice)
	meta.Name = fmt.Sprintf("%s at $%s", name, price)
	meta.Symbol = fmt.Sprintf("%s@%s", name, price)

	return meta
}

// MinimumUnlockPrice returns the unlock price the factory stores for a token: the target
// price with 4 more decimals than the whitelisted token.
func MinimumUnlockPrice(targetPrice near.U128, decimals uint8) near.Price {
	return near.Price{Multiplier: targetPrice, Decimals: decimals + priceDecimals}
}
