package near

import (
	"math/big"
)

// maxU128Decimals is the number of decimal digits a u128 can always hold.
const maxU128Decimals = 38

// Price is a fixed point price, Multiplier * 10^-Decimals, as stored by the locked token
// contract for its minimum unlock price and as reported by the price oracle.
type Price struct {
	Multiplier U128  `json:"multiplier"`
	Decimals   uint8 `json:"decimals"`
}

// NewPrice returns multiplier * 10^-decimals.
func NewPrice(multiplier uint64, decimals uint8) Price {
	return Price{Multiplier: NewU128(multiplier), Decimals: decimals}
}

// Compare returns -1, 0 or +1 depending on whether p is less than, equal to or greater than
// other. The operand with more decimals is compared against the other one rescaled to the
// same number of decimals; when the scale gap exceeds 38 digits, or the rescaled value no
// longer fits a u128, the operand with more decimals compares as less.
func (p Price) Compare(other Price) int {
	if p.Decimals < other.Decimals {
		return -other.Compare(p)
	}

	diff := p.Decimals - other.Decimals
	if diff > maxU128Decimals {
		return -1
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(diff)), nil)
	rescaled := new(big.Int).Mul(other.Multiplier.BigInt(), scale)
	if rescaled.Cmp(maxU128) > 0 {
		return -1
	}

	return p.Multiplier.BigInt().Cmp(rescaled)
}

// Equal reports whether both prices denote the same value.
func (p Price) Equal(other Price) bool {
	return p.Compare(other) == 0
}
