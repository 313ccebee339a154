package near

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Gas is the compute budget attached to a function call.
type Gas uint64

const (
	TGas Gas = 1_000_000_000_000
	// DefaultGas is the amount near-cli attaches when no gas is given.
	DefaultGas = 30 * TGas
	// MaxGas is the protocol limit for a single function call.
	MaxGas = 300 * TGas
)

// ParseGas parses a raw gas amount ("200000000000000") or a Tgas amount ("200Tgas").
func ParseGas(s string) (Gas, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty gas amount")
	}

	if num, ok := strings.CutSuffix(strings.ToLower(s), "tgas"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(num), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid gas amount %q: %w", s, err)
		}

		return Gas(n) * TGas, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gas amount %q: %w", s, err)
	}

	return Gas(n), nil
}

// String returns the raw gas amount in decimal.
func (g Gas) String() string {
	return strconv.FormatUint(uint64(g), 10)
}

var (
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	yoctoPerNEAR = decimal.New(1, 24)
)

// U128 is an unsigned 128 bit integer encoded in JSON as a decimal string, the way NEAR
// contracts encode balances and prices.
type U128 struct {
	v *big.Int
}

// NewU128 returns n as a U128.
func NewU128(n uint64) U128 {
	return U128{v: new(big.Int).SetUint64(n)}
}

// ParseU128 parses a decimal string.
func ParseU128(s string) (U128, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return U128{}, fmt.Errorf("invalid u128 %q", s)
	}

	return U128FromBig(v)
}

// U128FromBig checks v fits in 128 unsigned bits.
func U128FromBig(v *big.Int) (U128, error) {
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return U128{}, fmt.Errorf("value %s out of u128 range", v)
	}

	return U128{v: new(big.Int).Set(v)}, nil
}

// BigInt returns a copy of the value.
func (u U128) BigInt() *big.Int {
	if u.v == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(u.v)
}

// IsZero reports whether the value is 0.
func (u U128) IsZero() bool {
	return u.v == nil || u.v.Sign() == 0
}

func (u U128) String() string {
	if u.v == nil {
		return "0"
	}

	return u.v.String()
}

func (u U128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *U128) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("u128 must be a JSON string: %w", err)
	}
	parsed, err := ParseU128(s)
	if err != nil {
		return err
	}
	*u = parsed

	return nil
}

// MarshalYAML encodes the value as a decimal string.
func (u U128) MarshalYAML() (any, error) {
	return u.String(), nil
}

// UnmarshalYAML decodes a decimal string or integer.
func (u *U128) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("u128 must be a decimal: %w", err)
	}
	parsed, err := ParseU128(s)
	if err != nil {
		return err
	}
	*u = parsed

	return nil
}

// Balance is an amount of yoctoNEAR (10^-24 NEAR).
type Balance struct {
	U128
}

// OneYocto is the minimal deposit, required by methods guarded with assert_one_yocto.
var OneYocto = Balance{NewU128(1)}

// ParseNEAR parses a decimal NEAR amount such as "0.1" into yoctoNEAR. Amounts with more than
// 24 decimal places are rejected.
func ParseNEAR(s string) (Balance, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Balance{}, fmt.Errorf("invalid NEAR amount %q: %w", s, err)
	}

	yocto := d.Mul(yoctoPerNEAR)
	if !yocto.Equal(yocto.Truncate(0)) {
		return Balance{}, fmt.Errorf("invalid NEAR amount %q: more than 24 decimal places", s)
	}

	u, err := U128FromBig(yocto.BigInt())
	if err != nil {
		return Balance{}, fmt.Errorf("invalid NEAR amount %q: %w", s, err)
	}

	return Balance{u}, nil
}

// ParseYocto parses a yoctoNEAR amount given as an integer string.
func ParseYocto(s string) (Balance, error) {
	u, err := ParseU128(s)
	if err != nil {
		return Balance{}, err
	}

	return Balance{u}, nil
}

// NEAR formats the balance in NEAR without trailing zeros.
func (b Balance) NEAR() string {
	return decimal.NewFromBigInt(b.BigInt(), -24).String()
}
