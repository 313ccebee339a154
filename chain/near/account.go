package near

import (
	"errors"
	"fmt"
)

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrInvalidSymbol    = errors.New("invalid token symbol")
)

// ValidateAccountID checks id against the NEAR account id rules: 2 to 64 characters, lowercase
// alphanumeric parts separated by a single '-', '_' or '.'.
func ValidateAccountID(id string) error {
	if len(id) < MinAccountIDLen || len(id) > MaxAccountIDLen {
		return fmt.Errorf("%w %q: length must be between %d and %d",
			ErrInvalidAccountID, id, MinAccountIDLen, MaxAccountIDLen)
	}

	lastWasSeparator := true // disallows a leading separator
	for i := range len(id) {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastWasSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastWasSeparator {
				return fmt.Errorf("%w %q: unexpected separator at position %d", ErrInvalidAccountID, id, i)
			}
			lastWasSeparator = true
		default:
			return fmt.Errorf("%w %q: invalid character %q at position %d", ErrInvalidAccountID, id, c, i)
		}
	}
	if lastWasSeparator {
		return fmt.Errorf("%w %q: must not end with a separator", ErrInvalidAccountID, id)
	}

	return nil
}

// DeriveSubAccount returns the sub-account id "<prefix>.<parent>", e.g. the account a token
// created by the factory lives under.
func DeriveSubAccount(prefix, parent string) string {
	return prefix + "." + parent
}

// IsTopLevel reports whether id has no parent account.
func IsTopLevel(id string) bool {
	for i := range len(id) {
		if id[i] == '.' {
			return false
		}
	}

	return true
}

// ValidateSymbol checks a whitelisted token title against the factory rule: only
// [0-9a-z_-] characters. The empty title is accepted, as the factory does.
func ValidateSymbol(symbol string) error {
	for i := range len(symbol) {
		c := symbol[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c == '_', c == '-':
		default:
			return fmt.Errorf("%w %q: invalid character %q", ErrInvalidSymbol, symbol, c)
		}
	}

	return nil
}
