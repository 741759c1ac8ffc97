// Package amount converts between (base, atto) pairs and their 18-decimal
// fixed-point totals.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Decimals is the number of atto digits per base unit.
const Decimals = 18

// ErrWrongAtto is returned when an atto part is a whole base unit or more.
var ErrWrongAtto = errors.New("amount: atto part must be below 10^18")

var (
	attoPerBase = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)
	maxUint128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// Normalize returns base*10^18 + atto.
func Normalize(base uint64, atto *big.Int) (*big.Int, error) {
	if atto == nil {
		atto = new(big.Int)
	}
	if atto.Sign() < 0 || atto.Cmp(attoPerBase) >= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrWrongAtto, atto)
	}
	total := new(big.Int).SetUint64(base)
	total.Mul(total, attoPerBase)
	return total.Add(total, atto), nil
}

// NormalizeString is Normalize for decimal strings as they appear in records.
func NormalizeString(base, atto string) (*big.Int, error) {
	b, ok := new(big.Int).SetString(base, 10)
	if !ok || b.Sign() < 0 || !b.IsUint64() {
		return nil, fmt.Errorf("amount: invalid base amount %q", base)
	}
	a, ok := new(big.Int).SetString(atto, 10)
	if !ok {
		return nil, fmt.Errorf("amount: invalid atto amount %q", atto)
	}
	return Normalize(b.Uint64(), a)
}

// Split is the inverse of Normalize. Totals whose base part does not fit in
// a uint64, or that exceed the uint128 range, are rejected.
func Split(total *big.Int) (uint64, *big.Int, error) {
	if total.Sign() < 0 || total.Cmp(maxUint128) > 0 {
		return 0, nil, fmt.Errorf("amount: %s is outside the uint128 range", total)
	}
	base, atto := new(big.Int).QuoRem(total, attoPerBase, new(big.Int))
	if !base.IsUint64() {
		return 0, nil, fmt.Errorf("amount: base part of %s overflows uint64", total)
	}
	return base.Uint64(), atto, nil
}

// Format renders total as a decimal with the atto part trimmed, e.g.
// "12.5" or "3".
func Format(total *big.Int) string {
	base, atto := new(big.Int).QuoRem(total, attoPerBase, new(big.Int))
	if atto.Sign() == 0 {
		return base.String()
	}
	frac := atto.String()
	frac = strings.Repeat("0", Decimals-len(frac)) + frac
	return base.String() + "." + strings.TrimRight(frac, "0")
}
