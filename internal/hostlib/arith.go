package hostlib

import (
	"fmt"
	"math"
	"math/big"
)

// overflow-checked 64-bit arithmetic backing the `+ - *` operator
// overloads on int/uint (spec.md §4.5): each widens its operands into
// math/big, performs the operation at arbitrary precision, then checks
// the result still fits in the target range before narrowing back down.
// CEL has no arbitrary-precision integer literal of its own, but the
// widen/compute/range-check technique is the one CWBudde-go-dws already
// relies on for its lexer's BigInt suffix handling.

var (
	minInt64Big = big.NewInt(math.MinInt64)
	maxInt64Big = big.NewInt(math.MaxInt64)
	maxUint64Big = new(big.Int).SetUint64(math.MaxUint64)
)

func fitsInt64(b *big.Int) bool {
	return b.Cmp(minInt64Big) >= 0 && b.Cmp(maxInt64Big) <= 0
}

func fitsUint64(b *big.Int) bool {
	return b.Sign() >= 0 && b.Cmp(maxUint64Big) <= 0
}

// AddInt64 returns a+b, or an error on 64-bit signed overflow.
func AddInt64(a, b int64) (int64, error) {
	r := new(big.Int).Add(big.NewInt(a), big.NewInt(b))
	if !fitsInt64(r) {
		return 0, fmt.Errorf("integer overflow: %s", r.String())
	}
	return r.Int64(), nil
}

// SubInt64 returns a-b, or an error on 64-bit signed overflow.
func SubInt64(a, b int64) (int64, error) {
	r := new(big.Int).Sub(big.NewInt(a), big.NewInt(b))
	if !fitsInt64(r) {
		return 0, fmt.Errorf("integer overflow: %s", r.String())
	}
	return r.Int64(), nil
}

// MulInt64 returns a*b, or an error on 64-bit signed overflow.
func MulInt64(a, b int64) (int64, error) {
	r := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	if !fitsInt64(r) {
		return 0, fmt.Errorf("integer overflow: %s", r.String())
	}
	return r.Int64(), nil
}

// AddUint64 returns a+b, or an error on 64-bit unsigned overflow.
func AddUint64(a, b uint64) (uint64, error) {
	r := new(big.Int).Add(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	if !fitsUint64(r) {
		return 0, fmt.Errorf("unsigned integer overflow: %s", r.String())
	}
	return r.Uint64(), nil
}

// SubUint64 returns a-b, or an error on underflow (CEL uint subtraction
// cannot go negative).
func SubUint64(a, b uint64) (uint64, error) {
	r := new(big.Int).Sub(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	if !fitsUint64(r) {
		return 0, fmt.Errorf("unsigned integer overflow: %s", r.String())
	}
	return r.Uint64(), nil
}

// MulUint64 returns a*b, or an error on 64-bit unsigned overflow.
func MulUint64(a, b uint64) (uint64, error) {
	r := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	if !fitsUint64(r) {
		return 0, fmt.Errorf("unsigned integer overflow: %s", r.String())
	}
	return r.Uint64(), nil
}
