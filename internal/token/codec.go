package token

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts the payment rail cannot represent.
var ErrInvalidAmount = errors.New("invalid amount")

// Codec converts between human-readable amounts and the integer
// smallest-unit representation the payment rail settles in.
type Codec struct {
	Decimals int32
}

// USDC uses 6 decimal places on every supported network.
var USDC = Codec{Decimals: 6}

var maxUnits = decimal.NewFromInt(math.MaxInt64)

// ToSmallestUnit scales amount to integer units, truncating toward zero
// past the rail's precision. 2.50 at 6 decimals becomes 2500000.
func (c Codec) ToSmallestUnit(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, ErrInvalidAmount
	}
	scaled := amount.Shift(c.Decimals).Truncate(0)
	if scaled.Cmp(maxUnits) > 0 {
		return 0, ErrInvalidAmount
	}
	return scaled.IntPart(), nil
}

// FromSmallestUnit is the inverse of ToSmallestUnit up to the rail's precision.
func (c Codec) FromSmallestUnit(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Shift(-c.Decimals)
}

// ParseAmount parses a human-readable decimal string and rejects values
// the rail cannot carry.
func (c Codec) ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if _, err := c.ToSmallestUnit(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}
