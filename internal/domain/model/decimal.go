package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Magnitude limits for decimals read off the wire. Exponent notation lets a
// short field expand into millions of digits.
const (
	maxIntegerDigits  = 40
	maxFractionDigits = 40
)

// CheckDecimalBounds rejects values with more than maxIntegerDigits integer
// digits or more than maxFractionDigits fractional digits. It only inspects
// the coefficient length and exponent, so it never expands the value.
func CheckDecimalBounds(d decimal.Decimal) error {
	if d.Exponent() < -maxFractionDigits {
		return fmt.Errorf("%w: decimal exponent %d below %d", ErrMalformedMessage, d.Exponent(), -maxFractionDigits)
	}
	if integerDigits(d) > maxIntegerDigits {
		return fmt.Errorf("%w: decimal exponent %d out of range", ErrMalformedMessage, d.Exponent())
	}
	return nil
}

// integerDigits is the count of digits left of the decimal point, at most.
func integerDigits(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}
