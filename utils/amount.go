// Package utils holds small conversion helpers shared by the validation
// and submission layers.
package utils

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the scale between the chain's display unit and its
// base unit (wei).
const EtherDecimals = 18

// ParseEtherAmount parses a display-unit amount string and reports the
// exact decimal value. Rejects empty, non-numeric, non-positive, and
// over-precise (more than 18 fractional digits) inputs.
func ParseEtherAmount(amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount format: %w", err)
	}

	if !dec.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive")
	}

	if dec.Exponent() < -EtherDecimals {
		return decimal.Decimal{}, fmt.Errorf("amount has more than %d decimal places", EtherDecimals)
	}

	return dec, nil
}

// EtherToWei scales a display-unit amount to base units. The shift is
// exact by construction; ParseEtherAmount guarantees the scaled value is
// an integer.
func EtherToWei(amount decimal.Decimal) (*big.Int, error) {
	shifted := amount.Shift(EtherDecimals)
	if shifted.Exponent() < 0 && !shifted.IsInteger() {
		return nil, fmt.Errorf("amount %s is not representable in wei", amount)
	}
	return shifted.BigInt(), nil
}

// WeiToEther is the inverse of EtherToWei; the result is exact.
func WeiToEther(wei *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}
