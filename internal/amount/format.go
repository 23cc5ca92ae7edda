// Package amount converts integer token amounts to and from display strings.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const MaxDecimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// Format renders amount, given in base units with baseDecimals, using at
// most displayDecimals fractional digits. The last digit is rounded half
// up and trailing zeros are trimmed. Amounts below one display unit render
// as "<" followed by that unit, or in full when useLessThan is false.
func Format(amount *big.Int, baseDecimals, displayDecimals int, useLessThan bool) (string, error) {
	if baseDecimals < 0 || displayDecimals < 0 || baseDecimals > MaxDecimals || displayDecimals > MaxDecimals || displayDecimals > baseDecimals {
		return "", fmt.Errorf("%w: base decimals %d, display decimals %d", ErrInvalidAmount, baseDecimals, displayDecimals)
	}
	if amount == nil {
		return "", fmt.Errorf("%w: nil amount", ErrInvalidAmount)
	}
	if amount.Sign() < 0 {
		return "", fmt.Errorf("%w: negative amount %s", ErrInvalidAmount, amount)
	}
	if amount.Sign() == 0 {
		return "0", nil
	}

	value := decimal.NewFromBigInt(amount, -int32(baseDecimals))
	minimum := decimal.New(1, -int32(displayDecimals))
	if value.LessThan(minimum) {
		if useLessThan {
			return "<" + minimum.String(), nil
		}
		return value.String(), nil
	}
	return value.Round(int32(displayDecimals)).String(), nil
}

// FormatUnits renders amount in full precision, trimming trailing zeros.
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		return ""
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// ParseUnits converts a decimal string such as "1.5" to base units.
func ParseUnits(input string, decimals int) (*big.Int, error) {
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("%w: decimals %d", ErrInvalidAmount, decimals)
	}
	value, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, input)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, input)
	}
	scaled := value.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, input, decimals)
	}
	return scaled.BigInt(), nil
}

// FormatEthBalance renders a wei balance with six decimals.
func FormatEthBalance(balance *big.Int) (string, error) {
	return Format(balance, 18, 6, true)
}

// FormatTokenBalance renders a token balance with up to four decimals.
func FormatTokenBalance(balance *big.Int, decimals int) (string, error) {
	display := decimals
	if display > 4 {
		display = 4
	}
	return Format(balance, decimals, display, true)
}
