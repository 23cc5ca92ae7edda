// Package pricing implements constant-product AMM math with the 0.3% pool
// fee: marginal prices, exact swap amounts and token to token routing
// through ETH.
package pricing

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	EthDecimals = 18
	MaxDecimals = 18
	// PricePrecision is the number of decimal places kept in prices.
	PricePrecision = 18
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidDecimals       = errors.New("invalid decimals")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
)

var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
	one            = big.NewInt(1)
)

// MarginalPrice returns the price of the last unit of deltaX sold into a
// pool holding inputReserve and outputReserve: x*y*g / (x + deltaX*g)^2
// with g = 997/1000. Reserves and deltaX are first scaled to the larger of
// the two decimal counts. The price is zero when any operand is unset or a
// reserve is empty.
func MarginalPrice(inputReserve, outputReserve, deltaX *big.Int, inputDecimals, outputDecimals int) (decimal.Decimal, error) {
	if err := checkDecimals(inputDecimals, outputDecimals); err != nil {
		return decimal.Zero, err
	}
	if inputReserve == nil || outputReserve == nil || deltaX == nil {
		return decimal.Zero, nil
	}
	if inputReserve.Sign() <= 0 || outputReserve.Sign() <= 0 || deltaX.Sign() < 0 {
		return decimal.Zero, nil
	}

	scale := inputDecimals
	if outputDecimals > scale {
		scale = outputDecimals
	}
	x := scaleUp(inputReserve, scale-inputDecimals)
	y := scaleUp(outputReserve, scale-outputDecimals)
	dx := scaleUp(deltaX, scale-inputDecimals)

	numerator := new(big.Int).Mul(x, y)
	numerator.Mul(numerator, feeNumerator)
	numerator.Mul(numerator, feeDenominator)

	denominator := new(big.Int).Mul(x, feeDenominator)
	denominator.Add(denominator, new(big.Int).Mul(dx, feeNumerator))
	denominator.Mul(denominator, denominator)

	return decimal.NewFromBigInt(numerator, 0).DivRound(decimal.NewFromBigInt(denominator, 0), PricePrecision), nil
}

// ExactOutputFromInput returns the output the pool pays for inputAmount,
// truncated exactly as the exchange contract does.
func ExactOutputFromInput(inputAmount, inputReserve, outputReserve *big.Int) (*big.Int, error) {
	if err := checkAmounts(inputAmount, inputReserve, outputReserve); err != nil {
		return nil, err
	}
	if inputReserve.Sign() == 0 || outputReserve.Sign() == 0 {
		return nil, ErrInsufficientLiquidity
	}

	withFee := new(big.Int).Mul(inputAmount, feeNumerator)
	numerator := new(big.Int).Mul(withFee, outputReserve)
	denominator := new(big.Int).Mul(inputReserve, feeDenominator)
	denominator.Add(denominator, withFee)
	return numerator.Quo(numerator, denominator), nil
}

// ExactInputFromOutput returns the input needed to receive outputAmount. The
// result is rounded up by one unit so it is never below what the exchange
// contract requires.
func ExactInputFromOutput(outputAmount, inputReserve, outputReserve *big.Int) (*big.Int, error) {
	if err := checkAmounts(outputAmount, inputReserve, outputReserve); err != nil {
		return nil, err
	}
	if inputReserve.Sign() == 0 || outputAmount.Cmp(outputReserve) >= 0 {
		return nil, fmt.Errorf("%w: want %s of reserve %s", ErrInsufficientLiquidity, outputAmount, outputReserve)
	}

	numerator := new(big.Int).Mul(inputReserve, outputAmount)
	numerator.Mul(numerator, feeDenominator)
	denominator := new(big.Int).Sub(outputReserve, outputAmount)
	denominator.Mul(denominator, feeNumerator)
	numerator.Quo(numerator, denominator)
	return numerator.Add(numerator, one), nil
}

// RelativeMarginalPrice prices a token to token trade routed through ETH as
// the product of the marginal price of each leg. The ETH leg always uses 18
// decimals. This composes two independent marginal prices rather than
// simulating both hops, so it is an approximation of the routed trade.
func RelativeMarginalPrice(inputAmount, tokenInReserve, ethInReserve, ethOutReserve, tokenOutReserve *big.Int, inputDecimals, outputDecimals int) (decimal.Decimal, error) {
	if err := checkDecimals(inputDecimals, outputDecimals); err != nil {
		return decimal.Zero, err
	}
	if inputAmount == nil || tokenInReserve == nil || ethInReserve == nil || ethOutReserve == nil || tokenOutReserve == nil {
		return decimal.Zero, nil
	}

	first, err := MarginalPrice(tokenInReserve, ethInReserve, inputAmount, inputDecimals, EthDecimals)
	if err != nil {
		return decimal.Zero, err
	}
	ethAmount, err := ExactOutputFromInput(inputAmount, tokenInReserve, ethInReserve)
	if err != nil {
		return decimal.Zero, err
	}
	second, err := MarginalPrice(ethOutReserve, tokenOutReserve, ethAmount, EthDecimals, outputDecimals)
	if err != nil {
		return decimal.Zero, err
	}
	return first.Mul(second).Round(PricePrecision), nil
}

func checkDecimals(values ...int) error {
	for _, d := range values {
		if d < 0 || d > MaxDecimals {
			return fmt.Errorf("%w: %d", ErrInvalidDecimals, d)
		}
	}
	return nil
}

func checkAmounts(values ...*big.Int) error {
	for _, v := range values {
		if v == nil || v.Sign() < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

func scaleUp(v *big.Int, exp int) *big.Int {
	if exp == 0 {
		return new(big.Int).Set(v)
	}
	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	return factor.Mul(factor, v)
}
