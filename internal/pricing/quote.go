package pricing

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"tokenScope/internal/model"
)

// Direction says which side of a trade the caller fixed.
type Direction string

const (
	// ExactInput fixes the amount sold and quotes the amount bought.
	ExactInput Direction = "exact_input"
	// ExactOutput fixes the amount bought and quotes the amount sold.
	ExactOutput Direction = "exact_output"
)

// ParseDirection accepts "exact_input"/"input" and "exact_output"/"output".
func ParseDirection(input string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exact_input", "input", "in":
		return ExactInput, nil
	case "exact_output", "output", "out":
		return ExactOutput, nil
	default:
		return "", fmt.Errorf("unknown direction %q", input)
	}
}

// Decimals is the decimals pair of a trade.
type Decimals struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Quote is a priced trade. It is derived from a fresh reserve snapshot and
// never stored.
type Quote struct {
	Direction     Direction       `json:"direction"`
	InputAmount   *big.Int        `json:"input_amount"`
	OutputAmount  *big.Int        `json:"output_amount"`
	EthAmount     *big.Int        `json:"eth_amount,omitempty"`
	MarginalPrice decimal.Decimal `json:"marginal_price"`
}

// QuoteDirect prices a trade against a single pool. The snapshot is
// oriented with Input as the reserve of the asset sold.
func QuoteDirect(direction Direction, amount *big.Int, snapshot model.ReserveSnapshot, decimals Decimals) (Quote, error) {
	q := Quote{Direction: direction}
	var err error
	switch direction {
	case ExactInput:
		q.InputAmount = amount
		q.OutputAmount, err = ExactOutputFromInput(amount, snapshot.Input, snapshot.Output)
	case ExactOutput:
		q.OutputAmount = amount
		q.InputAmount, err = ExactInputFromOutput(amount, snapshot.Input, snapshot.Output)
	default:
		return Quote{}, fmt.Errorf("unknown direction %q", direction)
	}
	if err != nil {
		return Quote{}, err
	}

	q.MarginalPrice, err = MarginalPrice(snapshot.Input, snapshot.Output, q.InputAmount, decimals.Input, decimals.Output)
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}

// QuoteTokenToToken prices a trade routed through ETH. in is the sold
// token's pool oriented token to ETH, out the bought token's pool oriented
// ETH to token.
func QuoteTokenToToken(direction Direction, amount *big.Int, in, out model.ReserveSnapshot, decimals Decimals) (Quote, error) {
	q := Quote{Direction: direction}
	var err error
	switch direction {
	case ExactInput:
		q.InputAmount = amount
		if q.EthAmount, err = ExactOutputFromInput(amount, in.Input, in.Output); err != nil {
			return Quote{}, fmt.Errorf("first leg: %w", err)
		}
		if q.OutputAmount, err = ExactOutputFromInput(q.EthAmount, out.Input, out.Output); err != nil {
			return Quote{}, fmt.Errorf("second leg: %w", err)
		}
	case ExactOutput:
		q.OutputAmount = amount
		if q.EthAmount, err = ExactInputFromOutput(amount, out.Input, out.Output); err != nil {
			return Quote{}, fmt.Errorf("second leg: %w", err)
		}
		if q.InputAmount, err = ExactInputFromOutput(q.EthAmount, in.Input, in.Output); err != nil {
			return Quote{}, fmt.Errorf("first leg: %w", err)
		}
	default:
		return Quote{}, fmt.Errorf("unknown direction %q", direction)
	}

	q.MarginalPrice, err = RelativeMarginalPrice(q.InputAmount, in.Input, in.Output, out.Input, out.Output, decimals.Input, decimals.Output)
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}
