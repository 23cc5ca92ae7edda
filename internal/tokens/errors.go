package tokens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/chain"
	"tokenScope/internal/model"
)

var (
	ErrInvalidAddress    = errors.New("invalid address")
	ErrResolutionFailure = errors.New("token resolution failed")
	ErrUnknownNetwork    = errors.New("unknown network")
)

// ParseAddress validates a user-supplied token address.
func ParseAddress(input string) (common.Address, error) {
	addr, err := chain.ParseAddress(input)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, input)
	}
	return addr, nil
}

// ParseToken is ParseAddress that also accepts "ETH" for the native token.
func ParseToken(input string) (common.Address, error) {
	if strings.EqualFold(strings.TrimSpace(input), "eth") {
		return model.NativeAddress, nil
	}
	return ParseAddress(input)
}
