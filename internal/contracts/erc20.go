package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/chain"
)

// Decimals calls decimals() on an ERC-20 token.
func Decimals(ctx context.Context, caller chain.Caller, token common.Address) (uint8, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return 0, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := chain.Call(ctx, caller, token, parsed, "decimals")
	if err != nil {
		return 0, err
	}
	return asUint8(values[0])
}

// BalanceOf returns the token balance held by owner.
func BalanceOf(ctx context.Context, caller chain.Caller, token common.Address, owner common.Address) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := chain.Call(ctx, caller, token, parsed, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("balanceOf return size %d", len(values))
	}
	return asBigInt(values[0])
}

// FetchERC20Meta loads token metadata via ERC-20 calls. Name and symbol
// fall back to the bytes32 ABI used by older tokens. A decimals failure is
// returned alongside whatever name and symbol could be read.
func FetchERC20Meta(ctx context.Context, caller chain.Caller, token common.Address, logger *zap.Logger) (ERC20Meta, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	meta := ERC20Meta{Address: token}

	stringABI, err := ERC20ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := ERC20Bytes32ABI()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	if text, err := readText(ctx, caller, token, "symbol", stringABI, bytes32ABI); err == nil {
		meta.Symbol = text
	} else {
		logger.Debug("symbol call failed", zap.String("token", token.Hex()), zap.Error(err))
	}
	if text, err := readText(ctx, caller, token, "name", stringABI, bytes32ABI); err == nil {
		meta.Name = text
	} else {
		logger.Debug("name call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	decimals, err := Decimals(ctx, caller, token)
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals
	return meta, nil
}

func readText(ctx context.Context, caller chain.Caller, token common.Address, method string, stringABI, bytes32ABI abi.ABI) (string, error) {
	values, err := chain.Call(ctx, caller, token, stringABI, method)
	if err == nil {
		if text, err := asString(values[0]); err == nil {
			return text, nil
		}
	}
	values, err = chain.Call(ctx, caller, token, bytes32ABI, method)
	if err != nil {
		return "", err
	}
	text, ok := bytes32ToString(values[0])
	if !ok {
		return "", fmt.Errorf("%s: unexpected type %T", method, values[0])
	}
	return text, nil
}
