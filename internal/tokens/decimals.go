package tokens

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/model"
)

// MaxDecimals is the largest decimals value the pricing and formatting
// code accepts.
const MaxDecimals = 18

// fallbackDecimals lists tokens whose decimals() is missing, reverts, or
// returns a non-standard type.
var fallbackDecimals = map[uint64]map[common.Address]uint8{
	model.NetworkMainnet: {
		common.HexToAddress("0xE0B7927c4aF23765Cb51314A0E0521A9645F0E2A"): 9,  // DGD
		common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2"): 18, // MKR
		common.HexToAddress("0x89d24A6b4CcB1B6fAA2625fE562bDD9a23260359"): 18, // SAI
		common.HexToAddress("0xaeC2E87E0A235266D9C5ADc9DEb4b2E29b54D009"): 0,  // SNGLS
		common.HexToAddress("0x1985365e9f78359a9B6AD760e32412f4a445E862"): 18, // REP
		common.HexToAddress("0xa74476443119A942dE498590Fe1f2454d7D4aC0d"): 18, // GNT
		common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"): 18, // DAI
		common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"): 6,  // USDC
		common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"): 6,  // USDT
		common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"): 8,  // WBTC
	},
}

// FallbackDecimals looks token up in the static dictionary.
func FallbackDecimals(networkID uint64, token common.Address) (uint8, bool) {
	byToken, ok := fallbackDecimals[networkID]
	if !ok {
		return 0, false
	}
	decimals, ok := byToken[token]
	return decimals, ok
}

// ResolveDecimals applies the resolution order: a nonzero on-chain value,
// then the fallback dictionary. ok is false when neither yields a value.
func ResolveDecimals(networkID uint64, token common.Address, onChain *big.Int) (int, bool) {
	if onChain != nil && onChain.Sign() > 0 && onChain.Cmp(big.NewInt(MaxDecimals)) <= 0 {
		return int(onChain.Int64()), true
	}
	if decimals, ok := FallbackDecimals(networkID, token); ok {
		return int(decimals), true
	}
	return model.DecimalsUnknown, false
}
