package config

import (
	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/model"
	"tokenScope/internal/tokens"
)

// DefaultNetworks holds the known contract deployments per network. Batch
// views and the trust badge have no canonical deployment and must be
// configured explicitly.
var DefaultNetworks = map[uint64]tokens.Contracts{
	model.NetworkMainnet: {
		TokenList:  common.HexToAddress("0xebcf3bca271b26ae4b162ba560e243055af0e679"),
		ERC20Badge: common.HexToAddress("0xcb4aae35333193232421e86cd2e9b6c91f3b125f"),
		Factory:    common.HexToAddress("0xc0a47dFe034B400B47bDaD5FecDa2621de6c4d95"),
	},
	model.NetworkRinkeby: {
		Factory: common.HexToAddress("0xf5D915570BC477f9B8D6C0E980aA81757A3AaC36"),
	},
}
