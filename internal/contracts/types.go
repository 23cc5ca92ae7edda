package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenInfo is one entry of the batch token view. Field order and names
// mirror the ABI tuple so decoded values convert directly.
type TokenInfo struct {
	ID              [32]byte
	Name            string
	Ticker          string
	Addr            common.Address
	SymbolMultihash string
	Status          uint8
	Decimals        *big.Int
}

// Submission is the curated registry's record for one submission ID.
type Submission struct {
	ID               [32]byte
	Name             string
	Ticker           string
	Addr             common.Address
	SymbolMultihash  string
	Status           uint8
	NumberOfRequests *big.Int
}

// ERC20Meta captures ERC-20 metadata read directly from the token.
type ERC20Meta struct {
	Address  common.Address
	Decimals uint8
	Symbol   string
	Name     string
}
