package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const addressListABIJSON = `[
  {
    "inputs": [
      {"name": "_cursor", "type": "address"},
      {"name": "_count", "type": "uint256"},
      {"name": "_filter", "type": "bool[8]"},
      {"name": "_oldestFirst", "type": "bool"}
    ],
    "name": "queryAddresses",
    "outputs": [
      {"name": "values", "type": "address[]"},
      {"name": "hasMore", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const tokenListABIJSON = `[
  {
    "inputs": [
      {"name": "_cursor", "type": "bytes32"},
      {"name": "_count", "type": "uint256"},
      {"name": "_filter", "type": "bool[8]"},
      {"name": "_oldestFirst", "type": "bool"},
      {"name": "_tokenAddr", "type": "address"}
    ],
    "name": "queryTokens",
    "outputs": [
      {"name": "values", "type": "bytes32[]"},
      {"name": "hasMore", "type": "bool"}
    ],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"name": "_tokenID", "type": "bytes32"}],
    "name": "getTokenInfo",
    "outputs": [
      {"name": "name", "type": "string"},
      {"name": "ticker", "type": "string"},
      {"name": "addr", "type": "address"},
      {"name": "symbolMultihash", "type": "string"},
      {"name": "status", "type": "uint8"},
      {"name": "numberOfRequests", "type": "uint256"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const tokensViewABIJSON = `[
  {
    "inputs": [
      {"name": "_t2crAddress", "type": "address"},
      {"name": "_tokenAddresses", "type": "address[]"}
    ],
    "name": "getTokensIDsForAddresses",
    "outputs": [{"name": "result", "type": "bytes32[]"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [
      {"name": "_t2crAddress", "type": "address"},
      {"name": "_tokenIDs", "type": "bytes32[]"}
    ],
    "name": "getTokens",
    "outputs": [
      {
        "name": "tokens",
        "type": "tuple[]",
        "components": [
          {"name": "ID", "type": "bytes32"},
          {"name": "name", "type": "string"},
          {"name": "ticker", "type": "string"},
          {"name": "addr", "type": "address"},
          {"name": "symbolMultihash", "type": "string"},
          {"name": "status", "type": "uint8"},
          {"name": "decimals", "type": "uint256"}
        ]
      }
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const exchangesViewABIJSON = `[
  {
    "inputs": [
      {"name": "_factory", "type": "address"},
      {"name": "_tokens", "type": "address[]"}
    ],
    "name": "getExchanges",
    "outputs": [{"name": "exchanges", "type": "address[]"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const factoryABIJSON = `[
  {
    "inputs": [{"name": "token", "type": "address"}],
    "name": "getExchange",
    "outputs": [{"name": "out", "type": "address"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

type lazyABI struct {
	raw    string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.raw))
	})
	return l.parsed, l.err
}

var (
	addressListABI   = &lazyABI{raw: addressListABIJSON}
	tokenListABI     = &lazyABI{raw: tokenListABIJSON}
	tokensViewABI    = &lazyABI{raw: tokensViewABIJSON}
	exchangesViewABI = &lazyABI{raw: exchangesViewABIJSON}
	factoryABI       = &lazyABI{raw: factoryABIJSON}
)

// AddressListABI returns the badge registry (address list) ABI.
func AddressListABI() (abi.ABI, error) { return addressListABI.get() }

// TokenListABI returns the curated token registry ABI.
func TokenListABI() (abi.ABI, error) { return tokenListABI.get() }

// TokensViewABI returns the batch token-info view ABI.
func TokensViewABI() (abi.ABI, error) { return tokensViewABI.get() }

// ExchangesViewABI returns the batch exchange-lookup view ABI.
func ExchangesViewABI() (abi.ABI, error) { return exchangesViewABI.get() }

// FactoryABI returns the AMM factory ABI.
func FactoryABI() (abi.ABI, error) { return factoryABI.get() }
