package contracts

import "github.com/ethereum/go-ethereum/accounts/abi"

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20StringABI  = &lazyABI{raw: erc20ABIStringJSON}
	erc20Bytes32ABI = &lazyABI{raw: erc20ABIBytes32JSON}
)

// ERC20ABI returns the standard ERC-20 ABI with string name/symbol.
func ERC20ABI() (abi.ABI, error) { return erc20StringABI.get() }

// ERC20Bytes32ABI returns the legacy ERC-20 ABI with bytes32 name/symbol.
func ERC20Bytes32ABI() (abi.ABI, error) { return erc20Bytes32ABI.get() }
