package model

import "github.com/ethereum/go-ethereum/common"

const (
	// DecimalsUnknown marks a record whose decimals were never resolved.
	DecimalsUnknown = -1
	// PlaceholderSymbol is shown for tokens whose symbol could not be read.
	PlaceholderSymbol = "---"
)

// NativeAddress keys the synthetic ETH record.
var NativeAddress = common.Address{}

// TokenRecord is one token known on a network.
type TokenRecord struct {
	Address              common.Address  `json:"address"`
	Name                 string          `json:"name"`
	Symbol               string          `json:"symbol"`
	SymbolMultihash      string          `json:"symbol_multihash,omitempty"`
	Decimals             int             `json:"decimals"`
	ExchangeAddress      *common.Address `json:"exchange_address,omitempty"`
	HasERC20BadgeMissing bool            `json:"has_erc20_badge_missing"`
	HasDecimalsMissing   bool            `json:"has_decimals_missing"`
	HasTrustBadge        bool            `json:"has_trust_badge"`
}

// NativeToken returns the synthetic ETH record.
func NativeToken() TokenRecord {
	return TokenRecord{
		Address:  NativeAddress,
		Name:     "Ethereum",
		Symbol:   "ETH",
		Decimals: 18,
	}
}

// IsNative reports whether the record is the synthetic ETH record.
func (t TokenRecord) IsNative() bool {
	return t.Address == NativeAddress
}

// HasExchange reports whether the token has a resolved, non-zero pool.
func (t TokenRecord) HasExchange() bool {
	return t.ExchangeAddress != nil && *t.ExchangeAddress != (common.Address{})
}

// IsTradable reports whether the token can be quoted and swapped.
func (t TokenRecord) IsTradable() bool {
	if t.IsNative() {
		return true
	}
	return t.HasExchange() && !t.HasDecimalsMissing && t.Decimals >= 0
}

// IsComplete reports whether decimals and exchange lookups have both run.
func (t TokenRecord) IsComplete() bool {
	if t.IsNative() {
		return true
	}
	decimalsDone := t.Decimals >= 0 || t.HasDecimalsMissing
	return decimalsDone && t.ExchangeAddress != nil
}

// WithExchange returns a copy with the exchange address set. A zero
// address records that the factory has no pool for the token.
func (t TokenRecord) WithExchange(exchange common.Address) TokenRecord {
	addr := exchange
	t.ExchangeAddress = &addr
	return t
}

// Clone returns a deep copy.
func (t TokenRecord) Clone() TokenRecord {
	if t.ExchangeAddress != nil {
		addr := *t.ExchangeAddress
		t.ExchangeAddress = &addr
	}
	return t
}
