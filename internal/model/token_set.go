package model

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// TokenSet holds every record known on one network.
type TokenSet struct {
	Tokens   map[common.Address]TokenRecord `json:"tokens"`
	Fetching bool                           `json:"-"`
}

// NetworkTokenSet maps network ID to that network's tokens.
type NetworkTokenSet map[uint64]TokenSet

// NewTokenSet builds a TokenSet from records. Later duplicates of an
// address are dropped.
func NewTokenSet(records []TokenRecord) TokenSet {
	set := TokenSet{Tokens: make(map[common.Address]TokenRecord, len(records))}
	for _, rec := range records {
		if rec.IsNative() {
			continue
		}
		if _, ok := set.Tokens[rec.Address]; ok {
			continue
		}
		set.Tokens[rec.Address] = rec.Clone()
	}
	return set
}

// Clone returns a deep copy.
func (s TokenSet) Clone() TokenSet {
	out := TokenSet{
		Tokens:   make(map[common.Address]TokenRecord, len(s.Tokens)),
		Fetching: s.Fetching,
	}
	for addr, rec := range s.Tokens {
		out.Tokens[addr] = rec.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (n NetworkTokenSet) Clone() NetworkTokenSet {
	out := make(NetworkTokenSet, len(n))
	for id, set := range n {
		out[id] = set.Clone()
	}
	return out
}

// SortRecords orders ETH first, then by symbol and address.
func SortRecords(list []TokenRecord) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.IsNative() != b.IsNative() {
			return a.IsNative()
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Address.Hex() < b.Address.Hex()
	})
}
