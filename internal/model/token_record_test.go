package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenA = common.HexToAddress("0x2000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x2000000000000000000000000000000000000002")
	poolA  = common.HexToAddress("0x3000000000000000000000000000000000000001")
)

func TestTokenRecordPredicates(t *testing.T) {
	assert.True(t, NativeToken().IsTradable())
	assert.True(t, NativeToken().IsComplete())

	rec := TokenRecord{Address: tokenA, Decimals: 18}
	assert.False(t, rec.IsComplete())
	assert.False(t, rec.IsTradable())

	noPool := rec.WithExchange(common.Address{})
	assert.True(t, noPool.IsComplete())
	assert.False(t, noPool.HasExchange())
	assert.False(t, noPool.IsTradable())

	withPool := rec.WithExchange(poolA)
	assert.True(t, withPool.IsTradable())
	assert.Nil(t, rec.ExchangeAddress)

	missing := withPool
	missing.Decimals = DecimalsUnknown
	missing.HasDecimalsMissing = true
	assert.True(t, missing.IsComplete())
	assert.False(t, missing.IsTradable())
}

func TestCloneDetachesExchange(t *testing.T) {
	rec := TokenRecord{Address: tokenA}.WithExchange(poolA)
	clone := rec.Clone()
	*clone.ExchangeAddress = tokenB
	assert.Equal(t, poolA, *rec.ExchangeAddress)
}

func TestNewTokenSet(t *testing.T) {
	set := NewTokenSet([]TokenRecord{
		NativeToken(),
		{Address: tokenA, Symbol: "FIRST"},
		{Address: tokenA, Symbol: "SECOND"},
		{Address: tokenB, Symbol: "BBB"},
	})
	require.Len(t, set.Tokens, 2)
	assert.Equal(t, "FIRST", set.Tokens[tokenA].Symbol)
	_, hasNative := set.Tokens[NativeAddress]
	assert.False(t, hasNative)
}

func TestSortRecords(t *testing.T) {
	list := []TokenRecord{
		{Address: tokenB, Symbol: "AAA"},
		{Address: tokenA, Symbol: "ZZZ"},
		NativeToken(),
		{Address: tokenA, Symbol: "AAA"},
	}
	SortRecords(list)
	assert.True(t, list[0].IsNative())
	assert.Equal(t, tokenA, list[1].Address)
	assert.Equal(t, tokenB, list[2].Address)
	assert.Equal(t, "ZZZ", list[3].Symbol)
}

func TestParseNetwork(t *testing.T) {
	cases := []struct {
		input string
		want  uint64
		ok    bool
	}{
		{"mainnet", NetworkMainnet, true},
		{" Rinkeby ", NetworkRinkeby, true},
		{"42", 42, true},
		{"0", 0, false},
		{"ropsten", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseNetwork(tc.input)
		if !tc.ok {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got)
	}
	assert.Equal(t, "mainnet", NetworkName(NetworkMainnet))
	assert.Equal(t, "42", NetworkName(42))
}
