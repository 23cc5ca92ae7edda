package tokens

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenScope/internal/chain"
	"tokenScope/internal/chain/chaintest"
	"tokenScope/internal/contracts"
	"tokenScope/internal/model"
)

var (
	tokenListAddr     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	erc20BadgeAddr    = common.HexToAddress("0x1000000000000000000000000000000000000002")
	trustBadgeAddr    = common.HexToAddress("0x1000000000000000000000000000000000000003")
	tokensViewAddr    = common.HexToAddress("0x1000000000000000000000000000000000000004")
	exchangesViewAddr = common.HexToAddress("0x1000000000000000000000000000000000000005")
	factoryAddr       = common.HexToAddress("0x1000000000000000000000000000000000000006")

	tokenA = common.HexToAddress("0x2000000000000000000000000000000000000001")
	tokenC = common.HexToAddress("0x2000000000000000000000000000000000000003")
	usdc   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")

	poolA = common.HexToAddress("0x3000000000000000000000000000000000000001")
	poolB = common.HexToAddress("0x3000000000000000000000000000000000000002")
	poolC = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func idFor(addr common.Address) [32]byte {
	var id [32]byte
	copy(id[12:], addr.Bytes())
	id[0] = 0xff
	return id
}

func testConfig(set Contracts) Config {
	return Config{
		Networks:     map[uint64]Contracts{model.NetworkMainnet: set},
		PageSize:     10,
		BatchSize:    2,
		Concurrency:  4,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}
}

func handleBadge(t *testing.T, fake *chaintest.Chain, badge common.Address, addrs []common.Address) {
	parsed, err := contracts.AddressListABI()
	require.NoError(t, err)
	fake.Handle(badge, parsed, "queryAddresses", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{addrs, false}, nil
	})
}

func TestAggregatorFetchWithViews(t *testing.T) {
	fake := chaintest.New()
	handleBadge(t, fake, erc20BadgeAddr, []common.Address{tokenA, usdc, {}, tokenC})
	handleBadge(t, fake, trustBadgeAddr, []common.Address{usdc})

	viewABI, err := contracts.TokensViewABI()
	require.NoError(t, err)
	fake.Handle(tokensViewAddr, viewABI, "getTokensIDsForAddresses", func(args []interface{}) ([]interface{}, error) {
		require.Equal(t, tokenListAddr, args[0].(common.Address))
		addrs := args[1].([]common.Address)
		ids := make([][32]byte, len(addrs))
		for i, addr := range addrs {
			ids[i] = idFor(addr)
		}
		return []interface{}{ids}, nil
	})
	infos := map[[32]byte]contracts.TokenInfo{
		idFor(tokenA): {Name: "Alpha", Ticker: "ALP", Addr: tokenA, Decimals: big.NewInt(18)},
		idFor(usdc):   {Name: "USD Coin", Ticker: "USDC", Addr: usdc, Decimals: big.NewInt(0)},
		idFor(tokenC): {Name: "Gamma", Ticker: "", Addr: tokenC, Decimals: big.NewInt(0)},
	}
	fake.Handle(tokensViewAddr, viewABI, "getTokens", func(args []interface{}) ([]interface{}, error) {
		ids := args[1].([][32]byte)
		out := make([]contracts.TokenInfo, len(ids))
		for i, id := range ids {
			info := infos[id]
			info.ID = id
			if info.Decimals == nil {
				info.Decimals = big.NewInt(0)
			}
			out[i] = info
		}
		return []interface{}{out}, nil
	})

	exchangesABI, err := contracts.ExchangesViewABI()
	require.NoError(t, err)
	pools := map[common.Address]common.Address{tokenA: poolA, usdc: poolB, tokenC: poolC}
	fake.Handle(exchangesViewAddr, exchangesABI, "getExchanges", func(args []interface{}) ([]interface{}, error) {
		require.Equal(t, factoryAddr, args[0].(common.Address))
		tokens := args[1].([]common.Address)
		out := make([]common.Address, len(tokens))
		for i, token := range tokens {
			out[i] = pools[token]
		}
		return []interface{}{out}, nil
	})

	agg := NewAggregator(testConfig(Contracts{
		TokenList:     tokenListAddr,
		ERC20Badge:    erc20BadgeAddr,
		TrustBadge:    trustBadgeAddr,
		TokensView:    tokensViewAddr,
		ExchangesView: exchangesViewAddr,
		Factory:       factoryAddr,
	}), fake, nil)

	records, err := agg.Fetch(context.Background(), model.NetworkMainnet)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, tokenA, records[0].Address)
	assert.Equal(t, 18, records[0].Decimals)
	assert.True(t, records[0].IsTradable())
	assert.False(t, records[0].HasTrustBadge)

	assert.Equal(t, usdc, records[1].Address)
	assert.Equal(t, 6, records[1].Decimals)
	assert.True(t, records[1].HasTrustBadge)
	assert.Equal(t, poolB, *records[1].ExchangeAddress)

	assert.Equal(t, tokenC, records[2].Address)
	assert.True(t, records[2].HasDecimalsMissing)
	assert.Equal(t, model.DecimalsUnknown, records[2].Decimals)
	assert.Equal(t, model.PlaceholderSymbol, records[2].Symbol)
	assert.False(t, records[2].IsTradable())

	// Three addresses at batch size 2 take two calls per view.
	assert.Equal(t, 2, fake.Calls("getTokensIDsForAddresses"))
	assert.Equal(t, 2, fake.Calls("getExchanges"))
}

func TestAggregatorFetchWithoutViews(t *testing.T) {
	fake := chaintest.New()
	handleBadge(t, fake, erc20BadgeAddr, []common.Address{tokenA, tokenC})

	listABI, err := contracts.TokenListABI()
	require.NoError(t, err)
	fake.Handle(tokenListAddr, listABI, "queryTokens", func(args []interface{}) ([]interface{}, error) {
		token := args[4].(common.Address)
		return []interface{}{[][32]byte{idFor(token)}, false}, nil
	})
	submissions := map[[32]byte]common.Address{idFor(tokenA): tokenA, idFor(tokenC): tokenC}
	fake.Handle(tokenListAddr, listABI, "getTokenInfo", func(args []interface{}) ([]interface{}, error) {
		addr := submissions[args[0].([32]byte)]
		return []interface{}{"Token", "TKN", addr, "", uint8(1), big.NewInt(1)}, nil
	})

	erc20ABI, err := contracts.ERC20ABI()
	require.NoError(t, err)
	fake.Handle(tokenA, erc20ABI, "decimals", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{uint8(18)}, nil
	})
	// tokenC has no decimals() and no dictionary entry.

	factoryABI, err := contracts.FactoryABI()
	require.NoError(t, err)
	fake.Handle(factoryAddr, factoryABI, "getExchange", func(args []interface{}) ([]interface{}, error) {
		if args[0].(common.Address) == tokenA {
			return []interface{}{poolA}, nil
		}
		return []interface{}{common.Address{}}, nil
	})

	agg := NewAggregator(testConfig(Contracts{
		TokenList:  tokenListAddr,
		ERC20Badge: erc20BadgeAddr,
		Factory:    factoryAddr,
	}), fake, nil)

	records, err := agg.Fetch(context.Background(), model.NetworkMainnet)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 18, records[0].Decimals)
	assert.True(t, records[0].IsTradable())

	assert.True(t, records[1].HasDecimalsMissing)
	assert.False(t, records[1].HasExchange())
	assert.False(t, records[1].IsTradable())
	assert.Equal(t, 2, fake.Calls("getTokenInfo"))
}

func TestAggregatorRetriesTransientFailures(t *testing.T) {
	parsed, err := contracts.AddressListABI()
	require.NoError(t, err)

	fake := chaintest.New()
	calls := 0
	fake.Handle(erc20BadgeAddr, parsed, "queryAddresses", func(args []interface{}) ([]interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("429 Too Many Requests")
		}
		return []interface{}{[]common.Address{}, false}, nil
	})

	agg := NewAggregator(testConfig(Contracts{TokenList: tokenListAddr, ERC20Badge: erc20BadgeAddr}), fake, nil)
	records, err := agg.Fetch(context.Background(), model.NetworkMainnet)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 2, fake.Calls("queryAddresses"))
}

func TestAggregatorStopsAfterMaxAttempts(t *testing.T) {
	parsed, err := contracts.AddressListABI()
	require.NoError(t, err)

	fake := chaintest.New()
	fake.Handle(erc20BadgeAddr, parsed, "queryAddresses", func(args []interface{}) ([]interface{}, error) {
		return nil, errors.New("connection refused")
	})

	agg := NewAggregator(testConfig(Contracts{TokenList: tokenListAddr, ERC20Badge: erc20BadgeAddr}), fake, nil)
	_, err = agg.Fetch(context.Background(), model.NetworkMainnet)
	require.Error(t, err)
	assert.True(t, chain.IsTransient(err))
	assert.Equal(t, 3, fake.Calls("queryAddresses"))
}

func TestAggregatorDoesNotRetryReverts(t *testing.T) {
	parsed, err := contracts.AddressListABI()
	require.NoError(t, err)

	fake := chaintest.New()
	fake.Handle(erc20BadgeAddr, parsed, "queryAddresses", func(args []interface{}) ([]interface{}, error) {
		return nil, errors.New("execution reverted")
	})

	agg := NewAggregator(testConfig(Contracts{TokenList: tokenListAddr, ERC20Badge: erc20BadgeAddr}), fake, nil)
	_, err = agg.Fetch(context.Background(), model.NetworkMainnet)
	require.Error(t, err)
	assert.False(t, chain.IsTransient(err))
	assert.Equal(t, 1, fake.Calls("queryAddresses"))
}

func TestAggregatorToleratesBrokenTrustBadge(t *testing.T) {
	parsed, err := contracts.AddressListABI()
	require.NoError(t, err)

	fake := chaintest.New()
	handleBadge(t, fake, erc20BadgeAddr, []common.Address{tokenA})
	fake.Handle(trustBadgeAddr, parsed, "queryAddresses", func(args []interface{}) ([]interface{}, error) {
		return nil, errors.New("execution reverted")
	})

	listABI, err := contracts.TokenListABI()
	require.NoError(t, err)
	fake.Handle(tokenListAddr, listABI, "queryTokens", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{[][32]byte{idFor(tokenA)}, false}, nil
	})
	fake.Handle(tokenListAddr, listABI, "getTokenInfo", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{"Alpha", "ALP", tokenA, "", uint8(1), big.NewInt(1)}, nil
	})
	erc20ABI, err := contracts.ERC20ABI()
	require.NoError(t, err)
	fake.Handle(tokenA, erc20ABI, "decimals", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{uint8(18)}, nil
	})

	agg := NewAggregator(testConfig(Contracts{
		TokenList:  tokenListAddr,
		ERC20Badge: erc20BadgeAddr,
		TrustBadge: trustBadgeAddr,
	}), fake, nil)

	records, err := agg.Fetch(context.Background(), model.NetworkMainnet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, tokenA, records[0].Address)
	assert.Equal(t, 18, records[0].Decimals)
	assert.False(t, records[0].HasTrustBadge)
	// One pass, no retry.
	assert.Equal(t, 1, fake.Calls("getTokenInfo"))
}

func TestAggregatorRetriesTransientTrustBadgeFailures(t *testing.T) {
	parsed, err := contracts.AddressListABI()
	require.NoError(t, err)

	fake := chaintest.New()
	handleBadge(t, fake, erc20BadgeAddr, nil)
	calls := 0
	fake.Handle(trustBadgeAddr, parsed, "queryAddresses", func(args []interface{}) ([]interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("429 Too Many Requests")
		}
		return []interface{}{[]common.Address{}, false}, nil
	})

	agg := NewAggregator(testConfig(Contracts{
		TokenList:  tokenListAddr,
		ERC20Badge: erc20BadgeAddr,
		TrustBadge: trustBadgeAddr,
	}), fake, nil)
	records, err := agg.Fetch(context.Background(), model.NetworkMainnet)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 2, calls)
}

func TestAggregatorUnknownNetwork(t *testing.T) {
	agg := NewAggregator(Config{}, chaintest.New(), nil)
	_, err := agg.Fetch(context.Background(), 42)
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestDedupeKeepsFirst(t *testing.T) {
	out := dedupe([]model.TokenRecord{
		{Address: tokenA, Symbol: "OLD"},
		{Address: tokenC, Symbol: "C"},
		{Address: tokenA, Symbol: "NEW"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "OLD", out[0].Symbol)
}

func TestResolveDecimals(t *testing.T) {
	tests := []struct {
		name    string
		network uint64
		token   common.Address
		onChain *big.Int
		want    int
		wantOK  bool
	}{
		{"reported", model.NetworkMainnet, tokenA, big.NewInt(8), 8, true},
		{"zero falls back", model.NetworkMainnet, usdc, big.NewInt(0), 6, true},
		{"nil falls back", model.NetworkMainnet, usdc, nil, 6, true},
		{"dictionary zero", model.NetworkMainnet, common.HexToAddress("0xaeC2E87E0A235266D9C5ADc9DEb4b2E29b54D009"), nil, 0, true},
		{"too large", model.NetworkMainnet, tokenA, big.NewInt(77), model.DecimalsUnknown, false},
		{"other network", model.NetworkRinkeby, usdc, nil, model.DecimalsUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveDecimals(tt.network, tt.token, tt.onChain)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
