package exchange

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenScope/internal/chain/chaintest"
	"tokenScope/internal/contracts"
	"tokenScope/internal/model"
	"tokenScope/internal/pricing"
)

var (
	tokenA = common.HexToAddress("0x2000000000000000000000000000000000000001")
	tokenB = common.HexToAddress("0x2000000000000000000000000000000000000002")
	poolA  = common.HexToAddress("0x3000000000000000000000000000000000000001")
	poolB  = common.HexToAddress("0x3000000000000000000000000000000000000002")
)

func newPool(t *testing.T, fake *chaintest.Chain, token, pool common.Address, eth, tokens int64) {
	erc20ABI, err := contracts.ERC20ABI()
	require.NoError(t, err)
	fake.SetBalance(pool, big.NewInt(eth))
	fake.Handle(token, erc20ABI, "balanceOf", func(args []interface{}) ([]interface{}, error) {
		if args[0].(common.Address) == pool {
			return []interface{}{big.NewInt(tokens)}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	})
}

func record(token, pool common.Address) model.TokenRecord {
	return model.TokenRecord{Address: token, Symbol: "TKN", Decimals: 18}.WithExchange(pool)
}

func TestReadReserves(t *testing.T) {
	fake := chaintest.New()
	newPool(t, fake, tokenA, poolA, 1000, 5000)

	res, err := ReadReserves(context.Background(), fake, poolA, tokenA)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.ETH.Int64())
	assert.Equal(t, int64(5000), res.Tokens.Int64())

	snap := res.TokenToETH()
	assert.Equal(t, int64(5000), snap.Input.Int64())
	assert.Equal(t, int64(1000), snap.Output.Int64())
	assert.Equal(t, res.ETHToToken(), snap.Reversed())

	_, err = ReadReserves(context.Background(), fake, common.Address{}, tokenA)
	require.Error(t, err)
}

func TestQuoterDirect(t *testing.T) {
	fake := chaintest.New()
	newPool(t, fake, tokenA, poolA, 1000, 1000)
	q := NewQuoter(fake, nil)

	quote, err := q.Quote(context.Background(), pricing.ExactInput, big.NewInt(10), model.NativeToken(), record(tokenA, poolA))
	require.NoError(t, err)
	assert.Equal(t, int64(9), quote.OutputAmount.Int64())

	quote, err = q.Quote(context.Background(), pricing.ExactInput, big.NewInt(10), record(tokenA, poolA), model.NativeToken())
	require.NoError(t, err)
	assert.Equal(t, int64(9), quote.OutputAmount.Int64())
}

func TestQuoterTokenToToken(t *testing.T) {
	fake := chaintest.New()
	newPool(t, fake, tokenA, poolA, 1_000_000, 1_000_000)
	newPool(t, fake, tokenB, poolB, 1_000_000, 1_000_000)
	q := NewQuoter(fake, nil)

	quote, err := q.Quote(context.Background(), pricing.ExactInput, big.NewInt(1000), record(tokenA, poolA), record(tokenB, poolB))
	require.NoError(t, err)
	require.NotNil(t, quote.EthAmount)

	direct, err := pricing.ExactOutputFromInput(big.NewInt(1000), big.NewInt(1_000_000), big.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, direct.Int64(), quote.EthAmount.Int64())
	assert.True(t, quote.OutputAmount.Cmp(quote.EthAmount) < 0)
}

func TestQuoterRejectsUntradable(t *testing.T) {
	q := NewQuoter(chaintest.New(), nil)
	noPool := model.TokenRecord{Address: tokenA, Decimals: 18}.WithExchange(common.Address{})

	_, err := q.Quote(context.Background(), pricing.ExactInput, big.NewInt(1), model.NativeToken(), noPool)
	require.ErrorIs(t, err, ErrNotTradable)

	_, err = q.Quote(context.Background(), pricing.ExactInput, big.NewInt(1), model.NativeToken(), model.NativeToken())
	require.ErrorIs(t, err, ErrSamePair)
}
