package contracts

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tokenScope/internal/chain"
	"tokenScope/internal/chain/chaintest"
)

var (
	registryAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	viewAddr     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	tokenAddr    = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func TestTokensViewGetTokensDecodesTuples(t *testing.T) {
	parsed, err := TokensViewABI()
	require.NoError(t, err)

	fake := chaintest.New()
	fake.Handle(viewAddr, parsed, "getTokens", func(args []interface{}) ([]interface{}, error) {
		require.Equal(t, registryAddr, args[0])
		ids := args[1].([][32]byte)
		require.Len(t, ids, 1)
		return []interface{}{[]TokenInfo{{
			ID:              ids[0],
			Name:            "Maker",
			Ticker:          "MKR",
			Addr:            tokenAddr,
			SymbolMultihash: "/ipfs/Qm",
			Status:          1,
			Decimals:        big.NewInt(18),
		}}}, nil
	})

	view := TokensView{Address: viewAddr, Registry: registryAddr, Caller: fake}
	infos, err := view.GetTokens(context.Background(), [][32]byte{{0x01}})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, "MKR", infos[0].Ticker)
	require.Equal(t, tokenAddr, infos[0].Addr)
	require.Equal(t, int64(18), infos[0].Decimals.Int64())
	require.Equal(t, [32]byte{0x01}, infos[0].ID)
}

func TestTokenListGetTokenInfo(t *testing.T) {
	parsed, err := TokenListABI()
	require.NoError(t, err)

	fake := chaintest.New()
	fake.Handle(registryAddr, parsed, "getTokenInfo", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{"Dai", "DAI", tokenAddr, "/ipfs/dai", uint8(1), big.NewInt(2)}, nil
	})

	list := TokenList{Address: registryAddr, Caller: fake}
	sub, err := list.GetTokenInfo(context.Background(), [32]byte{0x02})
	require.NoError(t, err)
	require.Equal(t, "DAI", sub.Ticker)
	require.Equal(t, "Dai", sub.Name)
	require.Equal(t, tokenAddr, sub.Addr)
	require.Equal(t, [32]byte{0x02}, sub.ID)
}

func TestFetchERC20MetaBytes32Fallback(t *testing.T) {
	stringABI, err := ERC20ABI()
	require.NoError(t, err)
	bytes32ABI, err := ERC20Bytes32ABI()
	require.NoError(t, err)

	fake := chaintest.New()
	fake.Handle(tokenAddr, bytes32ABI, "symbol", func(args []interface{}) ([]interface{}, error) {
		var sym [32]byte
		copy(sym[:], "MKR")
		return []interface{}{sym}, nil
	})
	fake.Handle(tokenAddr, stringABI, "name", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{"Maker"}, nil
	})

	meta, err := FetchERC20Meta(context.Background(), fake, tokenAddr, zap.NewNop())
	require.Error(t, err, "decimals is not implemented")
	require.False(t, chain.IsTransient(err))
	require.Equal(t, "MKR", meta.Symbol)
	require.Equal(t, "Maker", meta.Name)
}

func TestDecimalsAndBalanceOf(t *testing.T) {
	parsed, err := ERC20ABI()
	require.NoError(t, err)
	owner := common.HexToAddress("0x4444444444444444444444444444444444444444")

	fake := chaintest.New()
	fake.Handle(tokenAddr, parsed, "decimals", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{uint8(6)}, nil
	})
	fake.Handle(tokenAddr, parsed, "balanceOf", func(args []interface{}) ([]interface{}, error) {
		require.Equal(t, owner, args[0])
		return []interface{}{big.NewInt(12345)}, nil
	})

	dec, err := Decimals(context.Background(), fake, tokenAddr)
	require.NoError(t, err)
	require.Equal(t, uint8(6), dec)

	bal, err := BalanceOf(context.Background(), fake, tokenAddr, owner)
	require.NoError(t, err)
	require.Equal(t, int64(12345), bal.Int64())
}
