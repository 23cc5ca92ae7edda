package contracts

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/chain"
)

// AddressList is a badge registry: an on-chain list of addresses.
type AddressList struct {
	Address common.Address
	Caller  chain.Caller
}

// QueryAddresses returns one page of listed addresses starting at cursor.
func (l AddressList) QueryAddresses(ctx context.Context, cursor common.Address, count uint64, filter [8]bool, oldestFirst bool) ([]common.Address, bool, error) {
	parsed, err := AddressListABI()
	if err != nil {
		return nil, false, fmt.Errorf("parse address list abi: %w", err)
	}
	values, err := chain.Call(ctx, l.Caller, l.Address, parsed, "queryAddresses", cursor, new(big.Int).SetUint64(count), filter, oldestFirst)
	if err != nil {
		return nil, false, err
	}
	addrs, err := asAddresses(values[0])
	if err != nil {
		return nil, false, err
	}
	hasMore, err := asBool(values[1])
	if err != nil {
		return nil, false, err
	}
	return addrs, hasMore, nil
}

// TokenList is the curated token registry.
type TokenList struct {
	Address common.Address
	Caller  chain.Caller
}

// QueryTokens returns one page of submission IDs, optionally scoped to a
// token address (zero address for all).
func (l TokenList) QueryTokens(ctx context.Context, cursor [32]byte, count uint64, filter [8]bool, oldestFirst bool, token common.Address) ([][32]byte, bool, error) {
	parsed, err := TokenListABI()
	if err != nil {
		return nil, false, fmt.Errorf("parse token list abi: %w", err)
	}
	values, err := chain.Call(ctx, l.Caller, l.Address, parsed, "queryTokens", cursor, new(big.Int).SetUint64(count), filter, oldestFirst, token)
	if err != nil {
		return nil, false, err
	}
	ids, err := asHashes(values[0])
	if err != nil {
		return nil, false, err
	}
	hasMore, err := asBool(values[1])
	if err != nil {
		return nil, false, err
	}
	return ids, hasMore, nil
}

// GetTokenInfo fetches a single submission.
func (l TokenList) GetTokenInfo(ctx context.Context, id [32]byte) (Submission, error) {
	parsed, err := TokenListABI()
	if err != nil {
		return Submission{}, fmt.Errorf("parse token list abi: %w", err)
	}
	values, err := chain.Call(ctx, l.Caller, l.Address, parsed, "getTokenInfo", id)
	if err != nil {
		return Submission{}, err
	}
	if len(values) != 6 {
		return Submission{}, fmt.Errorf("getTokenInfo return size %d", len(values))
	}

	sub := Submission{ID: id}
	if sub.Name, err = asString(values[0]); err != nil {
		return Submission{}, fmt.Errorf("name: %w", err)
	}
	if sub.Ticker, err = asString(values[1]); err != nil {
		return Submission{}, fmt.Errorf("ticker: %w", err)
	}
	if sub.Addr, err = asAddress(values[2]); err != nil {
		return Submission{}, fmt.Errorf("addr: %w", err)
	}
	if sub.SymbolMultihash, err = asString(values[3]); err != nil {
		return Submission{}, fmt.Errorf("symbol multihash: %w", err)
	}
	if sub.Status, err = asUint8(values[4]); err != nil {
		return Submission{}, fmt.Errorf("status: %w", err)
	}
	if sub.NumberOfRequests, err = asBigInt(values[5]); err != nil {
		return Submission{}, fmt.Errorf("number of requests: %w", err)
	}
	return sub, nil
}

// TokensView batches registry reads for many addresses or IDs in one call.
type TokensView struct {
	Address  common.Address
	Registry common.Address
	Caller   chain.Caller
}

// IDsForAddresses maps token addresses to their latest submission IDs. The
// result is positional; unknown addresses map to the zero ID.
func (v TokensView) IDsForAddresses(ctx context.Context, tokens []common.Address) ([][32]byte, error) {
	parsed, err := TokensViewABI()
	if err != nil {
		return nil, fmt.Errorf("parse tokens view abi: %w", err)
	}
	values, err := chain.Call(ctx, v.Caller, v.Address, parsed, "getTokensIDsForAddresses", v.Registry, tokens)
	if err != nil {
		return nil, err
	}
	return asHashes(values[0])
}

// GetTokens fetches full records, including on-chain decimals, for IDs.
func (v TokensView) GetTokens(ctx context.Context, ids [][32]byte) ([]TokenInfo, error) {
	parsed, err := TokensViewABI()
	if err != nil {
		return nil, fmt.Errorf("parse tokens view abi: %w", err)
	}
	values, err := chain.Call(ctx, v.Caller, v.Address, parsed, "getTokens", v.Registry, ids)
	if err != nil {
		return nil, err
	}
	return convertTokenInfos(values[0])
}

func convertTokenInfos(value interface{}) (infos []TokenInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode token infos: %v", r)
		}
	}()
	converted := *abi.ConvertType(value, new([]TokenInfo)).(*[]TokenInfo)
	return converted, nil
}

// ExchangesView batches factory exchange lookups.
type ExchangesView struct {
	Address common.Address
	Factory common.Address
	Caller  chain.Caller
}

// GetExchanges returns the pool address for each token, zero when none.
func (v ExchangesView) GetExchanges(ctx context.Context, tokens []common.Address) ([]common.Address, error) {
	parsed, err := ExchangesViewABI()
	if err != nil {
		return nil, fmt.Errorf("parse exchanges view abi: %w", err)
	}
	values, err := chain.Call(ctx, v.Caller, v.Address, parsed, "getExchanges", v.Factory, tokens)
	if err != nil {
		return nil, err
	}
	return asAddresses(values[0])
}

// Factory is the AMM factory that maps tokens to pools.
type Factory struct {
	Address common.Address
	Caller  chain.Caller
}

// GetExchange returns the pool address for token, zero when none.
func (f Factory) GetExchange(ctx context.Context, token common.Address) (common.Address, error) {
	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}
	values, err := chain.Call(ctx, f.Caller, f.Address, parsed, "getExchange", token)
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}
