// Package exchange reads live reserves of ETH/token pools and prices trades
// against them.
package exchange

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/chain"
	"tokenScope/internal/contracts"
	"tokenScope/internal/model"
)

// Reserves are the balances of one ETH/token pool.
type Reserves struct {
	Pool   common.Address
	Token  common.Address
	ETH    *big.Int
	Tokens *big.Int
}

// TokenToETH orients the reserves for selling the token.
func (r Reserves) TokenToETH() model.ReserveSnapshot {
	return model.ReserveSnapshot{Pool: r.Pool, Input: r.Tokens, Output: r.ETH}
}

// ETHToToken orients the reserves for buying the token.
func (r Reserves) ETHToToken() model.ReserveSnapshot {
	return model.ReserveSnapshot{Pool: r.Pool, Input: r.ETH, Output: r.Tokens}
}

// ReadReserves reads the pool's ETH balance and its balance of token.
func ReadReserves(ctx context.Context, reader chain.Reader, pool, token common.Address) (Reserves, error) {
	if reader == nil {
		return Reserves{}, fmt.Errorf("chain client is nil")
	}
	if pool == (common.Address{}) {
		return Reserves{}, fmt.Errorf("token %s has no exchange", token.Hex())
	}

	res := Reserves{Pool: pool, Token: token}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bal, err := reader.BalanceAt(gctx, pool, nil)
		if err != nil {
			return fmt.Errorf("eth balance of %s: %w", pool.Hex(), err)
		}
		res.ETH = bal
		return nil
	})
	g.Go(func() error {
		bal, err := contracts.BalanceOf(gctx, reader, token, pool)
		if err != nil {
			return fmt.Errorf("token balance of %s: %w", pool.Hex(), err)
		}
		res.Tokens = bal
		return nil
	})
	if err := g.Wait(); err != nil {
		return Reserves{}, err
	}
	return res, nil
}
