package exchange

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/chain"
	"tokenScope/internal/model"
	"tokenScope/internal/pricing"
)

var (
	ErrNotTradable = errors.New("token is not tradable")
	ErrSamePair    = errors.New("input and output tokens are the same")
)

// Quoter prices trades between two tokens from freshly read reserves.
type Quoter struct {
	reader chain.Reader
	logger *zap.Logger
}

func NewQuoter(reader chain.Reader, logger *zap.Logger) *Quoter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Quoter{reader: reader, logger: logger}
}

// Quote prices selling in for out. Token to token trades are routed through
// ETH using both tokens' pools.
func (q *Quoter) Quote(ctx context.Context, direction pricing.Direction, amount *big.Int, in, out model.TokenRecord) (pricing.Quote, error) {
	if in.Address == out.Address {
		return pricing.Quote{}, ErrSamePair
	}
	for _, rec := range []model.TokenRecord{in, out} {
		if !rec.IsTradable() {
			return pricing.Quote{}, fmt.Errorf("%w: %s (%s)", ErrNotTradable, rec.Symbol, rec.Address.Hex())
		}
	}
	decimals := pricing.Decimals{Input: in.Decimals, Output: out.Decimals}

	switch {
	case in.IsNative():
		res, err := ReadReserves(ctx, q.reader, *out.ExchangeAddress, out.Address)
		if err != nil {
			return pricing.Quote{}, err
		}
		q.logReserves(res)
		return pricing.QuoteDirect(direction, amount, res.ETHToToken(), decimals)
	case out.IsNative():
		res, err := ReadReserves(ctx, q.reader, *in.ExchangeAddress, in.Address)
		if err != nil {
			return pricing.Quote{}, err
		}
		q.logReserves(res)
		return pricing.QuoteDirect(direction, amount, res.TokenToETH(), decimals)
	}

	var inRes, outRes Reserves
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inRes, err = ReadReserves(gctx, q.reader, *in.ExchangeAddress, in.Address)
		return err
	})
	g.Go(func() error {
		var err error
		outRes, err = ReadReserves(gctx, q.reader, *out.ExchangeAddress, out.Address)
		return err
	})
	if err := g.Wait(); err != nil {
		return pricing.Quote{}, err
	}
	q.logReserves(inRes)
	q.logReserves(outRes)
	return pricing.QuoteTokenToToken(direction, amount, inRes.TokenToETH(), outRes.ETHToToken(), decimals)
}

func (q *Quoter) logReserves(res Reserves) {
	q.logger.Debug("pool reserves",
		zap.String("pool", res.Pool.Hex()),
		zap.String("token", res.Token.Hex()),
		zap.String("eth", res.ETH.String()),
		zap.String("tokens", res.Tokens.String()),
	)
}
