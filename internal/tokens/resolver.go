package tokens

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tokenScope/internal/chain"
	"tokenScope/internal/contracts"
	"tokenScope/internal/model"
)

// Resolver completes the record of a single token straight from the token
// and factory contracts, for addresses the registry did not provide.
type Resolver struct {
	factories map[uint64]common.Address
	caller    chain.Caller
	decimals  *DecimalsCache
	logger    *zap.Logger
}

func NewResolver(cfg Config, caller chain.Caller, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	factories := make(map[uint64]common.Address, len(cfg.Networks))
	for id, set := range cfg.Networks {
		factories[id] = set.Factory
	}
	return &Resolver{factories: factories, caller: caller, decimals: cfg.Decimals, logger: logger}
}

// Resolve fills whatever known lacks: name, symbol, decimals and exchange.
// Transient chain failures are returned with the partial record; permanent
// ones are recorded on the record as missing data.
func (r *Resolver) Resolve(ctx context.Context, networkID uint64, token common.Address, known *model.TokenRecord) (model.TokenRecord, error) {
	if token == model.NativeAddress {
		return model.NativeToken(), nil
	}
	factory, ok := r.factories[networkID]
	if !ok {
		return model.TokenRecord{}, fmt.Errorf("%w: %d", ErrUnknownNetwork, networkID)
	}

	rec := model.TokenRecord{
		Address:              token,
		Decimals:             model.DecimalsUnknown,
		HasERC20BadgeMissing: true,
	}
	if known != nil {
		rec = known.Clone()
	}
	if rec.IsComplete() && rec.Name != "" && rec.Symbol != "" && rec.Symbol != model.PlaceholderSymbol {
		return rec, nil
	}

	var errs []error
	if err := r.resolveMeta(ctx, networkID, &rec); err != nil {
		errs = append(errs, err)
	}
	if rec.ExchangeAddress == nil {
		if err := r.resolveExchange(ctx, factory, &rec); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return rec, fmt.Errorf("%w: %s: %w", ErrResolutionFailure, token.Hex(), err)
	}
	return rec, nil
}

func (r *Resolver) resolveMeta(ctx context.Context, networkID uint64, rec *model.TokenRecord) error {
	decimalsPending := rec.Decimals < 0 && !rec.HasDecimalsMissing
	needText := rec.Name == "" || rec.Symbol == "" || rec.Symbol == model.PlaceholderSymbol
	if !decimalsPending && !needText {
		return nil
	}

	var (
		onChain  *big.Int
		probeErr error
	)
	if cached, ok := r.decimals.Get(rec.Address); ok && !needText {
		onChain = big.NewInt(int64(cached))
	} else {
		meta, err := contracts.FetchERC20Meta(ctx, r.caller, rec.Address, r.logger)
		if rec.Name == "" {
			rec.Name = meta.Name
		}
		if meta.Symbol != "" && (rec.Symbol == "" || rec.Symbol == model.PlaceholderSymbol) {
			rec.Symbol = meta.Symbol
		}
		if err == nil {
			r.decimals.Set(rec.Address, meta.Decimals)
			onChain = big.NewInt(int64(meta.Decimals))
		} else {
			probeErr = err
		}
	}
	rec.Symbol = symbolOrPlaceholder(rec.Symbol)

	if !decimalsPending {
		return nil
	}
	if probeErr != nil && chain.IsTransient(probeErr) {
		return probeErr
	}
	decimals, ok := ResolveDecimals(networkID, rec.Address, onChain)
	rec.Decimals = decimals
	rec.HasDecimalsMissing = !ok
	if !ok {
		r.logger.Warn("token decimals unresolved",
			zap.Uint64("network", networkID),
			zap.String("token", rec.Address.Hex()),
			zap.Error(probeErr),
		)
	}
	return nil
}

func (r *Resolver) resolveExchange(ctx context.Context, factory common.Address, rec *model.TokenRecord) error {
	if factory == (common.Address{}) {
		*rec = rec.WithExchange(common.Address{})
		return nil
	}
	pool, err := contracts.Factory{Address: factory, Caller: r.caller}.GetExchange(ctx, rec.Address)
	if err != nil {
		if chain.IsTransient(err) {
			return err
		}
		r.logger.Warn("exchange lookup failed", zap.String("token", rec.Address.Hex()), zap.Error(err))
		pool = common.Address{}
	}
	*rec = rec.WithExchange(pool)
	return nil
}
