// Package tokens builds the canonical token list for a network from the
// curated registry, its badge lists and the AMM factory.
package tokens

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tokenScope/internal/chain"
	"tokenScope/internal/contracts"
	"tokenScope/internal/model"
	"tokenScope/internal/registry"
)

const (
	DefaultBatchSize    = 100
	DefaultConcurrency  = 8
	DefaultMaxAttempts  = 3
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Contracts is the contract set of one network. Zero addresses mark optional
// contracts that are not deployed there.
type Contracts struct {
	TokenList     common.Address
	ERC20Badge    common.Address
	TrustBadge    common.Address
	TokensView    common.Address
	ExchangesView common.Address
	Factory       common.Address
}

// Config controls aggregation behavior.
type Config struct {
	Networks     map[uint64]Contracts
	PageSize     uint64
	BatchSize    int
	Concurrency  int
	MaxAttempts  uint64
	RetryBackoff time.Duration
	// Decimals is shared with the single-token resolver when set.
	Decimals *DecimalsCache
}

func (c Config) withDefaults() Config {
	if c.PageSize < 2 {
		c.PageSize = registry.DefaultPageSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.Decimals == nil {
		c.Decimals = NewDecimalsCache()
	}
	return c
}

// Aggregator produces the deduplicated, decimal-resolved, exchange-linked
// token list of a network.
type Aggregator struct {
	cfg    Config
	caller chain.Caller
	logger *zap.Logger
}

func NewAggregator(cfg Config, caller chain.Caller, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{cfg: cfg.withDefaults(), caller: caller, logger: logger}
}

// Fetch runs a full aggregation pass. Transient chain failures restart the
// whole pass with exponential backoff, up to MaxAttempts passes; any other
// failure is returned immediately.
func (a *Aggregator) Fetch(ctx context.Context, networkID uint64) ([]model.TokenRecord, error) {
	set, ok := a.cfg.Networks[networkID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNetwork, networkID)
	}
	if set.TokenList == (common.Address{}) || set.ERC20Badge == (common.Address{}) {
		return nil, fmt.Errorf("network %d: token list and erc20 badge addresses are required", networkID)
	}

	var (
		records []model.TokenRecord
		attempt int
	)
	operation := func() error {
		attempt++
		out, err := a.fetchOnce(ctx, networkID, set)
		if err != nil {
			if ctx.Err() != nil || !chain.IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		records = out
		return nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = a.cfg.RetryBackoff
	expBackoff.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, a.cfg.MaxAttempts-1), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		a.logger.Warn("aggregation pass failed, retrying",
			zap.Uint64("network", networkID),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate network %d after %d attempt(s): %w", networkID, attempt, err)
	}
	return records, nil
}

func (a *Aggregator) fetchOnce(ctx context.Context, networkID uint64, set Contracts) ([]model.TokenRecord, error) {
	started := time.Now()

	badged, trusted, err := a.badgeSets(ctx, set)
	if err != nil {
		return nil, err
	}
	ids, err := a.submissionIDs(ctx, set, badged)
	if err != nil {
		return nil, fmt.Errorf("resolve submission ids: %w", err)
	}
	candidates, err := a.submissions(ctx, networkID, set, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	candidates = dedupe(candidates)

	addrs := make([]common.Address, len(candidates))
	for i, rec := range candidates {
		addrs[i] = rec.Address
	}
	pools, err := a.exchanges(ctx, set, addrs)
	if err != nil {
		return nil, fmt.Errorf("fetch exchanges: %w", err)
	}

	records := make([]model.TokenRecord, 0, len(candidates))
	tradable := 0
	for i, rec := range candidates {
		rec = rec.WithExchange(pools[i])
		_, rec.HasTrustBadge = trusted[rec.Address]
		if rec.IsTradable() {
			tradable++
		}
		records = append(records, rec)
	}

	a.logger.Info("token aggregation pass complete",
		zap.Uint64("network", networkID),
		zap.Int("badged", len(badged)),
		zap.Int("trusted", len(trusted)),
		zap.Int("tokens", len(records)),
		zap.Int("tradable", tradable),
		zap.Duration("elapsed", time.Since(started)),
	)
	return records, nil
}

func (a *Aggregator) badgeSets(ctx context.Context, set Contracts) ([]common.Address, map[common.Address]struct{}, error) {
	var badged, trustedList []common.Address

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list := contracts.AddressList{Address: set.ERC20Badge, Caller: a.caller}
		addrs, err := registry.AllAddresses(gctx, list, a.cfg.PageSize)
		if err != nil {
			return fmt.Errorf("erc20 badge: %w", err)
		}
		badged = addrs
		return nil
	})
	if set.TrustBadge != (common.Address{}) {
		g.Go(func() error {
			list := contracts.AddressList{Address: set.TrustBadge, Caller: a.caller}
			addrs, err := registry.AllAddresses(gctx, list, a.cfg.PageSize)
			if err != nil {
				// A transient failure retries the pass; anything else
				// leaves every token untrusted.
				if gctx.Err() != nil || chain.IsTransient(err) {
					return fmt.Errorf("trust badge: %w", err)
				}
				a.logger.Warn("trust badge list unavailable, continuing without trust flags",
					zap.String("trust_badge", set.TrustBadge.Hex()),
					zap.Error(err),
				)
				return nil
			}
			trustedList = addrs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	trusted := make(map[common.Address]struct{}, len(trustedList))
	for _, addr := range trustedList {
		trusted[addr] = struct{}{}
	}
	return badged, trusted, nil
}

// submissionIDs maps badged addresses to curated-registry submission IDs,
// keeping the oldest registered submission per address.
func (a *Aggregator) submissionIDs(ctx context.Context, set Contracts, addrs []common.Address) ([][32]byte, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	var ids [][32]byte
	if set.TokensView != (common.Address{}) {
		view := contracts.TokensView{Address: set.TokensView, Registry: set.TokenList, Caller: a.caller}
		out, err := inBatches(ctx, a.cfg, addrs, view.IDsForAddresses)
		if err != nil {
			return nil, err
		}
		ids = out
	} else {
		list := contracts.TokenList{Address: set.TokenList, Caller: a.caller}
		out, err := fanOut(ctx, a.cfg.Concurrency, addrs, func(ctx context.Context, addr common.Address) ([32]byte, error) {
			found, err := registry.IDsForAddress(ctx, list, addr, a.cfg.PageSize)
			if err != nil || len(found) == 0 {
				return [32]byte{}, err
			}
			return found[0], nil
		})
		if err != nil {
			return nil, err
		}
		ids = out
	}

	nonZero := ids[:0]
	for _, id := range ids {
		if id != ([32]byte{}) {
			nonZero = append(nonZero, id)
		}
	}
	return nonZero, nil
}

// submissions loads the registry record of every ID and resolves decimals.
func (a *Aggregator) submissions(ctx context.Context, networkID uint64, set Contracts, ids [][32]byte) ([]model.TokenRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if set.TokensView != (common.Address{}) {
		view := contracts.TokensView{Address: set.TokensView, Registry: set.TokenList, Caller: a.caller}
		infos, err := inBatches(ctx, a.cfg, ids, view.GetTokens)
		if err != nil {
			return nil, err
		}
		records := make([]model.TokenRecord, 0, len(infos))
		for _, info := range infos {
			if info.Addr == (common.Address{}) {
				continue
			}
			records = append(records, a.newRecord(networkID, info.Addr, info.Name, info.Ticker, info.SymbolMultihash, info.Decimals))
		}
		return records, nil
	}

	list := contracts.TokenList{Address: set.TokenList, Caller: a.caller}
	records, err := fanOut(ctx, a.cfg.Concurrency, ids, func(ctx context.Context, id [32]byte) (model.TokenRecord, error) {
		sub, err := list.GetTokenInfo(ctx, id)
		if err != nil {
			return model.TokenRecord{}, err
		}
		if sub.Addr == (common.Address{}) {
			return model.TokenRecord{}, nil
		}
		var onChain *big.Int
		decimals, err := a.cfg.Decimals.Lookup(ctx, a.caller, sub.Addr)
		switch {
		case err == nil:
			onChain = big.NewInt(int64(decimals))
		case chain.IsTransient(err):
			return model.TokenRecord{}, err
		default:
			a.logger.Debug("decimals probe failed", zap.String("token", sub.Addr.Hex()), zap.Error(err))
		}
		return a.newRecord(networkID, sub.Addr, sub.Name, sub.Ticker, sub.SymbolMultihash, onChain), nil
	})
	if err != nil {
		return nil, err
	}

	out := records[:0]
	for _, rec := range records {
		if rec.Address != (common.Address{}) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (a *Aggregator) newRecord(networkID uint64, addr common.Address, name, ticker, multihash string, onChain *big.Int) model.TokenRecord {
	decimals, ok := ResolveDecimals(networkID, addr, onChain)
	if !ok {
		a.logger.Warn("token decimals unresolved",
			zap.Uint64("network", networkID),
			zap.String("token", addr.Hex()),
			zap.String("symbol", ticker),
		)
	}
	return model.TokenRecord{
		Address:            addr,
		Name:               name,
		Symbol:             symbolOrPlaceholder(ticker),
		SymbolMultihash:    multihash,
		Decimals:           decimals,
		HasDecimalsMissing: !ok,
	}
}

// exchanges returns the pool of each token, zero where none exists.
func (a *Aggregator) exchanges(ctx context.Context, set Contracts, addrs []common.Address) ([]common.Address, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	if set.ExchangesView != (common.Address{}) {
		view := contracts.ExchangesView{Address: set.ExchangesView, Factory: set.Factory, Caller: a.caller}
		return inBatches(ctx, a.cfg, addrs, view.GetExchanges)
	}
	if set.Factory == (common.Address{}) {
		a.logger.Warn("no factory configured, tokens have no exchange")
		return make([]common.Address, len(addrs)), nil
	}
	factory := contracts.Factory{Address: set.Factory, Caller: a.caller}
	return fanOut(ctx, a.cfg.Concurrency, addrs, factory.GetExchange)
}

// dedupe keeps the first record for every address.
func dedupe(records []model.TokenRecord) []model.TokenRecord {
	seen := make(map[common.Address]struct{}, len(records))
	out := make([]model.TokenRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.Address]; ok {
			continue
		}
		seen[rec.Address] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func symbolOrPlaceholder(symbol string) string {
	if symbol == "" {
		return model.PlaceholderSymbol
	}
	return symbol
}

// inBatches calls a positional batch view over items in chunks of
// BatchSize, running up to Concurrency chunks at once, and concatenates the
// results in input order.
func inBatches[T, R any](ctx context.Context, cfg Config, items []T, call func(context.Context, []T) ([]R, error)) ([]R, error) {
	batches, err := registry.SplitBatches(len(items), cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	results := make([][]R, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, b := range batches {
		g.Go(func() error {
			out, err := call(gctx, items[b.Start:b.End])
			if err != nil {
				return err
			}
			if len(out) != b.End-b.Start {
				return fmt.Errorf("batch [%d,%d): view returned %d results", b.Start, b.End, len(out))
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	flat := make([]R, 0, len(items))
	for _, out := range results {
		flat = append(flat, out...)
	}
	return flat, nil
}

// fanOut calls fn for every item with at most limit calls in flight.
func fanOut[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		g.Go(func() error {
			out, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
