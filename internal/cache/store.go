// Package cache holds the last known token list of every network, serves it
// without blocking and refreshes it in the background.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tokenScope/internal/model"
)

// Fetcher produces the full token list of a network.
type Fetcher interface {
	Fetch(ctx context.Context, networkID uint64) ([]model.TokenRecord, error)
}

// Resolver completes the record of a single token.
type Resolver interface {
	Resolve(ctx context.Context, networkID uint64, token common.Address, known *model.TokenRecord) (model.TokenRecord, error)
}

// RefreshResult describes a finished refresh.
type RefreshResult struct {
	Network  uint64
	ID       string
	Tokens   int
	Tradable int
	Elapsed  time.Duration
	Err      error
}

type Option func(*Store)

// WithRefreshObserver registers fn to be called after every refresh.
func WithRefreshObserver(fn func(RefreshResult)) Option {
	return func(s *Store) {
		s.observers = append(s.observers, fn)
	}
}

type tokenKey struct {
	network uint64
	token   common.Address
}

// Store owns the token state of all networks. All mutations go through
// dispatch, which applies one Command atomically.
type Store struct {
	fetcher   Fetcher
	resolver  Resolver
	persister Persister
	logger    *zap.Logger
	observers []func(RefreshResult)

	mu        sync.RWMutex
	state     model.NetworkTokenSet
	resolving map[tokenKey]struct{}

	wg sync.WaitGroup
}

func NewStore(fetcher Fetcher, resolver Resolver, persister Persister, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		fetcher:   fetcher,
		resolver:  resolver,
		persister: persister,
		logger:    logger,
		state:     make(model.NetworkTokenSet),
		resolving: make(map[tokenKey]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) dispatch(cmds ...Command) model.NetworkTokenSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cmd := range cmds {
		s.state = reduce(s.state, cmd)
	}
	return s.state
}

func (s *Store) snapshot() model.NetworkTokenSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Seed loads the persisted snapshot of a network. It makes no chain calls.
func (s *Store) Seed(ctx context.Context, networkID uint64) error {
	if s.persister == nil {
		return nil
	}
	snap, found, err := s.persister.Load(ctx, networkID)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Info("no persisted token cache", zap.Uint64("network", networkID))
		return nil
	}
	s.dispatch(ReplaceTokens{Network: networkID, Records: snap.Records()})
	s.logger.Info("token cache seeded",
		zap.Uint64("network", networkID),
		zap.Int("tokens", len(snap.Tokens)),
		zap.String("refresh_id", snap.RefreshID),
		zap.String("updated_at", snap.UpdatedAt),
	)
	return nil
}

// GetAll returns every known token of a network, always including ETH.
// With requireTradable only tokens that can be quoted are returned.
func (s *Store) GetAll(networkID uint64, requireTradable bool) map[common.Address]model.TokenRecord {
	set := s.snapshot()[networkID]
	out := make(map[common.Address]model.TokenRecord, len(set.Tokens)+1)
	out[model.NativeAddress] = model.NativeToken()
	for addr, rec := range set.Tokens {
		if requireTradable && !rec.IsTradable() {
			continue
		}
		out[addr] = rec.Clone()
	}
	return out
}

// IsFetching reports whether a refresh of the network is in flight.
func (s *Store) IsFetching(networkID uint64) bool {
	return s.snapshot()[networkID].Fetching
}

func (s *Store) lookup(networkID uint64, token common.Address) (model.TokenRecord, bool) {
	if token == model.NativeAddress {
		return model.NativeToken(), true
	}
	rec, ok := s.snapshot()[networkID].Tokens[token]
	if !ok {
		return model.TokenRecord{}, false
	}
	return rec.Clone(), true
}

// GetToken returns the known record of token. When the record is missing or
// incomplete a background resolution is started; its result is committed
// only while ctx is still live.
func (s *Store) GetToken(ctx context.Context, networkID uint64, token common.Address) (model.TokenRecord, bool) {
	rec, ok := s.lookup(networkID, token)
	if ok && rec.IsComplete() {
		return rec, true
	}
	if s.resolver == nil {
		return rec, ok
	}

	key := tokenKey{network: networkID, token: token}
	s.mu.Lock()
	if _, busy := s.resolving[key]; busy {
		s.mu.Unlock()
		return rec, ok
	}
	s.resolving[key] = struct{}{}
	s.mu.Unlock()

	var known *model.TokenRecord
	if ok {
		known = &rec
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.resolving, key)
			s.mu.Unlock()
		}()
		if _, err := s.resolve(ctx, networkID, token, known); err != nil {
			s.logger.Warn("token resolution failed",
				zap.Uint64("network", networkID),
				zap.String("token", token.Hex()),
				zap.Error(err),
			)
		}
	}()
	return rec, ok
}

// ResolveToken resolves token synchronously and commits the result while
// ctx is live.
func (s *Store) ResolveToken(ctx context.Context, networkID uint64, token common.Address) (model.TokenRecord, error) {
	rec, ok := s.lookup(networkID, token)
	if ok && rec.IsComplete() {
		return rec, nil
	}
	if s.resolver == nil {
		return rec, nil
	}
	var known *model.TokenRecord
	if ok {
		known = &rec
	}
	return s.resolve(ctx, networkID, token, known)
}

func (s *Store) resolve(ctx context.Context, networkID uint64, token common.Address, known *model.TokenRecord) (model.TokenRecord, error) {
	rec, err := s.resolver.Resolve(ctx, networkID, token, known)
	if err != nil {
		return rec, err
	}
	if ctx.Err() != nil {
		s.logger.Debug("discarding stale token resolution",
			zap.Uint64("network", networkID),
			zap.String("token", token.Hex()),
		)
		return rec, ctx.Err()
	}
	s.dispatch(PutToken{Network: networkID, Record: rec})
	return rec, nil
}

// Refresh starts a background refresh of the network and reports whether
// it did. A refresh already in flight for the network is not duplicated.
func (s *Store) Refresh(ctx context.Context, networkID uint64) bool {
	s.mu.Lock()
	if s.state[networkID].Fetching {
		s.mu.Unlock()
		s.logger.Debug("token refresh already in flight", zap.Uint64("network", networkID))
		return false
	}
	s.state = reduce(s.state, SetFetching{Network: networkID, Fetching: true})
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRefresh(ctx, networkID)
	}()
	return true
}

func (s *Store) runRefresh(ctx context.Context, networkID uint64) {
	result := RefreshResult{Network: networkID, ID: uuid.NewString()}
	started := time.Now()
	logger := s.logger.With(zap.Uint64("network", networkID), zap.String("refresh_id", result.ID))
	logger.Info("token refresh started")

	defer func() {
		result.Elapsed = time.Since(started)
		for _, fn := range s.observers {
			fn(result)
		}
	}()

	records, err := s.fetcher.Fetch(ctx, networkID)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.dispatch(SetFetching{Network: networkID, Fetching: false})
		result.Err = err
		logger.Error("token refresh failed, keeping cached tokens", zap.Error(err))
		return
	}

	state := s.dispatch(
		ReplaceTokens{Network: networkID, Records: records},
		SetFetching{Network: networkID, Fetching: false},
	)
	set := state[networkID]
	result.Tokens = len(set.Tokens)
	for _, rec := range set.Tokens {
		if rec.IsTradable() {
			result.Tradable++
		}
	}
	logger.Info("token refresh complete",
		zap.Int("tokens", result.Tokens),
		zap.Int("tradable", result.Tradable),
		zap.Duration("elapsed", time.Since(started)),
	)

	if s.persister == nil {
		return
	}
	if err := s.persister.Save(context.WithoutCancel(ctx), networkID, newSnapshot(networkID, result.ID, set)); err != nil {
		logger.Error("persist token cache failed", zap.Error(err))
	}
}

// Wait blocks until background refreshes and resolutions finish.
func (s *Store) Wait() {
	s.wg.Wait()
}
