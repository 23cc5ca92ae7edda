package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"tokenScope/internal/storage/postgres"
)

// DBPersister stores snapshots in the token_cache table.
type DBPersister struct {
	Store *postgres.Store
}

func (p *DBPersister) Load(ctx context.Context, network uint64) (Snapshot, bool, error) {
	if p == nil || p.Store == nil {
		return Snapshot{}, false, nil
	}
	entry, found, err := p.Store.LoadTokenCache(ctx, CacheKey(network))
	if err != nil || !found {
		return Snapshot{}, false, err
	}
	if entry.Schema != SchemaVersion {
		return Snapshot{}, false, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, entry.Schema, SchemaVersion)
	}
	snap, err := decodeSnapshot(network, entry.Payload)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (p *DBPersister) Save(ctx context.Context, network uint64, snap Snapshot) error {
	if p == nil || p.Store == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal token cache: %w", err)
	}
	return p.Store.SaveTokenCache(ctx, postgres.TokenCacheEntry{
		Key:     CacheKey(network),
		Schema:  snap.Schema,
		Payload: payload,
	})
}
