package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tokenScope/internal/model"
)

// Store provides Postgres persistence for token data.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS token_cache (
	cache_key  TEXT PRIMARY KEY,
	schema     INTEGER NOT NULL,
	payload    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tokens (
	chain_id                BIGINT NOT NULL,
	token_address           TEXT NOT NULL,
	name                    TEXT NOT NULL,
	symbol                  TEXT NOT NULL,
	symbol_multihash        TEXT NOT NULL,
	decimals                INTEGER,
	exchange_address        TEXT,
	has_erc20_badge_missing BOOLEAN NOT NULL,
	has_decimals_missing    BOOLEAN NOT NULL,
	has_trust_badge         BOOLEAN NOT NULL,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, token_address)
);
`

// Migrate creates the tables used by the store.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// TokenCacheEntry is one row of token_cache.
type TokenCacheEntry struct {
	Key     string
	Schema  int
	Payload []byte
}

// LoadTokenCache returns the entry stored under key.
func (s *Store) LoadTokenCache(ctx context.Context, key string) (TokenCacheEntry, bool, error) {
	if key == "" {
		return TokenCacheEntry{}, false, fmt.Errorf("cache key required")
	}
	entry := TokenCacheEntry{Key: key}
	row := s.pool.QueryRow(ctx, `SELECT schema, payload FROM token_cache WHERE cache_key=$1`, key)
	if err := row.Scan(&entry.Schema, &entry.Payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenCacheEntry{}, false, nil
		}
		return TokenCacheEntry{}, false, err
	}
	return entry, true, nil
}

// SaveTokenCache upserts an entry.
func (s *Store) SaveTokenCache(ctx context.Context, entry TokenCacheEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("cache key required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO token_cache (cache_key, schema, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (cache_key) DO UPDATE
		SET schema = EXCLUDED.schema, payload = EXCLUDED.payload, updated_at = now()
	`, entry.Key, entry.Schema, entry.Payload)
	return err
}

// UpsertTokens inserts or updates token records of a network.
func (s *Store) UpsertTokens(ctx context.Context, network uint64, records []model.TokenRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	queued := 0
	for _, rec := range records {
		if rec.IsNative() {
			continue
		}
		var decimals *int
		if rec.Decimals >= 0 {
			d := rec.Decimals
			decimals = &d
		}
		var exchange *string
		if rec.ExchangeAddress != nil {
			hex := rec.ExchangeAddress.Hex()
			exchange = &hex
		}
		batch.Queue(`
			INSERT INTO tokens (
				chain_id, token_address, name, symbol, symbol_multihash, decimals, exchange_address,
				has_erc20_badge_missing, has_decimals_missing, has_trust_badge, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
			ON CONFLICT (chain_id, token_address)
			DO UPDATE SET
				name = EXCLUDED.name,
				symbol = EXCLUDED.symbol,
				symbol_multihash = EXCLUDED.symbol_multihash,
				decimals = EXCLUDED.decimals,
				exchange_address = EXCLUDED.exchange_address,
				has_erc20_badge_missing = EXCLUDED.has_erc20_badge_missing,
				has_decimals_missing = EXCLUDED.has_decimals_missing,
				has_trust_badge = EXCLUDED.has_trust_badge,
				updated_at = now()
		`,
			int64(network),
			rec.Address.Hex(),
			rec.Name,
			rec.Symbol,
			rec.SymbolMultihash,
			decimals,
			exchange,
			rec.HasERC20BadgeMissing,
			rec.HasDecimalsMissing,
			rec.HasTrustBadge,
		)
		queued++
	}
	if queued == 0 {
		return nil
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
