package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tokenScope/internal/cache"
	"tokenScope/internal/chain"
	"tokenScope/internal/config"
	"tokenScope/internal/exchange"
	"tokenScope/internal/storage/postgres"
	"tokenScope/internal/tokens"
)

// app is the wiring shared by the chain-backed commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	client *chain.Client
	db     *postgres.Store
	store  *cache.Store
	quoter *exchange.Quoter
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newApp(ctx context.Context, cmd *cobra.Command, opts ...cache.Option) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	client, err := chain.NewClient(ctx, cfg.RPCURL, chain.WithRateLimit(cfg.RPCRate, cfg.RPCBurst))
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	a := &app{cfg: cfg, logger: logger, client: client}

	chainID, err := client.GetChainID(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("chain id: %w", err)
	}
	head, err := client.LatestBlockNumber(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("latest block: %w", err)
	}
	if chainID.Uint64() != cfg.Network {
		logger.Warn("rpc chain id does not match configured network",
			zap.Uint64("network", cfg.Network),
			zap.String("chain_id", chainID.String()),
		)
	}

	var persister cache.Persister = &cache.FilePersister{Dir: cfg.CacheDir}
	if cfg.PGDSN != "" {
		db, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			a.close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		persister = &cache.DBPersister{Store: db}
	}

	agg := cfg.Aggregation()
	a.store = cache.NewStore(
		tokens.NewAggregator(agg, client, logger),
		tokens.NewResolver(agg, client, logger),
		persister,
		logger,
		opts...,
	)
	a.quoter = exchange.NewQuoter(client, logger)

	if err := a.store.Seed(ctx, cfg.Network); err != nil {
		logger.Warn("seed token cache failed", zap.Error(err))
	}

	logger.Info("tokenscope ready",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("network", cfg.Network),
		zap.Uint64("head", head),
		zap.String("t2cr", cfg.Contracts.TokenList.Hex()),
		zap.String("factory", cfg.Contracts.Factory.Hex()),
		zap.Bool("postgres", a.db != nil),
	)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Wait()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.client.Close()
	_ = a.logger.Sync()
}
