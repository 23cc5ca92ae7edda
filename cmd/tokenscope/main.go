package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tokenScope/internal/registry"
	"tokenScope/internal/tokens"
)

func main() {
	root := &cobra.Command{
		Use:          "tokenscope",
		Short:        "Token discovery and Uniswap V1 pricing",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newTokensCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newFormatCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addChainFlags registers the flags shared by every command that talks to
// the chain. Names match the config keys.
func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	cmd.Flags().String("network", "mainnet", "network name or id (mainnet, rinkeby)")
	cmd.Flags().String("t2cr", "", "token list registry address override")
	cmd.Flags().String("erc20-badge", "", "ERC20 badge address override")
	cmd.Flags().String("trust-badge", "", "trusted badge address override")
	cmd.Flags().String("tokens-view", "", "token view contract address override")
	cmd.Flags().String("exchanges-view", "", "exchange view contract address override")
	cmd.Flags().String("factory", "", "exchange factory address override")
	cmd.Flags().Uint64("page-size", registry.DefaultPageSize, "registry page size")
	cmd.Flags().Int("batch-size", tokens.DefaultBatchSize, "items per view call")
	cmd.Flags().Int("concurrency", tokens.DefaultConcurrency, "parallel per-token calls without views")
	cmd.Flags().Uint64("max-attempts", tokens.DefaultMaxAttempts, "attempts per aggregation pass")
	cmd.Flags().Duration("retry-backoff", tokens.DefaultRetryBackoff, "initial retry backoff")
	cmd.Flags().Float64("rpc-rate", 0, "max RPC requests per second, 0 means unlimited")
	cmd.Flags().Int("rpc-burst", 10, "RPC rate limiter burst")
	cmd.Flags().String("cache-dir", "./data", "token cache directory")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN, replaces the file cache when set")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
