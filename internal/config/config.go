package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tokenScope/internal/chain"
	"tokenScope/internal/model"
	"tokenScope/internal/registry"
	"tokenScope/internal/tokens"
)

const EnvPrefix = "TOKENSCOPE"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	Network         uint64
	Contracts       tokens.Contracts
	PageSize        uint64
	BatchSize       int
	Concurrency     int
	MaxAttempts     uint64
	RetryBackoff    time.Duration
	RPCRate         float64
	RPCBurst        int
	CacheDir        string
	PGDSN           string
	LogLevel        string
	Listen          string
	RefreshInterval time.Duration
	Watch           []string
}

// Aggregation returns the aggregator settings for the configured network.
func (c Config) Aggregation() tokens.Config {
	return tokens.Config{
		Networks:     map[uint64]tokens.Contracts{c.Network: c.Contracts},
		PageSize:     c.PageSize,
		BatchSize:    c.BatchSize,
		Concurrency:  c.Concurrency,
		MaxAttempts:  c.MaxAttempts,
		RetryBackoff: c.RetryBackoff,
		Decimals:     tokens.NewDecimalsCache(),
	}
}

// Load merges .env, config file, environment variables, and flags into
// Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "mainnet")
	v.SetDefault("page-size", registry.DefaultPageSize)
	v.SetDefault("batch-size", tokens.DefaultBatchSize)
	v.SetDefault("concurrency", tokens.DefaultConcurrency)
	v.SetDefault("max-attempts", tokens.DefaultMaxAttempts)
	v.SetDefault("retry-backoff", tokens.DefaultRetryBackoff)
	v.SetDefault("rpc-rate", 0.0)
	v.SetDefault("rpc-burst", 10)
	v.SetDefault("cache-dir", "./data")
	v.SetDefault("log-level", "info")
	v.SetDefault("listen", ":8080")
	v.SetDefault("refresh-interval", 10*time.Minute)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	network, err := model.ParseNetwork(v.GetString("network"))
	if err != nil {
		return Config{}, err
	}
	contracts, err := resolveContracts(v, network)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		Network:         network,
		Contracts:       contracts,
		PageSize:        v.GetUint64("page-size"),
		BatchSize:       v.GetInt("batch-size"),
		Concurrency:     v.GetInt("concurrency"),
		MaxAttempts:     v.GetUint64("max-attempts"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		RPCRate:         v.GetFloat64("rpc-rate"),
		RPCBurst:        v.GetInt("rpc-burst"),
		CacheDir:        v.GetString("cache-dir"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
		Listen:          v.GetString("listen"),
		RefreshInterval: v.GetDuration("refresh-interval"),
		Watch:           getStringSlice(v, "watch"),
	}
	if cfg.PageSize < 2 {
		return Config{}, fmt.Errorf("page-size must be at least 2")
	}
	if cfg.MaxAttempts == 0 {
		return Config{}, fmt.Errorf("max-attempts must be at least 1")
	}

	return cfg, nil
}

// resolveContracts starts from the network's defaults and applies any
// address overrides.
func resolveContracts(v *viper.Viper, network uint64) (tokens.Contracts, error) {
	contracts := DefaultNetworks[network]

	overrides := []struct {
		key  string
		dest *common.Address
	}{
		{"t2cr", &contracts.TokenList},
		{"erc20-badge", &contracts.ERC20Badge},
		{"trust-badge", &contracts.TrustBadge},
		{"tokens-view", &contracts.TokensView},
		{"exchanges-view", &contracts.ExchangesView},
		{"factory", &contracts.Factory},
	}
	for _, o := range overrides {
		raw := strings.TrimSpace(v.GetString(o.key))
		if raw == "" {
			continue
		}
		addr, err := chain.ParseAddress(raw)
		if err != nil {
			return tokens.Contracts{}, fmt.Errorf("%s: %w", o.key, err)
		}
		*o.dest = addr
	}
	return contracts, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
