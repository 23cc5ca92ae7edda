package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenScope/internal/model"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, model.NetworkMainnet, cfg.Network)
	assert.Equal(t, DefaultNetworks[model.NetworkMainnet], cfg.Contracts)
	assert.Equal(t, uint64(100), cfg.PageSize)
	assert.Equal(t, uint64(3), cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
}

func TestLoadFlagsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("TOKENSCOPE_TRUST_BADGE", "0x1000000000000000000000000000000000000003")
	t.Setenv("TOKENSCOPE_WATCH", "0x01, ,0x02")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("network", "mainnet", "")
	flags.Uint64("page-size", 100, "")
	require.NoError(t, flags.Parse([]string{"--network", "rinkeby", "--page-size", "500"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, model.NetworkRinkeby, cfg.Network)
	assert.Equal(t, uint64(500), cfg.PageSize)
	assert.Equal(t, common.HexToAddress("0x1000000000000000000000000000000000000003"), cfg.Contracts.TrustBadge)
	assert.Equal(t, DefaultNetworks[model.NetworkRinkeby].Factory, cfg.Contracts.Factory)
	assert.Equal(t, []string{"0x01", "0x02"}, cfg.Watch)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "tokenscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rpc: http://localhost:8545\nfactory: \"0x1000000000000000000000000000000000000006\"\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.RPCURL)
	assert.Equal(t, common.HexToAddress("0x1000000000000000000000000000000000000006"), cfg.Contracts.Factory)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("TOKENSCOPE_FACTORY", "not-an-address")
	_, err := Load("", nil)
	require.Error(t, err)

	t.Setenv("TOKENSCOPE_FACTORY", "")
	t.Setenv("TOKENSCOPE_NETWORK", "moonbase")
	_, err = Load("", nil)
	require.Error(t, err)
}
