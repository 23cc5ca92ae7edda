package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenScope/internal/model"
)

func TestJsonlStoragePutTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tokens.jsonl")
	sink := NewJsonlStorage(path)

	pool := common.HexToAddress("0x3000000000000000000000000000000000000001")
	records := []model.TokenRecord{
		model.NativeToken(),
		model.TokenRecord{Address: common.HexToAddress("0x01"), Symbol: "ONE", Decimals: 18}.WithExchange(pool),
	}
	require.NoError(t, sink.Reset())
	require.NoError(t, sink.PutTokens(model.NetworkMainnet, records))
	require.NoError(t, sink.PutTokens(model.NetworkMainnet, records[1:]))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []TokenLine
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line TokenLine
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 3)
	assert.Equal(t, "mainnet", lines[0].NetworkName)
	assert.Equal(t, "ETH", lines[0].Symbol)
	assert.True(t, lines[1].Tradable)
	assert.Equal(t, pool, *lines[1].ExchangeAddress)

	require.NoError(t, sink.Reset())
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}
