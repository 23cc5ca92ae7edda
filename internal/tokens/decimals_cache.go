package tokens

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/chain"
	"tokenScope/internal/contracts"
)

// DecimalsCache memoizes successful decimals() reads by token address.
type DecimalsCache struct {
	mu   sync.RWMutex
	data map[common.Address]uint8
}

func NewDecimalsCache() *DecimalsCache {
	return &DecimalsCache{data: make(map[common.Address]uint8)}
}

func (c *DecimalsCache) Get(address common.Address) (uint8, bool) {
	c.mu.RLock()
	decimals, ok := c.data[address]
	c.mu.RUnlock()
	return decimals, ok
}

func (c *DecimalsCache) Set(address common.Address, decimals uint8) {
	c.mu.Lock()
	c.data[address] = decimals
	c.mu.Unlock()
}

// Lookup returns the memoized value or reads decimals() from the token.
func (c *DecimalsCache) Lookup(ctx context.Context, caller chain.Caller, token common.Address) (uint8, error) {
	if decimals, ok := c.Get(token); ok {
		return decimals, nil
	}
	decimals, err := contracts.Decimals(ctx, caller, token)
	if err != nil {
		return 0, err
	}
	c.Set(token, decimals)
	return decimals, nil
}
