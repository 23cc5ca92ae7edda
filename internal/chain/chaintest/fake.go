// Package chaintest provides an in-memory chain that answers ABI-encoded
// calls, for tests of packages built on chain.Caller.
package chaintest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Handler receives unpacked call arguments and returns output values to pack.
type Handler func(args []interface{}) ([]interface{}, error)

type route struct {
	method  abi.Method
	handler Handler
}

type routeKey struct {
	contract common.Address
	selector [4]byte
}

// Chain is a fake chain.Reader.
type Chain struct {
	mu       sync.Mutex
	routes   map[routeKey]route
	calls    map[string]int
	balances map[common.Address]*big.Int
}

func New() *Chain {
	return &Chain{
		routes:   make(map[routeKey]route),
		calls:    make(map[string]int),
		balances: make(map[common.Address]*big.Int),
	}
}

// Handle registers h for method on contract.
func (c *Chain) Handle(contract common.Address, parsed abi.ABI, method string, h Handler) {
	m, ok := parsed.Methods[method]
	if !ok {
		panic(fmt.Sprintf("chaintest: unknown method %s", method))
	}
	var sel [4]byte
	copy(sel[:], m.ID)

	c.mu.Lock()
	c.routes[routeKey{contract: contract, selector: sel}] = route{method: m, handler: h}
	c.mu.Unlock()
}

// SetBalance sets the native balance returned by BalanceAt.
func (c *Chain) SetBalance(account common.Address, wei *big.Int) {
	c.mu.Lock()
	c.balances[account] = new(big.Int).Set(wei)
	c.mu.Unlock()
}

// Calls returns how many times method was called on any contract.
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil || len(msg.Data) < 4 {
		return nil, fmt.Errorf("chaintest: malformed call")
	}
	var sel [4]byte
	copy(sel[:], msg.Data[:4])

	c.mu.Lock()
	r, ok := c.routes[routeKey{contract: *msg.To, selector: sel}]
	if ok {
		c.calls[r.method.Name]++
	}
	c.mu.Unlock()
	if !ok {
		// Mirrors a call to a contract that lacks the method.
		return []byte{}, nil
	}

	args, err := r.method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("chaintest: unpack %s: %w", r.method.Name, err)
	}
	out, err := r.handler(args)
	if err != nil {
		return nil, err
	}
	return r.method.Outputs.Pack(out...)
}

func (c *Chain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal, ok := c.balances[account]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(bal), nil
}
