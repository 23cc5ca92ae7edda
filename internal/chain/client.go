package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// Caller performs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader is a Caller that can also read native balances.
type Reader interface {
	Caller
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit throttles outgoing calls to rps requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// Client wraps go-ethereum RPC and provides helper methods.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	limiter   *rate.Limiter
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string, opts ...Option) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// GetChainID returns the chain ID.
func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.ethClient.ChainID(ctx)
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	return c.ethClient.BlockNumber(ctx)
}

// CallContract performs an eth_call for a contract method.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

// BalanceAt returns the wei balance of an account.
func (c *Client) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.ethClient.BalanceAt(ctx, account, blockNumber)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
