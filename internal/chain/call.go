package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

// CallError is a failed contract call. Transient errors are worth retrying.
type CallError struct {
	Contract  common.Address
	Method    string
	Transient bool
	Err       error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %s on %s: %v", e.Method, e.Contract.Hex(), e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Call packs method with args, performs an eth_call against contract and
// unpacks the result.
func Call(ctx context.Context, caller Caller, contract common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &contract, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, &CallError{Contract: contract, Method: method, Transient: classify(err), Err: err}
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		// Empty return data usually means the contract does not implement
		// the method, which retrying will not fix.
		return nil, &CallError{Contract: contract, Method: method, Err: fmt.Errorf("unpack: %w", err)}
	}
	return values, nil
}

// IsTransient reports whether err is a call failure caused by the endpoint
// rather than by the contract.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Transient
	}
	return classify(err)
}

func classify(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "revert") {
		return false
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case -32000, -32005, -32603:
			return true
		default:
			return false
		}
	}

	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "timeout")
}
