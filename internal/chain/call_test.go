package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenScope/internal/chain/chaintest"
)

const decimalsABI = `[{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}]`

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string  { return e.msg }
func (e codedError) ErrorCode() int { return e.code }

func TestIsTransient(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "eof", err: io.EOF, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "http 429", err: rpc.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}, want: true},
		{name: "http 503", err: fmt.Errorf("post: %w", rpc.HTTPError{StatusCode: 503}), want: true},
		{name: "http 404", err: rpc.HTTPError{StatusCode: 404}, want: false},
		{name: "limit exceeded", err: codedError{code: -32005, msg: "limit exceeded"}, want: true},
		{name: "header not found", err: codedError{code: -32000, msg: "header not found"}, want: true},
		{name: "revert", err: codedError{code: 3, msg: "execution reverted"}, want: false},
		{name: "revert with server code", err: codedError{code: -32000, msg: "execution reverted: nope"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "call error transient", err: &CallError{Method: "decimals", Transient: true, Err: errors.New("x")}, want: true},
		{name: "call error permanent", err: fmt.Errorf("wrap: %w", &CallError{Method: "decimals", Err: io.EOF}), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}

func TestParseAddresses(t *testing.T) {
	addrs, err := ParseAddresses([]string{" 0x1111111111111111111111111111111111111111 ", "", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"})
	assert.NoError(t, err)
	assert.Len(t, addrs, 2)
	assert.Equal(t, common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"), addrs[1])

	_, err = ParseAddresses([]string{"0x123"})
	assert.Error(t, err)
}

func TestCall(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(decimalsABI))
	require.NoError(t, err)

	token := common.HexToAddress("0x2000000000000000000000000000000000000001")
	bare := common.HexToAddress("0x2000000000000000000000000000000000000002")
	fake := chaintest.New()
	fake.Handle(token, parsed, "decimals", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{uint8(6)}, nil
	})

	out, err := Call(context.Background(), fake, token, parsed, "decimals")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, uint8(6), out[0].(uint8))

	_, err = Call(context.Background(), fake, bare, parsed, "decimals")
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "decimals", callErr.Method)
	assert.Equal(t, bare, callErr.Contract)
	assert.False(t, IsTransient(err))

	_, err = Call(context.Background(), nil, token, parsed, "decimals")
	assert.Error(t, err)
}
