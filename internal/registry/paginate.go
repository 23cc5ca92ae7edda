// Package registry walks the curated token list and its badge lists page by
// page and splits batched view calls into response-sized chunks.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/contracts"
)

const DefaultPageSize = 100

// RegisteredFilter selects items that are registered, including those with a
// pending removal request or an open challenge.
var RegisteredFilter = [8]bool{false, true, false, true, false, true, false, false}

var (
	ErrStalledCursor   = errors.New("registry cursor did not advance")
	ErrInvalidPageSize = errors.New("page size must be at least 2")
)

// PageFunc fetches count items starting at cursor. The zero value of T is
// both the initial cursor and the "no entry" sentinel.
type PageFunc[T comparable] func(ctx context.Context, cursor T, count uint64) ([]T, bool, error)

// Paginate collects every non-zero item reachable from the zero cursor and
// returns them in list order along with the number of pages read. The
// registry contracts start a page at the cursor itself, so the previous
// page's last item is expected to repeat and is skipped. Page errors are
// returned as-is; retrying is the caller's decision.
func Paginate[T comparable](ctx context.Context, pageSize uint64, fetch PageFunc[T]) ([]T, int, error) {
	if pageSize < 2 {
		return nil, 0, ErrInvalidPageSize
	}

	var (
		zero   T
		cursor T
		out    []T
		pages  int
	)
	seen := make(map[T]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return nil, pages, err
		}
		items, hasMore, err := fetch(ctx, cursor, pageSize)
		if err != nil {
			return nil, pages, fmt.Errorf("page %d: %w", pages, err)
		}
		pages++

		added := 0
		last := zero
		for _, item := range items {
			if item == zero {
				continue
			}
			last = item
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
			added++
		}

		if !hasMore {
			return out, pages, nil
		}
		if added == 0 || last == cursor {
			return nil, pages, fmt.Errorf("page %d: %w", pages-1, ErrStalledCursor)
		}
		cursor = last
	}
}

// AllAddresses returns every registered address on a badge list.
func AllAddresses(ctx context.Context, list contracts.AddressList, pageSize uint64) ([]common.Address, error) {
	addrs, _, err := Paginate(ctx, pageSize, func(ctx context.Context, cursor common.Address, count uint64) ([]common.Address, bool, error) {
		return list.QueryAddresses(ctx, cursor, count, RegisteredFilter, true)
	})
	if err != nil {
		return nil, fmt.Errorf("query addresses on %s: %w", list.Address.Hex(), err)
	}
	return addrs, nil
}

// IDsForAddress returns the registered submission IDs for one token address,
// oldest first.
func IDsForAddress(ctx context.Context, list contracts.TokenList, token common.Address, pageSize uint64) ([][32]byte, error) {
	ids, _, err := Paginate(ctx, pageSize, func(ctx context.Context, cursor [32]byte, count uint64) ([][32]byte, bool, error) {
		return list.QueryTokens(ctx, cursor, count, RegisteredFilter, true, token)
	})
	if err != nil {
		return nil, fmt.Errorf("query tokens for %s: %w", token.Hex(), err)
	}
	return ids, nil
}
