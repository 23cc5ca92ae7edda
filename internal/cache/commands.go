package cache

import (
	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/model"
)

// Command is a state transition of the token store. The set of commands is
// closed: ReplaceTokens, SetFetching and PutToken.
type Command interface {
	command()
}

// ReplaceTokens swaps a network's records for the result of a refresh.
// Records that were resolved individually, outside the badge set, are kept
// unless the new result lists the same address.
type ReplaceTokens struct {
	Network uint64
	Records []model.TokenRecord
}

// SetFetching raises or clears a network's refresh flag.
type SetFetching struct {
	Network  uint64
	Fetching bool
}

// PutToken replaces one record, adding it if absent.
type PutToken struct {
	Network uint64
	Record  model.TokenRecord
}

func (ReplaceTokens) command() {}
func (SetFetching) command()   {}
func (PutToken) command()      {}

// reduce returns the state after cmd. state is never modified; unchanged
// networks are shared with the result.
func reduce(state model.NetworkTokenSet, cmd Command) model.NetworkTokenSet {
	next := make(model.NetworkTokenSet, len(state)+1)
	for id, set := range state {
		next[id] = set
	}

	switch c := cmd.(type) {
	case ReplaceTokens:
		prev := state[c.Network]
		set := model.NewTokenSet(c.Records)
		for addr, rec := range prev.Tokens {
			if _, listed := set.Tokens[addr]; !listed && rec.HasERC20BadgeMissing {
				set.Tokens[addr] = rec
			}
		}
		set.Fetching = prev.Fetching
		next[c.Network] = set
	case SetFetching:
		set := state[c.Network]
		if set.Tokens == nil {
			set.Tokens = make(map[common.Address]model.TokenRecord)
		}
		set.Fetching = c.Fetching
		next[c.Network] = set
	case PutToken:
		prev := state[c.Network]
		tokens := make(map[common.Address]model.TokenRecord, len(prev.Tokens)+1)
		for addr, rec := range prev.Tokens {
			tokens[addr] = rec
		}
		if !c.Record.IsNative() {
			tokens[c.Record.Address] = c.Record.Clone()
		}
		next[c.Network] = model.TokenSet{Tokens: tokens, Fetching: prev.Fetching}
	}
	return next
}
