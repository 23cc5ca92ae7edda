package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"tokenScope/internal/model"
)

// SchemaVersion is written into every persisted snapshot. Snapshots with a
// different version are ignored.
const SchemaVersion = 1

var ErrSchemaMismatch = errors.New("token cache schema mismatch")

// Snapshot is the persisted state of one network.
type Snapshot struct {
	Schema    int                                  `json:"schema"`
	Network   uint64                               `json:"network"`
	RefreshID string                               `json:"refresh_id,omitempty"`
	UpdatedAt string                               `json:"updated_at"`
	Tokens    map[common.Address]model.TokenRecord `json:"tokens"`
}

func newSnapshot(network uint64, refreshID string, set model.TokenSet) Snapshot {
	return Snapshot{
		Schema:    SchemaVersion,
		Network:   network,
		RefreshID: refreshID,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Tokens:    set.Clone().Tokens,
	}
}

// Records returns the snapshot's tokens as a slice.
func (s Snapshot) Records() []model.TokenRecord {
	out := make([]model.TokenRecord, 0, len(s.Tokens))
	for addr, rec := range s.Tokens {
		rec.Address = addr
		out = append(out, rec)
	}
	return out
}

// Persister stores per-network snapshots durably.
type Persister interface {
	Load(ctx context.Context, network uint64) (Snapshot, bool, error)
	Save(ctx context.Context, network uint64, snap Snapshot) error
}

// CacheKey names the snapshot of a network.
func CacheKey(network uint64) string {
	return fmt.Sprintf("tokenscope-tokens-%d", network)
}

func decodeSnapshot(network uint64, data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse token cache: %w", err)
	}
	if snap.Schema != SchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, snap.Schema, SchemaVersion)
	}
	if snap.Network != network {
		return Snapshot{}, fmt.Errorf("token cache holds network %d, want %d", snap.Network, network)
	}
	return snap, nil
}

// FilePersister keeps one JSON file per network under Dir.
type FilePersister struct {
	Dir string
}

func (p *FilePersister) path(network uint64) string {
	return filepath.Join(p.Dir, CacheKey(network)+".json")
}

func (p *FilePersister) Load(ctx context.Context, network uint64) (Snapshot, bool, error) {
	if p == nil || p.Dir == "" {
		return Snapshot{}, false, nil
	}
	data, err := os.ReadFile(p.path(network))
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read token cache: %w", err)
	}
	snap, err := decodeSnapshot(network, data)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (p *FilePersister) Save(ctx context.Context, network uint64, snap Snapshot) error {
	if p == nil || p.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create token cache dir: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal token cache: %w", err)
	}

	path := p.path(network)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write token cache tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename token cache: %w", err)
	}
	return nil
}
