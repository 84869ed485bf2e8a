// Package chain owns the persisted chain tip and the sequential block
// processing pipeline that advances it.
package chain

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/forgenet-io/forgenet-chain/internal/storage"
	"github.com/forgenet-io/forgenet-chain/pkg/block"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

var (
	blockByHeightPrefix = []byte("block:height:")
	blockByIDPrefix     = []byte("block:id:")
	lastBlockKey        = []byte("chain:last")
)

func heightKey(height uint64) []byte {
	return append(append([]byte{}, blockByHeightPrefix...), []byte(fmt.Sprintf("%020d", height))...)
}

func idKey(id types.Hash) []byte {
	return append(append([]byte{}, blockByIDPrefix...), id[:]...)
}

// BlockStore persists blocks and tracks the chain tip, implementing the
// consensus package's BlocksProvider contract.
type BlockStore struct {
	db storage.DB

	mu      sync.RWMutex
	last    *block.Block
	cleanup atomic.Bool
}

// NewBlockStore wraps db. It does not load the chain tip; call LoadTip
// during startup before serving traffic.
func NewBlockStore(db storage.DB) *BlockStore {
	return &BlockStore{db: db}
}

// LoadTip reads the persisted last block, if any, into memory.
func (s *BlockStore) LoadTip() error {
	data, err := s.db.Get(lastBlockKey)
	if err != nil {
		return nil // no tip yet: genesis case
	}
	var blk block.Block
	if err := json.Unmarshal(data, &blk); err != nil {
		return fmt.Errorf("decode chain tip: %w", err)
	}
	s.mu.Lock()
	s.last = &blk
	s.mu.Unlock()
	return nil
}

// LastBlock returns the current chain tip, or nil before genesis.
func (s *BlockStore) LastBlock() *block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Put persists blk by id and height without advancing the chain tip,
// used when loading historical blocks (e.g. replay/bootstrap) rather
// than applying a new one.
func (s *BlockStore) Put(blk *block.Block) error {
	data, err := json.Marshal(blk)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}
	id := blk.Hash()
	if err := s.db.Put(idKey(id), data); err != nil {
		return fmt.Errorf("persist block by id: %w", err)
	}
	return s.db.Put(heightKey(blk.Header.Height), data)
}

// SetLastBlock advances the in-memory tip and persists both the block
// itself and the tip pointer. Called by ApplyBlock once a block is
// accepted.
func (s *BlockStore) SetLastBlock(blk *block.Block) error {
	data, err := json.Marshal(blk)
	if err != nil {
		return fmt.Errorf("encode block: %w", err)
	}

	id := blk.Hash()
	if err := s.db.Put(idKey(id), data); err != nil {
		return fmt.Errorf("persist block by id: %w", err)
	}
	if err := s.db.Put(heightKey(blk.Header.Height), data); err != nil {
		return fmt.Errorf("persist block by height: %w", err)
	}
	if err := s.db.Put(lastBlockKey, data); err != nil {
		return fmt.Errorf("persist chain tip: %w", err)
	}

	s.mu.Lock()
	s.last = blk
	s.mu.Unlock()
	return nil
}

// IsCleaning reports whether the node is shutting down.
func (s *BlockStore) IsCleaning() bool {
	return s.cleanup.Load()
}

// BeginCleanup marks the node as shutting down; in-flight pipeline
// stages complete, but new processBlock calls are refused.
func (s *BlockStore) BeginCleanup() {
	s.cleanup.Store(true)
}

// BlockExists reports whether id has already been persisted.
func (s *BlockStore) BlockExists(id types.Hash) (bool, error) {
	ok, err := s.db.Has(idKey(id))
	if err != nil {
		return false, fmt.Errorf("check block existence: %w", err)
	}
	return ok, nil
}

// LoadLastNBlockIds returns the ids of the n most recently persisted
// blocks, oldest first, by walking back from the current tip.
func (s *BlockStore) LoadLastNBlockIds(n int) ([]types.Hash, error) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil || last.Header == nil || n <= 0 {
		return nil, nil
	}

	ids := make([]types.Hash, 0, n)
	height := last.Header.Height
	for i := 0; i < n && height >= 1; i++ {
		data, err := s.db.Get(heightKey(height))
		if err != nil {
			break
		}
		var blk block.Block
		if err := json.Unmarshal(data, &blk); err != nil {
			return nil, fmt.Errorf("decode block at height %d: %w", height, err)
		}
		ids = append(ids, blk.Hash())
		if height == 0 {
			break
		}
		height--
	}

	// Reverse to oldest-first, matching consensus.IDWindow.Load's
	// expected ordering.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids, nil
}
