// Package blockstore is the append-only, gap-free, height-keyed store
// of committed blocks, with interchangeable filesystem, leveldb and
// badger backends behind one Storage interface.
package blockstore

import (
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/model"
)

var logger = log.NewModuleLogger(log.ModuleBlockStore)

// Storage is the block storage contract. Insert must be
// gap-free: insert(b) succeeds iff b.Header.Height == Size()+1 and no
// block already occupies that height.
type Storage interface {
	// Insert appends block at its header height. It reports false,
	// without error, if the height is not exactly Size()+1 (a
	// protocol/ordering bug upstream, not a storage fault).
	Insert(block *model.Block) (bool, error)
	// Fetch returns the block at height, or ok=false if absent.
	Fetch(height uint64) (*model.Block, bool, error)
	// ForEach calls fn with every stored block in ascending height
	// order, stopping early if fn returns false.
	ForEach(fn func(*model.Block) bool) error
	// Size returns the number of stored blocks, i.e. the top height.
	Size() (uint64, error)
	// Clear removes every stored block.
	Clear() error
	Close() error
}
