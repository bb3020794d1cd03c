package query

import (
	"github.com/groundx/ledgercore/model"
)

// fakeStore is a minimal in-memory blockstore.Storage for query tests,
// avoiding a dependency on a real filesystem/leveldb/badger backend.
type fakeStore struct {
	blocks []*model.Block
}

func (f *fakeStore) Insert(b *model.Block) (bool, error) {
	if b.Header.Height != uint64(len(f.blocks))+1 {
		return false, nil
	}
	f.blocks = append(f.blocks, b)
	return true, nil
}

func (f *fakeStore) Fetch(height uint64) (*model.Block, bool, error) {
	if height == 0 || height > uint64(len(f.blocks)) {
		return nil, false, nil
	}
	return f.blocks[height-1], true, nil
}

func (f *fakeStore) ForEach(fn func(*model.Block) bool) error {
	for _, b := range f.blocks {
		if !fn(b) {
			break
		}
	}
	return nil
}

func (f *fakeStore) Size() (uint64, error) { return uint64(len(f.blocks)), nil }
func (f *fakeStore) Clear() error          { f.blocks = nil; return nil }
func (f *fakeStore) Close() error          { return nil }
