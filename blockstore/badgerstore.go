package blockstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger"

	"github.com/groundx/ledgercore/model"
)

// BadgerStore is the alternate pluggable Storage backend, selected in
// place of LevelDBStore by configuration rather than by code change.
type BadgerStore struct {
	mu  sync.RWMutex
	db  *badger.DB
	top uint64
}

// OpenBadgerStore opens (creating if necessary) a badger-backed block
// store at dir.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("blockstore: open badger: %w", err)
	}
	s := &BadgerStore{db: db}
	if err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sizeKey)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			s.top = binary.BigEndian.Uint64(val)
			return nil
		})
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("blockstore: read size: %w", err)
	}
	return s, nil
}

func (s *BadgerStore) Insert(block *model.Block) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block.Header.Height != s.top+1 {
		return false, nil
	}
	data, err := encodeBlock(block)
	if err != nil {
		return false, fmt.Errorf("blockstore: encode: %w", err)
	}
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], block.Header.Height)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(heightKey(block.Header.Height), data); err != nil {
			return err
		}
		return txn.Set(sizeKey, sizeBuf[:])
	})
	if err != nil {
		return false, fmt.Errorf("blockstore: write: %w", err)
	}
	s.top = block.Header.Height
	return true, nil
}

func (s *BadgerStore) Fetch(height uint64) (*model.Block, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if height == 0 || height > s.top {
		return nil, false, nil
	}
	var b *model.Block
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(heightKey(height))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := decodeBlock(val)
			if err != nil {
				return err
			}
			b = decoded
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("blockstore: get: %w", err)
	}
	return b, true, nil
}

func (s *BadgerStore) ForEach(fn func(*model.Block) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if len(item.Key()) != 8 {
				continue
			}
			var cont bool = true
			if err := item.Value(func(val []byte) error {
				b, err := decodeBlock(val)
				if err != nil {
					return err
				}
				cont = fn(b)
				return nil
			}); err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

func (s *BadgerStore) Size() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.top, nil
}

func (s *BadgerStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("blockstore: clear: %w", err)
	}
	s.top = 0
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }
