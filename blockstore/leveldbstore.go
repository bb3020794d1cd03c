package blockstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	lderrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/groundx/ledgercore/model"
)

// sizeKey stores the current top height alongside the block data, the
// usual head-pointer metadata key.
var sizeKey = []byte("bs-size")

// LevelDBStore is a goleveldb-backed Storage: height keys are 8-byte
// big-endian so lexicographic key order matches height order, letting
// ForEach use a single ordered iterator.
type LevelDBStore struct {
	mu  sync.RWMutex
	db  *leveldb.DB
	top uint64
}

// OpenLevelDBStore opens (creating if necessary) a leveldb-backed block
// store at dir, recovering from a corrupted database file in place.
func OpenLevelDBStore(dir string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if _, corrupted := err.(*lderrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("blockstore: open leveldb: %w", err)
	}
	top, err := readSize(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &LevelDBStore{db: db, top: top}, nil
}

func readSize(db *leveldb.DB) (uint64, error) {
	data, err := db.Get(sizeKey, nil)
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("blockstore: read size: %w", err)
	}
	return binary.BigEndian.Uint64(data), nil
}

func heightKey(height uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], height)
	return key[:]
}

func (s *LevelDBStore) Insert(block *model.Block) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if block.Header.Height != s.top+1 {
		return false, nil
	}
	data, err := encodeBlock(block)
	if err != nil {
		return false, fmt.Errorf("blockstore: encode: %w", err)
	}
	batch := new(leveldb.Batch)
	batch.Put(heightKey(block.Header.Height), data)
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], block.Header.Height)
	batch.Put(sizeKey, sizeBuf[:])
	if err := s.db.Write(batch, nil); err != nil {
		return false, fmt.Errorf("blockstore: write: %w", err)
	}
	s.top = block.Header.Height
	return true, nil
}

func (s *LevelDBStore) Fetch(height uint64) (*model.Block, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if height == 0 || height > s.top {
		return nil, false, nil
	}
	data, err := s.db.Get(heightKey(height), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("blockstore: get: %w", err)
	}
	b, err := decodeBlock(data)
	if err != nil {
		return nil, false, fmt.Errorf("blockstore: decode: %w", err)
	}
	return b, true, nil
}

func (s *LevelDBStore) ForEach(fn func(*model.Block) bool) error {
	iter := s.db.NewIterator(util.BytesPrefix(nil), nil)
	defer iter.Release()
	for iter.Next() {
		key := iter.Key()
		if len(key) != 8 {
			continue // the size metadata key
		}
		b, err := decodeBlock(iter.Value())
		if err != nil {
			return fmt.Errorf("blockstore: decode: %w", err)
		}
		if !fn(b) {
			return nil
		}
	}
	return iter.Error()
}

func (s *LevelDBStore) Size() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.top, nil
}

func (s *LevelDBStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return err
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("blockstore: clear: %w", err)
	}
	s.top = 0
	return nil
}

func (s *LevelDBStore) Close() error { return s.db.Close() }
