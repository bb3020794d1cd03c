package statusbus

import (
	"sync"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
)

// PresenceCache is the durable presence index over the committed
// ledger: it answers GetStatus for transactions whose in-memory Bus
// entry has aged out, by indexing the block store by transaction hash.
type PresenceCache struct {
	mu        sync.RWMutex
	committed map[common.Hash]uint64 // tx hash -> committing block height
	rejected  map[common.Hash]uint64 // tx hash -> height of the block that rejected it
}

// BuildPresenceCache indexes every block currently in store. Call once
// at startup after the block store and WSV have been reconciled.
func BuildPresenceCache(store interface {
	ForEach(func(*model.Block) bool) error
}) (*PresenceCache, error) {
	p := &PresenceCache{
		committed: make(map[common.Hash]uint64),
		rejected:  make(map[common.Hash]uint64),
	}
	err := store.ForEach(func(b *model.Block) bool {
		p.indexBlock(b)
		return true
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PresenceCache) indexBlock(b *model.Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tx := range b.Transactions {
		p.committed[tx.Hash()] = b.Header.Height
	}
	for _, h := range b.Header.RejectedTransactions {
		p.rejected[h] = b.Header.Height
	}
}

// RecordBlock incrementally indexes a newly committed block, keeping
// the cache in step with the Bus's own OnBlockCommitted handler.
func (p *PresenceCache) RecordBlock(b *model.Block) {
	p.indexBlock(b)
}

// Lookup reports the durable status for hash, if any block has ever
// committed or rejected it.
func (p *PresenceCache) Lookup(hash common.Hash) (model.TxStatus, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.committed[hash]; ok {
		return model.TxStatus{Kind: model.Committed}, true
	}
	if _, ok := p.rejected[hash]; ok {
		return model.TxStatus{Kind: model.Rejected}, true
	}
	return model.TxStatus{}, false
}
