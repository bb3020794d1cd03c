// Package statusbus implements the status bus and transaction
// processor: it fans out per-transaction-hash status transitions and
// coordinates the MST aggregator, the (external) peer-communication
// service, the simulator, and block commit events.
package statusbus

import (
	"sync"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/event"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/metrics"
	"github.com/groundx/ledgercore/model"
)

var (
	logger = log.NewModuleLogger(log.ModuleStatusBus)

	committedTxCounter = metrics.NewRegisteredCounter("statusbus/tx/committed", nil)
	rejectedTxCounter  = metrics.NewRegisteredCounter("statusbus/tx/rejected", nil)
)

// Update is one published status transition for a transaction hash.
type Update struct {
	TxHash common.Hash
	Status model.TxStatus
}

// Bus tracks and fans out per-transaction statuses. ForwardToPCS and
// ForwardToMST are the bus's only outward calls into the external peer-communication
// service and the MST aggregator, wired by the caller that owns both;
// a nil hook is simply not called.
type Bus struct {
	mu     sync.RWMutex
	status map[common.Hash]model.TxStatus
	feed   event.Feed

	presence *PresenceCache

	ForwardToPCS func(*model.Batch)
	ForwardToMST func(batch *model.Batch, now int64)
}

// New builds a Bus backed by presence for status queries that have
// aged out of the in-memory map. presence may be nil, in which case
// GetStatus only ever consults the in-memory map.
func New(presence *PresenceCache) *Bus {
	return &Bus{
		status:   make(map[common.Hash]model.TxStatus),
		presence: presence,
	}
}

// Subscribe registers ch to receive every published Update. Filtering
// to a single transaction hash is left to the caller; the transaction
// response channel is one broadcast feed, the same shape event.Feed
// gives every other channel in this core.
func (b *Bus) Subscribe(ch chan<- Update) (event.Subscription, error) {
	return b.feed.Subscribe(ch)
}

// GetStatus returns the current status for hash, falling back to the
// durable presence cache for hashes that have aged out of memory.
func (b *Bus) GetStatus(hash common.Hash) model.TxStatus {
	b.mu.RLock()
	st, ok := b.status[hash]
	b.mu.RUnlock()
	if ok {
		return st
	}
	if b.presence != nil {
		if st, ok := b.presence.Lookup(hash); ok {
			return st
		}
	}
	return model.TxStatus{Kind: model.NotReceived}
}

// publish transitions hash to kind, idempotently: republishing the
// current kind is a no-op, and a kind unreachable from the current one
// is dropped with a warning.
func (b *Bus) publish(hash common.Hash, kind model.TxStatusKind, errInfo *model.CommandError) {
	b.mu.Lock()
	current := b.status[hash]
	if current.Kind == kind {
		b.mu.Unlock()
		return
	}
	if !model.CanTransition(current.Kind, kind) {
		b.mu.Unlock()
		logger.Warn("rejected status transition", "tx", hash.Hex(), "from", current.Kind, "to", kind)
		return
	}
	next := model.TxStatus{Kind: kind, ErrInfo: errInfo}
	b.status[hash] = next
	b.mu.Unlock()
	b.feed.Send(Update{TxHash: hash, Status: next})
}
