// Package mst implements the multi-signature pending-transaction
// aggregator: it holds batches below quorum, merges
// incoming signatures for the same batch identity, and emits prepared
// and expired events over the shared event package.
package mst

import (
	"sync"

	set "gopkg.in/fatih/set.v0"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/crypto"
	"github.com/groundx/ledgercore/event"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/metrics"
	"github.com/groundx/ledgercore/model"
)

var (
	logger = log.NewModuleLogger(log.ModuleMST)

	preparedCounter = metrics.NewRegisteredCounter("mst/batches/prepared", nil)
	expiredCounter  = metrics.NewRegisteredCounter("mst/batches/expired", nil)
)

// pending tracks one batch below quorum together with the earliest
// time any of its transactions was first seen, the anchor for
// expiration.
type pending struct {
	batch           *model.Batch
	earliestCreated int64
}

// Aggregator is the MST pending-transaction store. All operations are
// meant to be invoked sequentially by a single owner; it holds its own
// mutex only to make that contract safe to violate accidentally rather
// than to support genuine concurrent callers.
type Aggregator struct {
	mu       sync.Mutex
	verifier crypto.Verifier
	window   int64 // expiration window, same units as earliestCreated/now

	byIdentity map[common.Hash]*pending
	// seen tracks batch identities ever accepted, so a duplicate
	// propagate of an already-prepared or already-expired batch is a
	// no-op rather than resurrected state: a batch never shows up on
	// both the prepared and expired channels.
	seen *set.Set

	preparedFeed event.Feed
	expiredFeed  event.Feed
}

// New builds an Aggregator. window uses the same clock units as the
// `now` passed to Expire (typically Unix milliseconds, matching
// Transaction.CreatedTime).
func New(verifier crypto.Verifier, window int64) *Aggregator {
	return &Aggregator{
		verifier:   verifier,
		window:     window,
		byIdentity: make(map[common.Hash]*pending),
		seen:       set.New(),
	}
}

// SubscribePrepared registers ch to receive batches that became fully
// signed.
func (a *Aggregator) SubscribePrepared(ch chan<- *model.Batch) (event.Subscription, error) {
	return a.preparedFeed.Subscribe(ch)
}

// SubscribeExpired registers ch to receive batches removed by timeout.
func (a *Aggregator) SubscribeExpired(ch chan<- *model.Batch) (event.Subscription, error) {
	return a.expiredFeed.Subscribe(ch)
}

// Propagate merges incoming into any pending batch sharing its
// identity, or inserts it as new. now is the caller's current time,
// used only to seed earliestCreated for a newly-seen batch. If the
// merge makes the batch fully signed it is removed from the pending set
// and published on the prepared feed.
//
// Signature merging is idempotent: re-propagating a batch
// whose signatures are already known changes nothing and does not
// re-publish.
func (a *Aggregator) Propagate(incoming *model.Batch, now int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := incoming.Hash()
	if p, ok := a.byIdentity[id]; ok {
		for i, tx := range p.batch.Transactions {
			if i < len(incoming.Transactions) {
				tx.MergeSignatures(incoming.Transactions[i].Signatures)
			}
		}
	} else {
		if a.seen.Has(id) {
			return
		}
		a.seen.Add(id)
		a.byIdentity[id] = &pending{batch: incoming, earliestCreated: now}
	}

	p := a.byIdentity[id]
	if p.batch.FullySigned(a.verifier) {
		delete(a.byIdentity, id)
		logger.Debug("batch fully signed", "batch", id.Hex(), "txs", len(p.batch.Transactions))
		preparedCounter.Inc(1)
		a.preparedFeed.Send(p.batch)
	}
}

// Expire removes every batch whose earliestCreated is older than the
// expiration window relative to now, publishing each on the expired
// feed.
func (a *Aggregator) Expire(now int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, p := range a.byIdentity {
		if now-p.earliestCreated > a.window {
			delete(a.byIdentity, id)
			logger.Debug("batch expired", "batch", id.Hex())
			expiredCounter.Inc(1)
			a.expiredFeed.Send(p.batch)
		}
	}
}

// Pending reports whether a batch with the given identity is currently
// held below quorum.
func (a *Aggregator) Pending(id common.Hash) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.byIdentity[id]
	return ok
}

// Len reports the number of batches currently pending.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byIdentity)
}

// PendingByCreator returns every pending transaction created by
// creator, across all batches currently held below quorum. Used by the
// query executor's GetPendingTransactions.
func (a *Aggregator) PendingByCreator(creator common.AccountID) []*model.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*model.Transaction
	for _, p := range a.byIdentity {
		for _, tx := range p.batch.Transactions {
			if tx.CreatorAccountID == creator {
				out = append(out, tx)
			}
		}
	}
	return out
}
