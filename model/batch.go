package model

import (
	"crypto/sha256"
	"fmt"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/crypto"
)

// BatchType distinguishes atomic all-or-nothing batches from ordered
// batches, whose transactions are validated independently.
type BatchType int

const (
	BatchAtomic BatchType = iota
	BatchOrdered
)

func (t BatchType) String() string {
	if t == BatchAtomic {
		return "ATOMIC"
	}
	return "ORDERED"
}

// BatchMeta is shared by every transaction in a batch; ReducedHashes
// must list the transactions' reduced hashes in the batch's order.
type BatchMeta struct {
	Type          BatchType
	ReducedHashes []common.Hash
}

// Batch is an ordered group of transactions sharing one BatchMeta.
type Batch struct {
	Transactions []*Transaction
	Meta         BatchMeta
}

// Validate checks that the shared batch_meta's reduced_hashes list
// matches the transactions' reduced hashes in order.
func (b *Batch) Validate() error {
	if len(b.Transactions) == 0 {
		return fmt.Errorf("model: batch has no transactions")
	}
	if len(b.Meta.ReducedHashes) != len(b.Transactions) {
		return fmt.Errorf("model: batch_meta has %d reduced hashes for %d transactions", len(b.Meta.ReducedHashes), len(b.Transactions))
	}
	for i, tx := range b.Transactions {
		if tx.ReducedHash() != b.Meta.ReducedHashes[i] {
			return fmt.Errorf("model: batch_meta reduced hash %d does not match transaction %d", i, i)
		}
	}
	return nil
}

// Hash is the batch identity: the hash of the concatenation of reduced
// hashes.
func (b *Batch) Hash() common.Hash {
	h := sha256.New()
	for _, rh := range b.Meta.ReducedHashes {
		h.Write(rh[:])
	}
	var sum common.Hash
	copy(sum[:], h.Sum(nil))
	return sum
}

// FullySigned reports whether every transaction in the batch is fully
// signed.
func (b *Batch) FullySigned(v crypto.Verifier) bool {
	for _, tx := range b.Transactions {
		if !tx.FullySigned(v) {
			return false
		}
	}
	return true
}
