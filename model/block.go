package model

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/crypto"
)

// Header carries a block's identity and linkage fields.
type Header struct {
	Height               uint64
	PreviousBlockHash    common.Hash
	CreatedTime          int64
	RejectedTransactions []common.Hash
}

// Block is a committed, append-only unit of the chain.
type Block struct {
	Header       Header
	Transactions []*Transaction
	Signatures   []crypto.Signature
}

// Hash digests the header plus the ordered transaction hashes. Node
// signatures are excluded, the same way a Transaction's identity
// excludes its signature set.
func (b *Block) Hash() common.Hash {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], b.Header.Height)
	h.Write(buf[:])
	h.Write(b.Header.PreviousBlockHash[:])
	binary.BigEndian.PutUint64(buf[:], uint64(b.Header.CreatedTime))
	h.Write(buf[:])
	for _, rh := range b.Header.RejectedTransactions {
		h.Write(rh[:])
	}
	for _, tx := range b.Transactions {
		th := tx.Hash()
		h.Write(th[:])
	}
	var sum common.Hash
	copy(sum[:], h.Sum(nil))
	return sum
}

// Validate checks the invariants that can be checked from the block
// alone: no duplicate hashes, and the committed and rejected sets are
// disjoint. Linkage to the previous block is checked by the caller,
// which knows the chain.
func (b *Block) Validate() error {
	seen := make(map[common.Hash]struct{}, len(b.Transactions))
	for _, tx := range b.Transactions {
		h := tx.Hash()
		if _, dup := seen[h]; dup {
			return &InvariantError{Reason: "duplicate transaction hash in block"}
		}
		seen[h] = struct{}{}
	}
	rejected := make(map[common.Hash]struct{}, len(b.Header.RejectedTransactions))
	for _, h := range b.Header.RejectedTransactions {
		if _, dup := rejected[h]; dup {
			return &InvariantError{Reason: "duplicate rejected transaction hash in block"}
		}
		rejected[h] = struct{}{}
		if _, committed := seen[h]; committed {
			return &InvariantError{Reason: "hash present in both committed and rejected sets"}
		}
	}
	return nil
}

// InvariantError reports a violation of a data-model invariant.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string { return "model: invariant violated: " + e.Reason }
