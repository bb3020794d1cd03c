package model

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/crypto"
)

// MaxQuorum is the upper bound on a transaction's quorum.
const MaxQuorum = 128

// Transaction is a signed, creator-attributed list of commands sharing a
// single quorum.
type Transaction struct {
	CreatorAccountID common.AccountID
	CreatedTime      int64 // milliseconds since epoch
	Quorum           uint16
	Commands         []Command
	BatchMeta        *BatchMeta // nil for a standalone (non-batched) transaction
	Signatures       []crypto.Signature
}

// ReducedHash hashes everything except signatures, the identity used to
// correlate a transaction inside a batch.
func (t *Transaction) ReducedHash() common.Hash {
	h := sha256.New()
	h.Write([]byte(t.CreatorAccountID))
	var tb [8]byte
	binary.BigEndian.PutUint64(tb[:], uint64(t.CreatedTime))
	h.Write(tb[:])
	binary.BigEndian.PutUint16(tb[:2], t.Quorum)
	h.Write(tb[:2])
	for _, c := range t.Commands {
		h.Write([]byte(c.CommandName()))
	}
	var sum common.Hash
	copy(sum[:], h.Sum(nil))
	return sum
}

// Hash is the transaction's content hash, its identity everywhere else
// in the node. It excludes signatures, matching ReducedHash: a
// transaction is identified by its payload, not by whatever signature
// set it has accumulated so far.
func (t *Transaction) Hash() common.Hash {
	return t.ReducedHash()
}

// DistinctValidSignatureCount counts signatures with distinct public
// keys that verify against the transaction's reduced hash.
func (t *Transaction) DistinctValidSignatureCount(v crypto.Verifier) int {
	seen := make(map[string]struct{}, len(t.Signatures))
	payload := t.ReducedHash().Bytes()
	count := 0
	for _, sig := range t.Signatures {
		key := string(sig.PublicKey)
		if _, ok := seen[key]; ok {
			continue
		}
		if !v.Verify(payload, sig) {
			continue
		}
		seen[key] = struct{}{}
		count++
	}
	return count
}

// FullySigned reports whether the transaction has accumulated enough
// distinct valid signatures to meet its quorum.
func (t *Transaction) FullySigned(v crypto.Verifier) bool {
	return t.DistinctValidSignatureCount(v) >= int(t.Quorum)
}

// MergeSignatures adds any signatures from other not already present.
// Merging is idempotent: a duplicate signature (same public key and
// payload) does not double-count.
func (t *Transaction) MergeSignatures(other []crypto.Signature) {
	existing := make(map[string]struct{}, len(t.Signatures))
	for _, s := range t.Signatures {
		existing[sigKey(s)] = struct{}{}
	}
	for _, s := range other {
		k := sigKey(s)
		if _, ok := existing[k]; ok {
			continue
		}
		existing[k] = struct{}{}
		t.Signatures = append(t.Signatures, s)
	}
}

func sigKey(s crypto.Signature) string {
	return string(s.PublicKey) + "|" + string(s.Payload)
}
