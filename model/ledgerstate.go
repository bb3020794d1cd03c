package model

import "github.com/groundx/ledgercore/common"

// LedgerState is an immutable snapshot captured at consensus and passed
// along the pipeline.
type LedgerState struct {
	SyncedPeers    []Peer
	SyncingPeers   []Peer
	TopBlockHeight uint64
	TopBlockHash   common.Hash
}
