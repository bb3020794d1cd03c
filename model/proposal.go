package model

import (
	"strconv"

	"github.com/groundx/ledgercore/common"
)

// Proposal is a round's ordered candidate transactions before stateful
// validation: no signatures, ephemeral.
type Proposal struct {
	Round        uint64
	CreatedTime  int64
	Transactions []*Transaction
}

// CommandError is the executor's typed error: a stable numeric code
// plus enough context to reconstruct what failed.
type CommandError struct {
	CommandName string
	Code        int
	QueryArgs   string
}

func (e *CommandError) Error() string {
	return "command " + e.CommandName + " failed with code " + strconv.Itoa(e.Code)
}

// Rejection pairs a rejected transaction's hash with why it failed.
type Rejection struct {
	TxHash common.Hash
	Err    *CommandError
}

// VerifiedProposal partitions a Proposal into the stateful-valid
// transactions and the per-rejection errors for the rest.
type VerifiedProposal struct {
	Round       uint64
	ValidTxs    []*Transaction
	Rejections  []Rejection
	LedgerState LedgerState
}
