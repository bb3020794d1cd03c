// Package simulator implements the proposal -> verified-proposal ->
// block pipeline: stateful validation of a round's proposal against a
// WSV write transaction, producing the events the status bus and block
// storage consume downstream.
package simulator

import (
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/crypto"
	"github.com/groundx/ledgercore/event"
	"github.com/groundx/ledgercore/executor"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/metrics"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

var (
	logger = log.NewModuleLogger(log.ModuleSimulator)

	validTxMeter    = metrics.NewRegisteredMeter("simulator/tx/valid", nil)
	rejectedTxMeter = metrics.NewRegisteredMeter("simulator/tx/rejected", nil)
	blockCounter    = metrics.NewRegisteredCounter("simulator/blocks", nil)
)

// DefaultMaxCommandsPerBlock bounds how many commands one block may
// buffer through a single WSV transaction.
const DefaultMaxCommandsPerBlock = 16384

// Simulator runs the stateful-validation step over successive
// proposals. It is meant to be driven by a single caller; rounds are
// simulated strictly one at a time.
type Simulator struct {
	ws          wsv.WorldState
	exec        *executor.Executor
	signer      crypto.Signer
	maxCommands int

	verifiedFeed event.Feed
	blockFeed    event.Feed
}

// New builds a Simulator over ws, applying commands via exec and
// signing produced blocks with signer.
func New(ws wsv.WorldState, exec *executor.Executor, signer crypto.Signer) *Simulator {
	return &Simulator{ws: ws, exec: exec, signer: signer, maxCommands: DefaultMaxCommandsPerBlock}
}

// SetMaxCommandsPerBlock overrides the per-block command cap. Zero
// disables the cap.
func (s *Simulator) SetMaxCommandsPerBlock(n int) { s.maxCommands = n }

// SubscribeVerifiedProposals registers ch to receive each round's
// VerifiedProposal.
func (s *Simulator) SubscribeVerifiedProposals(ch chan<- *model.VerifiedProposal) (event.Subscription, error) {
	return s.verifiedFeed.Subscribe(ch)
}

// SubscribeBlocks registers ch to receive each round's produced block.
func (s *Simulator) SubscribeBlocks(ch chan<- *model.Block) (event.Subscription, error) {
	return s.blockFeed.Subscribe(ch)
}

// unit is the atom of stateful validation: either a single standalone
// transaction or the full run of an atomic batch, which commits
// all-or-nothing.
type unit struct {
	txs    []*model.Transaction
	atomic bool
}

// groupUnits partitions a proposal's ordered transactions into units.
// Consecutive transactions sharing an atomic batch identity form one
// unit; everything else (standalone or ordered-batch members, which are
// validated independently) is a unit of its own.
func groupUnits(txs []*model.Transaction) []unit {
	var units []unit
	for i := 0; i < len(txs); {
		t := txs[i]
		if t.BatchMeta == nil || t.BatchMeta.Type != model.BatchAtomic {
			units = append(units, unit{txs: []*model.Transaction{t}})
			i++
			continue
		}
		id := batchIdentity(t.BatchMeta)
		j := i + 1
		for j < len(txs) && txs[j].BatchMeta != nil && txs[j].BatchMeta.Type == model.BatchAtomic && batchIdentity(txs[j].BatchMeta) == id {
			j++
		}
		units = append(units, unit{txs: txs[i:j], atomic: true})
		i = j
	}
	return units
}

func batchIdentity(meta *model.BatchMeta) common.Hash {
	b := model.Batch{Meta: *meta}
	return b.Hash()
}

// Simulate validates one proposal against ledgerState (the
// consensus-captured snapshot of peer/height information) and returns
// the open, prepared WSV transaction alongside the produced block — the
// caller (the node's round driver) commits it once consensus accepts
// the block, or discards it otherwise.
//
// Empty proposals still produce both events with empty content, so
// downstream rounds stay in lock-step.
func (s *Simulator) Simulate(proposal *model.Proposal, ledgerState model.LedgerState) (wsv.Transaction, *model.VerifiedProposal, *model.Block, error) {
	rid := uuid.NewRandom().String()
	logger.Debug("simulating proposal", "sim", rid, "round", proposal.Round, "txs", len(proposal.Transactions))

	tx, err := s.ws.Begin()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "simulator: begin wsv transaction")
	}

	var (
		validTxs   []*model.Transaction
		rejections []model.Rejection
		cmdCount   int
	)

	for _, u := range groupUnits(proposal.Transactions) {
		sp := tx.Savepoint()
		var failed *model.CommandError
		applied := 0
	unitLoop:
		for _, t := range u.txs {
			txHash := t.Hash()
			for i, cmd := range t.Commands {
				if s.maxCommands > 0 && cmdCount+applied >= s.maxCommands {
					failed = &model.CommandError{CommandName: cmd.CommandName(), Code: executor.CodeInternal, QueryArgs: "block command limit reached"}
					break unitLoop
				}
				if cerr := s.exec.Execute(tx, t.CreatorAccountID, txHash, i, cmd, true); cerr != nil {
					failed = cerr
					break unitLoop
				}
				applied++
			}
		}
		if failed != nil {
			// An atomic unit rejects every member with the error that
			// sank it; a standalone unit is just the one transaction.
			tx.Restore(sp)
			for _, t := range u.txs {
				rejections = append(rejections, model.Rejection{TxHash: t.Hash(), Err: failed})
			}
			continue
		}
		cmdCount += applied
		validTxs = append(validTxs, u.txs...)
	}

	vp := &model.VerifiedProposal{
		Round:       proposal.Round,
		ValidTxs:    validTxs,
		Rejections:  rejections,
		LedgerState: ledgerState,
	}
	logger.Debug("proposal simulated", "sim", rid, "round", proposal.Round, "valid", len(validTxs), "rejected", len(rejections))
	validTxMeter.Mark(int64(len(validTxs)))
	rejectedTxMeter.Mark(int64(len(rejections)))
	s.verifiedFeed.Send(vp)

	if err := tx.PrepareBlock(); err != nil {
		tx.Discard()
		return nil, nil, nil, errors.Wrap(err, "simulator: prepare block")
	}

	rejectedHashes := make([]common.Hash, len(rejections))
	for i, r := range rejections {
		rejectedHashes[i] = r.TxHash
	}
	header := model.Header{
		Height:               ledgerState.TopBlockHeight + 1,
		PreviousBlockHash:    ledgerState.TopBlockHash,
		CreatedTime:          proposal.CreatedTime,
		RejectedTransactions: rejectedHashes,
	}
	block := &model.Block{Header: header, Transactions: validTxs}
	if s.signer != nil {
		sig, err := s.signer.Sign(block.Hash().Bytes())
		if err != nil {
			tx.Discard()
			return nil, nil, nil, errors.Wrap(err, "simulator: sign block")
		}
		block.Signatures = []crypto.Signature{sig}
	}
	blockCounter.Inc(1)
	s.blockFeed.Send(block)

	return tx, vp, block, nil
}
