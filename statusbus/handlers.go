package statusbus

import (
	"github.com/groundx/ledgercore/crypto"
	"github.com/groundx/ledgercore/model"
)

// OnBatchReceived handles a freshly submitted, stateless-valid batch:
// an already fully-signed batch publishes EnoughSignaturesCollected and
// goes straight to the PCS; otherwise it is published as MstPending and
// handed to the MST aggregator. Reaching this handler at all means the
// batch passed stateless validation, so that transition is published
// first.
func (b *Bus) OnBatchReceived(batch *model.Batch, verifier crypto.Verifier, now int64) {
	for _, tx := range batch.Transactions {
		b.publish(tx.Hash(), model.StatelessValid, nil)
	}
	if batch.FullySigned(verifier) {
		for _, tx := range batch.Transactions {
			b.publish(tx.Hash(), model.EnoughSignaturesCollected, nil)
		}
		if b.ForwardToPCS != nil {
			b.ForwardToPCS(batch)
		}
		return
	}
	for _, tx := range batch.Transactions {
		b.publish(tx.Hash(), model.MstPending, nil)
	}
	if b.ForwardToMST != nil {
		b.ForwardToMST(batch, now)
	}
}

// OnMSTPrepared handles the MST aggregator's "prepared" event: quorum
// is met, so the batch moves on to the PCS.
func (b *Bus) OnMSTPrepared(batch *model.Batch) {
	for _, tx := range batch.Transactions {
		b.publish(tx.Hash(), model.EnoughSignaturesCollected, nil)
	}
	if b.ForwardToPCS != nil {
		b.ForwardToPCS(batch)
	}
}

// OnMSTExpired handles the MST aggregator's "expired" event.
func (b *Bus) OnMSTExpired(batch *model.Batch) {
	for _, tx := range batch.Transactions {
		b.publish(tx.Hash(), model.MstExpired, nil)
	}
}

// OnVerifiedProposal handles the simulator's verified-proposal event.
func (b *Bus) OnVerifiedProposal(vp *model.VerifiedProposal) {
	for _, tx := range vp.ValidTxs {
		b.publish(tx.Hash(), model.StatefulValid, nil)
	}
	for _, rej := range vp.Rejections {
		b.publish(rej.TxHash, model.StatefulFailed, rej.Err)
	}
}

// OnBlockCommitted handles a consensus commit, and records
// committed/rejected hashes into the presence cache if one is wired.
func (b *Bus) OnBlockCommitted(block *model.Block) {
	for _, tx := range block.Transactions {
		h := tx.Hash()
		b.publish(h, model.Committed, nil)
	}
	committedTxCounter.Inc(int64(len(block.Transactions)))
	for _, h := range block.Header.RejectedTransactions {
		b.publish(h, model.Rejected, nil)
	}
	rejectedTxCounter.Inc(int64(len(block.Header.RejectedTransactions)))
	if b.presence != nil {
		b.presence.RecordBlock(block)
	}
}

// OnStatelessResult handles the TX Processor's stateless-validation
// outcome for a newly submitted (non-batch) transaction, before it ever
// reaches MST or PCS.
func (b *Bus) OnStatelessResult(tx *model.Transaction, valid bool) {
	if valid {
		b.publish(tx.Hash(), model.StatelessValid, nil)
		return
	}
	b.publish(tx.Hash(), model.StatelessFailed, nil)
}
