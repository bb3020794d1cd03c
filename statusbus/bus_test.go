package statusbus

import (
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/crypto"
	"github.com/groundx/ledgercore/model"
)

func newStatelessValidBatch(t *testing.T, bus *Bus, quorum uint16) *model.Batch {
	t.Helper()
	tx := &model.Transaction{
		CreatorAccountID: common.NewAccountID("alice", "test"),
		CreatedTime:      1,
		Quorum:           quorum,
		Commands:         []model.Command{model.SetSettingValue{Key: "k", Value: "v"}},
	}
	bus.OnStatelessResult(tx, true)
	return &model.Batch{
		Transactions: []*model.Transaction{tx},
		Meta:         model.BatchMeta{Type: model.BatchOrdered, ReducedHashes: []common.Hash{tx.ReducedHash()}},
	}
}

func TestOnBatchReceivedFullySignedForwardsToPCS(t *testing.T) {
	signer, _ := crypto.GenerateKey()
	bus := New(nil)
	var forwarded *model.Batch
	bus.ForwardToPCS = func(b *model.Batch) { forwarded = b }

	batch := newStatelessValidBatch(t, bus, 1)
	sig, err := signer.Sign(batch.Transactions[0].ReducedHash().Bytes())
	if err != nil {
		t.Fatal(err)
	}
	batch.Transactions[0].Signatures = append(batch.Transactions[0].Signatures, sig)

	bus.OnBatchReceived(batch, crypto.DefaultVerifier, 0)

	if forwarded == nil {
		t.Fatal("fully signed batch should be forwarded to PCS")
	}
	got := bus.GetStatus(batch.Transactions[0].Hash())
	if got.Kind != model.EnoughSignaturesCollected {
		t.Fatalf("expected EnoughSignaturesCollected, got %v", got.Kind)
	}
}

func TestOnBatchReceivedUnsignedForwardsToMST(t *testing.T) {
	bus := New(nil)
	var forwarded *model.Batch
	bus.ForwardToMST = func(b *model.Batch, now int64) { forwarded = b }

	batch := newStatelessValidBatch(t, bus, 2)
	bus.OnBatchReceived(batch, crypto.DefaultVerifier, 0)

	if forwarded == nil {
		t.Fatal("under-quorum batch should be forwarded to MST")
	}
	got := bus.GetStatus(batch.Transactions[0].Hash())
	if got.Kind != model.MstPending {
		t.Fatalf("expected MstPending, got %v", got.Kind)
	}
}

func TestPublishIsIdempotent(t *testing.T) {
	bus := New(nil)
	updates := make(chan Update, 4)
	sub, err := bus.Subscribe(updates)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Unsubscribe()

	tx := &model.Transaction{CreatorAccountID: common.NewAccountID("alice", "test"), Quorum: 1}
	h := tx.Hash()
	bus.publish(h, model.StatelessValid, nil)
	bus.publish(h, model.StatelessValid, nil)

	if len(updates) != 1 {
		t.Fatalf("expected exactly one published update, got %d", len(updates))
	}
}

type emptyBlockStore struct{}

func (emptyBlockStore) ForEach(fn func(*model.Block) bool) error { return nil }

func TestOnBlockCommittedRecordsPresence(t *testing.T) {
	presence, err := BuildPresenceCache(emptyBlockStore{})
	if err != nil {
		t.Fatal(err)
	}
	bus := New(presence)
	tx := &model.Transaction{CreatorAccountID: common.NewAccountID("alice", "test"), Quorum: 1}
	block := &model.Block{
		Header:       model.Header{Height: 1},
		Transactions: []*model.Transaction{tx},
	}
	bus.OnBlockCommitted(block)

	st, ok := presence.Lookup(tx.Hash())
	if !ok || st.Kind != model.Committed {
		t.Fatal("expected the committed transaction recorded in the presence cache")
	}
}
