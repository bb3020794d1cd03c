package query

import (
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
)

func TestGetAccountTransactionsScansBlockStore(t *testing.T) {
	ws, tx := setupWSV(t)
	alice := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "self-txs", Permissions: model.NewPermissionSet(model.PermGetMyAccTxs)})
	tx.PutAccount(model.Account{ID: alice, Domain: "test", Roles: []common.RoleID{"self-txs"}})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{}
	aliceTx := &model.Transaction{CreatorAccountID: alice, CreatedTime: 10, Quorum: 1, Commands: []model.Command{model.SetSettingValue{Key: "k", Value: "v"}}}
	bobTx := &model.Transaction{CreatorAccountID: common.NewAccountID("bob", "test"), CreatedTime: 11, Quorum: 1, Commands: []model.Command{model.SetSettingValue{Key: "k2", Value: "v2"}}}
	if _, err := store.Insert(&model.Block{Header: model.Header{Height: 1}, Transactions: []*model.Transaction{aliceTx, bobTx}}); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, store, nil)
	resp := exec.Execute(model.GetAccountTransactions{Creator: alice, AccountID: alice})
	if resp.Err != nil {
		t.Fatalf("unexpected error: %+v", resp.Err)
	}
	page := resp.Result.(model.PageResult)
	if page.TotalCount != 1 {
		t.Fatalf("expected exactly alice's own transaction, got %d", page.TotalCount)
	}
}

func TestGetAccountAssetTransactionsFiltersByAsset(t *testing.T) {
	ws, tx := setupWSV(t)
	alice := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "self-asset-txs", Permissions: model.NewPermissionSet(model.PermGetMyAccAstTxs)})
	tx.PutAccount(model.Account{ID: alice, Domain: "test", Roles: []common.RoleID{"self-asset-txs"}})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	coin := common.NewAssetID("coin", "test")
	other := common.NewAssetID("other", "test")
	amt, _ := common.ParseAmount("1", 0)
	coinTx := &model.Transaction{CreatorAccountID: alice, CreatedTime: 1, Quorum: 1, Commands: []model.Command{model.AddAssetQuantity{AssetID: coin, Amount: amt}}}
	otherTx := &model.Transaction{CreatorAccountID: alice, CreatedTime: 2, Quorum: 1, Commands: []model.Command{model.AddAssetQuantity{AssetID: other, Amount: amt}}}
	store := &fakeStore{}
	if _, err := store.Insert(&model.Block{Header: model.Header{Height: 1}, Transactions: []*model.Transaction{coinTx, otherTx}}); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, store, nil)
	resp := exec.Execute(model.GetAccountAssetTransactions{Creator: alice, AccountID: alice, AssetID: coin})
	if resp.Err != nil {
		t.Fatalf("unexpected error: %+v", resp.Err)
	}
	page := resp.Result.(model.PageResult)
	if page.TotalCount != 1 {
		t.Fatalf("expected exactly the coin transaction, got %d", page.TotalCount)
	}
}

func TestGetBlockNotFound(t *testing.T) {
	ws, tx := setupWSV(t)
	alice := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "block-reader", Permissions: model.NewPermissionSet(model.PermGetBlocks)})
	tx.PutAccount(model.Account{ID: alice, Domain: "test", Roles: []common.RoleID{"block-reader"}})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, &fakeStore{}, nil)
	resp := exec.Execute(model.GetBlock{Creator: alice, Height: 1})
	if resp.Err == nil || resp.Err.Code != CodeSubjectAbsent {
		t.Fatalf("expected CodeSubjectAbsent, got %+v", resp)
	}
}
