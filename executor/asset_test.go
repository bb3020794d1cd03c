package executor

import (
	"strings"
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func amount(t *testing.T, s string, precision uint8) common.Amount {
	t.Helper()
	a, err := common.ParseAmount(s, precision)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// transferFixture sets up alice holding 10.00 coin with can_transfer,
// and bob with can_receive.
func transferFixture(t *testing.T) (wsv.Transaction, *Executor, common.AccountID, common.AccountID, common.AssetID) {
	t.Helper()
	tx, exec := newTestTx(t)
	alice := common.NewAccountID("alice", "d")
	bob := common.NewAccountID("bob", "d")
	coin := common.NewAssetID("coin", "d")

	tx.PutDomain(model.Domain{ID: "d", DefaultRole: "user"})
	tx.PutAsset(model.Asset{ID: coin, Domain: "d", Precision: 2})
	tx.PutRole(model.Role{ID: "sender", Permissions: model.NewPermissionSet(model.PermTransfer)})
	tx.PutRole(model.Role{ID: "receiver", Permissions: model.NewPermissionSet(model.PermCanReceive)})
	tx.PutAccount(model.Account{ID: alice, Domain: "d", Quorum: 1, Roles: []common.RoleID{"sender"}})
	tx.PutAccount(model.Account{ID: bob, Domain: "d", Quorum: 1, Roles: []common.RoleID{"receiver"}})
	tx.SetBalance(alice, coin, amount(t, "10.00", 2))
	return tx, exec, alice, bob, coin
}

func TestTransferAssetHappyPath(t *testing.T) {
	tx, exec, alice, bob, coin := transferFixture(t)

	cmd := model.TransferAsset{SrcAccountID: alice, DestAccountID: bob, AssetID: coin, Amount: amount(t, "1.00", 2)}
	if cerr := exec.Execute(tx, alice, common.Hash{}, 0, cmd, true); cerr != nil {
		t.Fatalf("unexpected error: %+v", cerr)
	}

	src, _ := tx.GetBalance(alice, coin)
	dest, _ := tx.GetBalance(bob, coin)
	if src.String() != "9.00" {
		t.Fatalf("expected source balance 9.00, got %s", src.String())
	}
	if dest.String() != "1.00" {
		t.Fatalf("expected destination balance 1.00, got %s", dest.String())
	}
}

func TestTransferAssetInsufficientFunds(t *testing.T) {
	tx, exec, alice, bob, coin := transferFixture(t)

	cmd := model.TransferAsset{SrcAccountID: alice, DestAccountID: bob, AssetID: coin, Amount: amount(t, "20.00", 2)}
	cerr := exec.Execute(tx, alice, common.Hash{}, 0, cmd, true)
	if cerr == nil || cerr.Code != CodeInsufficientSourceQuantity {
		t.Fatalf("expected code %d, got %+v", CodeInsufficientSourceQuantity, cerr)
	}
	if cerr.CommandName != "TransferAsset" {
		t.Fatalf("expected command name TransferAsset, got %s", cerr.CommandName)
	}

	src, _ := tx.GetBalance(alice, coin)
	if src.String() != "10.00" {
		t.Fatalf("expected source balance unchanged, got %s", src.String())
	}
}

func TestTransferAssetReceiverCannotReceive(t *testing.T) {
	tx, exec, alice, _, coin := transferFixture(t)
	carol := common.NewAccountID("carol", "d")
	tx.PutAccount(model.Account{ID: carol, Domain: "d", Quorum: 1})

	cmd := model.TransferAsset{SrcAccountID: alice, DestAccountID: carol, AssetID: coin, Amount: amount(t, "1.00", 2)}
	cerr := exec.Execute(tx, alice, common.Hash{}, 0, cmd, true)
	if cerr == nil || cerr.Code != CodeReceiverCannotReceive {
		t.Fatalf("expected code %d, got %+v", CodeReceiverCannotReceive, cerr)
	}
}

func TestTransferAssetDescriptionTooLong(t *testing.T) {
	tx, exec, alice, bob, coin := transferFixture(t)

	cmd := model.TransferAsset{
		SrcAccountID:  alice,
		DestAccountID: bob,
		AssetID:       coin,
		Description:   strings.Repeat("x", DefaultConfig().MaxTransferDescriptionLength+1),
		Amount:        amount(t, "1.00", 2),
	}
	cerr := exec.Execute(tx, alice, common.Hash{}, 0, cmd, true)
	if cerr == nil || cerr.Code != CodeDescriptionTooLong {
		t.Fatalf("expected code %d, got %+v", CodeDescriptionTooLong, cerr)
	}
}

func TestTransferAssetGrantedTransfer(t *testing.T) {
	tx, exec, alice, bob, coin := transferFixture(t)
	// bob moves alice's coin under a transfer-my-assets grant; bob can
	// also receive, so the transfer targets bob itself.
	tx.SetGrantedPermissions(model.GrantKey{Grantor: alice, Grantee: bob}, model.NewPermissionSet(model.PermTransferMyAssets))

	cmd := model.TransferAsset{SrcAccountID: alice, DestAccountID: bob, AssetID: coin, Amount: amount(t, "2.00", 2)}
	if cerr := exec.Execute(tx, bob, common.Hash{}, 0, cmd, true); cerr != nil {
		t.Fatalf("unexpected error: %+v", cerr)
	}
	dest, _ := tx.GetBalance(bob, coin)
	if dest.String() != "2.00" {
		t.Fatalf("expected 2.00, got %s", dest.String())
	}
}

func TestAddAssetQuantityRequiresMatchingPrecision(t *testing.T) {
	tx, exec := newTestTx(t)
	admin := common.NewAccountID("admin", "d")
	coin := common.NewAssetID("coin", "d")
	withRootAccount(t, tx, admin)
	tx.PutAsset(model.Asset{ID: coin, Domain: "d", Precision: 2})

	cmd := model.AddAssetQuantity{AssetID: coin, Amount: amount(t, "5", 0)}
	cerr := exec.Execute(tx, admin, common.Hash{}, 0, cmd, true)
	if cerr == nil || cerr.Code != CodeInvariantViolated {
		t.Fatalf("expected precision mismatch, got %+v", cerr)
	}
}

func TestAddThenSubtractAssetQuantity(t *testing.T) {
	tx, exec := newTestTx(t)
	admin := common.NewAccountID("admin", "d")
	coin := common.NewAssetID("coin", "d")
	withRootAccount(t, tx, admin)
	tx.PutAsset(model.Asset{ID: coin, Domain: "d", Precision: 2})

	add := model.AddAssetQuantity{AssetID: coin, Amount: amount(t, "5.00", 2)}
	if cerr := exec.Execute(tx, admin, common.Hash{}, 0, add, true); cerr != nil {
		t.Fatalf("unexpected add error: %+v", cerr)
	}
	sub := model.SubtractAssetQuantity{AssetID: coin, Amount: amount(t, "2.00", 2)}
	if cerr := exec.Execute(tx, admin, common.Hash{}, 0, sub, true); cerr != nil {
		t.Fatalf("unexpected subtract error: %+v", cerr)
	}
	bal, _ := tx.GetBalance(admin, coin)
	if bal.String() != "3.00" {
		t.Fatalf("expected 3.00, got %s", bal.String())
	}

	over := model.SubtractAssetQuantity{AssetID: coin, Amount: amount(t, "9.00", 2)}
	cerr := exec.Execute(tx, admin, common.Hash{}, 0, over, true)
	if cerr == nil || cerr.Code != CodeInvariantViolated {
		t.Fatalf("expected insufficient quantity, got %+v", cerr)
	}
}
