package wsv

import (
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
)

func TestSavepointRestoreRollsBackPartialWrites(t *testing.T) {
	ws := NewMemWorldState()
	tx, err := ws.Begin()
	if err != nil {
		t.Fatal(err)
	}
	acc := model.Account{ID: common.NewAccountID("alice", "test"), Domain: "test", Quorum: 1}
	tx.PutAccount(acc)

	sp := tx.Savepoint()
	amt, err := common.ParseAmount("100", 2)
	if err != nil {
		t.Fatal(err)
	}
	tx.SetBalance(acc.ID, common.NewAssetID("coin", "test"), amt)
	if _, ok := tx.GetBalance(acc.ID, common.NewAssetID("coin", "test")); !ok {
		t.Fatal("balance should be visible before restore")
	}

	tx.Restore(sp)
	if _, ok := tx.GetBalance(acc.ID, common.NewAssetID("coin", "test")); ok {
		t.Fatal("balance should be gone after restore")
	}
	if _, ok := tx.GetAccount(acc.ID); !ok {
		t.Fatal("the account put before the savepoint must survive the restore")
	}
}

func TestWriteTransactionNotVisibleUntilCommit(t *testing.T) {
	ws := NewMemWorldState()
	tx, err := ws.Begin()
	if err != nil {
		t.Fatal(err)
	}
	acc := model.Account{ID: common.NewAccountID("bob", "test"), Domain: "test"}
	tx.PutAccount(acc)

	if _, ok := ws.GetAccount(acc.ID); ok {
		t.Fatal("uncommitted write must not be visible on the committed view")
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if _, ok := ws.GetAccount(acc.ID); !ok {
		t.Fatal("account should be visible after commit")
	}
}

func TestBeginFailsWhileWriteOpen(t *testing.T) {
	ws := NewMemWorldState()
	_, err := ws.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Begin(); err != ErrWriteInProgress {
		t.Fatalf("expected ErrWriteInProgress, got %v", err)
	}
}

func TestEffectivePermissionsUnionsRoles(t *testing.T) {
	ws := NewMemWorldState()
	tx, _ := ws.Begin()
	tx.PutRole(model.Role{ID: "reader", Permissions: model.NewPermissionSet(model.PermGetMyAccount)})
	tx.PutRole(model.Role{ID: "writer", Permissions: model.NewPermissionSet(model.PermSetDetail)})
	acc := model.Account{ID: common.NewAccountID("carol", "test"), Roles: []common.RoleID{"reader", "writer"}}
	tx.PutAccount(acc)

	perms := tx.EffectivePermissions(acc.ID)
	if !perms.Has(model.PermGetMyAccount) || !perms.Has(model.PermSetDetail) {
		t.Fatal("expected permissions from both attached roles")
	}
}

func TestGrantedPermissions(t *testing.T) {
	ws := NewMemWorldState()
	tx, _ := ws.Begin()
	grantor := common.NewAccountID("dave", "test")
	grantee := common.NewAccountID("erin", "test")
	key := model.GrantKey{Grantor: grantor, Grantee: grantee}

	if _, ok := tx.GetGrantedPermissions(key); ok {
		t.Fatal("no grant should exist yet")
	}
	tx.SetGrantedPermissions(key, model.NewPermissionSet(model.PermTransferMyAssets))
	perms, ok := tx.GetGrantedPermissions(key)
	if !ok || !perms.Has(model.PermTransferMyAssets) {
		t.Fatal("expected the granted permission to be stored")
	}
}

func TestHasRolePermissionRootImpliesAll(t *testing.T) {
	ws := NewMemWorldState()
	tx, _ := ws.Begin()
	tx.PutRole(model.Role{ID: "admin", Permissions: model.NewPermissionSet(model.PermRoot)})
	acc := model.Account{ID: common.NewAccountID("frank", "test"), Roles: []common.RoleID{"admin"}}
	tx.PutAccount(acc)

	if !HasRolePermission(tx, acc.ID, model.PermCreateDomain) {
		t.Fatal("root role should imply every permission")
	}
}
