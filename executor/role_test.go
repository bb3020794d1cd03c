package executor

import (
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func newTestTx(t *testing.T) (wsv.Transaction, *Executor) {
	t.Helper()
	ws := wsv.NewMemWorldState()
	tx, err := ws.Begin()
	if err != nil {
		t.Fatal(err)
	}
	return tx, New(DefaultConfig(), nil)
}

func withRootAccount(t *testing.T, tx wsv.Transaction, id common.AccountID) {
	t.Helper()
	tx.PutRole(model.Role{ID: "admin", Permissions: model.NewPermissionSet(model.PermRoot)})
	tx.PutAccount(model.Account{ID: id, Domain: id.Domain(), Roles: []common.RoleID{"admin"}})
}

func TestCreateRoleSucceedsForRootCreator(t *testing.T) {
	tx, exec := newTestTx(t)
	creator := common.NewAccountID("admin", "test")
	withRootAccount(t, tx, creator)

	cmd := model.CreateRole{RoleName: "trader", Permissions: model.NewPermissionSet(model.PermTransfer)}
	if cerr := exec.Execute(tx, creator, common.Hash{}, 0, cmd, true); cerr != nil {
		t.Fatalf("unexpected error: %+v", cerr)
	}
	role, ok := tx.GetRole("trader")
	if !ok || !role.Permissions.Has(model.PermTransfer) {
		t.Fatal("expected the role to be created with the requested permission")
	}
}

func TestCreateRoleFailsWithoutPermission(t *testing.T) {
	tx, exec := newTestTx(t)
	creator := common.NewAccountID("nobody", "test")
	tx.PutAccount(model.Account{ID: creator, Domain: "test"})

	cmd := model.CreateRole{RoleName: "trader", Permissions: model.NewPermissionSet(model.PermTransfer)}
	cerr := exec.Execute(tx, creator, common.Hash{}, 0, cmd, true)
	if cerr == nil || cerr.Code != CodeNoPermission {
		t.Fatalf("expected CodeNoPermission, got %+v", cerr)
	}
}

func TestCreateRoleRejectsDuplicate(t *testing.T) {
	tx, exec := newTestTx(t)
	creator := common.NewAccountID("admin", "test")
	withRootAccount(t, tx, creator)
	tx.PutRole(model.Role{ID: "trader", Permissions: model.PermissionSet{}})

	cmd := model.CreateRole{RoleName: "trader", Permissions: model.PermissionSet{}}
	cerr := exec.Execute(tx, creator, common.Hash{}, 0, cmd, true)
	if cerr == nil || cerr.Code != CodeAlreadyExistsOrAbsentRelation {
		t.Fatalf("expected CodeAlreadyExistsOrAbsentRelation, got %+v", cerr)
	}
}

func TestGrantAndRevokePermission(t *testing.T) {
	tx, exec := newTestTx(t)
	grantor := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "transferer", Permissions: model.NewPermissionSet(model.PermTransfer)})
	tx.PutAccount(model.Account{ID: grantor, Domain: "test", Roles: []common.RoleID{"transferer"}})
	grantee := common.NewAccountID("bob", "test")
	tx.PutAccount(model.Account{ID: grantee, Domain: "test"})

	grant := model.GrantPermission{AccountID: grantee, Permission: model.PermTransferMyAssets}
	if cerr := exec.Execute(tx, grantor, common.Hash{}, 0, grant, true); cerr != nil {
		t.Fatalf("unexpected grant error: %+v", cerr)
	}
	if !wsv.HasGrantedPermission(tx, grantor, grantee, model.PermTransferMyAssets) {
		t.Fatal("expected the grant to take effect")
	}

	revoke := model.RevokePermission{AccountID: grantee, Permission: model.PermTransferMyAssets}
	if cerr := exec.Execute(tx, grantor, common.Hash{}, 0, revoke, true); cerr != nil {
		t.Fatalf("unexpected revoke error: %+v", cerr)
	}
	if wsv.HasGrantedPermission(tx, grantor, grantee, model.PermTransferMyAssets) {
		t.Fatal("expected the grant to be revoked")
	}
}
