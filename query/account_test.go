package query

import (
	"testing"

	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func setupWSV(t *testing.T) (*wsv.MemWorldState, wsv.Transaction) {
	t.Helper()
	ws := wsv.NewMemWorldState()
	tx, err := ws.Begin()
	if err != nil {
		t.Fatal(err)
	}
	return ws, tx
}

func TestGetAccountPermissionDenied(t *testing.T) {
	ws, tx := setupWSV(t)
	subject := common.NewAccountID("alice", "test")
	tx.PutAccount(model.Account{ID: subject, Domain: "test"})
	stranger := common.NewAccountID("mallory", "test")
	tx.PutAccount(model.Account{ID: stranger, Domain: "test"})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, nil, nil)
	resp := exec.Execute(model.GetAccount{Creator: stranger, AccountID: subject})
	if resp.Err == nil || resp.Err.Code != CodeNoPermission {
		t.Fatalf("expected CodeNoPermission, got %+v", resp)
	}
}

func TestGetAccountSelfAllowedWithMyPermission(t *testing.T) {
	ws, tx := setupWSV(t)
	self := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "self-reader", Permissions: model.NewPermissionSet(model.PermGetMyAccount)})
	tx.PutAccount(model.Account{ID: self, Domain: "test", Roles: []common.RoleID{"self-reader"}})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, nil, nil)
	resp := exec.Execute(model.GetAccount{Creator: self, AccountID: self})
	if resp.Err != nil {
		t.Fatalf("unexpected error: %+v", resp.Err)
	}
	acc, ok := resp.Result.(model.Account)
	if !ok || acc.ID != self {
		t.Fatal("expected the account back in the response")
	}
}

func TestGetAccountSubjectAbsent(t *testing.T) {
	ws, tx := setupWSV(t)
	self := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "all-reader", Permissions: model.NewPermissionSet(model.PermGetAllAccounts)})
	tx.PutAccount(model.Account{ID: self, Domain: "test", Roles: []common.RoleID{"all-reader"}})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, nil, nil)
	resp := exec.Execute(model.GetAccount{Creator: self, AccountID: common.NewAccountID("ghost", "test")})
	if resp.Err == nil || resp.Err.Code != CodeSubjectAbsent {
		t.Fatalf("expected CodeSubjectAbsent, got %+v", resp)
	}
}

func TestGetRolesAndPermissions(t *testing.T) {
	ws, tx := setupWSV(t)
	self := common.NewAccountID("alice", "test")
	tx.PutRole(model.Role{ID: "admin", Permissions: model.NewPermissionSet(model.PermRoot)})
	tx.PutRole(model.Role{ID: "trader", Permissions: model.NewPermissionSet(model.PermTransfer)})
	tx.PutAccount(model.Account{ID: self, Domain: "test", Roles: []common.RoleID{"admin"}})
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	exec := New(ws, nil, nil)
	resp := exec.Execute(model.GetRoles{Creator: self})
	if resp.Err != nil {
		t.Fatalf("unexpected error: %+v", resp.Err)
	}
	page := resp.Result.(model.PageResult)
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 roles, got %d", page.TotalCount)
	}

	permResp := exec.Execute(model.GetRolePermissions{Creator: self, RoleID: "trader"})
	if permResp.Err != nil {
		t.Fatalf("unexpected error: %+v", permResp.Err)
	}
	perms := permResp.Result.([]model.Permission)
	if len(perms) != 1 || perms[0] != model.PermTransfer {
		t.Fatalf("expected exactly PermTransfer, got %+v", perms)
	}
}
