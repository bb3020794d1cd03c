package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

// createRole requires the creator to hold every permission being
// bundled into the new role, unless the creator holds root.
func (e *Executor) createRole(tx wsv.Transaction, creator common.AccountID, c model.CreateRole, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermCreateRole)) {
		return cmdErr(c, CodeNoPermission, string(c.RoleName))
	}
	if validate && !wsv.HasRolePermission(tx, creator, model.PermRoot) {
		creatorPerms := tx.EffectivePermissions(creator)
		if !creatorPerms.HasAll(c.Permissions.List()...) {
			return cmdErr(c, CodeNoPermission, string(c.RoleName))
		}
	}
	if _, exists := tx.GetRole(c.RoleName); exists {
		return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(c.RoleName))
	}
	tx.PutRole(model.Role{ID: c.RoleName, Permissions: c.Permissions})
	return nil
}

// appendRole requires the creator to hold every permission of the role
// being appended, unless the creator holds root.
func (e *Executor) appendRole(tx wsv.Transaction, creator common.AccountID, c model.AppendRole, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermAppendRole)) {
		return cmdErr(c, CodeNoPermission, string(c.RoleName))
	}
	acc, ok := tx.GetAccount(c.AccountID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	role, ok := tx.GetRole(c.RoleName)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.RoleName))
	}
	if validate && !wsv.HasRolePermission(tx, creator, model.PermRoot) {
		creatorPerms := tx.EffectivePermissions(creator)
		if !creatorPerms.HasAll(role.Permissions.List()...) {
			return cmdErr(c, CodeNoPermission, string(c.RoleName))
		}
	}
	for _, r := range acc.Roles {
		if r == c.RoleName {
			return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(c.RoleName))
		}
	}
	acc.Roles = append(acc.Roles, c.RoleName)
	tx.PutAccount(acc)
	return nil
}

func (e *Executor) detachRole(tx wsv.Transaction, creator common.AccountID, c model.DetachRole, validate bool) *model.CommandError {
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, model.PermDetachRole)) {
		return cmdErr(c, CodeNoPermission, string(c.RoleName))
	}
	acc, ok := tx.GetAccount(c.AccountID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	idx := -1
	for i, r := range acc.Roles {
		if r == c.RoleName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(c.RoleName))
	}
	acc.Roles = append(acc.Roles[:idx], acc.Roles[idx+1:]...)
	tx.PutAccount(acc)
	return nil
}

// grantPermission requires the creator to hold the role permission that
// implies grantability of the granted permission. Granting an
// already-granted permission is a no-op.
func (e *Executor) grantPermission(tx wsv.Transaction, creator common.AccountID, c model.GrantPermission, validate bool) *model.CommandError {
	if !wsv.Grantable(c.Permission) {
		return cmdErr(c, CodeInvariantViolated, c.Permission.String())
	}
	if _, ok := tx.GetAccount(c.AccountID); !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AccountID))
	}
	required := wsv.RequiredGrantPermission(c.Permission)
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, required)) {
		return cmdErr(c, CodeNoPermission, c.Permission.String())
	}
	key := model.GrantKey{Grantor: creator, Grantee: c.AccountID}
	perms, _ := tx.GetGrantedPermissions(key)
	perms.Set(c.Permission)
	tx.SetGrantedPermissions(key, perms)
	return nil
}

// revokePermission is idempotent for an already-absent grant, the same
// way grantPermission is for an existing one.
func (e *Executor) revokePermission(tx wsv.Transaction, creator common.AccountID, c model.RevokePermission, validate bool) *model.CommandError {
	if !wsv.Grantable(c.Permission) {
		return cmdErr(c, CodeInvariantViolated, c.Permission.String())
	}
	required := wsv.RequiredGrantPermission(c.Permission)
	if !requirePermission(validate, wsv.HasRolePermission(tx, creator, required)) {
		return cmdErr(c, CodeNoPermission, c.Permission.String())
	}
	key := model.GrantKey{Grantor: creator, Grantee: c.AccountID}
	perms, ok := tx.GetGrantedPermissions(key)
	if !ok {
		return nil
	}
	perms.Unset(c.Permission)
	tx.SetGrantedPermissions(key, perms)
	return nil
}
