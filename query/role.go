package query

import (
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func (e *Executor) getRoles(q model.GetRoles) *model.QueryResponse {
	if !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetRoles) {
		return errResponse(CodeNoPermission, "")
	}
	roles := e.ws.GetRoles()
	items := make([]interface{}, 0, len(roles))
	for _, r := range roles {
		items = append(items, r.ID)
	}
	return okResponse(model.PageResult{Items: items, TotalCount: len(items)})
}

func (e *Executor) getRolePermissions(q model.GetRolePermissions) *model.QueryResponse {
	if !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetRolePermissions) {
		return errResponse(CodeNoPermission, string(q.RoleID))
	}
	role, ok := e.ws.GetRole(q.RoleID)
	if !ok {
		return errResponse(CodeSubjectAbsent, string(q.RoleID))
	}
	return okResponse(role.Permissions.List())
}
