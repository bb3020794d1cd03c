package query

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

// canReadAccount implements the self/domain/all read decision tree: a
// creator may read its own subject with the self permission, any
// subject in its own domain with the domain permission, or any subject
// at all with the all permission.
func canReadAccount(v wsv.ReadView, creator, subject common.AccountID, myPerm, domainPerm, allPerm model.Permission) bool {
	if creator == subject && wsv.HasRolePermission(v, creator, myPerm) {
		return true
	}
	if wsv.HasRolePermission(v, creator, allPerm) {
		return true
	}
	if creator.Domain() == subject.Domain() && wsv.HasRolePermission(v, creator, domainPerm) {
		return true
	}
	return false
}
