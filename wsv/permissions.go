package wsv

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
)

// HasRolePermission reports whether account holds perm through one of
// its attached roles (or root). Evaluated against the transaction's
// staged view so it stays consistent with writes already buffered
// earlier in the same batch.
func HasRolePermission(v ReadView, account common.AccountID, perm model.Permission) bool {
	return v.EffectivePermissions(account).Has(perm)
}

// HasGrantedPermission reports whether grantee was granted perm by
// grantor specifically.
func HasGrantedPermission(v ReadView, grantor, grantee common.AccountID, perm model.Permission) bool {
	perms, ok := v.GetGrantedPermissions(model.GrantKey{Grantor: grantor, Grantee: grantee})
	if !ok {
		return false
	}
	return perms.Has(perm)
}

// CanActOnSelfOrGranted implements the recurring permission decision
// tree, specialized to the common case of a self/granted pair of
// permissions over a subject account: acting on yourself needs the self
// permission, acting on someone else needs their grant.
func CanActOnSelfOrGranted(v ReadView, creator, subject common.AccountID, selfPerm, grantedPerm model.Permission) bool {
	if creator == subject && HasRolePermission(v, creator, selfPerm) {
		return true
	}
	if HasGrantedPermission(v, subject, creator, grantedPerm) {
		return true
	}
	return false
}

// CanActGlobalOrDomain implements the global-vs-same-domain half of the
// decision tree: a creator with the global permission may act on any
// subject; a creator with the domain-scoped permission may only act
// within its own domain.
func CanActGlobalOrDomain(v ReadView, creator common.AccountID, subjectDomain common.DomainID, globalPerm, domainPerm model.Permission) bool {
	if HasRolePermission(v, creator, globalPerm) {
		return true
	}
	if creator.Domain() == subjectDomain && HasRolePermission(v, creator, domainPerm) {
		return true
	}
	return false
}
