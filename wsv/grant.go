package wsv

import "github.com/groundx/ledgercore/model"

// grantRequirement maps a grantable ("my"-scoped) permission to the
// role permission its grantor must hold. Every grantable permission
// except get-my-account-detail requires its non-"my" counterpart
// (add-signatory/add-my-signatory, set-quorum/set-my-quorum, ...);
// get-my-account-detail requires set-detail.
var grantRequirement = map[model.Permission]model.Permission{
	model.PermTransferMyAssets:     model.PermTransfer,
	model.PermAddMySignatory:       model.PermAddSignatory,
	model.PermRemoveMySignatory:    model.PermRemoveSignatory,
	model.PermSetMyQuorum:          model.PermSetQuorum,
	model.PermSetMyAccountDetail:   model.PermSetDetail,
	model.PermCallEngineOnMyBehalf: model.PermCallEngine,
	model.PermGetMyAccountDetail:   model.PermSetDetail,
}

// RequiredGrantPermission returns the role permission a grantor must
// hold to grant perm to someone else.
func RequiredGrantPermission(perm model.Permission) model.Permission {
	if req, ok := grantRequirement[perm]; ok {
		return req
	}
	return perm
}

// Grantable reports whether perm is one of the "my"-scoped permissions
// that can be granted via GrantPermission/RevokePermission.
func Grantable(perm model.Permission) bool {
	_, ok := grantRequirement[perm]
	return ok
}
