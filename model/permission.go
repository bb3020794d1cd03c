package model

import "github.com/groundx/ledgercore/common"

// Permission identifies a single role permission or grantable permission.
// The full set is closed, so permissions are declared as an enumerated
// index rather than an open string set, letting PermissionSet store them
// as a fixed-width bit string.
type Permission int

const (
	PermAddAssetQty Permission = iota
	PermAddDomainAssetQty
	PermSubtractAssetQty
	PermSubtractDomainAssetQty
	PermTransfer
	PermTransferMyAssets
	PermCanReceive
	PermAddPeer
	PermRemovePeer
	PermAddSignatory
	PermAddMySignatory
	PermRemoveSignatory
	PermRemoveMySignatory
	PermSetQuorum
	PermSetMyQuorum
	PermCreateAccount
	PermCreateAsset
	PermCreateDomain
	PermCreateRole
	PermAppendRole
	PermDetachRole
	PermSetDetail
	PermSetMyAccountDetail
	PermCallEngine
	PermCallEngineOnMyBehalf
	PermGetMyAccountDetail

	// Query permissions: each paged/read query has a self/domain/all
	// variant, the same decision-tree shape as the command permissions
	// above.
	PermGetMyAccount
	PermGetDomainAccounts
	PermGetAllAccounts
	PermGetMyAccAst
	PermGetDomainAccAst
	PermGetAllAccAst
	PermGetDomainAccountDetail
	PermGetAllAccountDetail
	PermGetMySignatories
	PermGetDomainSignatories
	PermGetAllSignatories
	PermGetMyAccTxs
	PermGetDomainAccTxs
	PermGetAllAccTxs
	PermGetMyAccAstTxs
	PermGetDomainAccAstTxs
	PermGetAllAccAstTxs
	PermGetMyTxs
	PermGetAllTxs
	PermGetRoles
	PermGetRolePermissions
	PermGetAssetInfo
	PermGetBlocks
	PermGetPeers
	PermGetPendingTxs
	PermGetEngineReceipts

	PermRoot

	numPermissions
)

var permissionNames = map[Permission]string{
	PermAddAssetQty:            "can_add_asset_qty",
	PermAddDomainAssetQty:      "can_add_domain_asset_qty",
	PermSubtractAssetQty:       "can_subtract_asset_qty",
	PermSubtractDomainAssetQty: "can_subtract_domain_asset_qty",
	PermTransfer:               "can_transfer",
	PermTransferMyAssets:       "can_transfer_my_assets",
	PermCanReceive:             "can_receive",
	PermAddPeer:                "can_add_peer",
	PermRemovePeer:             "can_remove_peer",
	PermAddSignatory:           "can_add_signatory",
	PermAddMySignatory:         "can_add_my_signatory",
	PermRemoveSignatory:        "can_remove_signatory",
	PermRemoveMySignatory:      "can_remove_my_signatory",
	PermSetQuorum:              "can_set_quorum",
	PermSetMyQuorum:            "can_set_my_quorum",
	PermCreateAccount:          "can_create_account",
	PermCreateAsset:            "can_create_asset",
	PermCreateDomain:           "can_create_domain",
	PermCreateRole:             "can_create_role",
	PermAppendRole:             "can_append_role",
	PermDetachRole:             "can_detach_role",
	PermSetDetail:              "can_set_detail",
	PermSetMyAccountDetail:     "can_set_my_account_detail",
	PermCallEngine:             "can_call_engine",
	PermCallEngineOnMyBehalf:   "can_call_engine_on_my_behalf",
	PermGetMyAccountDetail:     "can_get_my_account_detail",

	PermGetMyAccount:           "can_get_my_account",
	PermGetDomainAccounts:      "can_get_domain_accounts",
	PermGetAllAccounts:         "can_get_all_accounts",
	PermGetMyAccAst:            "can_get_my_acc_ast",
	PermGetDomainAccAst:        "can_get_domain_acc_ast",
	PermGetAllAccAst:           "can_get_all_acc_ast",
	PermGetDomainAccountDetail: "can_get_domain_acc_detail",
	PermGetAllAccountDetail:    "can_get_all_acc_detail",
	PermGetMySignatories:       "can_get_my_signatories",
	PermGetDomainSignatories:   "can_get_domain_signatories",
	PermGetAllSignatories:      "can_get_all_signatories",
	PermGetMyAccTxs:            "can_get_my_acc_txs",
	PermGetDomainAccTxs:        "can_get_domain_acc_txs",
	PermGetAllAccTxs:           "can_get_all_acc_txs",
	PermGetMyAccAstTxs:         "can_get_my_acc_ast_txs",
	PermGetDomainAccAstTxs:     "can_get_domain_acc_ast_txs",
	PermGetAllAccAstTxs:        "can_get_all_acc_ast_txs",
	PermGetMyTxs:               "can_get_my_txs",
	PermGetAllTxs:              "can_get_all_txs",
	PermGetRoles:               "can_get_roles",
	PermGetRolePermissions:     "can_get_role_permissions",
	PermGetAssetInfo:           "can_get_asset_info",
	PermGetBlocks:              "can_get_blocks",
	PermGetPeers:               "can_get_peers",
	PermGetPendingTxs:          "can_get_pending_txs",
	PermGetEngineReceipts:      "can_get_engine_receipts",

	PermRoot: "root",
}

func (p Permission) String() string {
	if n, ok := permissionNames[p]; ok {
		return n
	}
	return "unknown"
}

// PermissionSet is a fixed-width bit string over the closed permission
// enumeration. It backs both role permission sets and (grantor, grantee)
// grantable permission sets.
type PermissionSet struct {
	bits [numPermissions]bool
}

// NewPermissionSet builds a set containing exactly the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s.Set(p)
	}
	return s
}

func (s *PermissionSet) Set(p Permission) {
	if p >= 0 && p < numPermissions {
		s.bits[p] = true
	}
}

func (s *PermissionSet) Unset(p Permission) {
	if p >= 0 && p < numPermissions {
		s.bits[p] = false
	}
}

// Has reports whether p is set. The root permission implies every
// other permission.
func (s PermissionSet) Has(p Permission) bool {
	if s.bits[PermRoot] {
		return true
	}
	return s.bits[p]
}

// HasAll reports whether every permission in perms is set (used by
// CreateRole/AppendRole: "creator holds every permission being granted").
func (s PermissionSet) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Union returns the bitwise OR of s and other.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	var out PermissionSet
	for i := 0; i < int(numPermissions); i++ {
		out.bits[i] = s.bits[i] || other.bits[i]
	}
	return out
}

// GobEncode packs the bit string into bytes; without it gob would
// reject the struct's unexported array.
func (s PermissionSet) GobEncode() ([]byte, error) {
	out := make([]byte, (int(numPermissions)+7)/8)
	for i := 0; i < int(numPermissions); i++ {
		if s.bits[i] {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out, nil
}

// GobDecode is the inverse of GobEncode. Bits beyond the encoded length
// are left unset, so older encodings stay readable as the enum grows.
func (s *PermissionSet) GobDecode(data []byte) error {
	*s = PermissionSet{}
	for i := 0; i < int(numPermissions) && i/8 < len(data); i++ {
		if data[i/8]&(1<<(i%8)) != 0 {
			s.bits[i] = true
		}
	}
	return nil
}

// List returns the permissions currently set, in enum order.
func (s PermissionSet) List() []Permission {
	var out []Permission
	for i := 0; i < int(numPermissions); i++ {
		if s.bits[i] {
			out = append(out, Permission(i))
		}
	}
	return out
}

// GrantKey identifies a (grantor, grantee) grantable-permission pair.
type GrantKey struct {
	Grantor common.AccountID
	Grantee common.AccountID
}
