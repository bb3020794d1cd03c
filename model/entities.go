package model

import "github.com/groundx/ledgercore/common"

// Domain is a namespace for accounts and assets, with a default role
// newly created accounts receive.
type Domain struct {
	ID          common.DomainID
	DefaultRole common.RoleID
}

// Asset describes a fungible asset definition: its identity and decimal
// precision. Quantities of this asset are only ever stored scaled to
// Precision.
type Asset struct {
	ID        common.AssetID
	Domain    common.DomainID
	Precision uint8
}

// Role is a named bundle of role permissions.
type Role struct {
	ID          common.RoleID
	Permissions PermissionSet
}

// Account is a ledger identity: a signatory set with a quorum, a set of
// attached roles, free-form key/value details, and asset balances
// (balances are not embedded here — the WSV indexes them separately by
// (account, asset) since that is the hot read/write path for transfers).
type Account struct {
	ID          common.AccountID
	Domain      common.DomainID
	Quorum      uint16
	Signatories []common.Hash // signatory public keys, hashed as Hash for storage uniformity
	Roles       []common.RoleID
	Details     map[common.AccountID]map[string]string // writer -> key -> value; details are partitioned by who set them
}

// Peer is a node participating in consensus.
type Peer struct {
	Address   string
	PublicKey []byte
}

// AssetBalance is one (account, asset) balance entry.
type AssetBalance struct {
	AccountID common.AccountID
	AssetID   common.AssetID
	Amount    common.Amount
}
