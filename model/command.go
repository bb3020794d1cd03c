package model

import "github.com/groundx/ledgercore/common"

// Command is the closed tagged-union over the ledger's command set: an
// interface implemented by one struct per command, dispatched by a
// single type switch in the executor. The unexported marker keeps the
// set closed.
type Command interface {
	// CommandName returns the wire/semantic command name used in
	// CommandError.CommandName and log output.
	CommandName() string
	isCommand()
}

type baseCommand struct{}

func (baseCommand) isCommand() {}

type AddAssetQuantity struct {
	baseCommand
	AssetID common.AssetID
	Amount  common.Amount
}

func (AddAssetQuantity) CommandName() string { return "AddAssetQuantity" }

type SubtractAssetQuantity struct {
	baseCommand
	AssetID common.AssetID
	Amount  common.Amount
}

func (SubtractAssetQuantity) CommandName() string { return "SubtractAssetQuantity" }

type TransferAsset struct {
	baseCommand
	SrcAccountID  common.AccountID
	DestAccountID common.AccountID
	AssetID       common.AssetID
	Description   string
	Amount        common.Amount
}

func (TransferAsset) CommandName() string { return "TransferAsset" }

type AddPeer struct {
	baseCommand
	Peer Peer
}

func (AddPeer) CommandName() string { return "AddPeer" }

type RemovePeer struct {
	baseCommand
	PublicKey []byte
}

func (RemovePeer) CommandName() string { return "RemovePeer" }

type AddSignatory struct {
	baseCommand
	AccountID common.AccountID
	PublicKey common.Hash
}

func (AddSignatory) CommandName() string { return "AddSignatory" }

type RemoveSignatory struct {
	baseCommand
	AccountID common.AccountID
	PublicKey common.Hash
}

func (RemoveSignatory) CommandName() string { return "RemoveSignatory" }

type SetQuorum struct {
	baseCommand
	AccountID common.AccountID
	Quorum    uint16
}

func (SetQuorum) CommandName() string { return "SetQuorum" }

type CreateAccount struct {
	baseCommand
	AccountName string
	Domain      common.DomainID
	PublicKey   common.Hash
}

func (CreateAccount) CommandName() string { return "CreateAccount" }

type CreateAsset struct {
	baseCommand
	AssetName string
	Domain    common.DomainID
	Precision uint8
}

func (CreateAsset) CommandName() string { return "CreateAsset" }

type CreateDomain struct {
	baseCommand
	Domain      common.DomainID
	DefaultRole common.RoleID
}

func (CreateDomain) CommandName() string { return "CreateDomain" }

type CreateRole struct {
	baseCommand
	RoleName    common.RoleID
	Permissions PermissionSet
}

func (CreateRole) CommandName() string { return "CreateRole" }

type AppendRole struct {
	baseCommand
	AccountID common.AccountID
	RoleName  common.RoleID
}

func (AppendRole) CommandName() string { return "AppendRole" }

type DetachRole struct {
	baseCommand
	AccountID common.AccountID
	RoleName  common.RoleID
}

func (DetachRole) CommandName() string { return "DetachRole" }

type GrantPermission struct {
	baseCommand
	AccountID  common.AccountID // grantee
	Permission Permission
}

func (GrantPermission) CommandName() string { return "GrantPermission" }

type RevokePermission struct {
	baseCommand
	AccountID  common.AccountID // grantee
	Permission Permission
}

func (RevokePermission) CommandName() string { return "RevokePermission" }

type SetAccountDetail struct {
	baseCommand
	AccountID common.AccountID
	Key       string
	Value     string
}

func (SetAccountDetail) CommandName() string { return "SetAccountDetail" }

type CompareAndSetAccountDetail struct {
	baseCommand
	AccountID  common.AccountID
	Key        string
	Value      string
	Expected   *string // nil means "expect absent"
	CheckEmpty bool    // if true, an absent detail also matches ""
}

func (CompareAndSetAccountDetail) CommandName() string { return "CompareAndSetAccountDetail" }

type CallEngine struct {
	baseCommand
	Caller common.AccountID
	Callee *common.AccountID // nil for contract creation
	Input  []byte
}

func (CallEngine) CommandName() string { return "CallEngine" }

type SetSettingValue struct {
	baseCommand
	Key   string
	Value string
}

func (SetSettingValue) CommandName() string { return "SetSettingValue" }
