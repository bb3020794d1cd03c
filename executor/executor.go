// Package executor applies one command against a WSV write transaction,
// enforcing permissions, and reports a typed CommandError on failure.
package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

var logger = log.NewModuleLogger(log.ModuleExecutor)

// VM is the narrow interface the command executor calls into the
// smart-contract VM through. The VM itself is an external collaborator
// wired in by the node.
type VM interface {
	Call(caller common.AccountID, callee *common.AccountID, input []byte) (output []byte, err error)
}

// Config holds the deployment-tunable limits the executor enforces.
type Config struct {
	MaxTransferDescriptionLength int
}

// DefaultConfig returns the stock limits.
func DefaultConfig() Config {
	return Config{MaxTransferDescriptionLength: 64}
}

// Executor applies commands to the world state on behalf of a creator
// account.
type Executor struct {
	cfg Config
	vm  VM
}

// New builds an Executor. vm may be nil; CallEngine then fails with
// CodeInternal, since no VM collaborator is wired.
func New(cfg Config, vm VM) *Executor {
	return &Executor{cfg: cfg, vm: vm}
}

// Execute applies cmd against tx on behalf of creator. When validate is
// false (genesis), permission checks are skipped. txHash and cmdIndex
// are carried through only for logging/error context.
func (e *Executor) Execute(tx wsv.Transaction, creator common.AccountID, txHash common.Hash, cmdIndex int, cmd model.Command, validate bool) *model.CommandError {
	var cerr *model.CommandError
	switch c := cmd.(type) {
	case model.AddAssetQuantity:
		cerr = e.addAssetQuantity(tx, creator, c, validate)
	case model.SubtractAssetQuantity:
		cerr = e.subtractAssetQuantity(tx, creator, c, validate)
	case model.TransferAsset:
		cerr = e.transferAsset(tx, creator, c, validate)
	case model.AddPeer:
		cerr = e.addPeer(tx, creator, c, validate)
	case model.RemovePeer:
		cerr = e.removePeer(tx, creator, c, validate)
	case model.AddSignatory:
		cerr = e.addSignatory(tx, creator, c, validate)
	case model.RemoveSignatory:
		cerr = e.removeSignatory(tx, creator, c, validate)
	case model.SetQuorum:
		cerr = e.setQuorum(tx, creator, c, validate)
	case model.CreateAccount:
		cerr = e.createAccount(tx, creator, c, validate)
	case model.CreateAsset:
		cerr = e.createAsset(tx, creator, c, validate)
	case model.CreateDomain:
		cerr = e.createDomain(tx, creator, c, validate)
	case model.CreateRole:
		cerr = e.createRole(tx, creator, c, validate)
	case model.AppendRole:
		cerr = e.appendRole(tx, creator, c, validate)
	case model.DetachRole:
		cerr = e.detachRole(tx, creator, c, validate)
	case model.GrantPermission:
		cerr = e.grantPermission(tx, creator, c, validate)
	case model.RevokePermission:
		cerr = e.revokePermission(tx, creator, c, validate)
	case model.SetAccountDetail:
		cerr = e.setAccountDetail(tx, creator, c, validate)
	case model.CompareAndSetAccountDetail:
		cerr = e.compareAndSetAccountDetail(tx, creator, c, validate)
	case model.CallEngine:
		cerr = e.callEngine(tx, creator, c, validate)
	case model.SetSettingValue:
		cerr = e.setSettingValue(tx, creator, c, validate)
	default:
		cerr = cmdErr(cmd, CodeInternal, "unknown command type")
	}
	if cerr != nil {
		logger.Debug("command failed", "tx", txHash.Hex(), "index", cmdIndex, "command", cmd.CommandName(), "code", cerr.Code)
	}
	return cerr
}

func requirePermission(validate bool, ok bool) bool {
	if !validate {
		return true
	}
	return ok
}
