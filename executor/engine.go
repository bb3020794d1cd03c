package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

// callEngine delegates to the Executor's VM collaborator. The command
// carries its own Caller, which need not equal the transaction creator
// when invoked on someone else's behalf via PermCallEngineOnMyBehalf.
func (e *Executor) callEngine(tx wsv.Transaction, creator common.AccountID, c model.CallEngine, validate bool) *model.CommandError {
	allowed := wsv.CanActOnSelfOrGranted(tx, creator, c.Caller, model.PermCallEngine, model.PermCallEngineOnMyBehalf)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.Caller))
	}
	if e.vm == nil {
		return cmdErr(c, CodeInternal, "no VM configured")
	}
	if _, err := e.vm.Call(c.Caller, c.Callee, c.Input); err != nil {
		return cmdErr(c, CodeInvariantViolated, err.Error())
	}
	return nil
}

// setSettingValue is genesis-only: it always fails once validate is
// true, regardless of the creator's permissions.
func (e *Executor) setSettingValue(tx wsv.Transaction, creator common.AccountID, c model.SetSettingValue, validate bool) *model.CommandError {
	if validate {
		return cmdErr(c, CodeNoPermission, c.Key)
	}
	tx.SetSetting(c.Key, c.Value)
	return nil
}
