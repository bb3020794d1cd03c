package executor

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func (e *Executor) addAssetQuantity(tx wsv.Transaction, creator common.AccountID, c model.AddAssetQuantity, validate bool) *model.CommandError {
	asset, ok := tx.GetAsset(c.AssetID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AssetID))
	}
	if c.Amount.Precision() != asset.Precision {
		return cmdErr(c, CodeInvariantViolated, "precision mismatch")
	}
	allowed := wsv.CanActGlobalOrDomain(tx, creator, asset.Domain, model.PermAddAssetQty, model.PermAddDomainAssetQty)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AssetID))
	}
	cur, ok := tx.GetBalance(creator, c.AssetID)
	if !ok {
		cur = common.ZeroAmount(asset.Precision)
	}
	sum, err := cur.Add(c.Amount)
	if err != nil {
		return cmdErr(c, CodeInvariantViolated, err.Error())
	}
	tx.SetBalance(creator, c.AssetID, sum)
	return nil
}

func (e *Executor) subtractAssetQuantity(tx wsv.Transaction, creator common.AccountID, c model.SubtractAssetQuantity, validate bool) *model.CommandError {
	asset, ok := tx.GetAsset(c.AssetID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AssetID))
	}
	if c.Amount.Precision() != asset.Precision {
		return cmdErr(c, CodeInvariantViolated, "precision mismatch")
	}
	allowed := wsv.CanActGlobalOrDomain(tx, creator, asset.Domain, model.PermSubtractAssetQty, model.PermSubtractDomainAssetQty)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.AssetID))
	}
	cur, ok := tx.GetBalance(creator, c.AssetID)
	if !ok {
		return cmdErr(c, CodeInvariantViolated, "insufficient quantity")
	}
	diff, err := cur.Sub(c.Amount)
	if err != nil {
		return cmdErr(c, CodeInvariantViolated, err.Error())
	}
	tx.SetBalance(creator, c.AssetID, diff)
	return nil
}

// transferAsset moves an amount between accounts: the creator transfers
// its own assets or someone else's under a transfer-my-assets grant,
// the receiver must hold can_receive, and the description is
// length-limited. An insufficient source balance reports code 6.
func (e *Executor) transferAsset(tx wsv.Transaction, creator common.AccountID, c model.TransferAsset, validate bool) *model.CommandError {
	if len(c.Description) > e.cfg.MaxTransferDescriptionLength {
		return cmdErr(c, CodeDescriptionTooLong, c.Description)
	}
	asset, ok := tx.GetAsset(c.AssetID)
	if !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.AssetID))
	}
	if c.Amount.Precision() != asset.Precision {
		return cmdErr(c, CodeInvariantViolated, "precision mismatch")
	}
	if _, ok := tx.GetAccount(c.DestAccountID); !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.DestAccountID))
	}
	allowed := wsv.CanActOnSelfOrGranted(tx, creator, c.SrcAccountID, model.PermTransfer, model.PermTransferMyAssets)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.SrcAccountID))
	}
	if validate && !wsv.HasRolePermission(tx, c.DestAccountID, model.PermCanReceive) {
		return cmdErr(c, CodeReceiverCannotReceive, string(c.DestAccountID))
	}

	srcBal, ok := tx.GetBalance(c.SrcAccountID, c.AssetID)
	if !ok {
		return cmdErr(c, CodeInsufficientSourceQuantity, string(c.SrcAccountID))
	}
	newSrc, err := srcBal.Sub(c.Amount)
	if err != nil {
		return cmdErr(c, CodeInsufficientSourceQuantity, string(c.SrcAccountID))
	}
	destBal, ok := tx.GetBalance(c.DestAccountID, c.AssetID)
	if !ok {
		destBal = common.ZeroAmount(asset.Precision)
	}
	newDest, err := destBal.Add(c.Amount)
	if err != nil {
		return cmdErr(c, CodeInvariantViolated, err.Error())
	}

	tx.SetBalance(c.SrcAccountID, c.AssetID, newSrc)
	tx.SetBalance(c.DestAccountID, c.AssetID, newDest)
	return nil
}

func (e *Executor) createAsset(tx wsv.Transaction, creator common.AccountID, c model.CreateAsset, validate bool) *model.CommandError {
	allowed := wsv.HasRolePermission(tx, creator, model.PermCreateAsset)
	if !requirePermission(validate, allowed) {
		return cmdErr(c, CodeNoPermission, string(c.Domain))
	}
	if _, ok := tx.GetDomain(c.Domain); !ok {
		return cmdErr(c, CodeSubjectAbsent, string(c.Domain))
	}
	id := common.NewAssetID(c.AssetName, c.Domain)
	if _, exists := tx.GetAsset(id); exists {
		return cmdErr(c, CodeAlreadyExistsOrAbsentRelation, string(id))
	}
	tx.PutAsset(model.Asset{ID: id, Domain: c.Domain, Precision: c.Precision})
	return nil
}
