package query

import (
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func (e *Executor) getAccount(q model.GetAccount) *model.QueryResponse {
	if !canReadAccount(e.ws, q.Creator, q.AccountID, model.PermGetMyAccount, model.PermGetDomainAccounts, model.PermGetAllAccounts) {
		return errResponse(CodeNoPermission, string(q.AccountID))
	}
	acc, ok := e.ws.GetAccount(q.AccountID)
	if !ok {
		return errResponse(CodeSubjectAbsent, string(q.AccountID))
	}
	return okResponse(acc)
}

func (e *Executor) getAccountAssets(q model.GetAccountAssets) *model.QueryResponse {
	if !canReadAccount(e.ws, q.Creator, q.AccountID, model.PermGetMyAccAst, model.PermGetDomainAccAst, model.PermGetAllAccAst) {
		return errResponse(CodeNoPermission, string(q.AccountID))
	}
	if _, ok := e.ws.GetAccount(q.AccountID); !ok {
		return errResponse(CodeSubjectAbsent, string(q.AccountID))
	}
	type balanceEntry struct {
		AssetID string
		Amount  string
	}
	var items []interface{}
	if q.AssetID != nil {
		bal, ok := e.ws.GetBalance(q.AccountID, *q.AssetID)
		if ok {
			items = append(items, balanceEntry{AssetID: string(*q.AssetID), Amount: bal.String()})
		}
	} else {
		// The WSV doesn't index balances by account, so a full-asset
		// scan isn't available through ReadView; callers wanting every
		// asset balance must know the asset ids up front. Reported as
		// a capability limit rather than papered over.
		return errResponse(CodeInternal, "enumerating all held assets requires AssetID")
	}
	page := model.PageResult{Items: items, TotalCount: len(items)}
	return okResponse(page)
}

func (e *Executor) getAccountDetail(q model.GetAccountDetail) *model.QueryResponse {
	if !canReadAccount(e.ws, q.Creator, q.AccountID, model.PermGetMyAccountDetail, model.PermGetDomainAccountDetail, model.PermGetAllAccountDetail) {
		if !wsv.HasGrantedPermission(e.ws, q.AccountID, q.Creator, model.PermGetMyAccountDetail) {
			return errResponse(CodeNoPermission, string(q.AccountID))
		}
	}
	all := e.ws.AllAccountDetails(q.AccountID)
	var items []interface{}
	type detailEntry struct {
		Writer string
		Key    string
		Value  string
	}
	for writer, kv := range all {
		if q.Writer != nil && writer != *q.Writer {
			continue
		}
		for k, v := range kv {
			if q.Key != nil && k != *q.Key {
				continue
			}
			items = append(items, detailEntry{Writer: string(writer), Key: k, Value: v})
		}
	}
	return okResponse(model.PageResult{Items: items, TotalCount: len(items)})
}

func (e *Executor) getSignatories(q model.GetSignatories) *model.QueryResponse {
	if !canReadAccount(e.ws, q.Creator, q.AccountID, model.PermGetMySignatories, model.PermGetDomainSignatories, model.PermGetAllSignatories) {
		return errResponse(CodeNoPermission, string(q.AccountID))
	}
	acc, ok := e.ws.GetAccount(q.AccountID)
	if !ok {
		return errResponse(CodeSubjectAbsent, string(q.AccountID))
	}
	return okResponse(acc.Signatories)
}
