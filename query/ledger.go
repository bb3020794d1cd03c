package query

import (
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

func (e *Executor) getAssetInfo(q model.GetAssetInfo) *model.QueryResponse {
	if !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetAssetInfo) {
		return errResponse(CodeNoPermission, string(q.AssetID))
	}
	asset, ok := e.ws.GetAsset(q.AssetID)
	if !ok {
		return errResponse(CodeSubjectAbsent, string(q.AssetID))
	}
	return okResponse(asset)
}

func (e *Executor) getPeers(q model.GetPeers) *model.QueryResponse {
	if !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetPeers) {
		return errResponse(CodeNoPermission, "")
	}
	return okResponse(e.ws.GetPeers())
}

func (e *Executor) getBlock(q model.GetBlock) *model.QueryResponse {
	if !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetBlocks) {
		return errResponse(CodeNoPermission, "")
	}
	if e.store == nil {
		return errResponse(CodeInternal, "no block store configured")
	}
	block, ok, err := e.store.Fetch(q.Height)
	if err != nil {
		logger.Error("query: fetch block failed", "height", q.Height, "err", err)
		return errResponse(CodeInternal, err.Error())
	}
	if !ok {
		return errResponse(CodeSubjectAbsent, "")
	}
	return okResponse(block)
}
