package query

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/wsv"
)

// commandAssetID returns the asset a command moves or mutates, and
// whether the command names one at all (plain account/role/peer
// commands don't).
func commandAssetID(c model.Command) (common.AssetID, bool) {
	switch cc := c.(type) {
	case model.AddAssetQuantity:
		return cc.AssetID, true
	case model.SubtractAssetQuantity:
		return cc.AssetID, true
	case model.TransferAsset:
		return cc.AssetID, true
	default:
		return "", false
	}
}

func (e *Executor) scanBlocks(keep func(tx *model.Transaction, height uint64) (interface{}, bool)) ([]txRecord, error) {
	var out []txRecord
	if e.store == nil {
		return out, nil
	}
	err := e.store.ForEach(func(b *model.Block) bool {
		for _, tx := range b.Transactions {
			if item, ok := keep(tx, b.Header.Height); ok {
				out = append(out, txRecord{hash: tx.Hash(), time: tx.CreatedTime, height: b.Header.Height, item: item})
			}
		}
		return true
	})
	return out, err
}

// cachedScan is scanBlocks fronted by the entity cache, keyed by a
// caller-chosen cacheKey (typically the subject account or asset id).
// The cached records are reused only while the block store's height
// hasn't moved since they were computed; any new block invalidates the
// entry and forces a rescan, since scanBlocks has no incremental index
// to extend instead.
func (e *Executor) cachedScan(cacheKey string, keep func(tx *model.Transaction, height uint64) (interface{}, bool)) ([]txRecord, error) {
	size, err := e.storeSize()
	if err != nil {
		return nil, err
	}
	if cached, ok := e.cache.Get(cacheKey); ok {
		entry := cached.(scanCacheEntry)
		if entry.size == size {
			return entry.records, nil
		}
	}
	records, err := e.scanBlocks(keep)
	if err != nil {
		return nil, err
	}
	e.cache.Add(cacheKey, scanCacheEntry{size: size, records: records})
	return records, nil
}

type scanCacheEntry struct {
	size    uint64
	records []txRecord
}

func (e *Executor) storeSize() (uint64, error) {
	if e.store == nil {
		return 0, nil
	}
	return e.store.Size()
}

func (e *Executor) getAccountTransactions(q model.GetAccountTransactions) *model.QueryResponse {
	if !canReadAccount(e.ws, q.Creator, q.AccountID, model.PermGetMyAccTxs, model.PermGetDomainAccTxs, model.PermGetAllAccTxs) {
		return errResponse(CodeNoPermission, string(q.AccountID))
	}
	records, err := e.cachedScan("acctxs:"+string(q.AccountID), func(tx *model.Transaction, height uint64) (interface{}, bool) {
		if tx.CreatorAccountID != q.AccountID {
			return nil, false
		}
		return tx, true
	})
	if err != nil {
		return errResponse(CodeInternal, err.Error())
	}
	page, cerr := paginate(records, q.Page)
	if cerr != nil {
		return &model.QueryResponse{Err: cerr}
	}
	return okResponse(page)
}

func (e *Executor) getAccountAssetTransactions(q model.GetAccountAssetTransactions) *model.QueryResponse {
	if !canReadAccount(e.ws, q.Creator, q.AccountID, model.PermGetMyAccAstTxs, model.PermGetDomainAccAstTxs, model.PermGetAllAccAstTxs) {
		return errResponse(CodeNoPermission, string(q.AccountID))
	}
	records, err := e.cachedScan("accasttxs:"+string(q.AccountID)+"|"+string(q.AssetID), func(tx *model.Transaction, height uint64) (interface{}, bool) {
		if tx.CreatorAccountID != q.AccountID {
			return nil, false
		}
		for _, c := range tx.Commands {
			if assetID, ok := commandAssetID(c); ok && assetID == q.AssetID {
				return tx, true
			}
		}
		return nil, false
	})
	if err != nil {
		return errResponse(CodeInternal, err.Error())
	}
	page, cerr := paginate(records, q.Page)
	if cerr != nil {
		return &model.QueryResponse{Err: cerr}
	}
	return okResponse(page)
}

func (e *Executor) getTransactions(q model.GetTransactions) *model.QueryResponse {
	want := make(map[common.Hash]bool, len(q.TxHashes))
	for _, h := range q.TxHashes {
		want[h] = true
	}
	records, err := e.scanBlocks(func(tx *model.Transaction, height uint64) (interface{}, bool) {
		if !want[tx.Hash()] {
			return nil, false
		}
		self := tx.CreatorAccountID == q.Creator
		if !self && !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetAllTxs) {
			return nil, false
		}
		if self && !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetMyTxs) && !wsv.HasRolePermission(e.ws, q.Creator, model.PermGetAllTxs) {
			return nil, false
		}
		return tx, true
	})
	if err != nil {
		return errResponse(CodeInternal, err.Error())
	}
	items := make([]interface{}, 0, len(records))
	for _, r := range records {
		items = append(items, r.item)
	}
	return okResponse(model.PageResult{Items: items, TotalCount: len(items)})
}

func (e *Executor) getPendingTransactions(q model.GetPendingTransactions) *model.QueryResponse {
	if e.mst == nil {
		return okResponse(model.PageResult{})
	}
	txs := e.mst.PendingByCreator(q.Creator)
	records := make([]txRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, txRecord{hash: tx.Hash(), time: tx.CreatedTime, item: tx})
	}
	page, cerr := paginate(records, q.Page)
	if cerr != nil {
		return &model.QueryResponse{Err: cerr}
	}
	return okResponse(page)
}

func (e *Executor) getEngineReceipts(q model.GetEngineReceipts) *model.QueryResponse {
	// Engine execution receipts are not persisted anywhere in this
	// core (CallEngine's effects land directly in the WSV via the VM
	// adapter); there is no receipt store for this query to read from.
	return errResponse(CodeInternal, "engine receipts are not persisted")
}
