// Package query implements read-only queries against the committed
// WSV, with pagination and per-query permission checks.
package query

import (
	"github.com/groundx/ledgercore/blockstore"
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/log"
	"github.com/groundx/ledgercore/model"
	"github.com/groundx/ledgercore/mst"
	"github.com/groundx/ledgercore/wsv"
)

var logger = log.NewModuleLogger(log.ModuleQuery)

// Query failures reuse the executor package's stable numeric error
// taxonomy rather than inventing a parallel one.
const (
	CodeInternal          = 1
	CodeNoPermission      = 2
	CodeSubjectAbsent     = 3
	CodeInvalidPagination = 4
)

// Executor serves the read-only query set. mst is optional: when nil,
// GetPendingTransactions returns an empty page instead of failing,
// since pending transactions only exist once MST is wired in.
type Executor struct {
	ws    wsv.ReadView
	store blockstore.Storage
	mst   *mst.Aggregator

	// cache fronts cachedScan's block-store scans with a read-through
	// LRU, invalidated whenever the store's height moves.
	cache *common.EntityCache
}

// New builds a query Executor reading from ws (the committed WSV view)
// and store (the block store, for tx/block history). agg may be nil.
func New(ws wsv.ReadView, store blockstore.Storage, agg *mst.Aggregator) *Executor {
	return &Executor{
		ws:    ws,
		store: store,
		mst:   agg,
		cache: common.NewEntityCache(256),
	}
}

func errResponse(code int, args string) *model.QueryResponse {
	return &model.QueryResponse{Err: &model.CommandError{Code: code, QueryArgs: args}}
}

func okResponse(result interface{}) *model.QueryResponse {
	return &model.QueryResponse{Result: result}
}

// Execute dispatches q to its handler. Signature verification of the
// enclosing signed query envelope belongs to the transport layer;
// Execute itself only enforces the read permission and builds the
// response.
func (e *Executor) Execute(q model.Query) *model.QueryResponse {
	switch qq := q.(type) {
	case model.GetAccount:
		return e.getAccount(qq)
	case model.GetAccountAssets:
		return e.getAccountAssets(qq)
	case model.GetAccountDetail:
		return e.getAccountDetail(qq)
	case model.GetSignatories:
		return e.getSignatories(qq)
	case model.GetRoles:
		return e.getRoles(qq)
	case model.GetRolePermissions:
		return e.getRolePermissions(qq)
	case model.GetAssetInfo:
		return e.getAssetInfo(qq)
	case model.GetPeers:
		return e.getPeers(qq)
	case model.GetBlock:
		return e.getBlock(qq)
	case model.GetAccountTransactions:
		return e.getAccountTransactions(qq)
	case model.GetAccountAssetTransactions:
		return e.getAccountAssetTransactions(qq)
	case model.GetTransactions:
		return e.getTransactions(qq)
	case model.GetPendingTransactions:
		return e.getPendingTransactions(qq)
	case model.GetEngineReceipts:
		return e.getEngineReceipts(qq)
	default:
		return errResponse(CodeInternal, "unknown query type")
	}
}
