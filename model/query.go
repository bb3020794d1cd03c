package model

import "github.com/groundx/ledgercore/common"

// Query is the closed tagged union over the read-only query set, the
// query-side mirror of Command.
type Query interface {
	QueryName() string
	isQuery()
}

type baseQuery struct{}

func (baseQuery) isQuery() {}

// Ordering selects ascending or descending block position for a paged
// query. Ascending is the default.
type Ordering int

const (
	OrderAscending Ordering = iota
	OrderDescending
)

// Pagination is the paging metadata shared by every paged query.
type Pagination struct {
	PageSize      int
	FirstHash     *common.Hash
	Ordering      Ordering
	FirstTxTime   *int64
	LastTxTime    *int64
	FirstTxHeight *uint64
	LastTxHeight  *uint64
}

// PageResult is the paginated response shape. Items holds whatever
// element type the query returns; NextHash is set iff more items follow.
type PageResult struct {
	Items      []interface{}
	TotalCount int
	NextHash   *common.Hash
}

type GetAccount struct {
	baseQuery
	Creator   common.AccountID
	AccountID common.AccountID
}

func (GetAccount) QueryName() string { return "GetAccount" }

type GetAccountAssets struct {
	baseQuery
	Creator   common.AccountID
	AccountID common.AccountID
	AssetID   *common.AssetID // required: a nil AssetID fails with CodeInternal; listing every held asset is not supported
	Page      Pagination
}

func (GetAccountAssets) QueryName() string { return "GetAccountAssets" }

type GetAccountDetail struct {
	baseQuery
	Creator   common.AccountID
	AccountID common.AccountID
	Key       *string
	Writer    *common.AccountID
	Page      Pagination
}

func (GetAccountDetail) QueryName() string { return "GetAccountDetail" }

type GetAccountTransactions struct {
	baseQuery
	Creator   common.AccountID
	AccountID common.AccountID
	Page      Pagination
}

func (GetAccountTransactions) QueryName() string { return "GetAccountTransactions" }

type GetAccountAssetTransactions struct {
	baseQuery
	Creator   common.AccountID
	AccountID common.AccountID
	AssetID   common.AssetID
	Page      Pagination
}

func (GetAccountAssetTransactions) QueryName() string { return "GetAccountAssetTransactions" }

type GetTransactions struct {
	baseQuery
	Creator  common.AccountID
	TxHashes []common.Hash
}

func (GetTransactions) QueryName() string { return "GetTransactions" }

type GetSignatories struct {
	baseQuery
	Creator   common.AccountID
	AccountID common.AccountID
}

func (GetSignatories) QueryName() string { return "GetSignatories" }

type GetRoles struct {
	baseQuery
	Creator common.AccountID
}

func (GetRoles) QueryName() string { return "GetRoles" }

type GetRolePermissions struct {
	baseQuery
	Creator common.AccountID
	RoleID  common.RoleID
}

func (GetRolePermissions) QueryName() string { return "GetRolePermissions" }

type GetAssetInfo struct {
	baseQuery
	Creator common.AccountID
	AssetID common.AssetID
}

func (GetAssetInfo) QueryName() string { return "GetAssetInfo" }

type GetPendingTransactions struct {
	baseQuery
	Creator common.AccountID
	Page    Pagination
}

func (GetPendingTransactions) QueryName() string { return "GetPendingTransactions" }

type GetBlock struct {
	baseQuery
	Creator common.AccountID
	Height  uint64
}

func (GetBlock) QueryName() string { return "GetBlock" }

type GetPeers struct {
	baseQuery
	Creator common.AccountID
}

func (GetPeers) QueryName() string { return "GetPeers" }

type GetEngineReceipts struct {
	baseQuery
	Creator common.AccountID
	TxHash  common.Hash
}

func (GetEngineReceipts) QueryName() string { return "GetEngineReceipts" }

// QueryResponse is the executor's uniform result envelope: exactly one
// of Result or Err is set.
type QueryResponse struct {
	Result interface{}
	Err    *CommandError
}
