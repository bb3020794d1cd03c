package query

import (
	"github.com/groundx/ledgercore/common"
	"github.com/groundx/ledgercore/model"
)

// txRecord is the common shape paginated transaction/block queries
// sort and slice over, before each query type wraps the matching item
// in the result it actually returns.
type txRecord struct {
	hash   common.Hash
	time   int64
	height uint64
	item   interface{}
}

// paginate slices records already filtered to the query's subject and
// sorted in ascending block position. FirstHash, when given, must name
// an element of records; otherwise the query fails with
// CodeInvalidPagination.
func paginate(records []txRecord, page model.Pagination) (model.PageResult, *model.CommandError) {
	// records may be a cached slice shared across calls (cachedScan);
	// reversing happens on a copy so a descending query never mutates
	// what an ascending query sees next.
	if page.Ordering == model.OrderDescending {
		reversed := make([]txRecord, len(records))
		for i, r := range records {
			reversed[len(records)-1-i] = r
		}
		records = reversed
	}
	start := 0
	if page.FirstHash != nil {
		found := -1
		for i, r := range records {
			if r.hash == *page.FirstHash {
				found = i
				break
			}
		}
		if found == -1 {
			return model.PageResult{}, &model.CommandError{Code: CodeInvalidPagination}
		}
		start = found
	}
	filtered := records[start:]
	if page.FirstTxTime != nil || page.LastTxTime != nil || page.FirstTxHeight != nil || page.LastTxHeight != nil {
		var kept []txRecord
		for _, r := range filtered {
			if page.FirstTxTime != nil && r.time < *page.FirstTxTime {
				continue
			}
			if page.LastTxTime != nil && r.time > *page.LastTxTime {
				continue
			}
			if page.FirstTxHeight != nil && r.height < *page.FirstTxHeight {
				continue
			}
			if page.LastTxHeight != nil && r.height > *page.LastTxHeight {
				continue
			}
			kept = append(kept, r)
		}
		filtered = kept
	}
	total := len(filtered)
	size := page.PageSize
	if size <= 0 || size > len(filtered) {
		size = len(filtered)
	}
	page.PageSize = size
	out := model.PageResult{TotalCount: total}
	for _, r := range filtered[:size] {
		out.Items = append(out.Items, r.item)
	}
	if size < len(filtered) {
		next := filtered[size].hash
		out.NextHash = &next
	}
	return out, nil
}
