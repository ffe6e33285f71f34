package mock

import (
	tmsync "github.com/tendermint/tendermint/libs/sync"

	"statementnet_demo/chain"
	"statementnet_demo/types"
)

// Querier is a recording implementation of a chain.Querier, useful for
// testing. Err is returned from every validity check.
type Querier struct {
	mtx tmsync.Mutex

	Err   error
	calls []*types.Collation
}

var _ chain.Querier = (*Querier)(nil)

func (q *Querier) ValidateCollation(_ types.BlockID, collation *types.Collation) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	q.calls = append(q.calls, collation)
	return q.Err
}

// Calls returns the collations checked so far.
func (q *Querier) Calls() []*types.Collation {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	out := make([]*types.Collation, len(q.calls))
	copy(out, q.calls)
	return out
}
