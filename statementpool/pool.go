package statementpool

import (
	"sync"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/log"

	"statementnet_demo/libs/metric"
	"statementnet_demo/types"
)

// DeferredStatements buffers statements whose candidate is not yet known to
// the consensus table, deduplicated by statement trace. Candidate statements
// are never buffered here; they are what resolves deferral for the others.
//
// Push and Drain are each a short critical section under one mutex and never
// call out to other components while holding it.
type DeferredStatements struct {
	mtx         sync.Mutex
	deferred    map[string][]types.SignedStatement // candidate hash -> arrival order
	knownTraces map[string]struct{}

	metric *poolMetric
	logger log.Logger
}

type PoolOption func(*DeferredStatements)

func NewDeferredStatements(options ...PoolOption) *DeferredStatements {
	pool := &DeferredStatements{
		deferred:    make(map[string][]types.SignedStatement),
		knownTraces: make(map[string]struct{}),
		metric:      newPoolMetric(),
		logger:      log.NewNopLogger(),
	}

	for _, option := range options {
		option(pool)
	}

	return pool
}

func (dp *DeferredStatements) SetLogger(logger log.Logger) {
	dp.logger = logger
}

// Push buffers the statement for its candidate hash. Pushing a Candidate
// statement is a no-op, and a statement whose trace is already buffered is
// absorbed silently.
func (dp *DeferredStatements) Push(statement types.SignedStatement) {
	trace, ok := statement.Trace()
	if !ok {
		return
	}

	hashKey := string(statement.Statement.CandidateHash)
	traceKey := trace.Key()

	dp.mtx.Lock()
	_, duplicate := dp.knownTraces[traceKey]
	if !duplicate {
		dp.knownTraces[traceKey] = struct{}{}
		dp.deferred[hashKey] = append(dp.deferred[hashKey], statement)
	}
	dp.mtx.Unlock()

	if duplicate {
		dp.metric.MarkDuplicate()
		dp.logger.Debug("absorbed duplicate deferred statement", "trace", trace)
		return
	}
	dp.metric.MarkDeferred()
	dp.logger.Debug("deferred statement", "trace", trace)
}

// Drain atomically removes and returns every statement buffered for the
// candidate hash, in arrival order, together with their traces. Nothing
// buffered is a normal case and yields two empty slices.
func (dp *DeferredStatements) Drain(hash tmbytes.HexBytes) ([]types.SignedStatement, []types.StatementTrace) {
	hashKey := string(hash)

	dp.mtx.Lock()
	statements, ok := dp.deferred[hashKey]
	if !ok {
		dp.mtx.Unlock()
		return []types.SignedStatement{}, []types.StatementTrace{}
	}
	delete(dp.deferred, hashKey)

	traces := make([]types.StatementTrace, 0, len(statements))
	for _, statement := range statements {
		trace, ok := statement.Trace()
		if !ok {
			continue
		}
		delete(dp.knownTraces, trace.Key())
		traces = append(traces, trace)
	}
	dp.mtx.Unlock()

	dp.metric.MarkDrained(int64(len(statements)))
	dp.logger.Debug("drained deferred statements", "hash", hash, "count", len(statements))
	return statements, traces
}

// Size returns the number of currently buffered statements.
func (dp *DeferredStatements) Size() int {
	dp.mtx.Lock()
	defer dp.mtx.Unlock()
	return len(dp.knownTraces)
}

// Metric exposes the pool counters for registration in a metric set.
func (dp *DeferredStatements) Metric() metric.MetricItem {
	return dp.metric
}
