package router

import (
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/log"

	"statementnet_demo/chain"
	"statementnet_demo/libs/metric"
	"statementnet_demo/network"
	"statementnet_demo/scheduler"
	"statementnet_demo/statementpool"
	"statementnet_demo/table"
	"statementnet_demo/types"
)

// Router routes signed statements into the consensus table for one round.
// It holds its collaborators by reference; copies of a Router share the
// deferred pool and may be handed to any number of peer contexts.
//
// ImportStatement never blocks on I/O: it returns once the batch is handed
// to the table and any producers are handed to the scheduler.
type Router struct {
	table    table.Table
	network  network.Service
	chain    chain.Querier
	executor scheduler.TaskExecutor

	// checkedParent is the context the validity check runs against. Absent
	// means follow-up validation cannot run and producers yield nothing.
	checkedParent *types.BlockID

	deferred *statementpool.DeferredStatements

	metric *routerMetric
	logger log.Logger
}

type RouterOption func(*Router)

func NewRouter(
	tbl table.Table,
	net network.Service,
	querier chain.Querier,
	executor scheduler.TaskExecutor,
	checkedParent *types.BlockID,
	options ...RouterOption,
) *Router {
	r := &Router{
		table:         tbl,
		network:       net,
		chain:         querier,
		executor:      executor,
		checkedParent: checkedParent,
		deferred:      statementpool.NewDeferredStatements(),
		metric:        newRouterMetric(),
		logger:        log.NewNopLogger(),
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// SetCheckedParent replaces the parent context producers validate against.
// Must be called before statements start flowing.
func (r *Router) SetCheckedParent(parent *types.BlockID) {
	r.checkedParent = parent
}

func (r *Router) SetLogger(logger log.Logger) {
	r.logger = logger
	r.deferred.SetLogger(logger.With("module", "statementpool"))
}

// SessionKey returns the validator identity this router signs under.
func (r *Router) SessionKey() types.SessionKey {
	return r.table.SessionKey()
}

// Deferred exposes the shared deferred-statement pool.
func (r *Router) Deferred() *statementpool.DeferredStatements {
	return r.deferred
}

// ImportStatement routes a statement whose signature has been checked
// already. It has no failure return: anomalies are absorbed, logged, or
// converted into consensus statements, never surfaced to the caller.
func (r *Router) ImportStatement(statement types.SignedStatement) {
	// defer any statement for a candidate we have not imported yet; the
	// Candidate statement itself is what resolves deferral for the others
	shouldDefer := statement.Statement.Type != types.CandidateStatement &&
		!r.table.HasCandidate(statement.Statement.ReferencedHash())

	if shouldDefer {
		r.deferred.Push(statement)
		r.metric.MarkDeferred()
		return
	}

	// import all statements pending on this candidate in one batch
	var pending []types.SignedStatement
	if statement.Statement.Type == types.CandidateStatement {
		pending, _ = r.deferred.Drain(statement.Statement.ReferencedHash())
	}

	batch := make([]types.SignedStatement, 0, 1+len(pending))
	batch = append(batch, statement)
	batch = append(batch, pending...)

	producers := r.table.ImportStatements(batch)
	r.metric.MarkImported(int64(len(batch)))

	// dispatch follow-up work; fire-and-forget
	for _, producer := range producers {
		if producer.Blank() {
			continue
		}
		p := producer
		r.metric.MarkProducer()
		r.executor.Spawn(func() { r.runProducer(p) })
	}
}

// runProducer fetches the candidate's content, validates it against the
// checked parent and feeds the outcome back through the table's signing
// import. Every failure here degrades to "nothing produced" for this one
// producer; nothing is escalated.
func (r *Router) runProducer(p *table.Producer) {
	receipt := p.Receipt
	hash := receipt.Hash()

	collation, err := r.fetchCollation(receipt)
	if err != nil {
		r.logger.Debug("candidate content unavailable", "hash", hash, "err", err)
		return
	}

	valid, ok := r.validateCollation(collation)
	if !ok {
		// no checked parent context; expected, not a failure
		r.logger.Debug("validation skipped without parent context", "hash", hash)
		return
	}

	if p.WantValidity {
		statement := types.NewValidStatement(hash)
		if !valid {
			statement = types.NewInvalidStatement(hash)
		}
		r.signAndPropagate(statement)
	}

	if p.WantAvailability && valid {
		// content is on hand; make it fetchable before vouching for it
		if _, err := r.network.MakeAvailable(hash, collation.BlockData, collation.Extrinsic); err != nil {
			r.logger.Error("make candidate content available failed", "hash", hash, "err", err)
			return
		}
		r.signAndPropagate(types.NewAvailableStatement(hash))
	}
}

func (r *Router) fetchCollation(receipt *types.CandidateReceipt) (*types.Collation, error) {
	blockData, err := r.network.FetchBlockData(receipt)
	if err != nil {
		return nil, err
	}
	extrinsic, err := r.network.FetchExtrinsicData(receipt)
	if err != nil {
		return nil, err
	}
	return &types.Collation{
		Receipt:   *receipt,
		BlockData: blockData,
		Extrinsic: extrinsic,
	}, nil
}

// validateCollation runs the validity predicate. ok is false when the
// checked parent context is absent and no result can be produced at all.
func (r *Router) validateCollation(collation *types.Collation) (valid bool, ok bool) {
	if r.checkedParent == nil {
		return false, false
	}

	if err := r.chain.ValidateCollation(*r.checkedParent, collation); err != nil {
		r.logger.Info("encountered bad collation", "hash", collation.Receipt.Hash(), "err", err)
		return false, true
	}
	return true, true
}

// signAndPropagate signs the derived statement, re-imports it directly (the
// candidate is known by construction, so this never defers) and gossips it.
func (r *Router) signAndPropagate(statement types.Statement) {
	signed, err := r.table.SignAndImport(statement)
	if err != nil {
		r.logger.Error("sign and import failed", "statement", statement, "err", err)
		return
	}
	r.metric.MarkProduced()
	r.network.BroadcastStatement(*signed)
}

// ----- boundary surface -----

// SubmitLocalCandidate makes locally authored candidate content available
// for network fetch and announces its existence to peers.
func (r *Router) SubmitLocalCandidate(hash tmbytes.HexBytes, blockData types.BlockData, extrinsic types.Extrinsic) {
	if _, err := r.network.MakeAvailable(hash, blockData, extrinsic); err != nil {
		r.logger.Error("submit local candidate failed", "hash", hash, "err", err)
	}
}

// FetchBlockData resolves full block data for a receipt via the network
// collaborator.
func (r *Router) FetchBlockData(receipt *types.CandidateReceipt) (types.BlockData, error) {
	return r.network.FetchBlockData(receipt)
}

// FetchExtrinsicData resolves the extrinsic payload for a receipt via the
// network collaborator.
func (r *Router) FetchExtrinsicData(receipt *types.CandidateReceipt) (types.Extrinsic, error) {
	return r.network.FetchExtrinsicData(receipt)
}

// Metric exposes the router counters for registration in a metric set.
func (r *Router) Metric() metric.MetricItem {
	return r.metric
}
