package table

import (
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/log"
	tmsync "github.com/tendermint/tendermint/libs/sync"

	"statementnet_demo/types"
)

// StatementTable is an in-memory consensus table. It tracks known candidates
// and the statements witnessed about them, absorbs exact duplicates, and
// asks for validation work the first time a remote candidate shows up.
type StatementTable struct {
	mtx tmsync.Mutex

	chainID    string
	privVal    types.PrivValidator
	sessionKey types.SessionKey

	candidates map[string]*types.CandidateReceipt
	seen       map[string]struct{} // exact statement dedup, (kind, sender, hash)
	summaries  map[string]*Summary

	logger log.Logger
}

// Summary is the per-candidate bookkeeping witnessed so far.
type Summary struct {
	Candidate         tmbytes.HexBytes `json:"candidate"`
	ValidityVotes     int              `json:"validity_votes"`
	InvalidityVotes   int              `json:"invalidity_votes"`
	AvailabilityVotes int              `json:"availability_votes"`
}

var _ Table = (*StatementTable)(nil)

type TableOption func(*StatementTable)

func NewStatementTable(chainID string, privVal types.PrivValidator, options ...TableOption) (*StatementTable, error) {
	pub, err := privVal.GetPubKey()
	if err != nil {
		return nil, err
	}

	st := &StatementTable{
		chainID:    chainID,
		privVal:    privVal,
		sessionKey: types.SessionKeyFromPubKey(pub),
		candidates: make(map[string]*types.CandidateReceipt),
		seen:       make(map[string]struct{}),
		summaries:  make(map[string]*Summary),
		logger:     log.NewNopLogger(),
	}

	for _, option := range options {
		option(st)
	}

	return st, nil
}

func (st *StatementTable) SetLogger(logger log.Logger) {
	st.logger = logger
}

func (st *StatementTable) SessionKey() types.SessionKey {
	return st.sessionKey
}

func (st *StatementTable) HasCandidate(hash tmbytes.HexBytes) bool {
	st.mtx.Lock()
	defer st.mtx.Unlock()

	_, ok := st.candidates[string(hash)]
	return ok
}

// ImportStatements imports the whole batch under one lock acquisition.
// Statements already witnessed are absorbed without effect. A producer is
// returned for every candidate first introduced here by a remote sender.
func (st *StatementTable) ImportStatements(batch []types.SignedStatement) []*Producer {
	st.mtx.Lock()
	defer st.mtx.Unlock()

	var producers []*Producer
	for _, statement := range batch {
		if err := statement.ValidateBasic(); err != nil {
			st.logger.Error("rejected malformed statement", "err", err)
			continue
		}
		if producer := st.importOne(statement); !producer.Blank() {
			producers = append(producers, producer)
		}
	}
	return producers
}

// importOne records a single statement; caller holds the lock.
func (st *StatementTable) importOne(statement types.SignedStatement) *Producer {
	hash := statement.Statement.ReferencedHash()
	seenKey := statementKey(statement)
	if _, ok := st.seen[seenKey]; ok {
		return nil
	}
	st.seen[seenKey] = struct{}{}

	summary, ok := st.summaries[string(hash)]
	if !ok {
		summary = &Summary{Candidate: hash}
		st.summaries[string(hash)] = summary
	}

	switch statement.Statement.Type {
	case types.CandidateStatement:
		if _, known := st.candidates[string(hash)]; known {
			return nil
		}
		st.candidates[string(hash)] = statement.Statement.Candidate

		if statement.Sender.Equal(st.sessionKey) {
			// our own candidate needs no local validation work
			return nil
		}
		return &Producer{
			Receipt:          statement.Statement.Candidate,
			WantValidity:     true,
			WantAvailability: true,
		}
	case types.ValidStatement:
		summary.ValidityVotes++
	case types.InvalidStatement:
		summary.InvalidityVotes++
	case types.AvailableStatement:
		summary.AvailabilityVotes++
	}
	return nil
}

// SignAndImport signs the statement with the local authority key and imports
// it. Locally signed statements never yield further producers.
func (st *StatementTable) SignAndImport(statement types.Statement) (*types.SignedStatement, error) {
	signed := &types.SignedStatement{Statement: statement}
	if err := st.privVal.SignStatement(st.chainID, signed); err != nil {
		return nil, err
	}

	st.mtx.Lock()
	st.importOne(*signed)
	st.mtx.Unlock()

	st.logger.Debug("signed and imported local statement", "statement", statement)
	return signed, nil
}

// CandidateSummary returns a copy of the bookkeeping for a candidate hash.
func (st *StatementTable) CandidateSummary(hash tmbytes.HexBytes) (Summary, bool) {
	st.mtx.Lock()
	defer st.mtx.Unlock()

	summary, ok := st.summaries[string(hash)]
	if !ok {
		return Summary{}, false
	}
	return *summary, true
}

func statementKey(statement types.SignedStatement) string {
	trace, ok := statement.Trace()
	if !ok {
		trace = types.StatementTrace{
			Type:   types.CandidateStatement,
			Sender: statement.Sender,
			Hash:   statement.Statement.ReferencedHash(),
		}
	}
	return trace.Key()
}
