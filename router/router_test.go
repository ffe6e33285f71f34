package router

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/log"

	chainmock "statementnet_demo/chain/mock"
	"statementnet_demo/scheduler"
	"statementnet_demo/table"
	tablemock "statementnet_demo/table/mock"
	"statementnet_demo/types"
)

// ----- fake network service -----

type fakeContent struct {
	blockData types.BlockData
	extrinsic types.Extrinsic
}

type fakeNetwork struct {
	mtx        sync.Mutex
	content    map[string]fakeContent
	broadcasts []types.SignedStatement
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{content: make(map[string]fakeContent)}
}

func (fn *fakeNetwork) MakeAvailable(hash tmbytes.HexBytes, blockData types.BlockData, extrinsic types.Extrinsic) (bool, error) {
	fn.mtx.Lock()
	defer fn.mtx.Unlock()

	if _, ok := fn.content[string(hash)]; ok {
		return false, nil
	}
	fn.content[string(hash)] = fakeContent{blockData, extrinsic}
	return true, nil
}

func (fn *fakeNetwork) FetchBlockData(receipt *types.CandidateReceipt) (types.BlockData, error) {
	fn.mtx.Lock()
	defer fn.mtx.Unlock()

	c, ok := fn.content[string(receipt.Hash())]
	if !ok {
		return nil, errors.New("no block data")
	}
	return c.blockData, nil
}

func (fn *fakeNetwork) FetchExtrinsicData(receipt *types.CandidateReceipt) (types.Extrinsic, error) {
	fn.mtx.Lock()
	defer fn.mtx.Unlock()

	c, ok := fn.content[string(receipt.Hash())]
	if !ok {
		return nil, errors.New("no extrinsic")
	}
	return c.extrinsic, nil
}

func (fn *fakeNetwork) BroadcastStatement(statement types.SignedStatement) {
	fn.mtx.Lock()
	defer fn.mtx.Unlock()

	fn.broadcasts = append(fn.broadcasts, statement)
}

func (fn *fakeNetwork) Broadcasts() []types.SignedStatement {
	fn.mtx.Lock()
	defer fn.mtx.Unlock()

	out := make([]types.SignedStatement, len(fn.broadcasts))
	copy(out, fn.broadcasts)
	return out
}

// ----- utility func -----

var testSessionKey = types.SessionKey(bytes.Repeat([]byte{0x11}, 32))

func producerOnCandidate(statement types.SignedStatement) *table.Producer {
	if statement.Statement.Type != types.CandidateStatement {
		return nil
	}
	return &table.Producer{
		Receipt:          statement.Statement.Candidate,
		WantValidity:     true,
		WantAvailability: true,
	}
}

func newTestRouter(tbl table.Table, net *fakeNetwork, querier *chainmock.Querier, parent *types.BlockID) *Router {
	r := NewRouter(tbl, net, querier, scheduler.Sync{}, parent)
	r.SetLogger(log.TestingLogger())
	return r
}

func testCandidate(t *testing.T) (types.SignedStatement, *types.CandidateReceipt, types.BlockData, types.Extrinsic) {
	blockData := types.BlockData("candidate block data")
	extrinsic := types.Extrinsic("candidate extrinsic")
	receipt := &types.CandidateReceipt{
		ParaID:        3,
		Collator:      bytes.Repeat([]byte{0xcc}, 32),
		BlockDataHash: blockData.Hash(),
	}
	remote := types.NewMockPV()
	signed := types.SignedStatement{Statement: types.NewCandidateStatement(receipt)}
	require.NoError(t, remote.SignStatement("test-chain", &signed))
	return signed, receipt, blockData, extrinsic
}

func signedValid(hash tmbytes.HexBytes, seed byte) types.SignedStatement {
	return types.SignedStatement{
		Statement: types.NewValidStatement(hash),
		Sender:    bytes.Repeat([]byte{seed}, 32),
		Signature: bytes.Repeat([]byte{2}, 64),
	}
}

// ----- tests -----

func TestImportDefersStatementForUnknownCandidate(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	r := newTestRouter(tbl, newFakeNetwork(), &chainmock.Querier{}, nil)

	hash := tmbytes.HexBytes(bytes.Repeat([]byte{1}, 32))
	r.ImportStatement(signedValid(hash, 0xff))

	assert.Empty(t, tbl.ImportedBatches(), "table must not be called for an unknown candidate")
	assert.Equal(t, 1, r.Deferred().Size())
}

// the end-to-end deferral scenario: Valid(H) arrives first, Candidate(H)
// later drains it into a single batch.
func TestCandidateImportDrainsDeferred(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	r := newTestRouter(tbl, newFakeNetwork(), &chainmock.Querier{}, nil)

	candidate, receipt, _, _ := testCandidate(t)
	valid := signedValid(receipt.Hash(), 0xff)

	r.ImportStatement(valid)
	require.Empty(t, tbl.ImportedBatches())

	r.ImportStatement(candidate)

	batches := tbl.ImportedBatches()
	require.Equal(t, 1, len(batches), "one single batched import")
	require.Equal(t, 2, len(batches[0]))
	assert.Equal(t, types.CandidateStatement, batches[0][0].Statement.Type)
	assert.Equal(t, types.ValidStatement, batches[0][1].Statement.Type)
	assert.Zero(t, r.Deferred().Size())
}

func TestStatementForKnownCandidateImportsImmediately(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	r := newTestRouter(tbl, newFakeNetwork(), &chainmock.Querier{}, nil)

	candidate, receipt, _, _ := testCandidate(t)
	r.ImportStatement(candidate)

	r.ImportStatement(signedValid(receipt.Hash(), 0xff))

	batches := tbl.ImportedBatches()
	require.Equal(t, 2, len(batches))
	require.Equal(t, 1, len(batches[1]), "no drain for a known candidate")
	assert.Equal(t, types.ValidStatement, batches[1][0].Statement.Type)
	assert.Zero(t, r.Deferred().Size())
}

func TestProducerPipelineValidCandidate(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	tbl.ProducerFn = producerOnCandidate
	net := newFakeNetwork()
	parent := &types.BlockID{Hash: bytes.Repeat([]byte{7}, 32)}
	r := newTestRouter(tbl, net, &chainmock.Querier{}, parent)

	candidate, receipt, blockData, extrinsic := testCandidate(t)
	_, err := net.MakeAvailable(receipt.Hash(), blockData, extrinsic)
	require.NoError(t, err)

	r.ImportStatement(candidate)

	signed := tbl.SignedStatements()
	require.Equal(t, 2, len(signed))
	assert.Equal(t, types.ValidStatement, signed[0].Statement.Type)
	assert.Equal(t, receipt.Hash(), signed[0].Statement.CandidateHash)
	assert.Equal(t, types.AvailableStatement, signed[1].Statement.Type)

	assert.Equal(t, 2, len(net.Broadcasts()), "derived statements are propagated")
	assert.Zero(t, r.Deferred().Size(), "local re-import must not defer")
}

func TestProducerPipelineBadCollation(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	tbl.ProducerFn = producerOnCandidate
	net := newFakeNetwork()
	parent := &types.BlockID{Hash: bytes.Repeat([]byte{7}, 32)}
	querier := &chainmock.Querier{Err: errors.New("collation check failed")}
	r := newTestRouter(tbl, net, querier, parent)

	candidate, receipt, blockData, extrinsic := testCandidate(t)
	_, err := net.MakeAvailable(receipt.Hash(), blockData, extrinsic)
	require.NoError(t, err)

	r.ImportStatement(candidate)

	signed := tbl.SignedStatements()
	require.Equal(t, 1, len(signed), "invalid candidates get no availability vouch")
	assert.Equal(t, types.InvalidStatement, signed[0].Statement.Type)
	require.Equal(t, 1, len(querier.Calls()))
	assert.Equal(t, blockData, querier.Calls()[0].BlockData)
}

func TestProducerWithoutParentContextProducesNothing(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	tbl.ProducerFn = producerOnCandidate
	net := newFakeNetwork()
	querier := &chainmock.Querier{}
	r := newTestRouter(tbl, net, querier, nil)

	candidate, receipt, blockData, extrinsic := testCandidate(t)
	_, err := net.MakeAvailable(receipt.Hash(), blockData, extrinsic)
	require.NoError(t, err)

	r.ImportStatement(candidate)

	assert.Empty(t, tbl.SignedStatements())
	assert.Empty(t, net.Broadcasts())
	assert.Empty(t, querier.Calls(), "predicate must not run without a parent context")
}

func TestProducerFetchFailureProducesNothing(t *testing.T) {
	tbl := tablemock.NewTable(testSessionKey)
	tbl.ProducerFn = producerOnCandidate
	net := newFakeNetwork() // no content stored
	parent := &types.BlockID{Hash: bytes.Repeat([]byte{7}, 32)}
	r := newTestRouter(tbl, net, &chainmock.Querier{}, parent)

	candidate, _, _, _ := testCandidate(t)
	r.ImportStatement(candidate)

	assert.Empty(t, tbl.SignedStatements())
	assert.Empty(t, net.Broadcasts())
}

func TestSubmitLocalCandidate(t *testing.T) {
	net := newFakeNetwork()
	r := newTestRouter(tablemock.NewTable(testSessionKey), net, &chainmock.Querier{}, nil)

	blockData := types.BlockData("local block")
	extrinsic := types.Extrinsic("local extrinsic")
	hash := blockData.Hash()

	r.SubmitLocalCandidate(hash, blockData, extrinsic)

	// the content is already in the store under this hash
	added, err := net.MakeAvailable(hash, blockData, extrinsic)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestSessionKey(t *testing.T) {
	r := newTestRouter(tablemock.NewTable(testSessionKey), newFakeNetwork(), &chainmock.Querier{}, nil)
	assert.True(t, r.SessionKey().Equal(testSessionKey))
}
