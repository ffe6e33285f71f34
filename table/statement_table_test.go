package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"statementnet_demo/types"
)

const testChainID = "statement-test-chain"

func newTestTable(t *testing.T) (*StatementTable, types.MockPV) {
	pv := types.NewMockPV()
	st, err := NewStatementTable(testChainID, pv)
	require.NoError(t, err)
	st.SetLogger(log.TestingLogger())
	return st, pv
}

func remoteCandidate(t *testing.T) (types.SignedStatement, *types.CandidateReceipt) {
	blockData := types.BlockData("remote block data")
	receipt := &types.CandidateReceipt{
		ParaID:        7,
		Collator:      bytes.Repeat([]byte{0xcc}, 32),
		BlockDataHash: blockData.Hash(),
	}
	remote := types.NewMockPV()
	signed := types.SignedStatement{Statement: types.NewCandidateStatement(receipt)}
	require.NoError(t, remote.SignStatement(testChainID, &signed))
	return signed, receipt
}

func TestImportRemoteCandidateYieldsProducer(t *testing.T) {
	st, _ := newTestTable(t)
	signed, receipt := remoteCandidate(t)

	assert.False(t, st.HasCandidate(receipt.Hash()))

	producers := st.ImportStatements([]types.SignedStatement{signed})
	require.Equal(t, 1, len(producers))
	assert.False(t, producers[0].Blank())
	assert.Equal(t, receipt.Hash(), producers[0].Receipt.Hash())
	assert.True(t, producers[0].WantValidity)
	assert.True(t, producers[0].WantAvailability)

	assert.True(t, st.HasCandidate(receipt.Hash()))

	// re-importing the exact same statement is a no-op
	producers = st.ImportStatements([]types.SignedStatement{signed})
	assert.Empty(t, producers)
}

func TestImportBatchCountsVotes(t *testing.T) {
	st, _ := newTestTable(t)
	candidate, receipt := remoteCandidate(t)

	voter := types.NewMockPV()
	valid := types.SignedStatement{Statement: types.NewValidStatement(receipt.Hash())}
	require.NoError(t, voter.SignStatement(testChainID, &valid))
	available := types.SignedStatement{Statement: types.NewAvailableStatement(receipt.Hash())}
	require.NoError(t, voter.SignStatement(testChainID, &available))

	// one batch, any order among statements for a known candidate
	st.ImportStatements([]types.SignedStatement{candidate, valid, available, valid})

	summary, ok := st.CandidateSummary(receipt.Hash())
	require.True(t, ok)
	assert.Equal(t, 1, summary.ValidityVotes, "duplicate vote must not double count")
	assert.Equal(t, 0, summary.InvalidityVotes)
	assert.Equal(t, 1, summary.AvailabilityVotes)
}

func TestLocalCandidateYieldsNoProducer(t *testing.T) {
	st, pv := newTestTable(t)

	blockData := types.BlockData("local block data")
	receipt := &types.CandidateReceipt{ParaID: 1, BlockDataHash: blockData.Hash()}
	signed := types.SignedStatement{Statement: types.NewCandidateStatement(receipt)}
	require.NoError(t, pv.SignStatement(testChainID, &signed))

	producers := st.ImportStatements([]types.SignedStatement{signed})
	assert.Empty(t, producers, "own candidates need no local validation work")
	assert.True(t, st.HasCandidate(receipt.Hash()))
}

func TestSignAndImport(t *testing.T) {
	st, pv := newTestTable(t)
	candidate, receipt := remoteCandidate(t)
	st.ImportStatements([]types.SignedStatement{candidate})

	signed, err := st.SignAndImport(types.NewValidStatement(receipt.Hash()))
	require.NoError(t, err)
	require.NoError(t, signed.ValidateBasic())
	assert.True(t, signed.Sender.Equal(st.SessionKey()))

	pub, err := pv.GetPubKey()
	require.NoError(t, err)
	assert.True(t, pub.VerifySignature(
		types.StatementSignBytes(testChainID, &signed.Statement), signed.Signature))

	summary, ok := st.CandidateSummary(receipt.Hash())
	require.True(t, ok)
	assert.Equal(t, 1, summary.ValidityVotes)
}

func TestMalformedStatementAbsorbed(t *testing.T) {
	st, _ := newTestTable(t)

	producers := st.ImportStatements([]types.SignedStatement{
		{Statement: types.Statement{Type: types.ValidStatement}}, // no hash, no sender
	})
	assert.Empty(t, producers)
}
