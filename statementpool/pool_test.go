package statementpool

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/log"

	"statementnet_demo/types"
)

// ----- utility func -----

func newPool() *DeferredStatements {
	pool := NewDeferredStatements()
	pool.SetLogger(log.TestingLogger())
	return pool
}

func validStatement(sender types.SessionKey, hash tmbytes.HexBytes) types.SignedStatement {
	return types.SignedStatement{
		Statement: types.NewValidStatement(hash),
		Sender:    sender,
		Signature: bytes.Repeat([]byte{2}, 64),
	}
}

// ----- tests -----

func TestDrainEmpty(t *testing.T) {
	pool := newPool()

	for _, hash := range []tmbytes.HexBytes{
		bytes.Repeat([]byte{1}, 32),
		bytes.Repeat([]byte{9}, 32),
		[]byte("arbitrary"),
	} {
		statements, traces := pool.Drain(hash)
		assert.Empty(t, statements)
		assert.Empty(t, traces)
	}
}

// mirrors the deferral scenario: push the same statement twice, drain once.
func TestPushDrainRoundTrip(t *testing.T) {
	pool := newPool()

	hash := tmbytes.HexBytes(bytes.Repeat([]byte{1}, 32))
	sender := types.SessionKey(bytes.Repeat([]byte{255}, 32))
	statement := validStatement(sender, hash)

	// pre-push
	{
		statements, traces := pool.Drain(hash)
		assert.Empty(t, statements)
		assert.Empty(t, traces)
	}

	pool.Push(statement)
	pool.Push(statement)

	// draining: second push should have been ignored
	{
		statements, traces := pool.Drain(hash)
		require.Equal(t, 1, len(statements))
		require.Equal(t, 1, len(traces))
		assert.Equal(t, statement, statements[0])
		assert.True(t, traces[0].Equal(types.StatementTrace{
			Type:   types.ValidStatement,
			Sender: sender,
			Hash:   hash,
		}))
	}

	// after draining
	{
		statements, traces := pool.Drain(hash)
		assert.Empty(t, statements)
		assert.Empty(t, traces)
	}
}

func TestDistinctKindsShareNoTrace(t *testing.T) {
	pool := newPool()

	hash := tmbytes.HexBytes(bytes.Repeat([]byte{1}, 32))
	sender := types.SessionKey(bytes.Repeat([]byte{255}, 32))

	pool.Push(validStatement(sender, hash))
	pool.Push(types.SignedStatement{
		Statement: types.NewInvalidStatement(hash),
		Sender:    sender,
		Signature: []byte("sig"),
	})
	pool.Push(types.SignedStatement{
		Statement: types.NewAvailableStatement(hash),
		Sender:    sender,
		Signature: []byte("sig"),
	})

	statements, traces := pool.Drain(hash)
	assert.Equal(t, 3, len(statements))
	assert.Equal(t, 3, len(traces))
}

func TestCandidateStatementsNeverBuffered(t *testing.T) {
	pool := newPool()

	blockData := types.BlockData("block data")
	receipt := &types.CandidateReceipt{ParaID: 1, BlockDataHash: blockData.Hash()}
	candidate := types.SignedStatement{
		Statement: types.NewCandidateStatement(receipt),
		Sender:    bytes.Repeat([]byte{255}, 32),
		Signature: []byte("sig"),
	}

	pool.Push(candidate)
	assert.Zero(t, pool.Size())

	statements, traces := pool.Drain(receipt.Hash())
	assert.Empty(t, statements)
	assert.Empty(t, traces)
}

func TestDrainIsPerHash(t *testing.T) {
	pool := newPool()

	sender := types.SessionKey(bytes.Repeat([]byte{255}, 32))
	hashA := tmbytes.HexBytes(bytes.Repeat([]byte{1}, 32))
	hashB := tmbytes.HexBytes(bytes.Repeat([]byte{2}, 32))

	pool.Push(validStatement(sender, hashA))
	pool.Push(validStatement(sender, hashB))

	statements, traces := pool.Drain(hashA)
	require.Equal(t, 1, len(statements))
	assert.Equal(t, hashA, statements[0].Statement.CandidateHash)
	require.Equal(t, 1, len(traces))

	// hashB is untouched by the drain of hashA
	assert.Equal(t, 1, pool.Size())
	statements, _ = pool.Drain(hashB)
	assert.Equal(t, 1, len(statements))
}

func TestDrainKeepsArrivalOrder(t *testing.T) {
	pool := newPool()

	hash := tmbytes.HexBytes(bytes.Repeat([]byte{1}, 32))
	const n = 16
	for i := 0; i < n; i++ {
		sender := types.SessionKey(bytes.Repeat([]byte{byte(i + 1)}, 32))
		pool.Push(validStatement(sender, hash))
	}

	statements, traces := pool.Drain(hash)
	require.Equal(t, n, len(statements))
	require.Equal(t, n, len(traces))
	for i, statement := range statements {
		expected := types.SessionKey(bytes.Repeat([]byte{byte(i + 1)}, 32))
		assert.True(t, statement.Sender.Equal(expected), "statement #%d out of order", i)
		assert.True(t, traces[i].Sender.Equal(expected), "trace #%d out of order", i)
	}
}

// N concurrent pushes with N distinct traces referencing the same hash must
// all survive into a single drain.
func TestConcurrentPushes(t *testing.T) {
	pool := newPool()

	hash := tmbytes.HexBytes(bytes.Repeat([]byte{1}, 32))
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := types.SessionKey([]byte(fmt.Sprintf("sender-%03d-%s", i, bytes.Repeat([]byte{0}, 20))))
			statement := validStatement(sender, hash)
			// duplicate pushes from racing peer contexts
			pool.Push(statement)
			pool.Push(statement)
		}(i)
	}
	wg.Wait()

	statements, traces := pool.Drain(hash)
	assert.Equal(t, n, len(statements))
	assert.Equal(t, n, len(traces))
	assert.Zero(t, pool.Size())
}
