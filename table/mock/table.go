package mock

import (
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmsync "github.com/tendermint/tendermint/libs/sync"

	"statementnet_demo/table"
	"statementnet_demo/types"
)

// Table is a recording implementation of a Table, useful for testing. It
// marks candidates known as Candidate statements are imported and hands out
// producers from ProducerFn when set.
type Table struct {
	mtx tmsync.Mutex

	Key        types.SessionKey
	ProducerFn func(statement types.SignedStatement) *table.Producer

	known   map[string]struct{}
	Batches [][]types.SignedStatement
	Signed  []types.SignedStatement
}

var _ table.Table = (*Table)(nil)

func NewTable(key types.SessionKey) *Table {
	return &Table{
		Key:   key,
		known: make(map[string]struct{}),
	}
}

func (t *Table) SessionKey() types.SessionKey { return t.Key }

func (t *Table) HasCandidate(hash tmbytes.HexBytes) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	_, ok := t.known[string(hash)]
	return ok
}

func (t *Table) ImportStatements(batch []types.SignedStatement) []*table.Producer {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.Batches = append(t.Batches, batch)

	var producers []*table.Producer
	for _, statement := range batch {
		if statement.Statement.Type == types.CandidateStatement {
			t.known[string(statement.Statement.ReferencedHash())] = struct{}{}
		}
		if t.ProducerFn != nil {
			if producer := t.ProducerFn(statement); !producer.Blank() {
				producers = append(producers, producer)
			}
		}
	}
	return producers
}

func (t *Table) SignAndImport(statement types.Statement) (*types.SignedStatement, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	signed := types.SignedStatement{
		Statement: statement,
		Sender:    t.Key,
		Signature: []byte("mock signature"),
	}
	t.Signed = append(t.Signed, signed)
	return &signed, nil
}

// ImportedBatches returns a snapshot of the batches seen so far.
func (t *Table) ImportedBatches() [][]types.SignedStatement {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	out := make([][]types.SignedStatement, len(t.Batches))
	copy(out, t.Batches)
	return out
}

// SignedStatements returns a snapshot of locally signed statements.
func (t *Table) SignedStatements() []types.SignedStatement {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	out := make([]types.SignedStatement, len(t.Signed))
	copy(out, t.Signed)
	return out
}
