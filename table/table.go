package table

import (
	tmbytes "github.com/tendermint/tendermint/libs/bytes"

	"statementnet_demo/types"
)

// Table is the consensus-table capability the router depends on. The table
// is safe to call from many peer contexts at once; its import is idempotent
// per exact statement content and tolerates any order among statements that
// reference an already-known candidate.
type Table interface {
	// SessionKey returns the local authority identity the table signs with.
	SessionKey() types.SessionKey

	// HasCandidate reports whether a candidate is already known by hash.
	HasCandidate(hash tmbytes.HexBytes) bool

	// ImportStatements imports the batch in one call and returns the
	// follow-up work the table determined is needed as a consequence.
	ImportStatements(batch []types.SignedStatement) []*Producer

	// SignAndImport signs a locally produced statement with the authority
	// key and imports it directly. The candidate a produced statement
	// references is always already known, so this path never defers.
	SignAndImport(statement types.Statement) (*types.SignedStatement, error)
}

// Producer is an opaque unit of follow-up work yielded by an import: the
// named candidate must be fetched and validated, and the requested statement
// kinds produced from the result.
type Producer struct {
	Receipt          *types.CandidateReceipt
	WantValidity     bool
	WantAvailability bool
}

// Blank reports whether the producer carries no work.
func (p *Producer) Blank() bool {
	if p == nil || p.Receipt == nil {
		return true
	}
	return !p.WantValidity && !p.WantAvailability
}
