package types

import (
	"errors"
	"fmt"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmjson "github.com/tendermint/tendermint/libs/json"
)

type StatementType uint8

const (
	// CandidateStatement introduces a new candidate and carries its receipt.
	CandidateStatement = StatementType(1)
	// ValidStatement asserts the referenced candidate is valid.
	ValidStatement = StatementType(2)
	// InvalidStatement asserts the referenced candidate is invalid.
	InvalidStatement = StatementType(3)
	// AvailableStatement asserts the referenced candidate's data is available.
	AvailableStatement = StatementType(4)
)

func (t StatementType) String() string {
	switch t {
	case CandidateStatement:
		return "Candidate"
	case ValidStatement:
		return "Valid"
	case InvalidStatement:
		return "Invalid"
	case AvailableStatement:
		return "Available"
	default:
		return "UnknownStatement"
	}
}

// Statement is a typed assertion about a candidate. A CandidateStatement is
// self-describing and carries the full receipt; the other kinds reference a
// candidate by its hash only.
type Statement struct {
	Type          StatementType     `json:"type"`
	Candidate     *CandidateReceipt `json:"candidate,omitempty"`
	CandidateHash tmbytes.HexBytes  `json:"candidate_hash,omitempty"`
}

func NewCandidateStatement(receipt *CandidateReceipt) Statement {
	return Statement{Type: CandidateStatement, Candidate: receipt}
}

func NewValidStatement(hash tmbytes.HexBytes) Statement {
	return Statement{Type: ValidStatement, CandidateHash: hash}
}

func NewInvalidStatement(hash tmbytes.HexBytes) Statement {
	return Statement{Type: InvalidStatement, CandidateHash: hash}
}

func NewAvailableStatement(hash tmbytes.HexBytes) Statement {
	return Statement{Type: AvailableStatement, CandidateHash: hash}
}

// ReferencedHash returns the hash of the candidate the statement is about.
func (s *Statement) ReferencedHash() tmbytes.HexBytes {
	if s.Type == CandidateStatement {
		return s.Candidate.Hash()
	}
	return s.CandidateHash
}

func (s *Statement) ValidateBasic() error {
	switch s.Type {
	case CandidateStatement:
		if s.Candidate == nil {
			return errors.New("candidate statement without receipt")
		}
		return s.Candidate.ValidateBasic()
	case ValidStatement, InvalidStatement, AvailableStatement:
		if len(s.CandidateHash) == 0 {
			return errors.New("statement without candidate hash")
		}
		return nil
	default:
		return fmt.Errorf("unknown statement type %d", s.Type)
	}
}

func (s Statement) String() string {
	return fmt.Sprintf("Statement{%v %X}", s.Type, s.ReferencedHash())
}

// StatementSignBytes returns the canonical bytes the local authority signs.
func StatementSignBytes(chainID string, s *Statement) []byte {
	bz, err := tmjson.Marshal(canonicalStatement{ChainID: chainID, Statement: *s})
	if err != nil {
		panic(err)
	}
	return bz
}

type canonicalStatement struct {
	ChainID   string    `json:"chain_id"`
	Statement Statement `json:"statement"`
}

// SignedStatement is a statement attributed to a sender. The signature is
// verified upstream, on the network-receive path, before the statement
// reaches the routing layer.
type SignedStatement struct {
	Statement Statement        `json:"statement"`
	Sender    SessionKey       `json:"sender"`
	Signature tmbytes.HexBytes `json:"signature"`
}

func (ss *SignedStatement) ValidateBasic() error {
	if len(ss.Sender) == 0 {
		return errors.New("signed statement without sender")
	}
	if len(ss.Signature) == 0 {
		return errors.New("signed statement without signature")
	}
	return ss.Statement.ValidateBasic()
}

// Trace returns the deduplication key of the statement. Candidate statements
// have no trace; the second return is false for them.
func (ss *SignedStatement) Trace() (StatementTrace, bool) {
	if ss.Statement.Type == CandidateStatement {
		return StatementTrace{}, false
	}
	return StatementTrace{
		Type:   ss.Statement.Type,
		Sender: ss.Sender,
		Hash:   ss.Statement.CandidateHash,
	}, true
}

func (ss SignedStatement) String() string {
	return fmt.Sprintf("SignedStatement{%v by %v}", ss.Statement, ss.Sender)
}

// StatementTrace is the (kind, sender, candidate hash) key used to absorb
// duplicate gossip of hash-referencing statements.
type StatementTrace struct {
	Type   StatementType    `json:"type"`
	Sender SessionKey       `json:"sender"`
	Hash   tmbytes.HexBytes `json:"hash"`
}

// Key returns a map key for the trace.
func (tr StatementTrace) Key() string {
	return fmt.Sprintf("%d/%X/%X", tr.Type, []byte(tr.Sender), []byte(tr.Hash))
}

func (tr StatementTrace) Equal(other StatementTrace) bool {
	return tr.Key() == other.Key()
}

func (tr StatementTrace) String() string {
	return fmt.Sprintf("Trace{%v %v %X}", tr.Type, tr.Sender, tr.Hash)
}
