package types

import (
	"github.com/tendermint/tendermint/crypto"
	"github.com/tendermint/tendermint/crypto/ed25519"
)

// PrivValidator signs statements with the local authority key.
type PrivValidator interface {
	GetPubKey() (crypto.PubKey, error)

	// SignStatement fills in the sender and signature of the statement.
	SignStatement(chainID string, statement *SignedStatement) error
}

//----------------------------------------
// MockPV

// MockPV implements PrivValidator with an ephemeral key, useful for testing.
type MockPV struct {
	PrivKey crypto.PrivKey
}

var _ PrivValidator = MockPV{}

func NewMockPV() MockPV {
	return MockPV{ed25519.GenPrivKey()}
}

func (pv MockPV) GetPubKey() (crypto.PubKey, error) {
	return pv.PrivKey.PubKey(), nil
}

func (pv MockPV) SignStatement(chainID string, statement *SignedStatement) error {
	sig, err := pv.PrivKey.Sign(StatementSignBytes(chainID, &statement.Statement))
	if err != nil {
		return err
	}
	statement.Sender = SessionKeyFromPubKey(pv.PrivKey.PubKey())
	statement.Signature = sig
	return nil
}
