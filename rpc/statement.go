package rpc

import (
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"statementnet_demo/types"
)

type ResultImportStatement struct {
	Hash tmbytes.HexBytes `json:"hash"`
}

type ResultSessionKey struct {
	SessionKey types.SessionKey `json:"session_key"`
}

// ImportStatement feeds a signed statement into the router, exactly as if a
// peer had gossiped it. Import is asynchronous; acceptance here only means
// the statement was well formed.
func ImportStatement(ctx *rpctypes.Context, statement types.SignedStatement) (*ResultImportStatement, error) {
	if err := statement.ValidateBasic(); err != nil {
		return nil, err
	}

	env.Router.ImportStatement(statement)
	return &ResultImportStatement{Hash: statement.Statement.ReferencedHash()}, nil
}

// SessionKey returns the authority identity this node signs statements with.
func SessionKey(ctx *rpctypes.Context) (*ResultSessionKey, error) {
	return &ResultSessionKey{SessionKey: env.Router.SessionKey()}, nil
}
