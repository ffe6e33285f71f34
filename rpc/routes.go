package rpc

import rpc "github.com/tendermint/tendermint/rpc/jsonrpc/server"

var Routes = map[string]*rpc.RPCFunc{
	"import_statement": rpc.NewRPCFunc(ImportStatement, "statement"),
	"session_key":      rpc.NewRPCFunc(SessionKey, ""),
	"metrics":          rpc.NewRPCFunc(JSONMetrics, "label"),
}
