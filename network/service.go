package network

import (
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/events"

	"statementnet_demo/types"
)

// Service is the seam between the statement router and the gossip /
// content-availability subsystem.
type Service interface {
	// MakeAvailable stores candidate content for later fetch and announces
	// its existence to peers. Returns whether the content was new.
	MakeAvailable(hash tmbytes.HexBytes, blockData types.BlockData, extrinsic types.Extrinsic) (bool, error)

	// FetchBlockData resolves the full block data for a receipt.
	FetchBlockData(receipt *types.CandidateReceipt) (types.BlockData, error)

	// FetchExtrinsicData resolves the extrinsic payload for a receipt.
	FetchExtrinsicData(receipt *types.CandidateReceipt) (types.Extrinsic, error)

	// BroadcastStatement gossips a signed statement to peers.
	BroadcastStatement(statement types.SignedStatement)
}

// GossipService backs the Service seam with the local availability store
// and the reactor's event switch: broadcasts are fired as events the
// reactor forwards onto the wire.
type GossipService struct {
	store *AvailabilityStore
	evsw  events.EventSwitch
}

var _ Service = (*GossipService)(nil)

func NewGossipService(store *AvailabilityStore, evsw events.EventSwitch) *GossipService {
	return &GossipService{store: store, evsw: evsw}
}

func (gs *GossipService) MakeAvailable(hash tmbytes.HexBytes, blockData types.BlockData, extrinsic types.Extrinsic) (bool, error) {
	added, err := gs.store.Add(hash, blockData, extrinsic)
	if err != nil || !added {
		return added, err
	}

	gs.evsw.FireEvent(EventNewCandidateData, &CandidateDataMessage{
		Hash:      hash,
		BlockData: blockData,
		Extrinsic: extrinsic,
	})
	return true, nil
}

func (gs *GossipService) FetchBlockData(receipt *types.CandidateReceipt) (types.BlockData, error) {
	return gs.store.BlockData(receipt.Hash())
}

func (gs *GossipService) FetchExtrinsicData(receipt *types.CandidateReceipt) (types.Extrinsic, error) {
	return gs.store.Extrinsic(receipt.Hash())
}

func (gs *GossipService) BroadcastStatement(statement types.SignedStatement) {
	gs.evsw.FireEvent(EventNewStatement, statement)
}
