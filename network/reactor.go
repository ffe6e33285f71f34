package network

import (
	"errors"
	"fmt"

	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	"github.com/tendermint/tendermint/libs/cmap"
	"github.com/tendermint/tendermint/libs/events"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p"

	"statementnet_demo/types"
)

const (
	// StatementChannel carries signed statements between validators.
	StatementChannel = byte(0x40)
	// DataChannel carries full candidate content (block data + extrinsic).
	DataChannel = byte(0x41)

	maxMsgSize = 1048576 // 1MB
)

// ------ Event ------
// events the reactor listens for and pushes onto the wire
const (
	EventNewStatement     = "NewStatement"
	EventNewCandidateData = "NewCandidateData"
)

// StatementImporter is the router-side entry point the reactor feeds.
type StatementImporter interface {
	ImportStatement(statement types.SignedStatement)
}

// ------- Reactor ------
// Reactor gossips statements and candidate content. Incoming statements are
// handed to the importer; statements fired on the event switch are
// broadcast to all peers.
type Reactor struct {
	p2p.BaseReactor

	peers *cmap.CMap

	store    *AvailabilityStore
	evsw     events.EventSwitch
	importer StatementImporter
}

type ReactorOption func(*Reactor)

func NewReactor(store *AvailabilityStore, options ...ReactorOption) *Reactor {
	conR := &Reactor{
		peers: cmap.NewCMap(),
		store: store,
		evsw:  events.NewEventSwitch(),
	}
	conR.BaseReactor = *p2p.NewBaseReactor("Statement", conR)

	for _, option := range options {
		option(conR)
	}

	return conR
}

// EventSwitch exposes the switch the GossipService fires broadcasts on.
func (conR *Reactor) EventSwitch() events.EventSwitch {
	return conR.evsw
}

// SetImporter wires the router in; must be called before the reactor starts.
func (conR *Reactor) SetImporter(importer StatementImporter) {
	conR.importer = importer
}

func (conR *Reactor) SetLogger(l log.Logger) {
	conR.Logger = l
}

func (conR *Reactor) OnStart() error {
	if conR.importer == nil {
		return errors.New("statement reactor started without importer")
	}
	if err := conR.evsw.Start(); err != nil {
		return err
	}
	conR.subscribeToBroadcastEvents()
	conR.Logger.Info("Statement Reactor started.")
	return nil
}

func (conR *Reactor) OnStop() {
	if err := conR.evsw.Stop(); err != nil {
		conR.Logger.Error("failed trying to stop eventSwitch", "error", err)
	}
}

func (conR *Reactor) GetChannels() []*p2p.ChannelDescriptor {
	return []*p2p.ChannelDescriptor{
		{
			ID:                  StatementChannel,
			Priority:            10,
			SendQueueCapacity:   100,
			RecvMessageCapacity: maxMsgSize,
		},
		{
			ID:                  DataChannel,
			Priority:            5,
			SendQueueCapacity:   100,
			RecvMessageCapacity: maxMsgSize,
		},
	}
}

func (conR *Reactor) InitPeer(peer p2p.Peer) p2p.Peer {
	return peer
}

func (conR *Reactor) AddPeer(peer p2p.Peer) {
	conR.peers.Set(string(peer.ID()), peer)
}

func (conR *Reactor) RemovePeer(peer p2p.Peer, reason interface{}) {
	conR.peers.Delete(string(peer.ID()))
}

// Receive decodes gossip from a peer. Statement signatures are verified on
// this path before the statement reaches the router.
func (conR *Reactor) Receive(chID byte, src p2p.Peer, msgBytes []byte) {
	if !conR.IsRunning() {
		conR.Logger.Debug("Receive", "src", src, "chID", chID, "bytes", msgBytes)
		return
	}

	switch chID {
	case StatementChannel:
		var statement types.SignedStatement
		if err := tmjson.Unmarshal(msgBytes, &statement); err != nil {
			conR.Logger.Error("try to unmarshal statement failed", "err", err, "src", src.ID())
			break
		}
		if err := statement.ValidateBasic(); err != nil {
			conR.Logger.Error("received malformed statement", "err", err, "src", src.ID())
			break
		}

		conR.Logger.Debug(fmt.Sprintf("Receive statement from #{%v}", src.ID()), "statement", statement)
		conR.importer.ImportStatement(statement)

	case DataChannel:
		var msg CandidateDataMessage
		if err := tmjson.Unmarshal(msgBytes, &msg); err != nil {
			conR.Logger.Error("try to unmarshal candidate data failed", "err", err, "src", src.ID())
			break
		}
		if err := msg.ValidateBasic(); err != nil {
			conR.Logger.Error("received malformed candidate data", "err", err, "src", src.ID())
			break
		}

		added, err := conR.store.Add(msg.Hash, msg.BlockData, msg.Extrinsic)
		if err != nil {
			conR.Logger.Error("store candidate data failed", "err", err, "hash", msg.Hash)
			break
		}
		if added {
			// forward new content once; repeats die here
			conR.Switch.Broadcast(DataChannel, msgBytes)
		}

	default:
		conR.Logger.Error(fmt.Sprintf("Unknown chID %X", chID))
	}
}

// subscribeToBroadcastEvents forwards router-produced statements and freshly
// stored content to all peers.
func (conR *Reactor) subscribeToBroadcastEvents() {
	const subscriber = "statement-reactor"

	if err := conR.evsw.AddListenerForEvent(subscriber, EventNewStatement, func(data events.EventData) {
		conR.broadcastStatement(data.(types.SignedStatement))
	}); err != nil {
		conR.Logger.Error("subscribe to statement events failed", "err", err)
	}

	if err := conR.evsw.AddListenerForEvent(subscriber, EventNewCandidateData, func(data events.EventData) {
		conR.broadcastCandidateData(data.(*CandidateDataMessage))
	}); err != nil {
		conR.Logger.Error("subscribe to data events failed", "err", err)
	}
}

func (conR *Reactor) broadcastStatement(statement types.SignedStatement) {
	msgBytes, err := tmjson.Marshal(statement)
	if err != nil {
		conR.Logger.Error("Marshal statement failed.", "err", err)
		return
	}
	conR.Logger.Debug("ready to broadcast statement", "statement", statement)
	conR.Switch.Broadcast(StatementChannel, msgBytes)
}

func (conR *Reactor) broadcastCandidateData(msg *CandidateDataMessage) {
	msgBytes, err := tmjson.Marshal(msg)
	if err != nil {
		conR.Logger.Error("Marshal candidate data failed.", "err", err)
		return
	}
	conR.Switch.Broadcast(DataChannel, msgBytes)
}

// ---------------------------------

// CandidateDataMessage carries full candidate content between peers.
type CandidateDataMessage struct {
	Hash      tmbytes.HexBytes `json:"hash"`
	BlockData types.BlockData  `json:"block_data"`
	Extrinsic types.Extrinsic  `json:"extrinsic"`
}

func (msg *CandidateDataMessage) ValidateBasic() error {
	if len(msg.Hash) == 0 {
		return errors.New("candidate data without hash")
	}
	return nil
}

func (msg *CandidateDataMessage) String() string {
	return fmt.Sprintf("[CandidateData %X]", msg.Hash)
}
