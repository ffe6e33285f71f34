package node

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	cfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/p2p/conn"
	rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"
	"github.com/tendermint/tendermint/version"
	tmdb "github.com/tendermint/tm-db"

	"statementnet_demo/chain"
	"statementnet_demo/libs/metric"
	"statementnet_demo/network"
	"statementnet_demo/privval"
	"statementnet_demo/router"
	"statementnet_demo/rpc"
	"statementnet_demo/scheduler"
	"statementnet_demo/table"
	"statementnet_demo/types"
)

const (
	// ChainID every statement signature commits to.
	ChainID = "statementnet-demo"

	// producer tasks run on a small fixed pool; validation is CPU bound and
	// one candidate rarely needs more than one producer
	producerWorkers = 4
)

type Provider func(*cfg.Config, log.Logger) (*Node, error)

type Node struct {
	service.BaseService

	// config
	config *cfg.Config

	// network
	transport *p2p.MultiplexTransport
	sw        *p2p.Switch // p2p connections
	nodeInfo  p2p.NodeInfo
	nodeKey   *p2p.NodeKey // our node privkey

	// services
	reactor   *network.Reactor
	router    *router.Router
	pool      *scheduler.Pool
	metricSet *metric.MetricSet

	rpcListeners []net.Listener
}

type Option func(*Node)

// WithCheckedParent sets the parent block context validation runs against.
// Without it the node relays and buffers statements but produces none.
func WithCheckedParent(parent *types.BlockID) Option {
	return func(n *Node) {
		n.router.SetCheckedParent(parent)
	}
}

// DefaultNewNode loads keys from the config paths and assembles a node with
// no checked parent context.
func DefaultNewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return nil, err
	}
	pv := privval.LoadOrGenFilePV(config.PrivValidatorKeyFile())

	return NewNode(config, nodeKey, pv, logger)
}

func createTransport(
	nodeInfo p2p.NodeInfo,
	nodeKey *p2p.NodeKey,
) *p2p.MultiplexTransport {
	var (
		mConnConfig = conn.DefaultMConnConfig()
		transport   = p2p.NewMultiplexTransport(nodeInfo, *nodeKey, mConnConfig)
	)
	return transport
}

func createSwitch(config *cfg.Config,
	transport p2p.Transport,
	statementReactor *network.Reactor,
	nodeInfo p2p.NodeInfo,
	nodeKey *p2p.NodeKey,
	p2pLogger log.Logger) *p2p.Switch {

	sw := p2p.NewSwitch(
		config.P2P,
		transport,
	)
	sw.SetLogger(p2pLogger)
	sw.AddReactor("STATEMENT", statementReactor)

	sw.SetNodeInfo(nodeInfo)
	sw.SetNodeKey(nodeKey)

	p2pLogger.Info("P2P Node ID", "ID", nodeKey.ID(), "file", config.NodeKeyFile())
	return sw
}

func makeNodeInfo(
	config *cfg.Config,
	nodeKey *p2p.NodeKey,
) (p2p.NodeInfo, error) {
	nodeInfo := p2p.DefaultNodeInfo{
		ProtocolVersion: p2p.NewProtocolVersion(
			8, // global
			11,
			0,
		),
		DefaultNodeID: nodeKey.ID(),
		Network:       ChainID,
		Version:       version.TMCoreSemVer,
		Channels: []byte{
			network.StatementChannel,
			network.DataChannel,
		},
		Moniker: config.Moniker,
		Other: p2p.DefaultNodeInfoOther{
			TxIndex:    "off",
			RPCAddress: config.RPC.ListenAddress,
		},
	}

	lAddr := config.P2P.ExternalAddress

	if lAddr == "" {
		lAddr = config.P2P.ListenAddress
	}

	nodeInfo.ListenAddr = lAddr

	err := nodeInfo.Validate()
	return nodeInfo, err
}

func NewNode(
	config *cfg.Config,
	nodeKey *p2p.NodeKey,
	pv types.PrivValidator,
	logger log.Logger,
	options ...Option,
) (*Node, error) {
	tbl, err := table.NewStatementTable(ChainID, pv)
	if err != nil {
		return nil, err
	}
	tbl.SetLogger(logger.With("module", "table"))

	store := network.NewAvailabilityStore(tmdb.NewMemDB(), logger.With("module", "availability"))

	reactor := network.NewReactor(store)
	reactor.SetLogger(logger.With("module", "network"))

	gossip := network.NewGossipService(store, reactor.EventSwitch())

	pool := scheduler.NewPool(producerWorkers)

	rt := router.NewRouter(tbl, gossip, chain.NopQuerier{}, pool, nil)
	rt.SetLogger(logger.With("module", "router"))
	reactor.SetImporter(rt)

	metricSet := metric.NewMetricSet()
	if err := metricSet.SetMetrics("router", rt.Metric()); err != nil {
		return nil, err
	}
	if err := metricSet.SetMetrics("statementpool", rt.Deferred().Metric()); err != nil {
		return nil, err
	}

	p2pLogger := logger.With("module", "p2p")

	// setup node identity
	nodeinfo, err := makeNodeInfo(config, nodeKey)
	if err != nil {
		return nil, err
	}

	// Setup Transport.
	transport := createTransport(nodeinfo, nodeKey)

	// Setup Switch.
	sw := createSwitch(
		config, transport, reactor, nodeinfo, nodeKey, p2pLogger,
	)

	node := &Node{
		config:    config,
		transport: transport,
		sw:        sw,
		nodeInfo:  nodeinfo,
		nodeKey:   nodeKey,
		reactor:   reactor,
		router:    rt,
		pool:      pool,
		metricSet: metricSet,
	}

	node.BaseService = *service.NewBaseService(logger, "Node", node)
	for _, option := range options {
		option(node)
	}

	return node, nil
}

func (n *Node) Switch() *p2p.Switch {
	return n.sw
}

func (n *Node) NodeInfo() p2p.NodeInfo {
	return n.nodeInfo
}

// Router returns the statement router, the node's import entry point.
func (n *Node) Router() *router.Router {
	return n.router
}

func (n *Node) OnStart() error {
	// start the transport
	addr, err := p2p.NewNetAddressString(p2p.IDAddressString(n.nodeKey.ID(), n.config.P2P.ListenAddress))
	if err != nil {
		return err
	}
	if err := n.transport.Listen(*addr); err != nil {
		return err
	}

	// start the Switch; it starts the statement reactor
	err = n.sw.Start()
	if err != nil {
		return err
	}

	n.Logger.Info("onstart", "peers", n.config.P2P.PersistentPeers)
	err = n.sw.DialPeersAsync(splitAndTrimEmpty(n.config.P2P.PersistentPeers, ",", " "))
	if err != nil {
		return fmt.Errorf("could not dial peers from persistent_peers field: %w", err)
	}

	if n.config.RPC.ListenAddress != "" {
		listeners, err := n.startRPC()
		if err != nil {
			return err
		}
		n.rpcListeners = listeners
	}

	return nil
}

func (n *Node) OnStop() {
	for _, l := range n.rpcListeners {
		if err := l.Close(); err != nil {
			n.Logger.Error("error closing rpc listener", "err", err)
		}
	}

	if err := n.sw.Stop(); err != nil {
		n.Logger.Error("error stopping switch", "err", err)
	}

	if err := n.transport.Close(); err != nil {
		n.Logger.Error("error closing transport", "err", err)
	}

	// drain in-flight producers
	n.pool.StopWait()
}

// startRPC exposes the statement import and metric routes over JSON-RPC,
// plus a websocket endpoint for streaming clients.
func (n *Node) startRPC() ([]net.Listener, error) {
	rpc.SetEnvironment(&rpc.Environment{
		Router:    n.router,
		MetricSet: n.metricSet,
	})

	rpcLogger := n.Logger.With("module", "rpc-server")

	mux := http.NewServeMux()
	rpcserver.RegisterRPCFuncs(mux, rpc.Routes, rpcLogger)

	wm := rpcserver.NewWebsocketManager(rpc.Routes)
	wm.SetLogger(rpcLogger.With("protocol", "websocket"))
	mux.HandleFunc("/websocket", wm.WebsocketHandler)

	config := rpcserver.DefaultConfig()
	listener, err := rpcserver.Listen(n.config.RPC.ListenAddress, config)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := rpcserver.Serve(listener, mux, rpcLogger, config); err != nil {
			rpcLogger.Error("rpc server stopped", "err", err)
		}
	}()

	return []net.Listener{listener}, nil
}

// splitAndTrimEmpty slices s into all subslices separated by sep and returns a
// slice of the string s with all leading and trailing Unicode code points
// contained in cutset removed. Also filters out empty strings.
func splitAndTrimEmpty(s, sep, cutset string) []string {
	if s == "" {
		return []string{}
	}

	spl := strings.Split(s, sep)
	nonEmptyStrings := make([]string, 0, len(spl))
	for i := 0; i < len(spl); i++ {
		element := strings.Trim(spl[i], cutset)
		if element != "" {
			nonEmptyStrings = append(nonEmptyStrings, element)
		}
	}
	return nonEmptyStrings
}
