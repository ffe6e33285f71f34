package main

import (
	"encoding/json"
	"fmt"

	// it is ok to use math/rand here: we do not need a cryptographically secure random
	// number generator here and we can run the tool a bit faster
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/tendermint/tendermint/libs/log"
	jsonrpc "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	tmjson "github.com/tendermint/tendermint/libs/json"

	"statementnet_demo/types"
)

const (
	sendTimeout = 10 * time.Second
	// see https://github.com/tendermint/tendermint/blob/master/rpc/lib/server/handlers.go
	pingPeriod = (30 * 9 / 10) * time.Second
)

type transacter struct {
	Target      string
	Rate        int
	Connections int
	conns       []*websocket.Conn
	connsBroken []bool
	startingWg  sync.WaitGroup
	endingWg    sync.WaitGroup
	stopped     bool

	pv types.MockPV

	sentMeter   metrics.Meter
	writeLatsNs metrics.Histogram

	logger log.Logger
}

func newTransacter(target string, connections, rate int) *transacter {
	return &transacter{
		Target:      target,
		Rate:        rate,
		Connections: connections,
		conns:       make([]*websocket.Conn, connections),
		connsBroken: make([]bool, connections),
		pv:          types.NewMockPV(),
		sentMeter:   metrics.NewMeter(),
		writeLatsNs: metrics.NewHistogram(metrics.NewUniformSample(1000)),
		logger:      log.NewNopLogger(),
	}
}

// SetLogger lets you set your own logger
func (t *transacter) SetLogger(l log.Logger) {
	t.logger = l
}

// Start opens N = `t.Connections` connections to the target and creates read
// and write goroutines for each connection.
func (t *transacter) Start() error {
	t.stopped = false

	rand.Seed(time.Now().Unix())

	for i := 0; i < t.Connections; i++ {
		c, _, err := connect(t.Target)
		if err != nil {
			return err
		}
		t.conns[i] = c
	}

	t.startingWg.Add(t.Connections)
	t.endingWg.Add(2 * t.Connections)
	for i := 0; i < t.Connections; i++ {
		go t.sendLoop(i)
		go t.receiveLoop(i)
	}

	t.startingWg.Wait()

	return nil
}

// Stop closes the connections.
func (t *transacter) Stop() {
	t.stopped = true
	t.endingWg.Wait()
	for _, c := range t.conns {
		c.Close()
	}
}

// receiveLoop reads responses from the connection and discards them.
func (t *transacter) receiveLoop(connIndex int) {
	c := t.conns[connIndex]
	defer t.endingWg.Done()
	for {
		_, _, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.logger.Error(
					fmt.Sprintf("failed to read response on conn %d", connIndex),
					"err",
					err,
				)
			}
			return
		}
		if t.stopped || t.connsBroken[connIndex] {
			return
		}
	}
}

// sendLoop generates statements at a given rate.
func (t *transacter) sendLoop(connIndex int) {
	started := false
	// Close the starting waitgroup, in the event that this fails to start
	defer func() {
		if !started {
			t.startingWg.Done()
		}
	}()
	c := t.conns[connIndex]

	c.SetPingHandler(func(message string) error {
		err := c.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(sendTimeout))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Temporary() {
			return nil
		}
		return err
	})

	logger := t.logger.With("addr", c.RemoteAddr())

	pingsTicker := time.NewTicker(pingPeriod)
	stmtsTicker := time.NewTicker(1 * time.Second)
	defer func() {
		pingsTicker.Stop()
		stmtsTicker.Stop()
		t.endingWg.Done()
	}()

	for {
		select {
		case <-stmtsTicker.C:
			startTime := time.Now()
			endTime := startTime.Add(time.Second)
			numStmtSent := t.Rate
			if !started {
				t.startingWg.Done()
				started = true
			}

			now := time.Now()
			for i := 0; i < t.Rate; i++ {
				statement := t.generateStatement()
				stmtJSON, err := tmjson.Marshal(statement)
				if err != nil {
					fmt.Printf("failed to encode statement: %v\n", err)
					os.Exit(1)
				}
				paramsJSON, err := json.Marshal(map[string]interface{}{"statement": json.RawMessage(stmtJSON)})
				if err != nil {
					fmt.Printf("failed to encode params: %v\n", err)
					os.Exit(1)
				}
				rawParamsJSON := json.RawMessage(paramsJSON)

				c.SetWriteDeadline(now.Add(sendTimeout))
				writeStart := time.Now()
				err = c.WriteJSON(jsonrpc.RPCRequest{
					JSONRPC: "2.0",
					ID:      jsonrpc.JSONRPCStringID("stmt-bench"),
					Method:  "import_statement",
					Params:  rawParamsJSON,
				})
				if err != nil {
					err = errors.Wrap(err,
						fmt.Sprintf("statement send failed on connection #%d", connIndex))
					t.connsBroken[connIndex] = true
					logger.Error(err.Error())
					return
				}
				t.writeLatsNs.Update(time.Since(writeStart).Nanoseconds())
				t.sentMeter.Mark(1)

				// cache the time.Now() reads to save time.
				if i%5 == 0 {
					now = time.Now()
					if now.After(endTime) {
						// Plus one accounts for sending this statement
						numStmtSent = i + 1
						break
					}
				}
			}

			timeToSend := time.Since(startTime)
			logger.Info(fmt.Sprintf("sent %d statements", numStmtSent), "took", timeToSend)
			if timeToSend < 1*time.Second {
				sleepTime := time.Second - timeToSend
				logger.Debug(fmt.Sprintf("connection #%d is sleeping for %f seconds", connIndex, sleepTime.Seconds()))
				time.Sleep(sleepTime)
			}

		case <-pingsTicker.C:
			// go-rpc server closes the connection in the absence of pings
			c.SetWriteDeadline(time.Now().Add(sendTimeout))
			if err := c.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				err = errors.Wrap(err,
					fmt.Sprintf("failed to write ping message on conn #%d", connIndex))
				logger.Error(err.Error())
				t.connsBroken[connIndex] = true
			}
		}

		if t.stopped {
			// To cleanly close a connection, a client should send a close
			// frame and wait for the server to close the connection.
			c.SetWriteDeadline(time.Now().Add(sendTimeout))
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				err = errors.Wrap(err,
					fmt.Sprintf("failed to write close message on conn #%d", connIndex))
				logger.Error(err.Error())
				t.connsBroken[connIndex] = true
			}

			return
		}
	}
}

func connect(host string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: host, Path: "/websocket"}
	return websocket.DefaultDialer.Dial(u.String(), nil)
}

// generateStatement signs a Candidate statement over random block data. Every
// statement introduces a fresh candidate, which is the expensive path in the
// router.
func (t *transacter) generateStatement() types.SignedStatement {
	blockData := make([]byte, 64)
	rand.Read(blockData)

	receipt := &types.CandidateReceipt{
		ParaID:        uint32(rand.Intn(16)),
		BlockDataHash: types.BlockData(blockData).Hash(),
	}

	signed := types.SignedStatement{Statement: types.NewCandidateStatement(receipt)}
	if err := t.pv.SignStatement(chainID, &signed); err != nil {
		panic(err)
	}
	return signed
}
