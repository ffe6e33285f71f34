package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"statementnet_demo/libs/utils"
)

// chainID must match the one the target node signs under.
const chainID = "statementnet-demo"

func main() {
	var (
		target      string
		connections int
		rate        int
		duration    int
		verbose     bool
	)

	flag.StringVar(&target, "target", "127.0.0.1:26657", "RPC endpoint of the node under test")
	flag.IntVar(&connections, "c", 1, "connections to keep open per endpoint")
	flag.IntVar(&rate, "r", 500, "statements per second per connection")
	flag.IntVar(&duration, "T", 10, "exit after the specified amount of time in seconds")
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.Parse()

	logger := log.NewNopLogger()
	if verbose {
		logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	}

	t := newTransacter(target, connections, rate)
	t.SetLogger(logger)
	if err := t.Start(); err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}

	timer := time.NewTimer(time.Duration(duration) * time.Second)
	<-timer.C

	t.Stop()
	printStats(t)
}

func printStats(t *transacter) {
	sent := t.sentMeter.Count()
	lats := t.writeLatsNs.Sample().Values()

	latsMs := make([]float64, len(lats))
	for i, l := range lats {
		latsMs[i] = float64(l) / float64(time.Millisecond)
	}

	fmt.Printf("sent %d statements (%.1f/s)\n", sent, t.sentMeter.RateMean())
	if len(latsMs) > 0 {
		fmt.Printf("write latency ms: avg=%.3f mean=%.3f min=%.3f max=%.3f\n",
			utils.Avg(latsMs...),
			utils.Mean(latsMs...),
			utils.Min(latsMs...),
			utils.Max(latsMs...),
		)
	}
}
