package statementpool

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
)

func newPoolMetric() *poolMetric {
	return &poolMetric{}
}

type poolMetric struct {
	mtx          sync.RWMutex
	DeferredNum  int64 `json:"deferred_num"`  // statements buffered since start
	DuplicateNum int64 `json:"duplicate_num"` // duplicate pushes absorbed
	DrainedNum   int64 `json:"drained_num"`   // statements handed back by drains
}

func (pm *poolMetric) JSONString() string {
	pm.mtx.RLock()
	defer pm.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(pm)
	return s
}

func (pm *poolMetric) MarkDeferred() {
	pm.mtx.Lock()
	defer pm.mtx.Unlock()
	pm.DeferredNum++
}

func (pm *poolMetric) MarkDuplicate() {
	pm.mtx.Lock()
	defer pm.mtx.Unlock()
	pm.DuplicateNum++
}

func (pm *poolMetric) MarkDrained(count int64) {
	pm.mtx.Lock()
	defer pm.mtx.Unlock()
	pm.DrainedNum += count
}
