package router

import (
	"sync"

	jsoniter "github.com/json-iterator/go"
)

func newRouterMetric() *routerMetric {
	return &routerMetric{}
}

type routerMetric struct {
	mtx         sync.RWMutex
	DeferredNum int64 `json:"deferred_num"` // statements parked for unknown candidates
	ImportedNum int64 `json:"imported_num"` // statements handed to the table
	ProducerNum int64 `json:"producer_num"` // producers dispatched to the scheduler
	ProducedNum int64 `json:"produced_num"` // statements signed from producer results
}

func (rm *routerMetric) JSONString() string {
	rm.mtx.RLock()
	defer rm.mtx.RUnlock()
	s, _ := jsoniter.MarshalToString(rm)
	return s
}

func (rm *routerMetric) MarkDeferred() {
	rm.mtx.Lock()
	defer rm.mtx.Unlock()
	rm.DeferredNum++
}

func (rm *routerMetric) MarkImported(count int64) {
	rm.mtx.Lock()
	defer rm.mtx.Unlock()
	rm.ImportedNum += count
}

func (rm *routerMetric) MarkProducer() {
	rm.mtx.Lock()
	defer rm.mtx.Unlock()
	rm.ProducerNum++
}

func (rm *routerMetric) MarkProduced() {
	rm.mtx.Lock()
	defer rm.mtx.Unlock()
	rm.ProducedNum++
}
