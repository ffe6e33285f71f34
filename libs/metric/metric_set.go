package metric

import (
	"errors"
	"sync"
)

var (
	ErrMetricLabelExist = errors.New("metric label already exist")
)

func NewMetricSet() *MetricSet {
	return &MetricSet{
		metrics: make(map[string]MetricItem),
	}
}

// MetricSet is a label-keyed registry of component metrics.
type MetricSet struct {
	mtx     sync.RWMutex
	metrics map[string]MetricItem
}

// SetMetrics registers item under label; a label can only be set once.
func (ms *MetricSet) SetMetrics(label string, item MetricItem) error {
	if ms.HasMetrics(label) {
		return ErrMetricLabelExist
	}

	ms.mtx.Lock()
	ms.metrics[label] = item
	ms.mtx.Unlock()
	return nil
}

func (ms *MetricSet) HasMetrics(label string) bool {
	ms.mtx.RLock()
	_, existed := ms.metrics[label]
	ms.mtx.RUnlock()
	return existed
}

func (ms *MetricSet) GetMetrics(label string) MetricItem {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	return ms.metrics[label]
}

func (ms *MetricSet) Labels() []string {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	keys := make([]string, 0, len(ms.metrics))
	for k := range ms.metrics {
		keys = append(keys, k)
	}
	return keys
}
