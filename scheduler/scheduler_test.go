package scheduler

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllTasks(t *testing.T) {
	pool := NewPool(4)

	const n = 100
	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		pool.Spawn(func() {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
		})
	}
	wg.Wait()
	pool.StopWait()

	assert.EqualValues(t, n, atomic.LoadInt64(&counter))
}

func TestSyncRunsInline(t *testing.T) {
	ran := false
	Sync{}.Spawn(func() { ran = true })
	assert.True(t, ran)
}
