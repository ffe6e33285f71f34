package scheduler

import (
	"github.com/gammazero/workerpool"
)

// TaskExecutor runs independent units of work. Spawned tasks are
// fire-and-forget: nothing observes their completion and there is no
// cancellation.
type TaskExecutor interface {
	Spawn(task func())
}

// Pool is a TaskExecutor backed by a fixed-size worker pool.
type Pool struct {
	wp *workerpool.WorkerPool
}

var _ TaskExecutor = (*Pool)(nil)

func NewPool(maxWorkers int) *Pool {
	return &Pool{wp: workerpool.New(maxWorkers)}
}

func (p *Pool) Spawn(task func()) {
	p.wp.Submit(task)
}

// StopWait stops accepting tasks and blocks until queued tasks finish.
func (p *Pool) StopWait() {
	p.wp.StopWait()
}

// Sync runs every task inline on the calling goroutine, useful for testing.
type Sync struct{}

var _ TaskExecutor = Sync{}

func (Sync) Spawn(task func()) {
	task()
}
