// Package worker runs batches of analysis requests on a fixed set of
// workers, one engine per worker.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lgbarn/uci-analysis-go/internal/engine"
)

// WorkItem is one position to analyse.
type WorkItem struct {
	Request engine.Request
	Label   string // Caller's identifier, e.g. the input line
	Index   int    // Original index for tracking
}

// ProcessResult is the outcome of one WorkItem.
type ProcessResult struct {
	Index  int
	Label  string
	Result *engine.EvalResult // Final snapshot; nil when the engine reported nothing
	Cached bool               // Served from the evaluation cache
	Worker int                // Worker that produced the result
	Err    error
}

// ProcessFunc analyses one item. worker is the index of the calling worker
// in [0, NumWorkers) and lets the caller keep per-worker engines.
type ProcessFunc func(ctx context.Context, worker int, item WorkItem) ProcessResult

// Pool manages a pool of analysis workers.
type Pool struct {
	numWorkers  int
	bufferSize  int
	workChan    chan WorkItem
	resultChan  chan ProcessResult
	processFunc ProcessFunc
	wg          sync.WaitGroup
	stopFlag    int32 // Atomic flag for early termination
	cancel      context.CancelFunc
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n >= 1 {
			p.numWorkers = n
		}
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) PoolOption {
	return func(p *Pool) {
		if size >= 1 {
			p.bufferSize = size
		}
	}
}

// NewPool creates a worker pool. processFunc is required; by default there
// is 1 worker and a buffer of 10.
func NewPool(processFunc ProcessFunc, opts ...PoolOption) *Pool {
	p := &Pool{
		numWorkers:  1,
		bufferSize:  10,
		processFunc: processFunc,
		cancel:      func() {},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.workChan = make(chan WorkItem, p.bufferSize)
	p.resultChan = make(chan ProcessResult, p.bufferSize)
	return p
}

// Start starts the worker goroutines. ctx is passed to every ProcessFunc
// call and is cancelled by Stop.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// worker processes items from the work channel until it is closed.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for item := range p.workChan {
		if p.IsStopped() {
			continue // Drain channel without processing
		}
		res := p.processFunc(ctx, id, item)
		res.Index, res.Label, res.Worker = item.Index, item.Label, id
		p.resultChan <- res
	}
}

// Submit submits a work item for processing.
// This may block if the work channel buffer is full.
func (p *Pool) Submit(item WorkItem) {
	p.workChan <- item
}

// Stop signals workers to stop: running analyses see their context
// cancelled and queued items are drained without being processed.
func (p *Pool) Stop() {
	atomic.StoreInt32(&p.stopFlag, 1)
	p.cancel()
}

// IsStopped returns true if the pool has been stopped.
func (p *Pool) IsStopped() bool {
	return atomic.LoadInt32(&p.stopFlag) != 0
}

// Close closes the work channel and waits for all workers to finish.
// The result channel is closed once they have.
func (p *Pool) Close() {
	close(p.workChan)
	p.wg.Wait()
	close(p.resultChan)
	p.cancel()
}

// Results returns the result channel for reading processed results.
func (p *Pool) Results() <-chan ProcessResult {
	return p.resultChan
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}
