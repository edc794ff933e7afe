package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool executes submitted jobs on a fixed set of worker goroutines.
type Pool struct {
	q *queue

	_        [CacheLineBytes]byte
	queued   atomic.Int64 // jobs currently in the ring
	_        [CacheLineBytes - 8]byte
	inFlight atomic.Int64 // jobs not yet completed (queued + running)
	_        [CacheLineBytes - 8]byte
	stop     atomic.Bool

	mtx    sync.Mutex
	cvWork *sync.Cond // workers park here when no work is visible
	cvDone *sync.Cond // waiters park here until inFlight drains to zero

	workers  sync.WaitGroup
	nthreads int
}

// New creates a pool with the given worker count and ring capacity.
// threads below 1 is clamped to 1; capacity 0 selects
// DefaultQueueCapacity.
func New(threads, capacity int) *Pool {
	if threads < 1 {
		threads = 1
	}

	p := &Pool{
		q:        newQueue(capacity),
		nthreads: threads,
	}
	p.cvWork = sync.NewCond(&p.mtx)
	p.cvDone = sync.NewCond(&p.mtx)

	p.workers.Add(threads)
	for i := 0; i < threads; i++ {
		go p.worker()
	}
	return p
}

// jobDone retires one job and releases the barrier when it was the last.
func (p *Pool) jobDone() {
	if p.inFlight.Add(-1) == 0 {
		p.mtx.Lock()
		p.cvDone.Broadcast()
		p.mtx.Unlock()
	}
}

func (p *Pool) worker() {
	defer p.workers.Done()

	for {
		if p.queued.Load() != 0 {
			if job, ok := p.q.tryDequeue(); ok {
				p.queued.Add(-1)
				job()
				p.jobDone()
				continue
			}
			runtime.Gosched()
		}

		// No job visible right now.
		if p.stop.Load() && p.inFlight.Load() == 0 {
			return
		}

		// Park until work arrives or stop is requested.
		p.mtx.Lock()
		for !p.stop.Load() && p.queued.Load() == 0 {
			p.cvWork.Wait()
		}
		p.mtx.Unlock()
	}
}

// Submit hands one job to the pool. It never blocks: when the ring is
// full the job runs inline on the caller before Submit returns. Nil jobs
// and submissions after Close are ignored.
//
// The returned error is always nil; the signature satisfies
// brutal.Executor.
func (p *Pool) Submit(fn func()) error {
	if fn == nil {
		return nil
	}
	if p.stop.Load() {
		return nil
	}

	// Reserve the completion slot first so Wait cannot observe zero
	// between enqueue and execution.
	p.inFlight.Add(1)

	if p.q.tryEnqueue(fn) {
		// Wake at most one worker per underflow; once nthreads signals
		// are out, further enqueues land on already-running workers.
		prev := p.queued.Add(1) - 1
		if prev < int64(p.nthreads) {
			p.mtx.Lock()
			p.cvWork.Signal()
			p.mtx.Unlock()
		}
	} else {
		// Ring full: run it here.
		fn()
		p.jobDone()
	}
	return nil
}

// Wait blocks until no submitted job remains unfinished. While work is
// still queued the waiter dequeues and runs jobs itself, so Wait makes
// progress even if every worker is busy.
func (p *Pool) Wait() {
	for {
		if p.inFlight.Load() == 0 {
			return
		}

		if p.queued.Load() != 0 {
			if job, ok := p.q.tryDequeue(); ok {
				p.queued.Add(-1)
				job()
				p.jobDone()
				continue
			}
			runtime.Gosched()
		}

		// Nothing left to help with right now.
		p.mtx.Lock()
		for p.inFlight.Load() != 0 && p.queued.Load() == 0 {
			p.cvDone.Wait()
		}
		p.mtx.Unlock()
	}
}

// Close drains outstanding work, stops the workers, and joins them.
// Safe to call on a nil pool.
func (p *Pool) Close() {
	if p == nil {
		return
	}

	p.Wait()

	p.stop.Store(true)

	p.mtx.Lock()
	p.cvWork.Broadcast()
	p.mtx.Unlock()

	p.workers.Wait()
}
