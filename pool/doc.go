// Package pool implements a fixed-capacity, lock-free MPMC job pool.
//
// Jobs flow through a ring of ticket slots. Each slot carries a turn
// counter that sequences producers and consumers: a producer may claim a
// slot when its turn is even for the slot's current lap, a consumer when
// it is odd. Claiming happens with a CAS on the monotonic head or tail
// ticket, so any number of submitters and workers can operate on the ring
// without locks.
//
// Submit never blocks: when the ring is full, the job runs inline on the
// submitting goroutine. Wait is assisted: while jobs remain in flight the
// waiter dequeues and runs them itself rather than only sleeping, so a
// caller waiting on a barrier contributes to draining it.
//
//	p := pool.New(runtime.NumCPU(), 0)
//	defer p.Close()
//
//	for i := 0; i < 1000; i++ {
//	    p.Submit(work)
//	}
//	p.Wait() // all 1000 jobs have finished
//
// # Counters
//
// Two counters govern coordination. queued is the ring occupancy and
// wakes parked workers; inFlight counts submitted-but-unfinished jobs
// (queued plus currently running) and is the barrier condition for Wait.
//
// # Thread Safety
//
// All methods are safe for concurrent use from any goroutine, including
// from inside running jobs. Close is nil-safe and drains before joining
// the workers.
package pool
