package ecs

import "github.com/waldnercharles/brutal/errors"

// Create allocates an entity ID, recycling from the free list before
// taking a fresh value from the monotonic counter. Lock-free; safe to call
// from any goroutine at any time, including inside system functions.
func (w *World) Create() Entity {
	if e := w.freeListPop(); e != None {
		return e
	}
	return Entity(w.nextEntity.Add(1) - 1)
}

// Destroy removes e from every component pool and returns its ID to the
// free list. Must not be called while a tick is in progress; deferred
// destruction goes through View.Destroy. Destroying an ID that is not
// live is undefined behaviour.
func (w *World) Destroy(e Entity) {
	if w.inProgress.Load() {
		panic(errors.InProgress(errors.PhaseSync, "immediate destroy; use View.Destroy"))
	}
	w.destroyNow(e)
}

// destroyNow is the immediate destroy path, shared by Destroy and the
// command drain.
func (w *World) destroyNow(e Entity) {
	for _, p := range w.pools {
		p.Remove(int32(e))
	}

	if int(e) >= len(w.freeNext) {
		capacity := len(w.freeNext) * 2
		for capacity <= int(e) {
			capacity *= 2
		}
		grown := make([]int32, capacity)
		copy(grown, w.freeNext)
		w.freeNext = grown
	}

	w.freeListPush(e)
}

// freeListPop takes the head of the Treiber free list, or None when empty.
func (w *World) freeListPop() Entity {
	for {
		head := w.freeHead.Load()
		if head < 0 {
			return None
		}
		next := w.freeNext[head]
		if w.freeHead.CompareAndSwap(head, next) {
			return Entity(head)
		}
	}
}

// freeListPush links e in front of the free list.
func (w *World) freeListPush(e Entity) {
	for {
		head := w.freeHead.Load()
		w.freeNext[e] = head
		if w.freeHead.CompareAndSwap(head, int32(e)) {
			return
		}
	}
}
