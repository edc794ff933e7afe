package ecs

import (
	"sync"
	"sync/atomic"

	"github.com/waldnercharles/brutal"
	"github.com/waldnercharles/brutal/ecs/internal/bitset"
	"github.com/waldnercharles/brutal/ecs/internal/sparse"
	"github.com/waldnercharles/brutal/errors"
)

// Entity is a dense integer ID. Zero is the reserved "none" sentinel; live
// IDs start at 1. IDs are recycled without a generation tag, so holding an
// ID across an explicit destroy is undefined behaviour.
type Entity int32

// None is the reserved null entity.
const None Entity = 0

// CompID identifies a registered component type.
type CompID uint8

// SysID identifies a registered system.
type SysID int

// SystemFunc is the system callback. It receives the world, a view of the
// matched entities for this task, and the system's user data. A non-nil
// error aborts the enclosing Progress with that error after the final
// command drain.
type SystemFunc func(w *World, v *View, udata any) error

// World owns all entities, component pools, systems, and the per-task-slot
// command and scratch buffers.
//
// Registration and immediate structural changes are single-threaded
// operations; Create is safe from any goroutine at any time. During a
// tick, structural changes go through the View.
type World struct {
	// Entity allocator: a monotonic counter plus a Treiber free list whose
	// links live in freeNext, indexed by entity ID.
	nextEntity atomic.Int32
	freeHead   atomic.Int32 // -1 when empty
	freeNext   []int32

	pools []*sparse.Store // indexed by CompID

	systems       []system
	stages        [][]SysID
	scheduleDirty bool

	exec  brutal.Executor
	lanes int

	inProgress atomic.Bool

	cmdBufs []*cmdBuffer // one per task slot (active system x lane)
	scratch [][]Entity   // one per task slot (active system x lane)

	errMu   sync.Mutex
	tickErr error
}

// New creates an empty world with a single lane and no executor.
func New() *World {
	w := &World{
		freeNext: make([]int32, 1024),
		lanes:    1,
	}
	w.nextEntity.Store(1)
	w.freeHead.Store(-1)
	w.growLanes(1)
	return w
}

// Close releases the world. The world must not be used afterwards.
// Safe on nil.
func (w *World) Close() {
	if w == nil {
		return
	}
	w.pools = nil
	w.systems = nil
	w.stages = nil
	w.cmdBufs = nil
	w.scratch = nil
	w.freeNext = nil
}

// SetExecutor attaches an executor and sets the lane count, clamped to
// [1, MaxLanes]. With a nil executor or a single lane, systems run on the
// calling goroutine. Must not be called while a tick is in progress.
func (w *World) SetExecutor(exec brutal.Executor, lanes int) {
	if w.inProgress.Load() {
		panic(errors.InProgress(errors.PhaseDispatch, "SetExecutor"))
	}
	if lanes < 1 {
		lanes = 1
	}
	if lanes > MaxLanes {
		lanes = MaxLanes
	}
	w.exec = exec
	w.lanes = lanes
	w.growLanes(lanes)
}

// growLanes ensures command and scratch buffers exist for slots 0..n-1.
// Capacity is retained across calls and ticks.
func (w *World) growLanes(n int) {
	for len(w.cmdBufs) < n {
		w.cmdBufs = append(w.cmdBufs, newCmdBuffer())
	}
	for len(w.scratch) < n {
		w.scratch = append(w.scratch, make([]Entity, 0, ScratchInitialCapacity))
	}
}

// setTickErr records the first error observed during the current tick.
func (w *World) setTickErr(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	if w.tickErr == nil {
		w.tickErr = err
	}
	w.errMu.Unlock()
}

func (w *World) loadTickErr() error {
	w.errMu.Lock()
	err := w.tickErr
	w.errMu.Unlock()
	return err
}

// checkComp validates a component ID against the registered count.
func (w *World) checkComp(c CompID) {
	if int(c) >= len(w.pools) {
		panic(errors.OutOfRange(errors.PhaseRegistration, "component", int(c), len(w.pools)))
	}
}

// checkSys validates a system ID against the registered count.
func (w *World) checkSys(s SysID) {
	if s < 0 || int(s) >= len(w.systems) {
		panic(errors.OutOfRange(errors.PhaseRegistration, "system", int(s), len(w.systems)))
	}
}

// hasAllOf reports whether e is present in every pool named by mask.
func (w *World) hasAllOf(e int32, mask bitset.Mask) bool {
	ok := true
	mask.ForEach(func(bit int) {
		if ok && !w.pools[bit].Has(e) {
			ok = false
		}
	})
	return ok
}

// hasAnyOf reports whether e is present in at least one pool named by mask.
func (w *World) hasAnyOf(e int32, mask bitset.Mask) bool {
	found := false
	mask.ForEach(func(bit int) {
		if !found && w.pools[bit].Has(e) {
			found = true
		}
	})
	return found
}
