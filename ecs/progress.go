package ecs

import (
	"github.com/waldnercharles/brutal/ecs/internal/bitset"
	"github.com/waldnercharles/brutal/errors"
)

// Progress runs one tick: every enabled system whose group matches
// groupMask, stage by stage. groupMask 0 selects systems in the default
// group 0; a non-zero mask selects systems whose group intersects it
// bitwise.
//
// Within a stage all active systems run concurrently, each sharded into
// lane-count slices. Deferred structural changes are applied after every
// stage. The first error, whether from the executor or from a system,
// aborts the remaining stages, but the final command drain always runs so
// no change is left half-applied.
func (w *World) Progress(groupMask int) error {
	if w.scheduleDirty {
		if err := w.buildStages(); err != nil {
			return err
		}
	}

	w.tickErr = nil
	w.inProgress.Store(true)

	mt := w.exec != nil && w.lanes > 1

	var active []SysID
	for _, stage := range w.stages {
		active = active[:0]
		for _, s := range stage {
			sys := &w.systems[s]
			if !sys.enabled {
				continue
			}
			if groupMask == 0 {
				if sys.group != 0 {
					continue
				}
			} else if sys.group&groupMask == 0 {
				continue
			}
			active = append(active, s)
		}
		if len(active) == 0 {
			continue
		}

		if !mt {
			for _, s := range active {
				w.runTask(s, 0, 1, 0)
				if w.loadTickErr() != nil {
					break
				}
			}
		} else {
			w.dispatch(active)
		}

		if w.loadTickErr() != nil {
			break
		}

		// Apply deferred commands between stages.
		w.inProgress.Store(false)
		w.drainCommands()
		w.inProgress.Store(true)
	}

	w.inProgress.Store(false)
	w.drainCommands()
	return w.loadTickErr()
}

// dispatch submits active-count x lane-count tasks for one stage and
// barriers on the executor. A submit failure stops further submission;
// the barrier still runs so already-queued tasks finish before commands
// are drained.
//
// Every task in the stage gets its own buffer slot: tasks of different
// systems run concurrently under the single stage barrier, so a buffer
// per lane alone would be shared.
func (w *World) dispatch(active []SysID) {
	lanes := w.lanes
	w.growLanes(len(active) * lanes)

	for i, s := range active {
		for lane := 0; lane < lanes; lane++ {
			s, lane := s, lane
			slot := i*lanes + lane
			if err := w.exec.Submit(func() { w.runTask(s, lane, lanes, slot) }); err != nil {
				w.setTickErr(errors.TaskEnqueue(err))
				w.exec.Wait()
				return
			}
		}
	}
	w.exec.Wait()
}

// RunSystem runs a single system outside stage logic: one dispatch, one
// barrier, one command drain. Semantically a one-stage tick with exactly
// one active system. Disabled systems are a no-op.
func (w *World) RunSystem(s SysID) error {
	w.checkSys(s)
	if !w.systems[s].enabled {
		return nil
	}

	w.tickErr = nil
	w.inProgress.Store(true)

	if w.exec != nil && w.lanes > 1 {
		w.dispatch([]SysID{s})
	} else {
		w.runTask(s, 0, 1, 0)
	}

	w.inProgress.Store(false)
	w.drainCommands()
	return w.loadTickErr()
}

// runTask executes one (system, lane) unit: pick the driver pool, slice
// its dense array, filter the slice against the system's predicates into
// the slot's scratch buffer, and invoke the callback. lane/lanes select
// the dense slice; slot selects the scratch and command buffers.
func (w *World) runTask(sysIdx SysID, lane, lanes, slot int) {
	s := &w.systems[sysIdx]

	driver, ok := w.pickDriver(s.allOf)
	if !ok {
		return
	}
	pool := w.pools[driver]
	n := pool.Len()
	if n == 0 {
		return
	}

	start := n * lane / lanes
	end := n * (lane + 1) / lanes

	scratch := w.scratch[slot][:0]
	dense := pool.Dense()
	anyExcluded := s.noneOf.Any()
	for i := start; i < end; i++ {
		e := dense[i]
		if !w.hasAllOf(e, s.allOf) {
			continue
		}
		if anyExcluded && w.hasAnyOf(e, s.noneOf) {
			continue
		}
		scratch = append(scratch, Entity(e))
	}
	w.scratch[slot] = scratch // keep grown capacity

	if len(scratch) == 0 {
		return
	}

	v := &View{world: w, entities: scratch, lane: slot}
	if err := s.fn(w, v, s.udata); err != nil {
		w.setTickErr(errors.SystemFailed(int(sysIdx), err))
	}
}

// pickDriver returns the required component with the smallest pool, the
// cheapest dense array to drive iteration. ok is false when the system
// requires nothing; such a system matches no entities.
func (w *World) pickDriver(allOf bitset.Mask) (CompID, bool) {
	best := CompID(0)
	bestN := int(^uint(0) >> 1)
	found := false

	allOf.ForEach(func(bit int) {
		n := w.pools[bit].Len()
		if n < bestN {
			best = CompID(bit)
			bestN = n
			found = true
		}
	})
	return best, found
}

// drainCommands applies every buffer's deferred commands in slot order,
// FIFO within a buffer, then resets the buffers. Order between buffers is
// unspecified and must not be relied on.
func (w *World) drainCommands() {
	for _, cb := range w.cmdBufs {
		for i := range cb.cmds {
			cmd := &cb.cmds[i]
			switch cmd.kind {
			case cmdDestroy:
				w.destroyNow(cmd.entity)
			case cmdAdd:
				dst := w.pools[cmd.comp].Add(int32(cmd.entity))
				copy(dst, cmd.data)
			case cmdRemove:
				w.pools[cmd.comp].Remove(int32(cmd.entity))
			}
		}
		cb.reset()
	}
}
