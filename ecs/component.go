package ecs

import (
	"unsafe"

	"github.com/waldnercharles/brutal/ecs/internal/sparse"
	"github.com/waldnercharles/brutal/errors"
)

// RegisterComponent registers a component type of elemSize bytes and
// returns its ID. Component IDs are dense and assigned in registration
// order. Panics past MaxComponents or on a negative size.
func (w *World) RegisterComponent(elemSize int) CompID {
	if len(w.pools) >= MaxComponents {
		panic(errors.Capacity(errors.PhaseRegistration, "components", MaxComponents))
	}
	if elemSize < 0 {
		panic(errors.New(errors.PhaseRegistration, errors.KindOutOfRange).
			Detail("negative component size %d", elemSize).Build())
	}
	id := CompID(len(w.pools))
	w.pools = append(w.pools, sparse.NewStore(elemSize))
	return id
}

// Add attaches component c to e and returns its zeroed payload bytes, or
// the existing payload if already attached. Immediate path only: during a
// tick, staging goes through View.Add. The returned slice is valid until
// the next structural change to c's pool.
func (w *World) Add(e Entity, c CompID) []byte {
	if w.inProgress.Load() {
		panic(errors.InProgress(errors.PhaseSync, "immediate add; use View.Add"))
	}
	w.checkComp(c)
	return w.pools[c].Add(int32(e))
}

// Remove detaches component c from e, if attached. Immediate path only:
// during a tick, use View.Remove.
func (w *World) Remove(e Entity, c CompID) {
	if w.inProgress.Load() {
		panic(errors.InProgress(errors.PhaseSync, "immediate remove; use View.Remove"))
	}
	w.checkComp(c)
	w.pools[c].Remove(int32(e))
}

// Get returns the payload bytes of component c on e, or nil if absent.
// Always permitted, including during a tick; the stage builder guarantees
// no conflicting writer runs concurrently.
func (w *World) Get(e Entity, c CompID) []byte {
	w.checkComp(c)
	return w.pools[c].Get(int32(e))
}

// Has reports whether e carries component c.
func (w *World) Has(e Entity, c CompID) bool {
	w.checkComp(c)
	return w.pools[c].Has(int32(e))
}

// Count returns the number of entities carrying component c.
func (w *World) Count(c CompID) int {
	w.checkComp(c)
	return w.pools[c].Len()
}

// Comp is a typed handle over a registered component. It is a thin facade
// over the byte-level API; both views of the same component interoperate.
type Comp[T any] struct {
	w  *World
	id CompID
}

// Register registers T as a component and returns its typed handle.
func Register[T any](w *World) Comp[T] {
	var zero T
	id := w.RegisterComponent(int(unsafe.Sizeof(zero)))
	return Comp[T]{w: w, id: id}
}

// ID returns the underlying component ID.
func (c Comp[T]) ID() CompID {
	return c.id
}

// Add attaches the component to e and returns its payload, zeroed on
// first attach. Immediate path only. The pointer is valid until the next
// structural change to this component's pool.
func (c Comp[T]) Add(e Entity) *T {
	b := c.w.Add(e, c.id)
	if len(b) == 0 {
		return new(T)
	}
	return (*T)(unsafe.Pointer(&b[0]))
}

// Get returns the payload of the component on e, or nil if absent.
func (c Comp[T]) Get(e Entity) *T {
	b := c.w.Get(e, c.id)
	if len(b) > 0 {
		return (*T)(unsafe.Pointer(&b[0]))
	}
	var zero T
	if unsafe.Sizeof(zero) == 0 && c.w.Has(e, c.id) {
		return new(T)
	}
	return nil
}

// Has reports whether e carries the component.
func (c Comp[T]) Has(e Entity) bool {
	return c.w.Has(e, c.id)
}

// Remove detaches the component from e. Immediate path only.
func (c Comp[T]) Remove(e Entity) {
	c.w.Remove(e, c.id)
}

// Stage defers attaching the component to e via v's command buffer and
// returns the staged payload for initialisation. The pointer is valid
// until the next stage sync.
func (c Comp[T]) Stage(v *View, e Entity) *T {
	b := v.Add(e, c.id)
	if len(b) == 0 {
		return new(T)
	}
	return (*T)(unsafe.Pointer(&b[0]))
}
