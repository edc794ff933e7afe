package ecs

import (
	"github.com/waldnercharles/brutal/ecs/internal/bitset"
	"github.com/waldnercharles/brutal/errors"
)

// system is one registered system record.
type system struct {
	fn    SystemFunc
	udata any

	allOf  bitset.Mask // components an entity must carry to match
	noneOf bitset.Mask // components an entity must not carry
	read   bitset.Mask // components the system reads
	write  bitset.Mask // components the system writes
	rw     bitset.Mask // read | write, kept in sync

	after bitset.Mask // system indices this system must run after

	group   int
	enabled bool
}

// NewSystem registers fn with the given user data and returns its ID.
// Systems are kept from running only via Disable; they start enabled,
// in group 0, with empty predicate and access sets.
func (w *World) NewSystem(fn SystemFunc, udata any) SysID {
	if len(w.systems) >= MaxSystems {
		panic(errors.Capacity(errors.PhaseRegistration, "systems", MaxSystems))
	}
	if fn == nil {
		panic(errors.NilFunc(errors.PhaseRegistration, "system function"))
	}

	id := SysID(len(w.systems))
	w.systems = append(w.systems, system{
		fn:      fn,
		udata:   udata,
		enabled: true,
	})
	w.scheduleDirty = true
	return id
}

// Require adds component c to the system's match predicate. Required
// components are implicitly read.
func (w *World) Require(s SysID, c CompID) {
	w.checkSys(s)
	w.checkComp(c)
	sys := &w.systems[s]
	sys.allOf.Set(int(c))
	sys.read.Set(int(c))
	sys.rw.Set(int(c))
	w.scheduleDirty = true
}

// Exclude adds component c to the system's exclusion predicate: entities
// carrying c never match.
func (w *World) Exclude(s SysID, c CompID) {
	w.checkSys(s)
	w.checkComp(c)
	w.systems[s].noneOf.Set(int(c))
	w.scheduleDirty = true
}

// Read declares that the system reads component c without requiring it.
func (w *World) Read(s SysID, c CompID) {
	w.checkSys(s)
	w.checkComp(c)
	sys := &w.systems[s]
	sys.read.Set(int(c))
	sys.rw.Set(int(c))
	w.scheduleDirty = true
}

// Write declares that the system writes component c.
func (w *World) Write(s SysID, c CompID) {
	w.checkSys(s)
	w.checkComp(c)
	sys := &w.systems[s]
	sys.write.Set(int(c))
	sys.rw.Set(int(c))
	w.scheduleDirty = true
}

// After adds an explicit ordering edge: s runs in a later stage than dep.
// An edge that contradicts a conflict-derived ordering surfaces as a
// cycle error from Progress.
func (w *World) After(s, dep SysID) {
	w.checkSys(s)
	w.checkSys(dep)
	w.systems[s].after.Set(int(dep))
	w.scheduleDirty = true
}

// Enable allows the system to run. Enabled state gates dispatch, not
// stage assignment.
func (w *World) Enable(s SysID) {
	w.checkSys(s)
	w.systems[s].enabled = true
	w.scheduleDirty = true
}

// Disable prevents the system from running. Its stage still exists, so
// systems ordered after it keep their placement.
func (w *World) Disable(s SysID) {
	w.checkSys(s)
	w.systems[s].enabled = false
	w.scheduleDirty = true
}

// SetGroup assigns the system's group tag. Group 0 is the default group,
// selected by Progress(0); non-zero groups are selected by bitwise mask.
func (w *World) SetGroup(s SysID, group int) {
	w.checkSys(s)
	w.systems[s].group = group
	w.scheduleDirty = true
}

// Group returns the system's group tag.
func (w *World) Group(s SysID) int {
	w.checkSys(s)
	return w.systems[s].group
}

// SetUdata replaces the system's user data.
func (w *World) SetUdata(s SysID, udata any) {
	w.checkSys(s)
	w.systems[s].udata = udata
}

// Udata returns the system's user data.
func (w *World) Udata(s SysID) any {
	w.checkSys(s)
	return w.systems[s].udata
}

// Enabled reports whether the system is enabled.
func (w *World) Enabled(s SysID) bool {
	w.checkSys(s)
	return w.systems[s].enabled
}
