package ecs

// View is the slice of matched entities handed to a system task, plus the
// lane context that routes deferred structural changes to the right
// command buffer. Views are only valid for the duration of the callback
// they are passed to.
type View struct {
	world    *World
	entities []Entity
	lane     int
}

// Entities returns the matched entities for this task.
func (v *View) Entities() []Entity {
	return v.entities
}

// Len returns the number of matched entities.
func (v *View) Len() int {
	return len(v.entities)
}

// World returns the world the view iterates.
func (v *View) World() *World {
	return v.world
}

// Get returns the payload bytes of component c on e, or nil if absent.
func (v *View) Get(e Entity, c CompID) []byte {
	return v.world.Get(e, c)
}

// Has reports whether e carries component c.
func (v *View) Has(e Entity, c CompID) bool {
	return v.world.Has(e, c)
}

// Add stages attaching component c to e and returns the zeroed payload
// for in-place initialisation. The change is applied at the next stage
// sync; the returned bytes must not be retained across it.
func (v *View) Add(e Entity, c CompID) []byte {
	v.world.checkComp(c)
	size := v.world.pools[c].ElemSize()
	return v.world.cmdBufs[v.lane].stageAdd(e, c, size)
}

// Remove stages detaching component c from e. Applied at the next stage
// sync; removing an absent component is a no-op.
func (v *View) Remove(e Entity, c CompID) {
	v.world.checkComp(c)
	v.world.cmdBufs[v.lane].stageRemove(e, c)
}

// Destroy stages destroying e. Applied at the next stage sync.
func (v *View) Destroy(e Entity) {
	v.world.cmdBufs[v.lane].stageDestroy(e)
}
