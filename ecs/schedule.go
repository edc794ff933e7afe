package ecs

import (
	"go.uber.org/zap"

	"github.com/waldnercharles/brutal/ecs/internal/bitset"
	"github.com/waldnercharles/brutal/errors"
)

// conflict reports whether two systems may not share a stage: either
// one's writes intersect the other's reads or writes. Read/read never
// conflicts.
func conflict(a, b *system) bool {
	return a.write.Intersects(b.rw) || b.write.Intersects(a.rw)
}

// buildStages recomputes the cached stage assignment.
//
// Edges: for every pair i < j in registration order, a conflict directs
// j after i (deterministic tie-break by registration); explicit After
// edges are added as given. Stage assignment is longest-path layering:
// stage(i) = max over predecessors of stage(p)+1, computed by repeated
// sweeps in ascending index order so the result is a pure function of
// the system records. Disabled systems are placed like any other; the
// enabled flag gates dispatch, not scheduling.
//
// A leftover system after the sweeps stop progressing means an After
// edge demanded the opposite order of a conflict-derived edge. That is a
// user error; it is reported as a cycle against the lowest-indexed
// unplaceable system.
func (w *World) buildStages() error {
	n := len(w.systems)

	preds := make([]bitset.Mask, n)
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			if conflict(&w.systems[i], &w.systems[j]) {
				preds[i].Set(j)
			}
		}
		preds[i].OrInto(w.systems[i].after)
	}

	stageOf := make([]int, n)
	var placedSet bitset.Mask

	remaining := n
	maxStage := -1
	for remaining > 0 {
		progressed := false
		for i := 0; i < n; i++ {
			if placedSet.Test(i) {
				continue
			}
			ready := true
			level := 0
			preds[i].ForEach(func(j int) {
				if !placedSet.Test(j) {
					ready = false
					return
				}
				if stageOf[j]+1 > level {
					level = stageOf[j] + 1
				}
			})
			if !ready {
				continue
			}
			stageOf[i] = level
			placedSet.Set(i)
			if level > maxStage {
				maxStage = level
			}
			remaining--
			progressed = true
		}
		if !progressed {
			for i := 0; i < n; i++ {
				if !placedSet.Test(i) {
					return errors.Cycle(i)
				}
			}
		}
	}

	stages := make([][]SysID, maxStage+1)
	for i := 0; i < n; i++ {
		stages[stageOf[i]] = append(stages[stageOf[i]], SysID(i))
	}

	w.stages = stages
	w.scheduleDirty = false

	Logger().Debug("schedule rebuilt",
		zap.Int("systems", n),
		zap.Int("stages", len(stages)))
	return nil
}
