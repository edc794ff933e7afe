// Package brutal provides a parallel Entity-Component-System runtime for Go.
//
// Systems declare which components they read and write; the scheduler
// partitions them into conflict-free stages and shards each system's entity
// set across worker lanes. Structural changes made while systems run are
// recorded in per-lane command buffers and applied between stages, so
// systems never observe a pool mid-mutation.
//
// # Architecture Overview
//
// The library is organized into a small set of packages:
//
//	brutal/          Root package with the Executor interface
//	├── ecs/         World, entities, components, systems, stages, ticks
//	├── pool/        Lock-free MPMC job pool with worker goroutines
//	├── errors/      Structured error types for debugging
//	└── cmd/         brutal-sim demo binary
//
// # Quick Start
//
// Register components and systems, then drive the world tick by tick:
//
//	w := ecs.New()
//	defer w.Close()
//
//	pos := ecs.Register[Position](w)
//
//	move := w.NewSystem(func(w *ecs.World, v *ecs.View, udata any) error {
//	    for _, e := range v.Entities() {
//	        pos.Get(e).X += 1
//	    }
//	    return nil
//	}, nil)
//	w.Require(move, pos.ID())
//	w.Write(move, pos.ID())
//
//	if err := w.Progress(0); err != nil {
//	    log.Fatal(err)
//	}
//
// To run stages in parallel, attach an executor:
//
//	p := pool.New(runtime.NumCPU(), 0)
//	defer p.Close()
//	w.SetExecutor(p, 8) // 8 lanes per system
//
// # Concurrency Model
//
// Within a stage, systems run concurrently and each system's matched
// entities are split into equal slices, one per lane. The stage builder
// guarantees that no two systems in the same stage write a component the
// other touches, so in-place component writes need no locking. Structural
// changes during a tick must go through the View, which routes them to the
// lane's command buffer; they become visible after the stage barrier.
//
// Entity IDs are dense integers with no generation tag. Referencing an
// entity after destroying it is undefined behaviour; do not retain IDs
// across an explicit destroy.
package brutal
