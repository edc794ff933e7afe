// Package ecs implements the world: entities, component pools, systems,
// the stage scheduler, and the tick driver.
//
// # Data Model
//
// Entities are dense int32 IDs allocated by a lock-free counter plus a
// CAS free list; ID 0 is the "none" sentinel. Each registered component
// is a fixed-size payload stored in a sparse-set-indexed byte pool, so
// iteration over a component's entities is a walk of a contiguous array.
//
// # Scheduling
//
// Systems declare a match predicate (Require/Exclude) and an access
// contract (Read/Write); Require implies Read. Two systems conflict when
// either one writes a component the other reads or writes. The stage
// builder partitions systems into totally ordered stages so that systems
// in a stage are pairwise conflict-free and explicit After edges are
// respected; within a stage, execution order is unobservable. The
// assignment is deterministic: it depends only on the system records in
// registration order, never on thread count or timing. It is cached and
// rebuilt lazily after any system mutation.
//
// An After edge that contradicts a conflict-derived ordering is a user
// error, reported by Progress as a [schedule] cycle error.
//
// # Ticks and Deferred Mutation
//
// Progress runs a tick: for each stage it dispatches one task per
// (active system, lane) to the executor, barriers, applies all deferred
// commands, and moves on. System callbacks receive a View over their
// matched entity slice. In-place payload writes through Get are safe for
// components the system declared; structural changes (View.Add,
// View.Remove, View.Destroy) are logged in the task's command buffer and
// applied at the next sync, FIFO within a buffer, unordered across
// buffers.
//
// World.Add, World.Remove, and World.Destroy are the immediate paths and
// panic if called while a tick is in progress.
//
// # Errors
//
// Programmer errors (out-of-range IDs, nil system functions, exceeding
// MaxComponents/MaxSystems, immediate mutation during a tick) panic
// with a structured *errors.Error. Runtime failures (executor rejection,
// a system returning an error, a cyclic schedule) are returned from
// Progress/RunSystem; the first failure wins and the final command drain
// always runs first.
package ecs
