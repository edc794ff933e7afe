package ecs

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	becserr "github.com/waldnercharles/brutal/errors"
	"github.com/waldnercharles/brutal/pool"
)

// withExecutors runs fn once single-threaded and once against a real
// pool with several lanes; tick results must not depend on the executor.
func withExecutors(t *testing.T, fn func(t *testing.T, setup func(w *World))) {
	t.Run("single", func(t *testing.T) {
		fn(t, func(w *World) {})
	})
	t.Run("pooled", func(t *testing.T) {
		p := pool.New(4, 0)
		defer p.Close()
		fn(t, func(w *World) { w.SetExecutor(p, 4) })
	})
}

func TestProgressSingleSystem(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)

		s := w.NewSystem(func(w *World, v *View, udata any) error {
			for _, e := range v.Entities() {
				pos.Get(e).X += 1
			}
			return nil
		}, nil)
		w.Require(s, pos.ID())
		w.Write(s, pos.ID())

		ents := make([]Entity, 10)
		for i := range ents {
			ents[i] = w.Create()
			p := pos.Add(ents[i])
			p.X = int32(i)
			p.Y = int32(2 * i)
		}

		if err := w.Progress(0); err != nil {
			t.Fatal(err)
		}

		for i, e := range ents {
			p := pos.Get(e)
			if p.X != int32(i)+1 {
				t.Fatalf("entity %d: X = %d, want %d", i, p.X, i+1)
			}
			if p.Y != int32(2*i) {
				t.Fatalf("entity %d: Y = %d, want %d (untouched)", i, p.Y, 2*i)
			}
		}
	})
}

func TestDeferredSpawnThenRead(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)
		vel := Register[vec2](w)

		var aSeen, bSeen atomic.Int64

		// A: Pos without Vel; stages a Vel add for each match.
		a := w.NewSystem(func(w *World, v *View, udata any) error {
			aSeen.Add(int64(v.Len()))
			for _, e := range v.Entities() {
				sv := vel.Stage(v, e)
				sv.X = 7
			}
			return nil
		}, nil)
		w.Require(a, pos.ID())
		w.Exclude(a, vel.ID())
		w.Write(a, vel.ID())

		// B: Pos and Vel; reads what A wrote.
		b := w.NewSystem(func(w *World, v *View, udata any) error {
			bSeen.Add(int64(v.Len()))
			for _, e := range v.Entities() {
				if got := vel.Get(e).X; got != 7 {
					return fmt.Errorf("entity %d: vel.X = %d, want 7", e, got)
				}
			}
			return nil
		}, nil)
		w.Require(b, pos.ID())
		w.Require(b, vel.ID())

		for i := 0; i < 8; i++ {
			pos.Add(w.Create())
		}

		if err := w.Progress(0); err != nil {
			t.Fatal(err)
		}
		if aSeen.Load() != 8 || bSeen.Load() != 8 {
			t.Fatalf("tick 1: A saw %d, B saw %d, want 8 and 8", aSeen.Load(), bSeen.Load())
		}

		aSeen.Store(0)
		bSeen.Store(0)
		if err := w.Progress(0); err != nil {
			t.Fatal(err)
		}
		if aSeen.Load() != 0 {
			t.Fatalf("tick 2: A saw %d, want 0 (all have Vel now)", aSeen.Load())
		}
		if bSeen.Load() != 8 {
			t.Fatalf("tick 2: B saw %d, want 8", bSeen.Load())
		}
	})
}

func TestGroupSelection(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)

		var sa, sb, sc atomic.Int64
		count := func(c *atomic.Int64) SystemFunc {
			return func(w *World, v *View, udata any) error {
				c.Add(int64(v.Len()))
				return nil
			}
		}

		a := w.NewSystem(count(&sa), nil)
		w.Require(a, pos.ID())
		w.SetGroup(a, 1)
		b := w.NewSystem(count(&sb), nil)
		w.Require(b, pos.ID())
		w.SetGroup(b, 2)
		c := w.NewSystem(count(&sc), nil)
		w.Require(c, pos.ID())

		for i := 0; i < 10; i++ {
			pos.Add(w.Create())
		}

		check := func(mask int, wantA, wantB, wantC int64) {
			t.Helper()
			sa.Store(0)
			sb.Store(0)
			sc.Store(0)
			if err := w.Progress(mask); err != nil {
				t.Fatal(err)
			}
			if sa.Load() != wantA || sb.Load() != wantB || sc.Load() != wantC {
				t.Fatalf("mask %d: got (%d %d %d), want (%d %d %d)",
					mask, sa.Load(), sb.Load(), sc.Load(), wantA, wantB, wantC)
			}
		}

		check(1, 10, 0, 0)
		check(2, 0, 10, 0)
		check(1|2, 10, 10, 0)
		check(0, 0, 0, 10)
	})
}

func TestExcludeFilter(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)
		vel := Register[vec2](w)

		var matched atomic.Int32
		s := w.NewSystem(func(w *World, v *View, udata any) error {
			for _, e := range v.Entities() {
				matched.Store(int32(e))
			}
			if v.Len() != 1 {
				return fmt.Errorf("matched %d entities, want 1", v.Len())
			}
			return nil
		}, nil)
		w.Require(s, pos.ID())
		w.Exclude(s, vel.ID())

		e1 := w.Create()
		pos.Add(e1)
		e2 := w.Create()
		pos.Add(e2)
		vel.Add(e2)

		if err := w.Progress(0); err != nil {
			t.Fatal(err)
		}
		if Entity(matched.Load()) != e1 {
			t.Fatalf("matched entity %d, want %d", matched.Load(), e1)
		}
	})
}

func TestDeferredDestroyAndRemove(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)
		tag := w.RegisterComponent(0)

		s := w.NewSystem(func(w *World, v *View, udata any) error {
			for _, e := range v.Entities() {
				if e%2 == 0 {
					v.Destroy(e)
				} else {
					v.Remove(e, tag)
				}
			}
			return nil
		}, nil)
		w.Require(s, pos.ID())
		w.Write(s, pos.ID())

		ents := make([]Entity, 10)
		for i := range ents {
			ents[i] = w.Create()
			pos.Add(ents[i])
			w.Add(ents[i], tag)
		}

		if err := w.Progress(0); err != nil {
			t.Fatal(err)
		}

		for _, e := range ents {
			if e%2 == 0 {
				if pos.Has(e) || w.Has(e, tag) {
					t.Fatalf("destroyed entity %d still has components", e)
				}
			} else {
				if !pos.Has(e) {
					t.Fatalf("entity %d lost Pos", e)
				}
				if w.Has(e, tag) {
					t.Fatalf("entity %d still has tag after deferred remove", e)
				}
			}
		}
	})
}

func TestSystemErrorShortCircuits(t *testing.T) {
	w := New()
	defer w.Close()

	pos := Register[vec2](w)
	boom := errors.New("boom")

	var ran atomic.Int64
	a := w.NewSystem(func(w *World, v *View, udata any) error {
		ran.Add(1)
		// Stage a change so we can verify the final drain still runs.
		for _, e := range v.Entities() {
			v.Remove(e, pos.ID())
		}
		return boom
	}, nil)
	w.Require(a, pos.ID())
	w.Write(a, pos.ID())

	b := w.NewSystem(func(w *World, v *View, udata any) error {
		ran.Add(100)
		return nil
	}, nil)
	w.Require(b, pos.ID())

	e := w.Create()
	pos.Add(e)

	err := w.Progress(0)
	if !errors.Is(err, boom) {
		t.Fatalf("Progress error = %v, want wrapped boom", err)
	}
	var se *becserr.Error
	if !errors.As(err, &se) || se.Kind != becserr.KindSystemFailure {
		t.Fatalf("expected system_failure, got %v", err)
	}
	if ran.Load() != 1 {
		t.Fatalf("later stage ran after failure (ran=%d)", ran.Load())
	}
	if pos.Has(e) {
		t.Fatal("final drain did not apply the staged remove")
	}
}

type failingExecutor struct {
	failAfter int
	n         int
}

func (f *failingExecutor) Submit(task func()) error {
	f.n++
	if f.n > f.failAfter {
		return errors.New("executor rejected")
	}
	task()
	return nil
}

func (f *failingExecutor) Wait() {}

func TestEnqueueFailurePropagates(t *testing.T) {
	w := New()
	defer w.Close()
	w.SetExecutor(&failingExecutor{failAfter: 1}, 2)

	pos := Register[vec2](w)
	s := w.NewSystem(nopSystem, nil)
	w.Require(s, pos.ID())
	pos.Add(w.Create())

	err := w.Progress(0)
	var se *becserr.Error
	if !errors.As(err, &se) || se.Kind != becserr.KindTaskEnqueue {
		t.Fatalf("expected task_enqueue error, got %v", err)
	}
}

func TestRunSystem(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)

		s := w.NewSystem(func(w *World, v *View, udata any) error {
			for _, e := range v.Entities() {
				pos.Get(e).X++
				v.Add(e, udata.(CompID))
			}
			return nil
		}, nil)
		w.Require(s, pos.ID())
		w.Write(s, pos.ID())

		tag := w.RegisterComponent(0)
		w.SetUdata(s, tag)
		w.Write(s, tag)

		e := w.Create()
		pos.Add(e)

		if err := w.RunSystem(s); err != nil {
			t.Fatal(err)
		}
		if pos.Get(e).X != 1 {
			t.Fatal("RunSystem did not run the system")
		}
		if !w.Has(e, tag) {
			t.Fatal("RunSystem did not drain the command buffer")
		}
	})
}

func TestRunSystemDisabled(t *testing.T) {
	w := New()
	defer w.Close()

	pos := Register[vec2](w)
	var ran atomic.Bool
	s := w.NewSystem(func(w *World, v *View, udata any) error {
		ran.Store(true)
		return nil
	}, nil)
	w.Require(s, pos.ID())
	pos.Add(w.Create())
	w.Disable(s)

	if err := w.RunSystem(s); err != nil {
		t.Fatal(err)
	}
	if ran.Load() {
		t.Fatal("disabled system ran")
	}
}

func TestImmediatePathPanicsDuringTick(t *testing.T) {
	w := New()
	defer w.Close()

	pos := Register[vec2](w)
	s := w.NewSystem(func(w *World, v *View, udata any) error {
		defer func() {
			if recover() == nil {
				panic("unreachable")
			}
		}()
		w.Add(v.Entities()[0], pos.ID()) // must panic
		return nil
	}, nil)
	w.Require(s, pos.ID())
	w.Write(s, pos.ID())
	pos.Add(w.Create())

	if err := w.Progress(0); err != nil {
		t.Fatal(err)
	}
}

// Barrier visibility: everything staged during a tick is observable via
// Get/Has once Progress returns.
func TestBarrierVisibility(t *testing.T) {
	withExecutors(t, func(t *testing.T, setup func(w *World)) {
		w := New()
		defer w.Close()
		setup(w)

		pos := Register[vec2](w)
		mark := Register[vec2](w)

		s := w.NewSystem(func(w *World, v *View, udata any) error {
			for _, e := range v.Entities() {
				m := mark.Stage(v, e)
				m.X = int32(e)
			}
			return nil
		}, nil)
		w.Require(s, pos.ID())
		w.Exclude(s, mark.ID())
		w.Write(s, mark.ID())

		ents := make([]Entity, 100)
		for i := range ents {
			ents[i] = w.Create()
			pos.Add(ents[i])
		}

		if err := w.Progress(0); err != nil {
			t.Fatal(err)
		}

		for _, e := range ents {
			m := mark.Get(e)
			if m == nil || m.X != int32(e) {
				t.Fatalf("staged add for entity %d not visible after Progress", e)
			}
		}
	})
}

func TestProgressNoSystems(t *testing.T) {
	w := New()
	defer w.Close()
	if err := w.Progress(0); err != nil {
		t.Fatal(err)
	}
}

func BenchmarkProgressSingleLane(b *testing.B) {
	w := New()
	defer w.Close()

	pos := Register[vec2](w)
	s := w.NewSystem(func(w *World, v *View, udata any) error {
		for _, e := range v.Entities() {
			pos.Get(e).X++
		}
		return nil
	}, nil)
	w.Require(s, pos.ID())
	w.Write(s, pos.ID())

	for i := 0; i < 10_000; i++ {
		pos.Add(w.Create())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Progress(0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProgressPooled(b *testing.B) {
	p := pool.New(4, 0)
	defer p.Close()

	w := New()
	defer w.Close()
	w.SetExecutor(p, 4)

	pos := Register[vec2](w)
	s := w.NewSystem(func(w *World, v *View, udata any) error {
		for _, e := range v.Entities() {
			pos.Get(e).X++
		}
		return nil
	}, nil)
	w.Require(s, pos.ID())
	w.Write(s, pos.ID())

	for i := 0; i < 10_000; i++ {
		pos.Add(w.Create())
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := w.Progress(0); err != nil {
			b.Fatal(err)
		}
	}
}
