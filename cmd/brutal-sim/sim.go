package main

import (
	"math/rand"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/waldnercharles/brutal/ecs"
	"github.com/waldnercharles/brutal/pool"
)

type Position struct{ X, Y float32 }
type Velocity struct{ X, Y float32 }
type Age struct{ Ticks, TTL int32 }

// Emitter is a singleton component carried by one entity; the emitter
// system drives off it so spawning runs as exactly one task.
type Emitter struct{ PerTick int32 }

type simulation struct {
	world *ecs.World
	pool  *pool.Pool

	pos ecs.Comp[Position]
	vel ecs.Comp[Velocity]
	age ecs.Comp[Age]

	rng  *rand.Rand
	tick int
}

type tickStats struct {
	Tick     int
	Alive    int
	Duration time.Duration
}

func newSimulation(cfg Config, log *zap.Logger) *simulation {
	workers := cfg.Pool.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s := &simulation{
		pool: pool.New(workers, cfg.Pool.QueueCapacity),
		rng:  rand.New(rand.NewSource(1)),
	}

	w := ecs.New()
	w.SetExecutor(s.pool, cfg.Pool.Lanes)
	s.world = w

	s.pos = ecs.Register[Position](w)
	s.vel = ecs.Register[Velocity](w)
	s.age = ecs.Register[Age](w)
	emitter := ecs.Register[Emitter](w)

	lifetime := int32(cfg.Sim.Lifetime)

	// Emitter: stages SpawnPerTick fresh particles.
	emit := w.NewSystem(func(w *ecs.World, v *ecs.View, udata any) error {
		for _, e := range v.Entities() {
			em := emitter.Get(e)
			for i := int32(0); i < em.PerTick; i++ {
				s.spawn(v, lifetime)
			}
		}
		return nil
	}, nil)
	w.Require(emit, emitter.ID())

	// Bounce: flips velocity at the field edges. Writes Velocity, so it
	// stages before integrate.
	bounce := w.NewSystem(func(w *ecs.World, v *ecs.View, udata any) error {
		for _, e := range v.Entities() {
			p := s.pos.Get(e)
			vv := s.vel.Get(e)
			if p.X < -1000 || p.X > 1000 {
				vv.X = -vv.X
			}
			if p.Y < -1000 || p.Y > 1000 {
				vv.Y = -vv.Y
			}
		}
		return nil
	}, nil)
	w.Require(bounce, s.pos.ID())
	w.Require(bounce, s.vel.ID())
	w.Write(bounce, s.vel.ID())

	// Integrate: applies velocity to position.
	integrate := w.NewSystem(func(w *ecs.World, v *ecs.View, udata any) error {
		for _, e := range v.Entities() {
			p := s.pos.Get(e)
			vv := s.vel.Get(e)
			p.X += vv.X
			p.Y += vv.Y
		}
		return nil
	}, nil)
	w.Require(integrate, s.pos.ID())
	w.Require(integrate, s.vel.ID())
	w.Write(integrate, s.pos.ID())

	// Reap: ages particles and destroys the expired.
	reap := w.NewSystem(func(w *ecs.World, v *ecs.View, udata any) error {
		for _, e := range v.Entities() {
			a := s.age.Get(e)
			a.Ticks++
			if a.Ticks > a.TTL {
				v.Destroy(e)
			}
		}
		return nil
	}, nil)
	w.Require(reap, s.age.ID())
	w.Write(reap, s.age.ID())

	// Seed the field.
	em := w.Create()
	emitter.Add(em).PerTick = int32(cfg.Sim.SpawnPerTick)
	for i := 0; i < cfg.Sim.Entities; i++ {
		e := w.Create()
		p := s.pos.Add(e)
		p.X = s.rng.Float32()*2000 - 1000
		p.Y = s.rng.Float32()*2000 - 1000
		vv := s.vel.Add(e)
		vv.X = s.rng.Float32()*2 - 1
		vv.Y = s.rng.Float32()*2 - 1
		a := s.age.Add(e)
		a.TTL = int32(s.rng.Intn(cfg.Sim.Lifetime + 1))
	}

	log.Info("simulation ready",
		zap.Int("entities", cfg.Sim.Entities),
		zap.Int("workers", workers),
		zap.Int("lanes", cfg.Pool.Lanes))
	return s
}

// spawn stages one particle through the emitter task's view.
func (s *simulation) spawn(v *ecs.View, lifetime int32) {
	e := s.world.Create()
	p := s.pos.Stage(v, e)
	p.X = s.rng.Float32()*2000 - 1000
	p.Y = s.rng.Float32()*2000 - 1000
	vv := s.vel.Stage(v, e)
	vv.X = s.rng.Float32()*2 - 1
	vv.Y = s.rng.Float32()*2 - 1
	a := s.age.Stage(v, e)
	a.TTL = lifetime
}

// Step runs one tick and reports its stats.
func (s *simulation) Step() (tickStats, error) {
	start := time.Now()
	err := s.world.Progress(0)
	s.tick++
	return tickStats{
		Tick:     s.tick,
		Alive:    s.world.Count(s.pos.ID()),
		Duration: time.Since(start),
	}, err
}

func (s *simulation) Close() {
	s.world.Close()
	s.pool.Close()
}
