// Package sim provides the frame-stepped particle and agent engine.
//
// The package defines the simulation context and its primitives:
//
//   - [Simulation]: owns worlds, the live registry and the slot arena
//   - [World]: bounded domain with gravity, friction and a per-kind pool
//   - [Entity]: point mass whose forces come from attached [Behavior] values
//   - [Registry]: kind name to [Factory] map, validated at registration
//   - [Renderer] and [Observer]: collaborators called after every step
//
// # Example
//
//	reg, _ := kinds.NewRegistry(kinds.Deps{})
//	s := sim.New(sim.Config{Registry: reg})
//	w, _ := s.AddWorld(sim.WorldOptions{Width: 400, Height: 300})
//	s.Add("Flocker", w, nil, sim.WithLocation(w.Center()))
//	for !s.Done() {
//		if err := s.Step(); err != nil {
//			return err
//		}
//	}
//
// # Pooling
//
// Entities are never freed. Remove parks the entity's slot in its world's
// pool, keyed by kind, and bumps the slot generation so any [Handle] to
// the old incarnation stops resolving. Add pops a slot of the same kind,
// resets every field to its default and assigns a fresh serial ID.
//
// # Thread Safety
//
// Simulation instances are NOT thread-safe. The host drives Step from a
// single goroutine; use [Ensemble] to run independent simulations in
// parallel.
package sim
