package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

type Config struct {
	Seed int64

	// ZSort orders the live registry by ZIndex after every step.
	ZSort bool

	// TotalFrames stops Run once the clock reaches it and fires
	// OnTotalFrames. Zero or negative means unbounded.
	TotalFrames int

	Registry *Registry
	Logger   *zap.Logger
}

var _ Context = (*Simulation)(nil)

// Simulation owns the worlds, the live registry and the slot arena.
// It is not safe for concurrent use; one goroutine drives Step.
type Simulation struct {
	log      *zap.Logger
	registry *Registry
	arena    *arena
	rng      *rand.Rand

	worlds []*World
	live   []*Entity

	serial    uint64
	pass      int
	clock     int
	fallbacks int

	pointer   Pointer
	renderer  Renderer
	observers []Observer

	zsort         bool
	totalFrames   int
	totalFired    bool
	OnTotalFrames func(s *Simulation)
}

func New(cfg Config) *Simulation {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = NewRegistry()
	}
	return &Simulation{
		log:         log,
		registry:    reg,
		arena:       newArena(),
		rng:         rand.New(rand.NewSource(cfg.Seed)),
		worlds:      make([]*World, 0, 1),
		live:        make([]*Entity, 0, 256),
		observers:   make([]Observer, 0),
		zsort:       cfg.ZSort,
		totalFrames: cfg.TotalFrames,
	}
}

func (s *Simulation) SetRenderer(r Renderer)   { s.renderer = r }
func (s *Simulation) SetPointer(p Pointer)     { s.pointer = p }
func (s *Simulation) AddObserver(o Observer)   { s.observers = append(s.observers, o) }
func (s *Simulation) Registry() *Registry      { return s.registry }
func (s *Simulation) Logger() *zap.Logger      { return s.log }
func (s *Simulation) Clock() int               { return s.clock }
func (s *Simulation) Fallbacks() int           { return s.fallbacks }
func (s *Simulation) Rand() *rand.Rand         { return s.rng }
func (s *Simulation) Worlds() []*World         { return s.worlds }
func (s *Simulation) Count() int               { return len(s.live) }

// Lookup resolves a handle to its live entity. Stale handles and retired
// entities do not resolve.
func (s *Simulation) Lookup(h Handle) (*Entity, bool) { return s.arena.get(h) }

// Live returns the live registry in step order. Callers must not modify it.
func (s *Simulation) Live() []*Entity { return s.live }

func (s *Simulation) Pointer() (Pointer, bool) {
	return s.pointer, s.pointer != nil
}

// Done reports whether the configured frame limit has been reached.
func (s *Simulation) Done() bool {
	return s.totalFrames > 0 && s.clock >= s.totalFrames
}

// AddWorld creates and registers a world. Names must be unique; an empty
// name is replaced with world-N.
func (s *Simulation) AddWorld(opts WorldOptions) (*World, error) {
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("world-%d", len(s.worlds))
	}
	if s.World(opts.Name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateWorld, opts.Name)
	}
	w, err := newWorld(opts)
	if err != nil {
		return nil, err
	}
	s.worlds = append(s.worlds, w)
	return w, nil
}

func (s *Simulation) World(name string) *World {
	for _, w := range s.worlds {
		if w.Name == name {
			return w
		}
	}
	return nil
}

func (s *Simulation) owns(w *World) bool {
	for _, o := range s.worlds {
		if o == w {
			return true
		}
	}
	return false
}

// Add creates a live entity of kind in w. A pooled slot of the same kind
// is reused when one is available. Unknown kinds fall back to DefaultKind
// and the fallback is logged and counted.
func (s *Simulation) Add(kind string, w *World, params Params, opts ...Option) (*Entity, error) {
	if w == nil {
		return nil, ErrNoWorld
	}
	if !s.owns(w) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorld, w.Name)
	}

	factory, ok := s.registry.Lookup(kind)
	if !ok {
		s.fallbacks++
		s.log.Warn("unknown entity kind, using default",
			zap.String("kind", kind),
			zap.String("fallback", DefaultKind),
			zap.Int("frame", s.clock),
		)
		kind = DefaultKind
		factory, _ = s.registry.Lookup(DefaultKind)
	}

	idx, reused := w.popPool(kind)
	if !reused {
		idx = s.arena.alloc()
	}

	e := s.arena.slots[idx]
	e.reset(w)
	e.Name = kind
	if params == nil {
		params = Params{}
	}
	factory(e, params)
	for _, opt := range opts {
		opt(e)
	}

	s.serial++
	e.ID = s.serial
	e.handle = s.arena.handle(idx)
	e.live = true
	s.live = append(s.live, e)
	return e, nil
}

// Remove retires e into its world's pool.
func (s *Simulation) Remove(e *Entity) error {
	if e == nil || !e.live {
		return ErrNotLive
	}
	return s.RemoveHandle(e.handle)
}

func (s *Simulation) RemoveHandle(h Handle) error {
	idx := h.Index()
	if int(idx) >= len(s.arena.slots) {
		return fmt.Errorf("%w: slot %d", ErrNotLive, idx)
	}
	if s.arena.generations[idx] != h.Generation() {
		return ErrStaleHandle
	}
	e := s.arena.slots[idx]
	if !e.live {
		return ErrNotLive
	}

	for i, le := range s.live {
		if le.ID == e.ID {
			s.live = append(s.live[:i], s.live[i+1:]...)
			break
		}
	}
	e.live = false
	s.arena.retire(idx)
	e.World.pushPool(e.Name, idx)
	return nil
}

// Get returns the live entity with the given serial id.
func (s *Simulation) Get(id uint64) *Entity {
	for _, e := range s.live {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (s *Simulation) Each(kind string, fn func(*Entity)) {
	for _, e := range s.live {
		if e.Name == kind {
			fn(e)
		}
	}
}

func (s *Simulation) ByKind(kind string) []*Entity {
	out := make([]*Entity, 0)
	s.Each(kind, func(e *Entity) { out = append(out, e) })
	return out
}

// Update applies opts to every live entity of kind and returns how many
// were changed.
func (s *Simulation) Update(kind string, opts ...Option) int {
	n := 0
	s.Each(kind, func(e *Entity) {
		for _, opt := range opts {
			opt(e)
		}
		n++
	})
	return n
}

// PoolSize counts retired slots across every world. An empty kind counts all.
func (s *Simulation) PoolSize(kind string) int {
	n := 0
	for _, w := range s.worlds {
		n += w.PoolSize(kind)
	}
	return n
}

// Reset drops every world, entity and pool. Serial ids keep increasing
// and handles taken before the reset stop resolving.
func (s *Simulation) Reset() {
	s.worlds = s.worlds[:0]
	s.live = s.live[:0]
	s.arena.reset()
	s.clock = 0
	s.fallbacks = 0
	s.totalFired = false
}

// Step advances the simulation by exactly one frame.
func (s *Simulation) Step() error {
	frame := s.clock
	// pass advances on every call, so a Step retried after an error
	// integrates again.
	s.pass++
	pass := s.pass

	for i := len(s.live) - 1; i >= 0; i-- {
		if i >= len(s.live) {
			continue
		}
		e := s.live[i]
		if e.stepped == pass || e.World.Paused {
			continue
		}
		e.stepped = pass
		s.stepEntity(e)
	}

	if s.zsort {
		sort.SliceStable(s.live, func(a, b int) bool {
			return s.live[a].ZIndex < s.live[b].ZIndex
		})
	}

	if s.renderer != nil {
		snap, err := s.snapshot(s.renderer)
		if err != nil {
			return err
		}
		if err := s.renderer.Render(snap); err != nil {
			return &FrameError{Frame: frame, Wrapped: err}
		}
	}

	for _, o := range s.observers {
		if err := o.OnFrame(s); err != nil {
			return &FrameError{Frame: frame, Wrapped: err}
		}
	}

	s.clock++

	if s.Done() && !s.totalFired {
		s.totalFired = true
		if s.OnTotalFrames != nil {
			s.OnTotalFrames(s)
		}
	}
	return nil
}

// Run steps until frames have elapsed, the frame limit is reached or ctx
// is canceled. A negative frames runs until one of the latter. It returns
// the number of frames stepped.
func (s *Simulation) Run(ctx context.Context, frames int) (int, error) {
	n := 0
	for frames < 0 || n < frames {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}
		if s.Done() {
			return n, nil
		}
		if err := s.Step(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Snapshot builds the drawable list for every live, visible entity,
// grouped by world in registry order.
func (s *Simulation) Snapshot() Snapshot {
	snap, _ := s.snapshot(nil)
	return snap
}

func (s *Simulation) snapshot(r Renderer) (Snapshot, error) {
	snap := Snapshot{Frame: s.clock, Layers: make([]Layer, len(s.worlds))}
	index := make(map[*World]int, len(s.worlds))
	for i, w := range s.worlds {
		snap.Layers[i] = Layer{World: w, Items: make([]Drawable, 0)}
		index[w] = i
	}
	for _, e := range s.live {
		if !e.Visible || e.Opacity <= 0 {
			continue
		}
		d := e.drawable()
		if r != nil && !r.Supports(d.ColorMode) {
			return snap, &FrameError{
				Frame:    s.clock,
				EntityID: e.ID,
				Wrapped:  fmt.Errorf("%w: %q", ErrUnsupportedColorMode, d.ColorMode),
			}
		}
		li := index[e.World]
		snap.Layers[li].Items = append(snap.Layers[li].Items, d)
	}
	return snap, nil
}
