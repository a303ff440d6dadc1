package sim

// Handle encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments when the slot
// is retired so handles to a previous incarnation stop resolving.
type Handle uint64

func newHandle(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }
func (h Handle) IsZero() bool       { return h == 0 }

// arena owns every entity ever allocated. Slots are never freed; retired
// slot indices are parked in their world's pool until reused. Slots
// orphaned by a reset go to the free list with a bumped generation.
type arena struct {
	slots       []*Entity
	generations []uint32
	free        []uint32
}

func newArena() *arena {
	return &arena{
		slots:       make([]*Entity, 0, 256),
		generations: make([]uint32, 0, 256),
	}
}

// alloc appends a fresh slot. Generations start at 1 so the zero Handle
// never names a slot.
func (a *arena) alloc() uint32 {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return idx
	}
	idx := uint32(len(a.slots))
	a.slots = append(a.slots, &Entity{})
	a.generations = append(a.generations, 1)
	return idx
}

func (a *arena) handle(idx uint32) Handle {
	return newHandle(idx, a.generations[idx])
}

func (a *arena) get(h Handle) (*Entity, bool) {
	idx := h.Index()
	if int(idx) >= len(a.slots) {
		return nil, false
	}
	if a.generations[idx] != h.Generation() {
		return nil, false
	}
	e := a.slots[idx]
	return e, e.live
}

func (a *arena) retire(idx uint32) {
	a.generations[idx]++
}

// reset retires every slot. Indices are kept so that no handle taken
// before the reset can match a later incarnation.
func (a *arena) reset() {
	a.free = a.free[:0]
	for i, e := range a.slots {
		e.live = false
		a.generations[i]++
		a.free = append(a.free, uint32(i))
	}
}
