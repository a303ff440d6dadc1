package sim

import (
	"fmt"
	"sort"
)

// DefaultKind is the fallback used for unregistered kinds.
const DefaultKind = "Item"

// Factory installs kind defaults and behaviors on a freshly reset entity.
type Factory func(e *Entity, p Params)

// Registry maps kind names to factories. Registration is validated up
// front so lookups at Add time cannot fail on a malformed entry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding only the bare DefaultKind.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[DefaultKind] = func(*Entity, Params) {}
	return r
}

func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" || f == nil {
		return fmt.Errorf("%w: kind %q", ErrInvalidKind, kind)
	}
	if _, ok := r.factories[kind]; ok && kind != DefaultKind {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}
	r.factories[kind] = f
	return nil
}

func (r *Registry) MustRegister(kind string, f Factory) {
	if err := r.Register(kind, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for kind and whether it was registered.
func (r *Registry) Lookup(kind string) (Factory, bool) {
	f, ok := r.factories[kind]
	return f, ok
}

func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
