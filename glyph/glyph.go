// Package glyph owns the glyph records a selection can attach to. Consumers
// hold Handles, which never keep a record alive: once a glyph is removed its
// handles stop resolving, even when the storage slot is handed out again.
package glyph

import (
	"fmt"

	"github.com/yohamta/donburi"
)

// Glyph is the horizontal placement of a laid out glyph relative to the
// start of its line.
type Glyph struct {
	X       float64
	Advance float64
}

// Handle is a non-owning reference to a registered glyph. The zero Handle
// resolves to nothing.
type Handle struct {
	e donburi.Entity
}

func (h Handle) IsZero() bool {
	return h.e == donburi.Null
}

func (h Handle) String() string {
	if h.IsZero() {
		return "glyph(nil)"
	}
	return fmt.Sprintf("glyph(%d.%d)", h.e.Id(), h.e.Version())
}

type Resolver interface {
	Resolve(h Handle) (Glyph, bool)
}

type record struct {
	owner Handle
	glyph Glyph
}

var component = donburi.NewComponentType[record]()

// Registry is not safe for concurrent use.
type Registry struct {
	world donburi.World
}

func NewRegistry() *Registry {
	return &Registry{world: donburi.NewWorld()}
}

func (r *Registry) Add(g Glyph) Handle {
	e := r.world.Create(component)
	h := Handle{e: e}
	component.SetValue(r.world.Entry(e), record{owner: h, glyph: g})
	return h
}

func (r *Registry) lookup(h Handle) (*donburi.Entry, bool) {
	if h.IsZero() || !r.world.Valid(h.e) {
		return nil, false
	}
	entry := r.world.Entry(h.e)
	if component.Get(entry).owner != h {
		return nil, false
	}
	return entry, true
}

func (r *Registry) Resolve(h Handle) (Glyph, bool) {
	entry, ok := r.lookup(h)
	if !ok {
		return Glyph{}, false
	}
	return component.Get(entry).glyph, true
}

// Update replaces the record behind h. It reports false for a stale handle.
func (r *Registry) Update(h Handle, g Glyph) bool {
	entry, ok := r.lookup(h)
	if !ok {
		return false
	}
	component.SetValue(entry, record{owner: h, glyph: g})
	return true
}

func (r *Registry) Remove(h Handle) {
	if _, ok := r.lookup(h); !ok {
		return
	}
	r.world.Remove(h.e)
}

func (r *Registry) Len() int {
	return r.world.Len()
}
