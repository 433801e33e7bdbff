package spring

import (
	"fmt"
	"time"

	"github.com/delaneyj/caretparty/graph"
)

// Animation binds a Simulator to a graph. Emitting on Target retargets the
// spring, emitting on Skip jumps to the target, and Value fires every time
// the animated value changes.
type Animation[T Vector[T]] struct {
	Target graph.Source[T]
	Skip   graph.Source[struct{}]
	Value  graph.Node[T]

	sim *Simulator[T]
	out graph.Source[T]
}

func NewAnimation[T Vector[T]](g *graph.Graph, name string, params Params, initial T) (*Animation[T], error) {
	sim, err := NewSimulator(params, initial)
	if err != nil {
		return nil, fmt.Errorf("animation %q: %w", name, err)
	}
	a := &Animation[T]{
		Target: graph.Input(g, name+".target", initial),
		Skip:   graph.Input(g, name+".skip", struct{}{}),
		sim:    sim,
		out:    graph.Input(g, name, initial),
	}
	a.Value = a.out.Node

	graph.Subscribe(a.Target, func(t T) {
		a.sim.SetTarget(t)
	})
	graph.Subscribe(a.Skip, func(struct{}) {
		a.sim.Skip()
		a.out.Emit(a.sim.Value())
	})
	return a, nil
}

func (a *Animation[T]) Simulator() *Simulator[T] {
	return a.sim
}

func (a *Animation[T]) Current() T {
	return a.sim.Value()
}

func (a *Animation[T]) Resting() bool {
	return a.sim.Resting()
}

// Tick advances the spring and emits the new value when it moved.
func (a *Animation[T]) Tick(dt time.Duration) bool {
	if !a.sim.Tick(dt) {
		return false
	}
	a.out.Emit(a.sim.Value())
	return true
}

// Snap teleports both value and target to v.
func (a *Animation[T]) Snap(v T) {
	a.sim.SetTarget(v)
	a.sim.Skip()
	a.Target.Emit(v)
	a.out.Emit(v)
}
