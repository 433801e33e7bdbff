package graph

import "fmt"

// Ref is anything that names a node of a graph.
type Ref interface {
	ref() (*Graph, NodeID)
}

// Signal is a typed node whose value can be read and subscribed to.
type Signal[T any] interface {
	Ref
	Value() T
}

// Parent is an argument of DeriveN. A Node is a trigger parent, a Sampled
// node is a sample parent.
type Parent[T any] interface {
	parent() (*Graph, edge)
	read() T
}

type Node[T any] struct {
	g  *Graph
	id NodeID
}

func (n Node[T]) ref() (*Graph, NodeID) { return n.g, n.id }

func (n Node[T]) parent() (*Graph, edge) {
	return n.g, edge{id: n.id, kind: trigger}
}

func (n Node[T]) read() T { return n.Value() }

func (n Node[T]) ID() NodeID { return n.id }

func (n Node[T]) Name() string {
	if n.g == nil {
		return ""
	}
	return n.g.Name(n.id)
}

func (n Node[T]) Value() T {
	if n.g == nil {
		var zero T
		return zero
	}
	v, _ := n.g.nodes[n.id].value.(T)
	return v
}

// Sample turns the node into a sample parent: read when a dependent is
// evaluated, never a cause of evaluation.
func (n Node[T]) Sample() Sampled[T] {
	return Sampled[T]{n: n}
}

type Sampled[T any] struct {
	n Node[T]
}

func (s Sampled[T]) parent() (*Graph, edge) {
	return s.n.g, edge{id: s.n.id, kind: sample}
}

func (s Sampled[T]) read() T { return s.n.Value() }

func Sample[T any](n Node[T]) Sampled[T] {
	return Sampled[T]{n: n}
}

// Source is a node fed from outside the graph, or from other nodes through
// Connect.
type Source[T any] struct {
	Node[T]
}

// Emit pushes v and propagates it, unless a pass or a batch is in progress
// in which case it is queued for the next pass. Every emission fires, equal
// values included.
func (s Source[T]) Emit(v T) {
	if s.g == nil {
		return
	}
	s.g.emit(s.id, v)
}

func (g *Graph) edges(name string, parents ...interface{ parent() (*Graph, edge) }) []edge {
	edges := make([]edge, 0, len(parents))
	for _, p := range parents {
		pg, e := p.parent()
		if pg != g {
			g.fail(fmt.Errorf("%w: parent of %q", ErrForeignNode, name))
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

func (g *Graph) refs(name string, refs []Ref) []edge {
	edges := make([]edge, 0, len(refs))
	for _, r := range refs {
		rg, id := r.ref()
		if rg != g {
			g.fail(fmt.Errorf("%w: parent of %q", ErrForeignNode, name))
			continue
		}
		edges = append(edges, edge{id: id, kind: trigger})
	}
	return edges
}

func Input[T any](g *Graph, name string, initial T) Source[T] {
	id := g.addNode(name, initial, nil)
	return Source[T]{Node[T]{g: g, id: id}}
}

func derive[O any](g *Graph, name string, parents []edge, f func() O) Node[O] {
	id := g.addNode(name, f(), parents)
	g.nodes[id].compute = func(*Graph, *node) any { return f() }
	return Node[O]{g: g, id: id}
}

func Derive1[A, O any](g *Graph, name string, a Parent[A], f func(A) O) Node[O] {
	return derive(g, name, g.edges(name, a), func() O {
		return f(a.read())
	})
}

func Derive2[A, B, O any](g *Graph, name string, a Parent[A], b Parent[B], f func(A, B) O) Node[O] {
	return derive(g, name, g.edges(name, a, b), func() O {
		return f(a.read(), b.read())
	})
}

func Derive3[A, B, C, O any](g *Graph, name string, a Parent[A], b Parent[B], c Parent[C], f func(A, B, C) O) Node[O] {
	return derive(g, name, g.edges(name, a, b, c), func() O {
		return f(a.read(), b.read(), c.read())
	})
}

// Any fires whenever one of refs fires. Its value carries no information.
func Any(g *Graph, name string, refs ...Ref) Node[struct{}] {
	id := g.addNode(name, struct{}{}, g.refs(name, refs))
	g.nodes[id].compute = func(*Graph, *node) any { return struct{}{} }
	return Node[struct{}]{g: g, id: id}
}

// Merge takes the value of whichever parent fired, the later one in parent
// order when several fire in the same pass.
func Merge[T any](g *Graph, name string, sigs ...Node[T]) Node[T] {
	refs := make([]Ref, len(sigs))
	var initial T
	for i, s := range sigs {
		refs[i] = s
		if i == 0 {
			initial = s.Value()
		}
	}
	id := g.addNode(name, initial, g.refs(name, refs))
	g.nodes[id].compute = latest
	return Node[T]{g: g, id: id}
}

// OnChange forwards sig only when its value differs from the last one it
// forwarded.
func OnChange[T comparable](g *Graph, name string, sig Node[T]) Node[T] {
	id := g.addNode(name, sig.Value(), g.refs(name, []Ref{sig}))
	n := g.nodes[id]
	n.compute = latest
	n.equal = func(a, b any) bool {
		x, _ := a.(T)
		y, _ := b.(T)
		return x == y
	}
	return Node[T]{g: g, id: id}
}

// Connect feeds every value of src into dst. It records ErrCycle on the
// graph when dst already reaches src, and ErrDuplicateProducer when dst is
// already fed by another Connect.
func Connect[T any](src Node[T], dst Source[T]) {
	g, dstID := dst.ref()
	sg, srcID := src.ref()
	if g == nil {
		return
	}
	if sg != g {
		g.fail(fmt.Errorf("%w: %q fed from another graph", ErrForeignNode, g.Name(dstID)))
		return
	}
	g.connect(srcID, dstID)
}

// Subscribe runs fn after every pass in which sig fired.
func Subscribe[T any](sig Signal[T], fn func(T)) (stop func()) {
	g, id := sig.ref()
	if g == nil {
		return func() {}
	}
	return g.subscribe(id, func(v any) {
		t, _ := v.(T)
		fn(t)
	})
}
