// Package graph is a push-based dataflow network. Nodes live in an arena and
// are addressed by index; trigger edges cause re-evaluation, sample edges are
// read at evaluation time only. A pass visits the trigger subgraph reachable
// from the emitted sources in rank order, exactly once, and then runs the
// subscriptions of every node that fired.
//
// A Graph is not safe for concurrent use. It is meant to be driven from the
// single thread that owns the frame loop.
package graph

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

var (
	// ErrCycle is recorded when an edge would close a loop. Sample edges
	// count too, so a loop that only closes through Sample is refused.
	ErrCycle             = errors.New("edge would create a cycle")
	ErrDuplicateNode     = errors.New("duplicate node name")
	ErrForeignNode       = errors.New("node belongs to another graph")
	ErrDuplicateProducer = errors.New("source already has a producer")
)

type NodeID uint32

type edgeKind uint8

const (
	trigger edgeKind = iota
	sample
)

type edge struct {
	id   NodeID
	kind edgeKind
}

type node struct {
	name    string
	value   any
	compute func(g *Graph, n *node) any
	equal   func(a, b any) bool
	parents []edge

	// children, split by the kind of edge that links them to this node
	triggers []NodeID
	samples  []NodeID

	rank    int
	fed     bool
	firedAt uint32
	subs    []*subscription
}

type subscription struct {
	fn      func(v any)
	stopped bool
}

type emission struct {
	id    NodeID
	value any
}

// Stats counts the work done by a graph since it was created.
type Stats struct {
	Passes     uint64
	Recomputes uint64
	Suppressed uint64
	Effects    uint64
}

type Graph struct {
	nodes []*node
	names map[uint64]NodeID

	pass       uint32
	batchDepth int
	running    bool
	queue      []emission
	disposed   bool

	err    error
	logger *slog.Logger
	stats  Stats
}

type Option func(*Graph)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func New(opts ...Option) *Graph {
	g := &Graph{
		names:  map[uint64]NodeID{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Err reports every construction error seen so far. Builders create all of
// their nodes and check Err once at the end.
func (g *Graph) Err() error {
	return g.err
}

func (g *Graph) Stats() Stats {
	return g.stats
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// Lookup finds a node by the name it was registered with.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.names[xxhash.Sum64String(name)]
	if !ok || g.nodes[id].name != name {
		return 0, false
	}
	return id, true
}

func (g *Graph) Name(id NodeID) string {
	if int(id) >= len(g.nodes) {
		return ""
	}
	return g.nodes[id].name
}

func (g *Graph) Disposed() bool {
	return g.disposed
}

// Dispose detaches every subscription. Emissions made afterwards are dropped,
// values stay readable.
func (g *Graph) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	g.queue = nil
	for _, n := range g.nodes {
		for _, s := range n.subs {
			s.stopped = true
		}
		n.subs = nil
	}
	g.logger.Debug("graph disposed", "nodes", len(g.nodes), "passes", g.stats.Passes)
}

func (g *Graph) StartBatch() {
	g.batchDepth++
}

func (g *Graph) EndBatch() {
	g.batchDepth--
	if g.batchDepth == 0 && !g.running {
		g.flush()
	}
}

// Batch collects every emission made by fn and propagates them in a single
// pass. When a source is emitted more than once the last value wins.
func (g *Graph) Batch(fn func()) {
	g.StartBatch()
	defer g.EndBatch()
	fn()
}

func (g *Graph) fail(err error) {
	g.err = errors.Join(g.err, err)
	g.logger.Error("graph construction", "err", err)
}

func (g *Graph) addNode(name string, value any, parents []edge) NodeID {
	id := NodeID(len(g.nodes))
	h := xxhash.Sum64String(name)
	if prev, ok := g.names[h]; ok {
		if g.nodes[prev].name == name {
			g.fail(fmt.Errorf("%w: %q", ErrDuplicateNode, name))
		}
	} else {
		g.names[h] = id
	}

	n := &node{name: name, value: value, parents: parents}
	for _, e := range parents {
		p := g.nodes[e.id]
		if p.rank >= n.rank {
			n.rank = p.rank + 1
		}
		switch e.kind {
		case trigger:
			p.triggers = append(p.triggers, id)
		case sample:
			p.samples = append(p.samples, id)
		}
	}
	g.nodes = append(g.nodes, n)
	return id
}

func (g *Graph) connect(src, dst NodeID) {
	s, d := g.nodes[src], g.nodes[dst]
	if src == dst || g.reaches(dst, src) {
		g.fail(fmt.Errorf("%w: %q -> %q", ErrCycle, s.name, d.name))
		return
	}
	if d.fed {
		g.fail(fmt.Errorf("%w: %q -> %q", ErrDuplicateProducer, s.name, d.name))
		return
	}
	d.fed = true
	d.parents = append(d.parents, edge{id: src, kind: trigger})
	s.triggers = append(s.triggers, dst)
	if d.compute == nil {
		d.compute = latest
	}
	if s.rank >= d.rank {
		g.rerank()
	}
}

// reaches walks both trigger and sample children. Ranks order sample parents
// before their readers too, so a loop through a sample edge is refused as well.
func (g *Graph) reaches(from, to NodeID) bool {
	visited := mapset.NewThreadUnsafeSet[NodeID](from)
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		n := g.nodes[id]
		for _, children := range [][]NodeID{n.triggers, n.samples} {
			for _, c := range children {
				if visited.Add(c) {
					stack = append(stack, c)
				}
			}
		}
	}
	return false
}

// rerank recomputes longest-path ranks with Kahn's algorithm. Only needed
// when Connect adds an edge against the creation order.
func (g *Graph) rerank() {
	indegree := make([]int, len(g.nodes))
	queue := make([]NodeID, 0, len(g.nodes))
	for i, n := range g.nodes {
		n.rank = 0
		indegree[i] = len(n.parents)
		if indegree[i] == 0 {
			queue = append(queue, NodeID(i))
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := g.nodes[id]
		for _, children := range [][]NodeID{n.triggers, n.samples} {
			for _, c := range children {
				child := g.nodes[c]
				if n.rank+1 > child.rank {
					child.rank = n.rank + 1
				}
				indegree[c]--
				if indegree[c] == 0 {
					queue = append(queue, c)
				}
			}
		}
	}
}

func (g *Graph) fired(id NodeID) bool {
	return g.nodes[id].firedAt == g.pass
}

func (g *Graph) triggered(n *node) bool {
	for _, e := range n.parents {
		if e.kind == trigger && g.fired(e.id) {
			return true
		}
	}
	return false
}

// latest takes the value of the last trigger parent that fired in this pass.
func latest(g *Graph, n *node) any {
	v := n.value
	for _, e := range n.parents {
		if e.kind == trigger && g.fired(e.id) {
			v = g.nodes[e.id].value
		}
	}
	return v
}

func (g *Graph) emit(id NodeID, v any) {
	if g.disposed {
		g.logger.Debug("emit after dispose dropped", "node", g.nodes[id].name)
		return
	}
	for i := range g.queue {
		if g.queue[i].id == id {
			g.queue[i].value = v
			return
		}
	}
	g.queue = append(g.queue, emission{id: id, value: v})
	if g.batchDepth > 0 || g.running {
		return
	}
	g.flush()
}

func (g *Graph) flush() {
	for len(g.queue) > 0 && !g.disposed {
		batch := g.queue
		g.queue = nil
		g.propagate(batch)
	}
}

func (g *Graph) byRank(a, b NodeID) int {
	if c := cmp.Compare(g.nodes[a].rank, g.nodes[b].rank); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

func (g *Graph) propagate(batch []emission) {
	g.running = true
	defer func() {
		g.running = false
		if r := recover(); r != nil {
			g.queue = nil
			panic(r)
		}
	}()

	g.pass++
	g.stats.Passes++

	fired := make([]NodeID, 0, len(batch))
	reach := mapset.NewThreadUnsafeSet[NodeID]()
	for _, e := range batch {
		n := g.nodes[e.id]
		n.value = e.value
		n.firedAt = g.pass
		fired = append(fired, e.id)
	}
	for _, e := range batch {
		g.collect(e.id, reach)
	}

	order := reach.ToSlice()
	slices.SortFunc(order, g.byRank)
	for _, id := range order {
		n := g.nodes[id]
		if n.firedAt == g.pass || !g.triggered(n) {
			continue
		}
		v := n.compute(g, n)
		g.stats.Recomputes++
		if n.equal != nil && n.equal(n.value, v) {
			g.stats.Suppressed++
			continue
		}
		n.value = v
		n.firedAt = g.pass
		fired = append(fired, id)
	}

	slices.SortFunc(fired, g.byRank)
	for _, id := range fired {
		n := g.nodes[id]
		if len(n.subs) == 0 {
			continue
		}
		subs := slices.Clone(n.subs)
		for _, s := range subs {
			if s.stopped {
				continue
			}
			g.stats.Effects++
			s.fn(n.value)
		}
	}
}

func (g *Graph) collect(from NodeID, reach mapset.Set[NodeID]) {
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.nodes[id].triggers {
			if reach.Add(c) {
				stack = append(stack, c)
			}
		}
	}
}

func (g *Graph) subscribe(id NodeID, fn func(any)) (stop func()) {
	if g.disposed {
		return func() {}
	}
	s := &subscription{fn: fn}
	n := g.nodes[id]
	n.subs = append(n.subs, s)
	return func() {
		if s.stopped {
			return
		}
		s.stopped = true
		n.subs = slices.DeleteFunc(n.subs, func(other *subscription) bool {
			return other == s
		})
	}
}
