package graph_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/caretparty/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity[T any](a T) T {
	return a
}

func TestTopologyDropAbaUpdates(t *testing.T) {
	//     A
	//   / |
	//  B  |
	//   \ |
	//     C
	//     |
	//     D
	g := graph.New()
	a := graph.Input(g, "a", 2)
	b := graph.Derive1(g, "b", a, func(v int) int { return v - 1 })
	c := graph.Derive2(g, "c", a, b, func(a, b int) int { return a + b })
	callCount := 0
	d := graph.Derive1(g, "d", c, func(c int) string {
		callCount++
		return fmt.Sprintf("d: %d", c)
	})
	require.NoError(t, g.Err())

	assert.Equal(t, "d: 3", d.Value())
	assert.Equal(t, 1, callCount)

	a.Emit(4)
	assert.Equal(t, "d: 7", d.Value())
	assert.Equal(t, 2, callCount)
}

func TestShouldOnlyUpdateEveryNodeOnceDiamond(t *testing.T) {
	// In this scenario "D" should only update once when "A" receives
	// an update. This is sometimes referred to as the "diamond" scenario.
	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	g := graph.New()
	a := graph.Input(g, "a", "a")
	b := graph.Derive1(g, "b", a, identity[string])
	c := graph.Derive1(g, "c", a, identity[string])

	callCount := 0
	d := graph.Derive2(g, "d", b, c, func(b, c string) string {
		callCount++
		return b + " " + c
	})

	assert.Equal(t, "a a", d.Value())
	assert.Equal(t, 1, callCount)
	callCount = 0

	a.Emit("aa")
	assert.Equal(t, "aa aa", d.Value())
	assert.Equal(t, 1, callCount)
}

func TestShouldOnlyUpdateEveryNodeOnceJaggedDiamondTails(t *testing.T) {
	// "F" and "G" will be likely updated twice if the walk is buggy.
	//     A
	//   /   \
	//  B     C
	//  |     |
	//  |     D
	//   \   /
	//     E
	//   /   \
	//  F     G
	g := graph.New()
	a := graph.Input(g, "a", "a")
	b := graph.Derive1(g, "b", a, identity[string])
	c := graph.Derive1(g, "c", a, identity[string])
	d := graph.Derive1(g, "d", c, identity[string])

	var order []string
	eCallCount := 0
	e := graph.Derive2(g, "e", b, d, func(bV, dV string) string {
		eCallCount++
		order = append(order, "e")
		return bV + " " + dV
	})
	fCallCount := 0
	f := graph.Derive1(g, "f", e, func(ev string) string {
		fCallCount++
		order = append(order, "f")
		return ev
	})
	gCallCount := 0
	gg := graph.Derive1(g, "g", e, func(ev string) string {
		gCallCount++
		order = append(order, "g")
		return ev
	})
	require.NoError(t, g.Err())

	eCallCount, fCallCount, gCallCount = 0, 0, 0
	order = nil

	a.Emit("b")
	require.Equal(t, "b b", e.Value())
	require.Equal(t, 1, eCallCount)
	require.Equal(t, "b b", f.Value())
	require.Equal(t, 1, fCallCount)
	require.Equal(t, "b b", gg.Value())
	require.Equal(t, 1, gCallCount)

	// top to bottom, then left to right
	assert.Equal(t, []string{"e", "f", "g"}, order)
}

func TestBailOutIfResultIsTheSame(t *testing.T) {
	// Bail out if value of "B" never changes
	// A->B->C
	g := graph.New()
	a := graph.Input(g, "a", "a")
	b := graph.OnChange(g, "b", graph.Derive1(g, "b.raw", a, func(string) string {
		return "foo"
	}))

	callCount := 0
	c := graph.Derive1(g, "c", b, func(b string) string {
		callCount++
		return b
	})

	assert.Equal(t, "foo", c.Value())
	assert.Equal(t, 1, callCount)

	a.Emit("aa")
	assert.Equal(t, "foo", c.Value())
	assert.Equal(t, 1, callCount)
}

func TestShouldEnsureSubsUpdateEvenIfTwoDepsUnmarkIt(t *testing.T) {
	// In this scenario both "C" and "D" always return the same
	// value. But "E" must still update because "B" changed.
	//     A
	//   / | \
	//  B *C *D
	//   \ | /
	//     E
	g := graph.New()
	a := graph.Input(g, "a", "a")
	b := graph.Derive1(g, "b", a, identity[string])
	c := graph.OnChange(g, "c", graph.Derive1(g, "c.raw", a, func(string) string { return "c" }))
	d := graph.OnChange(g, "d", graph.Derive1(g, "d.raw", a, func(string) string { return "d" }))
	eCallCount := 0
	e := graph.Derive3(g, "e", b, c, d, func(b, c, d string) string {
		eCallCount++
		return b + " " + c + " " + d
	})

	assert.Equal(t, "a c d", e.Value())
	assert.Equal(t, 1, eCallCount)

	a.Emit("aa")
	assert.Equal(t, "aa c d", e.Value())
	assert.Equal(t, 2, eCallCount)
}

func TestShouldNotUpdateIfAllDepsUnmarkIt(t *testing.T) {
	//     A
	//   /   \
	// *B     *C
	//   \   /
	//     D
	g := graph.New()
	a := graph.Input(g, "a", "a")
	b := graph.OnChange(g, "b", graph.Derive1(g, "b.raw", a, func(string) string { return "b" }))
	c := graph.OnChange(g, "c", graph.Derive1(g, "c.raw", a, func(string) string { return "c" }))
	dCallCount := 0
	d := graph.Derive2(g, "d", b, c, func(b, c string) string {
		dCallCount++
		return b + " " + c
	})

	assert.Equal(t, "b c", d.Value())
	dCallCount = 0

	a.Emit("aa")
	assert.Equal(t, 0, dCallCount)
}

func TestSampledBranchIsNotVisited(t *testing.T) {
	//  A     B
	//  |     :  (sample)
	//   \    :
	//     C
	g := graph.New()
	a := graph.Input(g, "a", 1)
	b := graph.Input(g, "b", 1)
	bTwice := graph.Derive1(g, "b*2", b, func(v int) int { return v * 2 })
	cCalls := 0
	graph.Derive2(g, "c", a, bTwice.Sample(), func(a, b int) int {
		cCalls++
		return a + b
	})

	b.Emit(5)
	b.Emit(6)
	assert.Equal(t, 1, cCalls)
	assert.Equal(t, 12, bTwice.Value())
	assert.Equal(t, uint64(2), g.Stats().Recomputes)
}
