// Package tween eases a fixed set of components toward a target over a fixed
// duration. It is used for transitions that should not feel springy, such as
// color fades.
package tween

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Group animates every component with the same duration and easing. Callers
// drive it with Update once per frame.
type Group struct {
	duration time.Duration
	fn       ease.TweenFunc

	values []float64
	target []float64
	tweens []*gween.Tween
	done   bool
}

// NewGroup starts at rest on initial. A nil fn eases linearly.
func NewGroup(initial []float64, duration time.Duration, fn ease.TweenFunc) *Group {
	if fn == nil {
		fn = ease.Linear
	}
	return &Group{
		duration: duration,
		fn:       fn,
		values:   append([]float64(nil), initial...),
		target:   append([]float64(nil), initial...),
		tweens:   make([]*gween.Tween, len(initial)),
		done:     true,
	}
}

// Retarget restarts the transition from the current values. Components
// beyond the group's size are ignored. A zero duration jumps immediately.
func (g *Group) Retarget(to []float64) {
	copy(g.target, to)
	if g.duration <= 0 {
		copy(g.values, g.target)
		g.done = true
		return
	}
	secs := float32(g.duration.Seconds())
	for i := range g.values {
		g.tweens[i] = gween.New(float32(g.values[i]), float32(g.target[i]), secs, g.fn)
	}
	g.done = false
}

// Update advances by dt and reports whether any value changed.
func (g *Group) Update(dt time.Duration) bool {
	if g.done || dt <= 0 {
		return false
	}
	changed := false
	allDone := true
	for i, tw := range g.tweens {
		v, finished := tw.Update(float32(dt.Seconds()))
		next := float64(v)
		if finished {
			next = g.target[i]
		} else {
			allDone = false
		}
		if next != g.values[i] {
			g.values[i] = next
			changed = true
		}
	}
	g.done = allDone
	return changed
}

func (g *Group) Values() []float64 {
	return append([]float64(nil), g.values...)
}

func (g *Group) Target() []float64 {
	return append([]float64(nil), g.target...)
}

func (g *Group) Done() bool {
	return g.done
}
