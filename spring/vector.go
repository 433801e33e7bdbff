package spring

import "math"

// Vector is a value a Simulator can animate. Zip advances every axis with
// the same step function so all axes of one value move in lockstep.
type Vector[T any] interface {
	comparable
	Zip(vel, target T, step func(pos, vel, target float64) (float64, float64)) (T, T)
	// Dist is the largest per-axis distance to other.
	Dist(other T) float64
}

type Scalar float64

func (s Scalar) Zip(vel, target Scalar, step func(pos, vel, target float64) (float64, float64)) (Scalar, Scalar) {
	p, v := step(float64(s), float64(vel), float64(target))
	return Scalar(p), Scalar(v)
}

func (s Scalar) Dist(other Scalar) float64 {
	return math.Abs(float64(s - other))
}

type Vec2 struct {
	X, Y float64
}

func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vec2) Scale(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

func (v Vec2) Zip(vel, target Vec2, step func(pos, vel, target float64) (float64, float64)) (Vec2, Vec2) {
	var p, nv Vec2
	p.X, nv.X = step(v.X, vel.X, target.X)
	p.Y, nv.Y = step(v.Y, vel.Y, target.Y)
	return p, nv
}

func (v Vec2) Dist(o Vec2) float64 {
	return math.Max(math.Abs(v.X-o.X), math.Abs(v.Y-o.Y))
}
