// Package spring animates values toward a target with a damped harmonic
// oscillator. Only critically and over-damped springs are accepted, so a
// channel never oscillates around its target and settles in bounded time.
package spring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// DefaultEpsilon is the distance and speed under which a simulator snaps to
// its target and goes to rest.
const DefaultEpsilon = 1e-3

var (
	ErrInvalidParams = errors.New("invalid spring parameters")
	ErrUnderdamped   = errors.New("spring is under-damped")
)

// Params describe a unit-mass spring: acceleration is
// Stiffness*(target-value) - Damping*velocity.
type Params struct {
	Stiffness float64
	Damping   float64
	// Speed scales time. Values below 1 slow the animation down, which is
	// only meant for debugging. Zero means 1.
	Speed float64
	// Zero means DefaultEpsilon.
	Epsilon float64
}

// Critical returns critically damped parameters for the given stiffness.
func Critical(stiffness float64) Params {
	return Params{Stiffness: stiffness, Damping: 2 * math.Sqrt(stiffness)}
}

// DefaultParams settle a 100px jump in roughly half a second.
var DefaultParams = Critical(400)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Params) normalized() Params {
	if p.Speed == 0 {
		p.Speed = 1
	}
	if p.Epsilon == 0 {
		p.Epsilon = DefaultEpsilon
	}
	return p
}

func (p Params) Validate() error {
	p = p.normalized()
	switch {
	case !finite(p.Stiffness) || p.Stiffness <= 0:
		return fmt.Errorf("%w: stiffness %v", ErrInvalidParams, p.Stiffness)
	case !finite(p.Damping) || p.Damping < 0:
		return fmt.Errorf("%w: damping %v", ErrInvalidParams, p.Damping)
	case !finite(p.Speed) || p.Speed < 0:
		return fmt.Errorf("%w: speed %v", ErrInvalidParams, p.Speed)
	case !finite(p.Epsilon) || p.Epsilon < 0:
		return fmt.Errorf("%w: epsilon %v", ErrInvalidParams, p.Epsilon)
	}
	if ratio := p.DampingRatio(); ratio < 1-1e-9 {
		return fmt.Errorf("%w: damping ratio %.3f < 1", ErrUnderdamped, ratio)
	}
	return nil
}

func (p Params) AngularFrequency() float64 {
	return math.Sqrt(p.Stiffness)
}

func (p Params) DampingRatio() float64 {
	return p.Damping / (2 * math.Sqrt(p.Stiffness))
}

// Simulator is a single animation channel. The zero value is not usable,
// create one with NewSimulator.
type Simulator[T Vector[T]] struct {
	params   Params
	omega    float64
	zeta     float64
	value    T
	velocity T
	target   T
	resting  bool
}

func NewSimulator[T Vector[T]](params Params, initial T) (*Simulator[T], error) {
	s := &Simulator[T]{
		value:   initial,
		target:  initial,
		resting: true,
	}
	if err := s.SetParams(params); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator[T]) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.params = params.normalized()
	s.omega = s.params.AngularFrequency()
	s.zeta = s.params.DampingRatio()
	return nil
}

func (s *Simulator[T]) Params() Params {
	return s.params
}

// SetSpeed changes the time multiplier.
func (s *Simulator[T]) SetSpeed(m float64) error {
	p := s.params
	p.Speed = m
	return s.SetParams(p)
}

func (s *Simulator[T]) Value() T    { return s.value }
func (s *Simulator[T]) Velocity() T { return s.velocity }
func (s *Simulator[T]) Target() T   { return s.target }

// Resting reports whether Tick would leave the simulator unchanged.
func (s *Simulator[T]) Resting() bool { return s.resting }

// SetTarget moves the target. Velocity is kept, so a retarget in flight
// bends the motion instead of restarting it.
func (s *Simulator[T]) SetTarget(t T) {
	var zero T
	s.target = t
	s.resting = s.value == t && s.velocity == zero
}

// Skip jumps to the target and stops.
func (s *Simulator[T]) Skip() {
	var zero T
	s.value = s.target
	s.velocity = zero
	s.resting = true
}

// Tick advances the simulation by dt scaled by the speed multiplier and
// reports whether the value moved. A non-positive dt is a no-op.
func (s *Simulator[T]) Tick(dt time.Duration) bool {
	if dt <= 0 || s.resting || s.params.Speed == 0 {
		return false
	}
	var zero T
	step := harmonica.NewSpring(dt.Seconds()*s.params.Speed, s.omega, s.zeta)
	prev := s.value
	s.value, s.velocity = s.value.Zip(s.velocity, s.target, step.Update)
	if s.value.Dist(s.target) < s.params.Epsilon && s.velocity.Dist(zero) < s.params.Epsilon {
		s.value = s.target
		s.velocity = zero
		s.resting = true
	}
	return s.value != prev
}
