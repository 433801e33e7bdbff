// Package blink computes the opacity of a blinking caret as a pure function
// of the time elapsed since the last reset.
//
// One period is laid out as on, fade out, off, fade in:
//
//	|  On  | SlopeOut |  Off  | SlopeIn |
//	 alpha     ramp      0       ramp
package blink

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidParams = errors.New("invalid blink parameters")

type Params struct {
	SlopeIn  time.Duration
	SlopeOut time.Duration
	On       time.Duration
	Off      time.Duration

	CursorAlpha    float64
	SelectionAlpha float64
}

func DefaultParams() Params {
	return Params{
		SlopeIn:        200 * time.Millisecond,
		SlopeOut:       200 * time.Millisecond,
		On:             300 * time.Millisecond,
		Off:            300 * time.Millisecond,
		CursorAlpha:    0.8,
		SelectionAlpha: 0.3,
	}
}

func (p Params) Period() time.Duration {
	return p.SlopeIn + p.SlopeOut + p.On + p.Off
}

func (p Params) Validate() error {
	var errs []error
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"slope in", p.SlopeIn},
		{"slope out", p.SlopeOut},
		{"on", p.On},
		{"off", p.Off},
	} {
		if d.v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s duration %s", ErrInvalidParams, d.name, d.v))
		}
	}
	// Zero-length ramps turn into steps, which jump at the phase boundary.
	if p.SlopeIn == 0 || p.SlopeOut == 0 {
		errs = append(errs, fmt.Errorf("%w: slopes must be positive, got in %s out %s", ErrInvalidParams, p.SlopeIn, p.SlopeOut))
	}
	if p.Period() <= 0 {
		errs = append(errs, fmt.Errorf("%w: empty period", ErrInvalidParams))
	}
	if !(p.CursorAlpha >= 0 && p.CursorAlpha <= 1) {
		errs = append(errs, fmt.Errorf("%w: cursor alpha %v", ErrInvalidParams, p.CursorAlpha))
	}
	if !(p.SelectionAlpha >= 0 && p.SelectionAlpha <= 1) {
		errs = append(errs, fmt.Errorf("%w: selection alpha %v", ErrInvalidParams, p.SelectionAlpha))
	}
	return errors.Join(errs...)
}

// Smoothstep is the cubic Hermite ramp between e0 and e1. When the edges
// coincide it degrades to a step at e0.
func Smoothstep(x, e0, e1 float64) float64 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := (x - e0) / (e1 - e0)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return t * t * (3 - 2*t)
}

// Phase folds elapsed into [0, Period).
func (p Params) Phase(elapsed time.Duration) time.Duration {
	period := p.Period()
	if period <= 0 {
		return 0
	}
	phase := elapsed % period
	if phase < 0 {
		phase += period
	}
	return phase
}

// BlinkingAlpha is the caret opacity at elapsed. It is periodic and equals
// CursorAlpha at every multiple of the period.
func (p Params) BlinkingAlpha(elapsed time.Duration) float64 {
	phase := float64(p.Phase(elapsed))
	on := float64(p.On)
	offStart := on + float64(p.SlopeOut)
	inStart := offStart + float64(p.Off)

	fadeOut := Smoothstep(phase, on, offStart)
	fadeIn := Smoothstep(phase, inStart, float64(p.Period()))
	return (1 - fadeOut + fadeIn) * p.CursorAlpha
}

// Alpha mixes the blinking alpha toward SelectionAlpha by notBlinking,
// clamped to [0, 1]. The ends are exact.
func (p Params) Alpha(elapsed time.Duration, notBlinking float64) float64 {
	t := min(max(notBlinking, 0), 1)
	return p.BlinkingAlpha(elapsed)*(1-t) + p.SelectionAlpha*t
}

// State remembers when the blink cycle was last restarted.
type State struct {
	start time.Duration
}

func (s *State) Reset(now time.Duration) {
	s.start = now
}

func (s *State) Start() time.Duration {
	return s.start
}

func (s *State) Elapsed(now time.Duration) time.Duration {
	return now - s.start
}
