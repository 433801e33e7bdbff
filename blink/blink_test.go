package blink_test

import (
	"testing"
	"time"

	"github.com/delaneyj/caretparty/blink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	p := blink.DefaultParams()
	require.NoError(t, p.Validate())
	assert.Equal(t, time.Second, p.Period())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		edit func(*blink.Params)
	}{
		{"negative on", func(p *blink.Params) { p.On = -time.Millisecond }},
		{"zero slope in", func(p *blink.Params) { p.SlopeIn = 0 }},
		{"zero slope out", func(p *blink.Params) { p.SlopeOut = 0 }},
		{"hard off at start", func(p *blink.Params) { p.On, p.SlopeOut = 0, 0 }},
		{"empty period", func(p *blink.Params) { *p = blink.Params{CursorAlpha: 1} }},
		{"cursor alpha above one", func(p *blink.Params) { p.CursorAlpha = 1.5 }},
		{"negative selection alpha", func(p *blink.Params) { p.SelectionAlpha = -0.1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := blink.DefaultParams()
			tc.edit(&p)
			assert.ErrorIs(t, p.Validate(), blink.ErrInvalidParams)
		})
	}
}

func TestValidParamsStartFullyOn(t *testing.T) {
	ms := time.Millisecond
	for _, p := range []blink.Params{
		blink.DefaultParams(),
		{SlopeIn: 500 * ms, SlopeOut: ms, Off: 500 * ms, CursorAlpha: 0.8},
		{SlopeIn: ms, SlopeOut: 500 * ms, On: 0, CursorAlpha: 0.8},
		{SlopeIn: ms, SlopeOut: ms, CursorAlpha: 1},
	} {
		require.NoError(t, p.Validate())
		assert.Equal(t, p.CursorAlpha, p.BlinkingAlpha(0), "%+v", p)
		assert.Equal(t, p.CursorAlpha, p.BlinkingAlpha(p.Period()), "%+v", p)
		assert.InDelta(t, p.CursorAlpha, p.BlinkingAlpha(p.Period()-time.Nanosecond), 1e-6, "%+v", p)
	}
}

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, blink.Smoothstep(-1, 0, 1))
	assert.Equal(t, 0.0, blink.Smoothstep(0, 0, 1))
	assert.Equal(t, 0.5, blink.Smoothstep(0.5, 0, 1))
	assert.Equal(t, 1.0, blink.Smoothstep(1, 0, 1))
	assert.Equal(t, 1.0, blink.Smoothstep(2, 0, 1))

	// degenerate edges step at e0
	assert.Equal(t, 0.0, blink.Smoothstep(0.9, 1, 1))
	assert.Equal(t, 1.0, blink.Smoothstep(1, 1, 1))
}

func TestBlinkingAlphaShape(t *testing.T) {
	p := blink.DefaultParams()
	ms := time.Millisecond

	assert.Equal(t, 0.8, p.BlinkingAlpha(0))
	assert.Equal(t, 0.8, p.BlinkingAlpha(300*ms), "fully on until the fade out starts")
	assert.InDelta(t, 0.4, p.BlinkingAlpha(400*ms), 1e-12)
	assert.Equal(t, 0.0, p.BlinkingAlpha(500*ms))
	assert.Equal(t, 0.0, p.BlinkingAlpha(800*ms))
	assert.InDelta(t, 0.4, p.BlinkingAlpha(900*ms), 1e-12)
	assert.Equal(t, 0.8, p.BlinkingAlpha(time.Second))
}

func TestBlinkingAlphaIsPeriodic(t *testing.T) {
	p := blink.DefaultParams()
	period := p.Period()
	for e := time.Duration(0); e < period; e += 37 * time.Millisecond {
		a := p.BlinkingAlpha(e)
		assert.GreaterOrEqual(t, a, 0.0)
		assert.LessOrEqual(t, a, p.CursorAlpha)
		assert.InDelta(t, a, p.BlinkingAlpha(e+3*period), 1e-12)
		assert.InDelta(t, a, p.BlinkingAlpha(e-period), 1e-12, "negative elapsed folds into the period")
	}
}

func TestBlinkingAlphaIsContinuous(t *testing.T) {
	p := blink.DefaultParams()
	step := time.Millisecond
	prev := p.BlinkingAlpha(0)
	for e := step; e <= 2*p.Period(); e += step {
		a := p.BlinkingAlpha(e)
		assert.InDelta(t, prev, a, 0.01, "jump at %s", e)
		prev = a
	}
}

func TestAlphaMix(t *testing.T) {
	p := blink.DefaultParams()
	assert.Equal(t, p.CursorAlpha, p.Alpha(0, 0))
	for e := time.Duration(0); e < p.Period(); e += 50 * time.Millisecond {
		assert.Equal(t, p.SelectionAlpha, p.Alpha(e, 1))
		assert.Equal(t, p.SelectionAlpha, p.Alpha(e, 7), "clamped")
	}
	assert.InDelta(t, 0.55, p.Alpha(0, 0.5), 1e-12)
}

func TestStateAndClock(t *testing.T) {
	var clock blink.ManualClock
	var s blink.State
	clock.Advance(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, s.Elapsed(clock.Now()))

	s.Reset(clock.Now())
	assert.Equal(t, 250*time.Millisecond, s.Start())
	assert.Equal(t, time.Duration(0), s.Elapsed(clock.Now()))
	clock.Advance(time.Second)
	assert.Equal(t, time.Second, s.Elapsed(clock.Now()))

	clock.Set(0)
	assert.Equal(t, time.Duration(0), clock.Now())

	mono := blink.NewMonotonicClock()
	a := mono.Now()
	assert.GreaterOrEqual(t, mono.Now(), a)
}
