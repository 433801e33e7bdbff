package spring_test

import (
	"math"
	"testing"
	"time"

	"github.com/delaneyj/caretparty/graph"
	"github.com/delaneyj/caretparty/spring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func settle[T spring.Vector[T]](t *testing.T, s *spring.Simulator[T], limit time.Duration) time.Duration {
	t.Helper()
	var elapsed time.Duration
	for !s.Resting() {
		require.Less(t, elapsed, limit, "spring did not settle")
		s.Tick(frame)
		elapsed += frame
	}
	return elapsed
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		params spring.Params
		err    error
	}{
		{"default", spring.DefaultParams, nil},
		{"critical", spring.Critical(300), nil},
		{"overdamped", spring.Params{Stiffness: 100, Damping: 40}, nil},
		{"underdamped", spring.Params{Stiffness: 100, Damping: 5}, spring.ErrUnderdamped},
		{"zero stiffness", spring.Params{Damping: 1}, spring.ErrInvalidParams},
		{"nan stiffness", spring.Params{Stiffness: math.NaN(), Damping: 1}, spring.ErrInvalidParams},
		{"inf damping", spring.Params{Stiffness: 1, Damping: math.Inf(1)}, spring.ErrInvalidParams},
		{"negative speed", spring.Params{Stiffness: 1, Damping: 2, Speed: -1}, spring.ErrInvalidParams},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.Validate()
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := spring.NewSimulator(spring.Params{Stiffness: 100, Damping: 1}, spring.Scalar(0))
	assert.ErrorIs(t, err, spring.ErrUnderdamped)
}

func TestConvergesExactly(t *testing.T) {
	for _, p := range []spring.Params{
		spring.DefaultParams,
		spring.Critical(50),
		{Stiffness: 100, Damping: 40},
		{Stiffness: 1000, Damping: 100},
	} {
		s, err := spring.NewSimulator(p, spring.V2(0, 0))
		require.NoError(t, err)
		target := spring.V2(250, -40)
		s.SetTarget(target)
		settle(t, s, 20*time.Second)
		assert.Equal(t, target, s.Value())
		assert.Equal(t, spring.Vec2{}, s.Velocity())
	}
}

func TestNeverOvershootsFromRest(t *testing.T) {
	s, err := spring.NewSimulator(spring.DefaultParams, spring.Scalar(0))
	require.NoError(t, err)
	s.SetTarget(100)
	prev := s.Value()
	for !s.Resting() {
		s.Tick(frame)
		v := s.Value()
		assert.LessOrEqual(t, float64(v), 100.0)
		assert.GreaterOrEqual(t, float64(v), float64(prev))
		prev = v
	}
}

func TestSkipIsExact(t *testing.T) {
	s, err := spring.NewSimulator(spring.DefaultParams, spring.V2(3, 4))
	require.NoError(t, err)
	s.SetTarget(spring.V2(0.1, 1e9))
	s.Tick(frame)
	s.Tick(frame)
	require.False(t, s.Resting())

	s.Skip()
	assert.Equal(t, spring.V2(0.1, 1e9), s.Value())
	assert.Equal(t, spring.Vec2{}, s.Velocity())
	assert.False(t, s.Tick(frame))
	assert.False(t, s.Tick(time.Hour))
	assert.Equal(t, spring.V2(0.1, 1e9), s.Value())
}

func TestNonPositiveDtIsNoop(t *testing.T) {
	s, err := spring.NewSimulator(spring.DefaultParams, spring.Scalar(0))
	require.NoError(t, err)
	s.SetTarget(10)
	s.Tick(frame)
	v, vel := s.Value(), s.Velocity()

	assert.False(t, s.Tick(0))
	assert.False(t, s.Tick(-frame))
	assert.Equal(t, v, s.Value())
	assert.Equal(t, vel, s.Velocity())
}

func TestRetargetKeepsVelocity(t *testing.T) {
	s, err := spring.NewSimulator(spring.DefaultParams, spring.Scalar(0))
	require.NoError(t, err)
	s.SetTarget(100)
	s.Tick(frame)
	s.Tick(frame)
	vel := s.Velocity()
	require.Greater(t, float64(vel), 0.0)

	s.SetTarget(-100)
	assert.Equal(t, vel, s.Velocity())
	assert.Equal(t, spring.Scalar(-100), s.Target())
	s.Tick(frame)
	settle(t, s, 10*time.Second)
	assert.Equal(t, spring.Scalar(-100), s.Value())
}

func TestSetTargetToCurrentStaysAtRest(t *testing.T) {
	s, err := spring.NewSimulator(spring.DefaultParams, spring.Scalar(7))
	require.NoError(t, err)
	s.SetTarget(7)
	assert.True(t, s.Resting())
	assert.False(t, s.Tick(frame))
}

func TestAxesMoveInLockstep(t *testing.T) {
	s, err := spring.NewSimulator(spring.DefaultParams, spring.V2(0, 0))
	require.NoError(t, err)
	s.SetTarget(spring.V2(100, 50))
	for i := 0; i < 20; i++ {
		s.Tick(frame)
		v := s.Value()
		assert.InDelta(t, v.X/100, v.Y/50, 1e-9)
	}
}

func TestSpeedScalesTime(t *testing.T) {
	fast, err := spring.NewSimulator(spring.DefaultParams, spring.Scalar(0))
	require.NoError(t, err)
	slow, err := spring.NewSimulator(spring.DefaultParams, spring.Scalar(0))
	require.NoError(t, err)
	require.NoError(t, slow.SetSpeed(0.5))

	fast.SetTarget(100)
	slow.SetTarget(100)
	for i := 0; i < 10; i++ {
		fast.Tick(frame)
		slow.Tick(frame)
		slow.Tick(frame)
		assert.InDelta(t, float64(fast.Value()), float64(slow.Value()), 1e-6)
	}

	assert.ErrorIs(t, slow.SetSpeed(math.NaN()), spring.ErrInvalidParams)
	assert.Equal(t, 0.5, slow.Params().Speed)
}

func TestAnimationOnGraph(t *testing.T) {
	g := graph.New()
	a, err := spring.NewAnimation(g, "width", spring.DefaultParams, spring.Scalar(0))
	require.NoError(t, err)
	require.NoError(t, g.Err())

	var seen []spring.Scalar
	graph.Subscribe(a.Value, func(v spring.Scalar) { seen = append(seen, v) })

	assert.False(t, a.Tick(frame), "resting animation does not emit")
	a.Target.Emit(50)
	assert.True(t, a.Tick(frame))
	require.Len(t, seen, 1)
	assert.Greater(t, float64(seen[0]), 0.0)
	assert.Less(t, float64(seen[0]), 50.0)

	a.Skip.Emit(struct{}{})
	assert.Equal(t, spring.Scalar(50), a.Value.Value())
	assert.True(t, a.Resting())
	assert.False(t, a.Tick(frame))

	a.Snap(-3)
	assert.Equal(t, spring.Scalar(-3), a.Value.Value())
	assert.Equal(t, spring.Scalar(-3), a.Target.Value())
	assert.Equal(t, spring.Scalar(-3), a.Current())
	assert.True(t, a.Resting())
}

func TestAnimationRejectsBadParams(t *testing.T) {
	g := graph.New()
	_, err := spring.NewAnimation(g, "bad", spring.Params{Stiffness: 1, Damping: 0.1}, spring.Scalar(0))
	assert.ErrorIs(t, err, spring.ErrUnderdamped)
}
