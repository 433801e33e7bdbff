package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/delaneyj/caretparty/blink"
	"github.com/delaneyj/caretparty/glyph"
	"github.com/delaneyj/caretparty/spring"
	"github.com/tanema/gween/ease"
)

var ErrInvalidOptions = errors.New("invalid selection options")

// Rgb is a linear color with components in [0, 1].
type Rgb struct {
	R, G, B float64
}

func (c Rgb) components() []float64 {
	return []float64{c.R, c.G, c.B}
}

func rgbOf(v []float64) Rgb {
	return Rgb{R: v[0], G: v[1], B: v[2]}
}

type Options struct {
	Position    spring.Params
	Width       spring.Params
	Height      spring.Params
	NotBlinking spring.Params
	Blink       blink.Params

	// MinWidth is the narrowest a caret is drawn, Spacing is taken off the
	// width of a selection so neighbours do not touch, Padding surrounds the
	// view box on every side.
	MinWidth float64
	Spacing  float64
	Padding  float64

	Color     Rgb
	ColorFade time.Duration
	ColorEase ease.TweenFunc

	// Slowdown multiplies the speed of the position and width springs. Zero
	// means 1.
	Slowdown float64
	EditMode bool

	Clock  blink.Clock
	Glyphs glyph.Resolver
	Logger *slog.Logger
}

func DefaultOptions() Options {
	return Options{
		Position:    spring.DefaultParams,
		Width:       spring.DefaultParams,
		Height:      spring.DefaultParams,
		NotBlinking: spring.Critical(100),
		Blink:       blink.DefaultParams(),
		MinWidth:    2,
		Spacing:     1,
		Padding:     4,
		Color:       Rgb{R: 1, G: 1, B: 1},
		ColorFade:   150 * time.Millisecond,
		ColorEase:   ease.InOutQuad,
		Slowdown:    1,
	}
}

func (o Options) Validate() error {
	var errs []error
	for _, ch := range []struct {
		name   string
		params spring.Params
	}{
		{"position", o.Position},
		{"width", o.Width},
		{"height", o.Height},
		{"not blinking", o.NotBlinking},
	} {
		if err := ch.params.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s spring: %w", ch.name, err))
		}
	}
	if err := o.Blink.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, g := range []struct {
		name string
		v    float64
	}{
		{"min width", o.MinWidth},
		{"spacing", o.Spacing},
		{"padding", o.Padding},
		{"slowdown", o.Slowdown},
	} {
		if math.IsNaN(g.v) || math.IsInf(g.v, 0) || g.v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s %v", ErrInvalidOptions, g.name, g.v))
		}
	}
	if o.ColorFade < 0 {
		errs = append(errs, fmt.Errorf("%w: color fade %s", ErrInvalidOptions, o.ColorFade))
	}
	return errors.Join(errs...)
}

// springs applies the slowdown to the channels it affects.
func (o Options) springs() (position, width spring.Params) {
	position, width = o.Position, o.Width
	if o.Slowdown != 0 {
		position.Speed = o.Slowdown * speedOf(position)
		width.Speed = o.Slowdown * speedOf(width)
	}
	return position, width
}

func speedOf(p spring.Params) float64 {
	if p.Speed == 0 {
		return 1
	}
	return p.Speed
}
