// Package config loads the tunables of a selection from TOML. Durations are
// written in milliseconds, every key is optional and falls back to the
// default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/delaneyj/caretparty/blink"
	"github.com/delaneyj/caretparty/glyph"
	"github.com/delaneyj/caretparty/selection"
	"github.com/delaneyj/caretparty/spring"
	"github.com/pelletier/go-toml/v2"
	"github.com/tanema/gween/ease"
)

var ErrUnknownEase = errors.New("unknown easing")

var eases = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_out_sine":  ease.InOutSine,
}

// EaseNames lists the values accepted by color.ease.
func EaseNames() []string {
	names := make([]string, 0, len(eases))
	for name := range eases {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type Spring struct {
	Stiffness float64 `toml:"stiffness"`
	Damping   float64 `toml:"damping"`
	Speed     float64 `toml:"speed,omitempty"`
	Epsilon   float64 `toml:"epsilon,omitempty"`
}

type Blink struct {
	SlopeInMS      int64   `toml:"slope_in_ms"`
	SlopeOutMS     int64   `toml:"slope_out_ms"`
	OnMS           int64   `toml:"on_ms"`
	OffMS          int64   `toml:"off_ms"`
	CursorAlpha    float64 `toml:"cursor_alpha"`
	SelectionAlpha float64 `toml:"selection_alpha"`
}

type Geometry struct {
	MinWidth float64 `toml:"min_width"`
	Spacing  float64 `toml:"spacing"`
	Padding  float64 `toml:"padding"`
}

type Color struct {
	R      float64 `toml:"r"`
	G      float64 `toml:"g"`
	B      float64 `toml:"b"`
	FadeMS int64   `toml:"fade_ms"`
	Ease   string  `toml:"ease"`
}

type Debug struct {
	Slowdown float64 `toml:"slowdown"`
	EditMode bool    `toml:"edit_mode"`
}

type Config struct {
	Position    Spring   `toml:"position"`
	Width       Spring   `toml:"width"`
	Height      Spring   `toml:"height"`
	NotBlinking Spring   `toml:"not_blinking"`
	Blink       Blink    `toml:"blink"`
	Geometry    Geometry `toml:"geometry"`
	Color       Color    `toml:"color"`
	Debug       Debug    `toml:"debug"`
}

func fromParams(p spring.Params) Spring {
	return Spring{Stiffness: p.Stiffness, Damping: p.Damping, Speed: p.Speed, Epsilon: p.Epsilon}
}

func (s Spring) params() spring.Params {
	return spring.Params{Stiffness: s.Stiffness, Damping: s.Damping, Speed: s.Speed, Epsilon: s.Epsilon}
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}

func dur(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Default mirrors selection.DefaultOptions.
func Default() *Config {
	o := selection.DefaultOptions()
	return &Config{
		Position:    fromParams(o.Position),
		Width:       fromParams(o.Width),
		Height:      fromParams(o.Height),
		NotBlinking: fromParams(o.NotBlinking),
		Blink: Blink{
			SlopeInMS:      ms(o.Blink.SlopeIn),
			SlopeOutMS:     ms(o.Blink.SlopeOut),
			OnMS:           ms(o.Blink.On),
			OffMS:          ms(o.Blink.Off),
			CursorAlpha:    o.Blink.CursorAlpha,
			SelectionAlpha: o.Blink.SelectionAlpha,
		},
		Geometry: Geometry{
			MinWidth: o.MinWidth,
			Spacing:  o.Spacing,
			Padding:  o.Padding,
		},
		Color: Color{
			R:      o.Color.R,
			G:      o.Color.G,
			B:      o.Color.B,
			FadeMS: ms(o.ColorFade),
			Ease:   "in_out_quad",
		},
		Debug: Debug{
			Slowdown: o.Slowdown,
			EditMode: o.EditMode,
		},
	}
}

// Parse overlays data on the defaults. Unknown keys are rejected so typos do
// not silently fall back to a default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("config %d:%d: %w", row, col, err)
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) Validate() error {
	_, err := c.Options(nil, nil)
	return err
}

// Options turns the file into controller options. clock and glyphs are
// passed through as is.
func (c *Config) Options(clock blink.Clock, glyphs glyph.Resolver) (selection.Options, error) {
	fn, ok := eases[c.Color.Ease]
	if !ok {
		return selection.Options{}, fmt.Errorf("%w %q, want one of %v", ErrUnknownEase, c.Color.Ease, EaseNames())
	}
	o := selection.Options{
		Position:    c.Position.params(),
		Width:       c.Width.params(),
		Height:      c.Height.params(),
		NotBlinking: c.NotBlinking.params(),
		Blink: blink.Params{
			SlopeIn:        dur(c.Blink.SlopeInMS),
			SlopeOut:       dur(c.Blink.SlopeOutMS),
			On:             dur(c.Blink.OnMS),
			Off:            dur(c.Blink.OffMS),
			CursorAlpha:    c.Blink.CursorAlpha,
			SelectionAlpha: c.Blink.SelectionAlpha,
		},
		MinWidth:  c.Geometry.MinWidth,
		Spacing:   c.Geometry.Spacing,
		Padding:   c.Geometry.Padding,
		Color:     selection.Rgb{R: c.Color.R, G: c.Color.G, B: c.Color.B},
		ColorFade: dur(c.Color.FadeMS),
		ColorEase: fn,
		Slowdown:  c.Debug.Slowdown,
		EditMode:  c.Debug.EditMode,
		Clock:     clock,
		Glyphs:    glyphs,
	}
	if err := o.Validate(); err != nil {
		return selection.Options{}, err
	}
	return o, nil
}
