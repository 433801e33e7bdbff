// Package selection animates a text caret or selection: a region with an
// animated position and a signed animated width, a blinking alpha that fades
// to a steady selection alpha, and an attachment point following the last
// glyph the region is attached to.
//
// A positive width grows to the right of the position, a negative one to the
// left. The position is the anchor edge and stays put while the width
// animates.
package selection

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/delaneyj/caretparty/blink"
	"github.com/delaneyj/caretparty/glyph"
	"github.com/delaneyj/caretparty/graph"
	"github.com/delaneyj/caretparty/spring"
	"github.com/delaneyj/caretparty/tween"
)

// Outputs are the derived nodes of a controller. Every one of them only fires
// when its value changes.
type Outputs struct {
	Position        graph.Node[spring.Vec2]
	PositionTarget  graph.Node[spring.Vec2]
	Width           graph.Node[float64]
	WidthTarget     graph.Node[float64]
	Height          graph.Node[float64]
	Extent          graph.Node[float64]
	AnchorOffset    graph.Node[float64]
	RightSide       graph.Node[float64]
	ViewY           graph.Node[float64]
	NotBlinking     graph.Node[float64]
	AttachmentPoint graph.Node[float64]
	Color           graph.Node[Rgb]
}

// Controller is driven from a single goroutine: inputs, Tick and the reads a
// renderer makes between frames.
type Controller struct {
	opts   Options
	g      *graph.Graph
	logger *slog.Logger
	clock  blink.Clock
	glyphs glyph.Resolver

	position    *spring.Animation[spring.Vec2]
	width       *spring.Animation[spring.Scalar]
	ascender    *spring.Animation[spring.Scalar]
	descender   *spring.Animation[spring.Scalar]
	notBlinking *spring.Animation[spring.Scalar]

	attached graph.Source[[]glyph.Handle]
	setColor graph.Source[Rgb]
	color    graph.Source[Rgb]
	fade     *tween.Group

	out      Outputs
	blink    blink.State
	editMode bool
	stops    []func()
	closed   bool
}

func New(opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = blink.NewMonotonicClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Controller{
		opts:     opts,
		g:        graph.New(graph.WithLogger(opts.Logger)),
		logger:   opts.Logger,
		clock:    opts.Clock,
		glyphs:   opts.Glyphs,
		editMode: opts.EditMode,
		fade:     tween.NewGroup(opts.Color.components(), opts.ColorFade, opts.ColorEase),
	}
	if err := c.build(); err != nil {
		c.g.Dispose()
		return nil, err
	}
	c.blink.Reset(c.clock.Now())
	c.logger.Debug("selection created", "nodes", c.g.Len(), "edit_mode", c.editMode)
	return c, nil
}

func (c *Controller) build() (err error) {
	g := c.g
	positionParams, widthParams := c.opts.springs()

	if c.position, err = spring.NewAnimation(g, "position", positionParams, spring.Vec2{}); err != nil {
		return err
	}
	if c.width, err = spring.NewAnimation(g, "width", widthParams, spring.Scalar(0)); err != nil {
		return err
	}
	if c.ascender, err = spring.NewAnimation(g, "ascender", c.opts.Height, spring.Scalar(0)); err != nil {
		return err
	}
	if c.descender, err = spring.NewAnimation(g, "descender", c.opts.Height, spring.Scalar(0)); err != nil {
		return err
	}
	if c.notBlinking, err = spring.NewAnimation(g, "not_blinking", c.opts.NotBlinking, spring.Scalar(0)); err != nil {
		return err
	}
	c.attached = graph.Input[[]glyph.Handle](g, "attached_glyphs", nil)
	c.setColor = graph.Input(g, "set_color", c.opts.Color)
	c.color = graph.Input(g, "color.faded", c.opts.Color)

	out := &c.out
	out.Position = graph.OnChange(g, "position.out", c.position.Value)
	out.PositionTarget = graph.OnChange(g, "position_target", c.position.Target.Node)
	out.Width = graph.OnChange(g, "width.out", graph.Derive1(g, "width.f64", c.width.Value, toFloat))
	out.WidthTarget = graph.OnChange(g, "width_target", graph.Derive1(g, "width_target.f64", c.width.Target, toFloat))
	out.Height = graph.OnChange(g, "height", graph.Derive2(g, "height.raw", c.ascender.Value, c.descender.Value,
		func(a, d spring.Scalar) float64 { return float64(a - d) }))
	out.Extent = graph.OnChange(g, "extent", graph.Derive1(g, "extent.raw", out.Width, func(w float64) float64 {
		return max(c.opts.MinWidth, math.Abs(w)-c.opts.Spacing)
	}))
	out.AnchorOffset = graph.OnChange(g, "anchor_offset", graph.Derive1(g, "anchor_offset.raw", out.Width, anchorOffset))
	out.RightSide = graph.OnChange(g, "right_side", graph.Derive1(g, "right_side.raw", out.Width, func(w float64) float64 {
		return math.Abs(w) / 2
	}))
	out.ViewY = graph.OnChange(g, "view_y", graph.Derive2(g, "view_y.raw", out.Height, c.descender.Value,
		func(h float64, d spring.Scalar) float64 { return h/2 + float64(d) }))

	notBlinkingTarget := graph.OnChange(g, "not_blinking.next", graph.Derive1(g, "not_blinking.raw", out.Width,
		func(w float64) spring.Scalar {
			if w == 0 {
				return 0
			}
			return 1
		}))
	graph.Connect(notBlinkingTarget, c.notBlinking.Target)
	out.NotBlinking = graph.OnChange(g, "not_blinking.out", graph.Derive1(g, "not_blinking.f64", c.notBlinking.Value, toFloat))

	// fires on either, reads both as they are once the pass settled
	onMove := graph.Any(g, "attachment.trigger", c.attached, out.Position)
	out.AttachmentPoint = graph.OnChange(g, "attachment_point", graph.Derive3(g, "attachment.raw",
		onMove, c.attached.Sample(), out.Position.Sample(), c.attachmentPoint))

	out.Color = graph.OnChange(g, "color", c.color.Node)

	if err := g.Err(); err != nil {
		return fmt.Errorf("selection graph: %w", err)
	}

	c.stops = append(c.stops,
		graph.Subscribe(c.position.Target, func(spring.Vec2) {
			c.blink.Reset(c.clock.Now())
		}),
		graph.Subscribe(c.setColor, func(to Rgb) {
			c.fade.Retarget(to.components())
			if c.fade.Done() {
				c.color.Emit(rgbOf(c.fade.Values()))
			}
		}),
	)
	return nil
}

func toFloat(s spring.Scalar) float64 {
	return float64(s)
}

func anchorOffset(w float64) float64 {
	sign := 0.0
	switch {
	case w > 0:
		sign = 1
	case w < 0:
		sign = -1
	}
	return sign * math.Abs(w) / 2
}

// attachmentPoint is the right edge of the last attached glyph, or 0 when
// there is none left to resolve.
func (c *Controller) attachmentPoint(_ struct{}, handles []glyph.Handle, p spring.Vec2) float64 {
	if len(handles) == 0 || c.glyphs == nil {
		return 0
	}
	gl, ok := c.glyphs.Resolve(handles[len(handles)-1])
	if !ok {
		return 0
	}
	return p.X + gl.X + gl.Advance
}

func (c *Controller) SetColor(color Rgb) {
	c.setColor.Emit(color)
}

func (c *Controller) SetAscender(v float64) {
	c.ascender.Target.Emit(spring.Scalar(v))
}

func (c *Controller) SetDescender(v float64) {
	c.descender.Target.Emit(spring.Scalar(v))
}

// SetAttachedGlyphs replaces the glyphs the selection follows. The handles
// are copied and never keep a glyph alive.
func (c *Controller) SetAttachedGlyphs(handles []glyph.Handle) {
	c.attached.Emit(slices.Clone(handles))
}

// SetWidth retargets the signed width.
func (c *Controller) SetWidth(w float64) {
	c.width.Target.Emit(spring.Scalar(w))
}

// SetPositionTarget retargets the position and restarts the blink cycle, so
// a moved caret is always visible.
func (c *Controller) SetPositionTarget(p spring.Vec2) {
	c.position.Target.Emit(p)
}

func (c *Controller) SkipPositionAnimation() {
	c.position.Skip.Emit(struct{}{})
}

func (c *Controller) SkipWidthAnimation() {
	c.width.Skip.Emit(struct{}{})
}

// FlipSides moves the anchor to the opposite edge without moving the region
// on screen. The position jumps by the current width, the width changes
// sign, and both targets follow. Everything lands in a single pass so no
// observer sees a half flipped region.
func (c *Controller) FlipSides() {
	if c.closed {
		return
	}
	w := float64(c.width.Current())
	wt := float64(c.width.Simulator().Target())
	p := c.position.Current()
	pt := c.position.Simulator().Target()
	shift := spring.V2(w, 0)

	c.g.Batch(func() {
		c.position.Snap(p.Add(shift))
		c.position.Target.Emit(pt.Add(shift))
		c.width.Snap(spring.Scalar(-w))
		c.width.Target.Emit(spring.Scalar(-wt))
	})
	c.logger.Debug("selection flipped", "width", -w, "width_target", -wt)
}

// Tick advances every animation by dt and publishes the new values in one
// pass. A non-positive dt does nothing.
func (c *Controller) Tick(dt time.Duration) {
	if c.closed || dt <= 0 {
		return
	}
	c.g.Batch(func() {
		c.position.Tick(dt)
		c.width.Tick(dt)
		c.ascender.Tick(dt)
		c.descender.Tick(dt)
		c.notBlinking.Tick(dt)
		if c.fade.Update(dt) {
			c.color.Emit(rgbOf(c.fade.Values()))
		}
	})
}

// Settled reports whether another Tick would change anything. The blink
// cycle is not an animation and keeps going.
func (c *Controller) Settled() bool {
	return c.position.Resting() &&
		c.width.Resting() &&
		c.ascender.Resting() &&
		c.descender.Resting() &&
		c.notBlinking.Resting() &&
		c.fade.Done()
}

func (c *Controller) SetEditMode(on bool) {
	if c.editMode == on {
		return
	}
	c.editMode = on
	c.logger.Debug("selection edit mode", "on", on)
}

func (c *Controller) EditMode() bool {
	return c.editMode
}

// Close detaches every subscription. Inputs given afterwards are dropped and
// no callback fires again. Values stay readable.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	for _, stop := range c.stops {
		stop()
	}
	c.stops = nil
	c.g.Dispose()
	c.logger.Debug("selection closed", "passes", c.g.Stats().Passes)
}

func (c *Controller) Closed() bool {
	return c.closed
}

func (c *Controller) Outputs() Outputs {
	return c.out
}

func (c *Controller) Graph() *graph.Graph {
	return c.g
}

func (c *Controller) Options() Options {
	return c.opts
}

func (c *Controller) Position() spring.Vec2       { return c.out.Position.Value() }
func (c *Controller) PositionTarget() spring.Vec2 { return c.out.PositionTarget.Value() }
func (c *Controller) Width() float64              { return c.out.Width.Value() }
func (c *Controller) WidthTarget() float64        { return c.out.WidthTarget.Value() }
func (c *Controller) Height() float64             { return c.out.Height.Value() }
func (c *Controller) Extent() float64             { return c.out.Extent.Value() }
func (c *Controller) AnchorOffset() float64       { return c.out.AnchorOffset.Value() }
func (c *Controller) RightSide() float64          { return c.out.RightSide.Value() }
func (c *Controller) NotBlinking() float64        { return c.out.NotBlinking.Value() }
func (c *Controller) AttachmentPoint() float64    { return c.out.AttachmentPoint.Value() }
func (c *Controller) Color() Rgb                  { return c.out.Color.Value() }

// BlinkStart is the clock reading the blink cycle was last restarted at.
func (c *Controller) BlinkStart() time.Duration {
	return c.blink.Start()
}

// Alpha is polled by the renderer every frame.
func (c *Controller) Alpha() float64 {
	elapsed := c.blink.Elapsed(c.clock.Now())
	return c.opts.Blink.Alpha(elapsed, float64(c.notBlinking.Current()))
}
