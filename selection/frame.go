package selection

import "github.com/delaneyj/caretparty/spring"

// Frame is everything a renderer needs to draw the selection once.
type Frame struct {
	Position     spring.Vec2
	Width        float64
	Extent       float64
	Height       float64
	AnchorOffset float64
	RightSide    float64

	// ViewSize is the padded box the shape is drawn into, ViewOffset places
	// its center relative to Position.
	ViewSize   spring.Vec2
	ViewOffset spring.Vec2

	Alpha           float64
	Color           Rgb
	AttachmentPoint float64
	EditMode        bool
}

func (c *Controller) Frame() Frame {
	pad := c.opts.Padding * 2
	return Frame{
		Position:        c.Position(),
		Width:           c.Width(),
		Extent:          c.Extent(),
		Height:          c.Height(),
		AnchorOffset:    c.AnchorOffset(),
		RightSide:       c.RightSide(),
		ViewSize:        spring.V2(pad+c.Extent(), pad+c.Height()),
		ViewOffset:      spring.V2(c.AnchorOffset(), c.out.ViewY.Value()),
		Alpha:           c.Alpha(),
		Color:           c.Color(),
		AttachmentPoint: c.AttachmentPoint(),
		EditMode:        c.editMode,
	}
}

// Bounds is the horizontal interval covered by the region, lowest edge first.
func (f Frame) Bounds() (lo, hi float64) {
	a, b := f.Position.X, f.Position.X+f.Width
	return min(a, b), max(a, b)
}
