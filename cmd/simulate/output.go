package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/delaneyj/caretparty/selection"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/valyala/quicktemplate"
)

type frameWriter interface {
	write(at time.Duration, f selection.Frame, events []string) error
	flush() error
}

func newFrameWriter(format string, w io.Writer) (frameWriter, error) {
	switch format {
	case "table":
		return newTableWriter(w), nil
	case "json":
		return &jsonWriter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, want table or json", format)
	}
}

type tableWriter struct {
	table *tablewriter.Table
}

func newTableWriter(w io.Writer) *tableWriter {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"t",
		"x",
		"y",
		"width",
		"extent",
		"anchor",
		"alpha",
		"attach",
		"events",
	})
	return &tableWriter{table: table}
}

func num(f float64) string {
	return humanize.FtoaWithDigits(f, 2)
}

func (t *tableWriter) write(at time.Duration, f selection.Frame, events []string) error {
	t.table.Append([]string{
		at.String(),
		num(f.Position.X),
		num(f.Position.Y),
		num(f.Width),
		num(f.Extent),
		num(f.AnchorOffset),
		num(f.Alpha),
		num(f.AttachmentPoint),
		strings.Join(events, ", "),
	})
	return nil
}

func (t *tableWriter) flush() error {
	t.table.Render()
	return nil
}

// jsonWriter emits one JSON object per sampled frame.
type jsonWriter struct {
	w io.Writer
}

func (j *jsonWriter) write(at time.Duration, f selection.Frame, events []string) error {
	qw := quicktemplate.AcquireWriter(j.w)
	defer quicktemplate.ReleaseWriter(qw)

	n := qw.N()
	// JSON has no NaN or Inf.
	num := func(v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			n.S("null")
			return
		}
		n.F(v)
	}
	n.S(`{"t_ms":`)
	n.D(int(at.Milliseconds()))
	field := func(name string, v float64) {
		n.S(`,"`)
		n.S(name)
		n.S(`":`)
		num(v)
	}
	field("x", f.Position.X)
	field("y", f.Position.Y)
	field("width", f.Width)
	field("extent", f.Extent)
	field("height", f.Height)
	field("anchor_offset", f.AnchorOffset)
	field("right_side", f.RightSide)
	field("alpha", f.Alpha)
	field("attachment_point", f.AttachmentPoint)
	n.S(`,"view":[`)
	num(f.ViewOffset.X)
	n.S(`,`)
	num(f.ViewOffset.Y)
	n.S(`,`)
	num(f.ViewSize.X)
	n.S(`,`)
	num(f.ViewSize.Y)
	n.S(`],"color":[`)
	num(f.Color.R)
	n.S(`,`)
	num(f.Color.G)
	n.S(`,`)
	num(f.Color.B)
	n.S(`],"events":[`)
	for i, e := range events {
		if i > 0 {
			n.S(`,`)
		}
		n.Q(e)
	}
	n.S("]}\n")
	return nil
}

func (j *jsonWriter) flush() error {
	return nil
}
