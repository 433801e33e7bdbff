package main

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/delaneyj/caretparty/glyph"
	"github.com/delaneyj/caretparty/selection"
	"github.com/delaneyj/caretparty/spring"
)

type step struct {
	at   time.Duration
	what string
	do   func(c *selection.Controller)
}

// scenario is a script of inputs. glyphs is shared with the controller so
// steps can lay out and delete text.
type scenario struct {
	name  string
	usage string
	steps func(glyphs *glyph.Registry) []step
}

const (
	lineHeight = 16.0
	ascender   = 12.0
	descender  = -4.0
	advance    = 8.0
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func typeset(glyphs *glyph.Registry, text string) []glyph.Handle {
	handles := make([]glyph.Handle, 0, len(text))
	for i := range text {
		handles = append(handles, glyphs.Add(glyph.Glyph{X: float64(i) * advance, Advance: advance}))
	}
	return handles
}

func setup(c *selection.Controller) {
	c.SetAscender(ascender)
	c.SetDescender(descender)
	c.SetPositionTarget(spring.V2(0, lineHeight))
	c.SkipPositionAnimation()
}

var scenarios = []scenario{
	{
		name:  "cursor",
		usage: "a caret stepping right one glyph at a time, then jumping a line down",
		steps: func(*glyph.Registry) []step {
			steps := []step{{at: 0, what: "setup", do: setup}}
			for i := 1; i <= 4; i++ {
				x := float64(i) * advance
				steps = append(steps, step{
					at:   ms(150 * i),
					what: fmt.Sprintf("move to %.0f", x),
					do:   func(c *selection.Controller) { c.SetPositionTarget(spring.V2(x, lineHeight)) },
				})
			}
			steps = append(steps, step{
				at:   ms(900),
				what: "next line",
				do:   func(c *selection.Controller) { c.SetPositionTarget(spring.V2(0, 2*lineHeight)) },
			})
			return steps
		},
	},
	{
		name:  "select",
		usage: "a caret growing into a selection, shrinking, then collapsing back",
		steps: func(*glyph.Registry) []step {
			return []step{
				{at: 0, what: "setup", do: setup},
				{at: ms(100), what: "select 12 glyphs", do: func(c *selection.Controller) { c.SetWidth(12 * advance) }},
				{at: ms(700), what: "shrink to 5", do: func(c *selection.Controller) { c.SetWidth(5 * advance) }},
				{at: ms(1200), what: "collapse", do: func(c *selection.Controller) { c.SetWidth(0) }},
			}
		},
	},
	{
		name:  "flip",
		usage: "a selection whose anchor flips sides while it is still growing",
		steps: func(*glyph.Registry) []step {
			return []step{
				{at: 0, what: "setup", do: setup},
				{at: ms(50), what: "select 10 glyphs", do: func(c *selection.Controller) { c.SetWidth(10 * advance) }},
				{at: ms(200), what: "flip", do: (*selection.Controller).FlipSides},
				{at: ms(800), what: "flip back", do: (*selection.Controller).FlipSides},
			}
		},
	},
	{
		name:  "glyphs",
		usage: "a caret attached to the text being typed, with the last glyph deleted",
		steps: func(glyphs *glyph.Registry) []step {
			word := typeset(glyphs, "caret")
			steps := []step{{at: 0, what: "setup", do: setup}}
			for i := range word {
				typed := word[:i+1]
				steps = append(steps, step{
					at:   ms(120 * (i + 1)),
					what: fmt.Sprintf("type %d", i+1),
					do: func(c *selection.Controller) {
						c.SetAttachedGlyphs(typed)
						c.SetPositionTarget(spring.V2(float64(len(typed))*advance, lineHeight))
					},
				})
			}
			last := word[len(word)-1]
			steps = append(steps, step{
				at:   ms(1000),
				what: "delete last glyph",
				do: func(c *selection.Controller) {
					glyphs.Remove(last)
					c.SetPositionTarget(spring.V2(float64(len(word)-1)*advance, lineHeight))
				},
			})
			return steps
		},
	},
}

func findScenario(name string) (scenario, error) {
	i := slices.IndexFunc(scenarios, func(s scenario) bool { return s.name == name })
	if i < 0 {
		return scenario{}, fmt.Errorf("unknown scenario %q, want one of %v", name, scenarioNames())
	}
	return scenarios[i], nil
}

func scenarioNames() []string {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.name
	}
	sort.Strings(names)
	return names
}
