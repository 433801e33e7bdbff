package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/caretparty/blink"
	"github.com/delaneyj/caretparty/graph"
	"github.com/delaneyj/caretparty/selection"
	"github.com/delaneyj/caretparty/spring"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
)

var (
	profile = flag.String("profile", "default.pgo", "write a CPU profile here, empty disables it")
	iters   = flag.Int("iters", 100, "samples per benchmark")
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

func main() {
	flag.Parse()

	if *profile != "" {
		f, err := os.Create(*profile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagation(false)

	benchmarkPropagation(true)
	benchmarkController(true)
}

func addOne(v int) int {
	return v + 1
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

// benchmarkPropagation builds w chains of depth h hanging off one source,
// each ending in an effect, and times a single emission.
func benchmarkPropagation(shouldRender bool) {
	tbl := newTable("Graph propagation")

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: *iters})

			g := graph.New()
			src := graph.Input(g, "src", 1)
			for i := 0; i < w; i++ {
				last := src.Node
				for j := 0; j < h; j++ {
					last = graph.Derive1(g, fmt.Sprintf("n%d.%d", i, j), last, addOne)
				}
				graph.Subscribe(last, func(int) {})
			}
			if err := g.Err(); err != nil {
				log.Fatal(err)
			}

			for i := 0; i < *iters; i++ {
				start := time.Now()
				src.Emit(src.Value() + 1)
				tach.AddTime(time.Since(start))
			}
			appendCalc(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

func benchmarkController(shouldRender bool) {
	tbl := newTable("Selection controller")
	clock := &blink.ManualClock{}
	opts := selection.DefaultOptions()
	opts.Clock = clock

	c, err := selection.New(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	const dt = 16 * time.Millisecond
	cases := []struct {
		name string
		do   func(i int)
	}{
		{"tick at rest", func(int) { c.Tick(dt) }},
		{"retarget + tick", func(i int) {
			c.SetPositionTarget(spring.V2(float64(i%50)*8, 16))
			c.SetWidth(float64(i%7) * 8)
			c.Tick(dt)
		}},
		{"flip sides", func(int) { c.FlipSides() }},
		{"frame", func(int) { _ = c.Frame() }},
	}
	for _, bc := range cases {
		tach := tachymeter.New(&tachymeter.Config{Size: *iters})
		for i := 0; i < *iters; i++ {
			start := time.Now()
			bc.do(i)
			tach.AddTime(time.Since(start))
			clock.Advance(dt)
		}
		appendCalc(tbl, bc.name, tach)
	}

	if shouldRender {
		tbl.Render()
	}
	log.Printf("controller ran %d passes", c.Graph().Stats().Passes)
}
