package main

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/delaneyj/caretparty/blink"
	"github.com/delaneyj/caretparty/config"
	"github.com/delaneyj/caretparty/glyph"
	"github.com/delaneyj/caretparty/graph"
	"github.com/delaneyj/caretparty/selection"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

const (
	scenarioKey = "scenario"
	fpsKey      = "fps"
	durationKey = "duration"
	everyKey    = "every"
	formatKey   = "format"
	configKey   = "config"
)

func main() {
	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "Drive a caret through scripted input and print what a renderer would draw",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a scenario on a simulated clock",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  scenarioKey,
						Usage: "One of " + strings.Join(scenarioNames(), ", "),
						Value: "cursor",
					},
					&cli.UintFlag{
						Name:  fpsKey,
						Usage: "Frames per simulated second",
						Value: 60,
					},
					&cli.DurationFlag{
						Name:  durationKey,
						Usage: "Simulated time to run for",
						Value: 2 * time.Second,
					},
					&cli.DurationFlag{
						Name:  everyKey,
						Usage: "Print a frame this often, 0 prints every frame",
						Value: 100 * time.Millisecond,
					},
					&cli.StringFlag{
						Name:  formatKey,
						Usage: "table or json",
						Value: "table",
					},
					&cli.StringFlag{
						Name:  configKey,
						Usage: "TOML file overriding the defaults",
					},
				},
				Action: run,
			},
			{
				Name:   "config",
				Usage:  "Print the default configuration",
				Action: printConfig,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func printConfig(ctx context.Context, cmd *cli.Command) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(ctx context.Context, cmd *cli.Command) error {
	sc, err := findScenario(cmd.String(scenarioKey))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}
	fps := cmd.Uint(fpsKey)
	if fps == 0 {
		return fmt.Errorf("%s must be positive", fpsKey)
	}
	out, err := newFrameWriter(cmd.String(formatKey), os.Stdout)
	if err != nil {
		return err
	}

	start := time.Now()
	log.Printf("Running '%s': %s", sc.name, sc.usage)
	stats, frames, err := simulate(sc, cfg, time.Second/time.Duration(fps), cmd.Duration(durationKey), cmd.Duration(everyKey), out)
	if err != nil {
		return err
	}
	log.Printf(
		"Simulated %s in %s: %s frames, %s passes, %s recomputes (%s suppressed), %s effects",
		cmd.Duration(durationKey),
		time.Since(start),
		humanize.Comma(int64(frames)),
		humanize.Comma(int64(stats.Passes)),
		humanize.Comma(int64(stats.Recomputes)),
		humanize.Comma(int64(stats.Suppressed)),
		humanize.Comma(int64(stats.Effects)),
	)
	return nil
}

// simulate steps a controller on a manual clock, sampling a frame every
// `every` of simulated time. Inputs land before the tick of their frame.
func simulate(sc scenario, cfg *config.Config, dt, duration, every time.Duration, out frameWriter) (graph.Stats, int, error) {
	clock := &blink.ManualClock{}
	glyphs := glyph.NewRegistry()
	opts, err := cfg.Options(clock, glyphs)
	if err != nil {
		return graph.Stats{}, 0, err
	}
	c, err := selection.New(opts)
	if err != nil {
		return graph.Stats{}, 0, err
	}
	defer c.Close()

	steps := sc.steps(glyphs)
	slices.SortStableFunc(steps, func(a, b step) int {
		return cmp.Compare(a.at, b.at)
	})
	if every < dt {
		every = dt
	}

	var (
		events []string
		next   time.Duration
		frames int
	)
	for now := time.Duration(0); now <= duration; now += dt {
		for len(steps) > 0 && steps[0].at <= now {
			steps[0].do(c)
			events = append(events, steps[0].what)
			steps = steps[1:]
		}
		if now >= next {
			if err := out.write(now, c.Frame(), events); err != nil {
				return graph.Stats{}, frames, err
			}
			events = nil
			next += every
		}
		c.Tick(dt)
		clock.Advance(dt)
		frames++
	}
	return c.Graph().Stats(), frames, out.flush()
}
