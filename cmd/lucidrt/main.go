// Command lucidrt renders a scene file to a linear EXR image, grounded
// on _examples/other_examples/achilleasa-polaris__main.go's cli.App
// structure (urfave/cli v1) in place of the teacher's bare flag-package
// CLI, since the teacher's own main.go takes no scene file at all.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/imageio/exr"
	"github.com/lucidrt/lucid/pkg/integrator"
	"github.com/lucidrt/lucid/pkg/render"
	"github.com/lucidrt/lucid/pkg/sceneformat"
)

func main() {
	app := cli.NewApp()
	app.Name = "lucidrt"
	app.Usage = "render a scene file to a linear EXR image"
	app.Version = "0.1.0"
	app.ArgsUsage = "<scene.xml> <output.exr>"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "spp", Usage: "samples per pixel (0: use the scene file's <integrator> value)"},
		cli.IntFlag{Name: "max-depth", Usage: "maximum path depth (0: use the scene file's value)"},
		cli.Uint64Flag{Name: "seed", Value: 1, Usage: "sampler seed"},
		cli.IntFlag{Name: "threads", Usage: "worker goroutines (0: runtime.NumCPU())"},
		cli.IntFlag{Name: "tile-size", Value: 16, Usage: "tile edge length in pixels"},
		cli.BoolFlag{Name: "half", Usage: "write half-float (16-bit) samples instead of full float32"},
	}
	app.Action = runRender

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lucidrt:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a non-nil error into spec.md §7's driver-level exit codes:
// 2 when the render produced zero successful samples, 1 for any other
// error (a malformed scene file, an I/O failure).
func exitCode(err error) int {
	var zeroSamples *errZeroSamples
	if errors.As(err, &zeroSamples) {
		return 2
	}
	var inputErr *core.InputError
	var ioErr *core.IOError
	if errors.As(err, &inputErr) || errors.As(err, &ioErr) {
		return 1
	}
	return 1
}

type errZeroSamples struct{}

func (*errZeroSamples) Error() string { return "render produced zero successful samples" }

func runRender(c *cli.Context) error {
	if c.NArg() != 2 {
		return &core.InputError{Context: "expected exactly two arguments: <scene.xml> <output.exr>"}
	}
	scenePath := c.Args().Get(0)
	outPath := c.Args().Get(1)

	sc, settings, err := sceneformat.Load(scenePath)
	if err != nil {
		return err
	}

	spp := c.Int("spp")
	if spp <= 0 {
		spp = settings.SamplesPerPixel
	}
	maxDepth := c.Int("max-depth")
	if maxDepth <= 0 {
		maxDepth = settings.MaxDepth
	}
	rrMinBounces := settings.RussianRouletteMinBounces
	if rrMinBounces <= 0 {
		rrMinBounces = 3
	}

	log := core.NewStdLogger()
	d := render.NewDriver(render.Config{
		Width:           sc.Camera.Width,
		Height:          sc.Camera.Height,
		SamplesPerPixel: spp,
		TileSize:        c.Int("tile-size"),
		NumWorkers:      c.Int("threads"),
		Seed:            c.Uint64("seed"),
		Integrator: integrator.Config{
			MaxDepth:                  maxDepth,
			RussianRouletteMinBounces: rrMinBounces,
		},
		ProgressEvery: 2 * time.Second,
	}, sc, log)

	film := d.Render()

	sawSample := false
	for i := range film.Pixels {
		if film.Pixels[i].Count > 0 {
			sawSample = true
			break
		}
	}
	if !sawSample {
		return &errZeroSamples{}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return &core.IOError{Path: outPath, Cause: err}
	}
	defer out.Close()

	pixelType := exr.PixelTypeFloat
	if c.Bool("half") {
		pixelType = exr.PixelTypeHalf
	}
	if err := exr.Write(out, film, pixelType); err != nil {
		return &core.IOError{Path: outPath, Cause: err}
	}

	log.Printf("lucidrt: wrote %s (%dx%d, %d spp)\n", outPath, film.Width, film.Height, spp)
	return nil
}
