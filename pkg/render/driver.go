// Package render is the top-level render driver: it tiles the film,
// spins up a fixed worker pool, and drives it to completion or early
// cancellation, per spec §4.8/§5. Grounded on the teacher's
// pkg/renderer/worker_pool.go + tile_renderer.go split, simplified from
// the teacher's multi-pass adaptive-sampling loop to a single fixed-spp
// pass since the integrator's per-pixel convergence is left to the
// caller's --spp choice rather than an adaptive stopping rule.
package render

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lucidrt/lucid/pkg/camera"
	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/integrator"
	"github.com/lucidrt/lucid/pkg/scene"
)

// Config holds everything the driver needs beyond the Scene itself.
type Config struct {
	Width, Height   int
	SamplesPerPixel int
	TileSize        int
	NumWorkers      int // 0 = runtime.NumCPU()
	Seed            uint64
	Integrator      integrator.Config
	ProgressEvery   time.Duration // 0 disables progress logging
}

// Driver renders one Scene into one Film.
type Driver struct {
	cfg    Config
	sc     *scene.Scene
	log    core.Logger
	cancel atomic.Bool
}

func NewDriver(cfg Config, sc *scene.Scene, log core.Logger) *Driver {
	if cfg.TileSize <= 0 {
		cfg.TileSize = 16
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	if log == nil {
		log = core.NopLogger{}
	}
	return &Driver{cfg: cfg, sc: sc, log: log}
}

// Cancel requests early termination; the driver returns the partial Film
// rendered so far once the in-flight tiles drain.
func (d *Driver) Cancel() { d.cancel.Store(true) }

// Render produces a fully accumulated Film, logging progress at
// cfg.ProgressEvery if set.
func (d *Driver) Render() *camera.Film {
	film := camera.NewFilm(d.cfg.Width, d.cfg.Height)
	tiles := tileGrid(d.cfg.Width, d.cfg.Height, d.cfg.TileSize)
	pt := integrator.NewPathTracer(d.cfg.Integrator)

	var completed atomic.Int64
	total := int64(len(tiles))

	var progressMu sync.Mutex
	lastLog := time.Now()
	onTile := func(_ Tile) {
		n := completed.Add(1)
		if d.cfg.ProgressEvery <= 0 {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		if time.Since(lastLog) >= d.cfg.ProgressEvery || n == total {
			d.log.Printf("render: %d/%d tiles (%.1f%%)\n", n, total, 100*float64(n)/float64(total))
			lastLog = time.Now()
		}
	}

	wp := newWorkerPool(d.cfg.NumWorkers, d.sc, film, pt, d.cfg.Seed, onTile)
	for _, t := range tiles {
		if d.cancel.Load() {
			break
		}
		wp.submit(task{tile: t, spp: d.cfg.SamplesPerPixel})
	}
	wp.close()

	return film
}
