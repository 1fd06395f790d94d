package render

import (
	"sync"

	"github.com/lucidrt/lucid/pkg/camera"
	"github.com/lucidrt/lucid/pkg/integrator"
	"github.com/lucidrt/lucid/pkg/sampler"
	"github.com/lucidrt/lucid/pkg/scene"
)

// task is one tile assigned to a worker, grounded on the teacher's
// pkg/renderer/worker_pool.go TileTask.
type task struct {
	tile Tile
	spp  int
}

// workerPool runs a fixed set of goroutines pulling tiles from an
// unbuffered channel (so submit blocks until a worker is free), each rendering its tile into the shared Film with no
// locking (tiles never overlap) and reporting completion through a
// counter, per spec §5 and grounded on the teacher's
// WorkerPool/Worker split.
type workerPool struct {
	tasks  chan task
	scene  *scene.Scene
	film   *camera.Film
	pt     *integrator.PathTracer
	seed   uint64
	wg     sync.WaitGroup
	onTile func(Tile)
}

func newWorkerPool(numWorkers int, sc *scene.Scene, film *camera.Film, pt *integrator.PathTracer, seed uint64, onTile func(Tile)) *workerPool {
	wp := &workerPool{
		tasks:  make(chan task),
		scene:  sc,
		film:   film,
		pt:     pt,
		seed:   seed,
		onTile: onTile,
	}
	for i := 0; i < numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
	return wp
}

func (wp *workerPool) submit(t task) { wp.tasks <- t }

func (wp *workerPool) close() {
	close(wp.tasks)
	wp.wg.Wait()
}

func (wp *workerPool) run() {
	defer wp.wg.Done()
	for t := range wp.tasks {
		wp.renderTile(t)
		if wp.onTile != nil {
			wp.onTile(t.tile)
		}
	}
}

// renderTile samples every pixel in the tile spp times using a sampler
// seeded deterministically from (tileID, pixel, seed) so renders are
// reproducible independent of worker scheduling, per spec §8.
func (wp *workerPool) renderTile(t task) {
	cam := wp.scene.Camera
	w, h := wp.film.Width, wp.film.Height
	s := sampler.NewStratified(wp.seed^uint64(t.tile.ID)<<40, t.spp)
	for y := t.tile.Y0; y < t.tile.Y1; y++ {
		for x := t.tile.X0; x < t.tile.X1; x++ {
			s.StartPixel(x, y)
			pixel := wp.film.At(x, y)
			for n := 0; n < t.spp; n++ {
				s.StartSample(n)
				jitter := s.Next2D()
				u := (float64(x) + jitter.X) / float64(w)
				v := 1 - (float64(y)+jitter.Y)/float64(h) // film row 0 is the top of the image
				lens := s.Next2D()
				ray := cam.GenerateRay(u, v, lens)
				l := wp.pt.Li(ray, wp.scene, s)
				pixel.AddSample(l)
			}
		}
	}
}
