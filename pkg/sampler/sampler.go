// Package sampler provides per-pixel random-number streams consumed by
// the camera, BSDFs, lights, and media. Every implementation satisfies
// core.Sampler.
package sampler

import (
	"math"
	"math/rand"

	"github.com/lucidrt/lucid/pkg/core"
)

// Sampler extends core.Sampler with the pixel/sample lifecycle the render
// driver needs: one sampler instance is created per render tile, then
// re-seeded per pixel and per sample within that pixel so results are
// reproducible from (seed, pixel, sampleIndex) alone.
type Sampler interface {
	core.Sampler
	StartPixel(px, py int)
	StartSample(sampleIndex int)
	Clone() Sampler
}

// hash64 is a splitmix64-style mixing function used to derive a
// deterministic per-(pixel,sample) seed from the global seed, grounded on
// the teacher's use of plain *rand.Rand but generalized since the teacher
// never needed per-pixel-reproducible seeding (it ran a single shared
// generator per worker).
func hash64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// Independent draws every value from a fresh math/rand.Rand, grounded on
// the teacher's pkg/core/sampling.go RandomSampler.
type Independent struct {
	seed  uint64
	pixel uint64 // per-pixel seed set by StartPixel
	rng   *rand.Rand
}

func NewIndependent(seed uint64) *Independent {
	s := &Independent{seed: seed}
	s.rng = rand.New(rand.NewSource(int64(seed)))
	return s
}

func (s *Independent) StartPixel(px, py int) {
	s.pixel = hash64(s.seed ^ uint64(px)<<32 ^ uint64(py))
	s.rng = rand.New(rand.NewSource(int64(s.pixel)))
}

func (s *Independent) StartSample(sampleIndex int) {
	mixed := hash64(s.pixel ^ hash64(uint64(sampleIndex)))
	s.rng = rand.New(rand.NewSource(int64(mixed)))
}

func (s *Independent) Next1D() float64  { return s.rng.Float64() }
func (s *Independent) Next2D() core.Vec2 { return core.Vec2{X: s.rng.Float64(), Y: s.rng.Float64()} }
func (s *Independent) Clone() Sampler   { return NewIndependent(s.seed) }

// Stratified jitters the first 2D stream requested per sample within an
// n x n grid (n = ceil(sqrt(spp))) to reduce clumping in the
// pixel/lens-position samples, per spec §4.1, falling back to Independent
// for every later stream and for non-square sample counts.
type Stratified struct {
	*Independent
	n            int
	spp          int
	sampleIndex  int
	used2D       bool
}

func NewStratified(seed uint64, spp int) *Stratified {
	n := int(math.Ceil(math.Sqrt(float64(spp))))
	if n < 1 {
		n = 1
	}
	return &Stratified{Independent: NewIndependent(seed), n: n, spp: spp}
}

func (s *Stratified) StartPixel(px, py int) {
	s.Independent.StartPixel(px, py)
}

func (s *Stratified) StartSample(sampleIndex int) {
	s.Independent.StartSample(sampleIndex)
	s.sampleIndex = sampleIndex
	s.used2D = false
}

func (s *Stratified) Next2D() core.Vec2 {
	if s.used2D || s.n*s.n != s.spp {
		return s.Independent.Next2D()
	}
	s.used2D = true
	cell := s.sampleIndex
	cx := cell % s.n
	cy := cell / s.n
	jitter := s.Independent.Next2D()
	return core.Vec2{
		X: (float64(cx) + jitter.X) / float64(s.n),
		Y: (float64(cy) + jitter.Y) / float64(s.n),
	}
}

func (s *Stratified) Clone() Sampler {
	return NewStratified(s.seed, s.spp)
}
