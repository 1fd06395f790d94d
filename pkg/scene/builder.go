package scene

import (
	"github.com/lucidrt/lucid/pkg/bsdf"
	"github.com/lucidrt/lucid/pkg/camera"
	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/light"
	"github.com/lucidrt/lucid/pkg/shape"
)

// Builder accumulates primitives and lights while a scene file is
// parsed, then resolves every id reference into a direct pointer and
// builds the BVH once in Build, per spec §9's ownership note.
type Builder struct {
	prims    []Primitive
	extraLit []light.Emitter
	camera   *camera.Camera
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) SetCamera(c *camera.Camera) { b.camera = c }

// AddPrimitive registers one shape bound to a material, optional area
// emitter, and interior/exterior media.
func (b *Builder) AddPrimitive(s shape.Shape, mat bsdf.BSDF, emitter *light.Area, interior, exterior core.Medium) {
	b.prims = append(b.prims, Primitive{Shape: s, BSDF: mat, Emitter: emitter, Interior: interior, Exterior: exterior})
}

// AddMesh registers every triangle of a mesh as one logical Primitive
// group sharing one material/emitter/media binding — each triangle is
// still its own BVH leaf shape, but they all resolve to a single
// Primitive index via boundShape, matching the teacher's special-cased
// GetPrimitiveCount treatment of *TriangleMesh generalized into the
// id-per-object ownership model.
func (b *Builder) AddMesh(mesh *shape.TriangleMesh, mat bsdf.BSDF, emitter *light.Area, interior, exterior core.Medium) {
	b.prims = append(b.prims, Primitive{Mesh: mesh, BSDF: mat, Emitter: emitter, Interior: interior, Exterior: exterior})
}

// AddEmitter registers a Directional or Environment light not bound to
// any shape.
func (b *Builder) AddEmitter(e light.Emitter) { b.extraLit = append(b.extraLit, e) }

func (b *Builder) SetEnvironment(e *light.Environment) { b.extraLit = append(b.extraLit, e) }

// Build flattens every primitive's shape(s) into the BVH's leaf list
// (expanding meshes into per-triangle boundShapes), preprocesses
// world-bounds-dependent lights, and computes the power-weighted light
// distribution, per spec §4.4/§9.
func (b *Builder) Build() *Scene {
	var flat []shape.Shape
	var emitters []light.Emitter
	var weights []float64

	for i := range b.prims {
		p := &b.prims[i]
		if p.Mesh != nil {
			for _, tri := range p.Mesh.Triangles() {
				flat = append(flat, &boundShape{Shape: tri, primIndex: i})
			}
		} else {
			flat = append(flat, &boundShape{Shape: p.Shape, primIndex: i})
		}
		if p.Emitter != nil {
			emitters = append(emitters, p.Emitter)
			weights = append(weights, p.Emitter.Radiance.Luminance()*p.Area()+1e-6)
		}
	}

	bvh := shape.BuildBVH(flat)

	var env *light.Environment
	for _, e := range b.extraLit {
		if d, ok := e.(*light.Directional); ok {
			d.SetSceneBounds(bvh.Center, bvh.Radius)
		}
		if e2, ok := e.(*light.Environment); ok {
			env = e2
		}
		emitters = append(emitters, e)
		weights = append(weights, 1.0)
	}

	opaque := true
	for i := range b.prims {
		p := &b.prims[i]
		if _, isNull := p.BSDF.(*bsdf.Null); isNull || p.Interior != nil || p.Exterior != nil {
			opaque = false
			break
		}
	}

	return &Scene{
		Primitives:  b.prims,
		BVH:         bvh,
		Emitters:    emitters,
		Environment: env,
		LightDist:   core.NewDistribution1D(weights),
		Camera:      b.camera,
		WorldCenter: bvh.Center,
		WorldRadius: bvh.Radius,
		Opaque:      opaque,
	}
}
