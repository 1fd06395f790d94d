// Package sceneformat decodes the XML-like scene file format of spec.md
// §6 into a scene.Builder, via the standard library's encoding/xml (this
// ambient concern is explicitly out of the renderer core's scope, so
// there is no grounding requirement to prefer a third-party XML library —
// see DESIGN.md). The nested-block/id-reference shape is grounded on the
// teacher's pkg/loaders/pbrt.go GraphicsState push/pop stack, re-expressed
// over XML elements instead of PBRT's line-oriented statement grammar.
package sceneformat

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucidrt/lucid/pkg/bsdf"
	"github.com/lucidrt/lucid/pkg/camera"
	"github.com/lucidrt/lucid/pkg/core"
	"github.com/lucidrt/lucid/pkg/imageio/obj"
	"github.com/lucidrt/lucid/pkg/imageio/ply"
	"github.com/lucidrt/lucid/pkg/imageio/texture"
	"github.com/lucidrt/lucid/pkg/imageio/vol"
	"github.com/lucidrt/lucid/pkg/light"
	"github.com/lucidrt/lucid/pkg/medium"
	"github.com/lucidrt/lucid/pkg/scene"
	"github.com/lucidrt/lucid/pkg/shape"
)

// xmlScene mirrors spec.md §6's field list directly as XML elements.
type xmlScene struct {
	Camera     xmlCamera      `xml:"camera"`
	BSDFs      []xmlBSDF      `xml:"bsdf"`
	Media      []xmlMedium    `xml:"medium"`
	Shapes     []xmlShape     `xml:"shape"`
	Emitters   []xmlEmitter   `xml:"emitter"`
	Env        *xmlEnv        `xml:"environment"`
	Integrator *xmlIntegrator `xml:"integrator"`
}

type xmlCamera struct {
	Type       string  `xml:"type,attr"`
	Eye        string  `xml:"eye,attr"`
	Target     string  `xml:"target,attr"`
	Up         string  `xml:"up,attr"`
	Fov        float64 `xml:"fov,attr"`
	Width      int     `xml:"width,attr"`
	Height     int     `xml:"height,attr"`
	Aperture   float64 `xml:"aperture,attr"`
	FocusDist  float64 `xml:"focusdistance,attr"`
}

type xmlBSDF struct {
	ID                     string  `xml:"id,attr"`
	Type                   string  `xml:"type,attr"`
	Albedo                 string  `xml:"albedo,attr"`
	Texture                string  `xml:"texture,attr"`
	Alpha                  float64 `xml:"alpha,attr"`
	IntIOR                 float64 `xml:"intior,attr"`
	ExtIOR                 float64 `xml:"extior,attr"`
	Weight                 float64 `xml:"weight,attr"`
	A                      string  `xml:"a,attr"`
	B                      string  `xml:"b,attr"`
	TwoSided               bool    `xml:"twosided,attr"`
}

type xmlMedium struct {
	ID      string  `xml:"id,attr"`
	Type    string  `xml:"type,attr"` // homogeneous | heterogeneous
	SigmaA  string  `xml:"sigma_a,attr"`
	SigmaS  string  `xml:"sigma_s,attr"`
	SigmaT  string  `xml:"sigma_t,attr"`
	G       float64 `xml:"g,attr"`
	File    string  `xml:"file,attr"` // .vol grid, for heterogeneous
}

type xmlShape struct {
	Type     string      `xml:"type,attr"` // sphere | mesh
	BSDF     string      `xml:"bsdf,attr"`
	Interior string      `xml:"interior,attr"`
	Exterior string      `xml:"exterior,attr"`
	Center   string      `xml:"center,attr"`
	Radius   float64     `xml:"radius,attr"`
	File     string      `xml:"file,attr"`
	Emitter  *xmlEmitter `xml:"emitter"`
}

type xmlEmitter struct {
	Type      string `xml:"type,attr"` // area | directional
	Radiance  string `xml:"radiance,attr"`
	Direction string `xml:"direction,attr"`
	Irradiance string `xml:"irradiance,attr"`
	TwoSided  bool   `xml:"twosided,attr"`
}

type xmlEnv struct {
	File string `xml:"file,attr"`
}

type xmlIntegrator struct {
	SPP                       int `xml:"spp,attr"`
	MaxDepth                  int `xml:"max_depth,attr"`
	RussianRouletteMinBounces int `xml:"rr_min_bounces,attr"`
}

// Settings carries the integrator/sampling parameters a scene file may
// override, read back by cmd/lucidrt to fill in CLI flag defaults.
type Settings struct {
	SamplesPerPixel           int
	MaxDepth                  int
	RussianRouletteMinBounces int
}

// Load parses path and resolves every id reference into direct pointers
// via scene.Builder, returning the built Scene and any integrator
// settings the file specified.
func Load(path string) (*scene.Scene, Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Settings{}, &core.IOError{Path: path, Cause: err}
	}
	defer f.Close()
	return Decode(f, filepath.Dir(path))
}

// Decode parses r, resolving relative file references (meshes, volumes,
// textures) against baseDir.
func Decode(r io.Reader, baseDir string) (*scene.Scene, Settings, error) {
	var x xmlScene
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return nil, Settings{}, &core.InputError{Context: "sceneformat: malformed scene file", Cause: err}
	}

	b := scene.NewBuilder()

	cam, err := buildCamera(x.Camera)
	if err != nil {
		return nil, Settings{}, err
	}
	b.SetCamera(cam)

	bsdfs := map[string]bsdf.BSDF{}
	for _, xb := range x.BSDFs {
		mat, err := buildBSDF(xb, bsdfs, baseDir)
		if err != nil {
			return nil, Settings{}, err
		}
		bsdfs[xb.ID] = mat
	}

	media := map[string]core.Medium{}
	for _, xm := range x.Media {
		m, err := buildMedium(xm, baseDir)
		if err != nil {
			return nil, Settings{}, err
		}
		media[xm.ID] = m
	}

	for _, xs := range x.Shapes {
		mat, ok := bsdfs[xs.BSDF]
		if xs.BSDF != "" && !ok {
			return nil, Settings{}, &core.InputError{Context: fmt.Sprintf("sceneformat: shape references unknown bsdf %q", xs.BSDF)}
		}
		var interior, exterior core.Medium
		if xs.Interior != "" {
			interior = media[xs.Interior]
		}
		if xs.Exterior != "" {
			exterior = media[xs.Exterior]
		}

		switch xs.Type {
		case "sphere":
			center, err := parseVec3(xs.Center)
			if err != nil {
				return nil, Settings{}, err
			}
			sp := &shape.Sphere{Center: center, Radius: xs.Radius}
			var em *light.Area
			if xs.Emitter != nil && xs.Emitter.Type == "area" {
				rad, err := parseVec3(xs.Emitter.Radiance)
				if err != nil {
					return nil, Settings{}, err
				}
				em = &light.Area{Shape: sp, Radiance: rad, TwoSided: xs.Emitter.TwoSided}
			}
			b.AddPrimitive(sp, mat, em, interior, exterior)
		case "mesh":
			meshPath := filepath.Join(baseDir, xs.File)
			var mesh *shape.TriangleMesh
			var err error
			switch strings.ToLower(filepath.Ext(meshPath)) {
			case ".obj":
				mesh, err = obj.Load(meshPath)
			default:
				mesh, err = ply.Load(meshPath)
			}
			if err != nil {
				return nil, Settings{}, err
			}
			b.AddMesh(mesh, mat, nil, interior, exterior)
		default:
			return nil, Settings{}, &core.InputError{Context: fmt.Sprintf("sceneformat: unknown shape type %q", xs.Type)}
		}
	}

	for _, xe := range x.Emitters {
		switch xe.Type {
		case "directional":
			dir, err := parseVec3(xe.Direction)
			if err != nil {
				return nil, Settings{}, err
			}
			irr, err := parseVec3(xe.Irradiance)
			if err != nil {
				return nil, Settings{}, err
			}
			b.AddEmitter(&light.Directional{Direction: dir, Irradiance: irr})
		default:
			return nil, Settings{}, &core.InputError{Context: fmt.Sprintf("sceneformat: unknown emitter type %q", xe.Type)}
		}
	}

	if x.Env != nil {
		tex, err := texture.Load(filepath.Join(baseDir, x.Env.File))
		if err != nil {
			return nil, Settings{}, err
		}
		b.SetEnvironment(light.NewEnvironment(tex.Width, tex.Height, tex.Pixels))
	}

	settings := Settings{SamplesPerPixel: 16, MaxDepth: 5, RussianRouletteMinBounces: 3}
	if x.Integrator != nil {
		if x.Integrator.SPP > 0 {
			settings.SamplesPerPixel = x.Integrator.SPP
		}
		if x.Integrator.MaxDepth > 0 {
			settings.MaxDepth = x.Integrator.MaxDepth
		}
		if x.Integrator.RussianRouletteMinBounces > 0 {
			settings.RussianRouletteMinBounces = x.Integrator.RussianRouletteMinBounces
		}
	}

	return b.Build(), settings, nil
}

func buildCamera(xc xmlCamera) (*camera.Camera, error) {
	eye, err := parseVec3(xc.Eye)
	if err != nil {
		return nil, err
	}
	target, err := parseVec3(xc.Target)
	if err != nil {
		return nil, err
	}
	up, err := parseVec3(xc.Up)
	if err != nil {
		return nil, err
	}
	if xc.Width <= 0 || xc.Height <= 0 {
		return nil, &core.InputError{Context: "sceneformat: camera width/height must be positive"}
	}
	focusDist := xc.FocusDist
	if focusDist <= 0 {
		focusDist = 1
	}
	aspect := float64(xc.Width) / float64(xc.Height)
	return camera.NewCamera(eye, target, up, xc.Fov, aspect, xc.Aperture/2, focusDist, xc.Width, xc.Height), nil
}

func buildBSDF(xb xmlBSDF, known map[string]bsdf.BSDF, baseDir string) (bsdf.BSDF, error) {
	var inner bsdf.BSDF
	switch xb.Type {
	case "lambertian":
		cs, err := colorSource(xb.Albedo, xb.Texture, baseDir)
		if err != nil {
			return nil, err
		}
		inner = &bsdf.Lambertian{Albedo: cs}
	case "roughconductor":
		f0, err := parseVec3(xb.Albedo)
		if err != nil {
			return nil, err
		}
		inner = &bsdf.RoughConductor{Alpha: xb.Alpha, SpecularReflectance: f0}
	case "roughdielectric":
		intIOR, extIOR := xb.IntIOR, xb.ExtIOR
		if intIOR == 0 {
			intIOR = 1.5046
		}
		if extIOR == 0 {
			extIOR = 1.000277
		}
		inner = &bsdf.RoughDielectric{Alpha: xb.Alpha, IntIOR: intIOR, ExtIOR: extIOR,
			SpecularReflectance:   core.Spectrum{X: 1, Y: 1, Z: 1},
			SpecularTransmittance: core.Spectrum{X: 1, Y: 1, Z: 1}}
	case "blend":
		a, ok := known[xb.A]
		if !ok {
			return nil, &core.InputError{Context: fmt.Sprintf("sceneformat: blend bsdf references unknown id %q", xb.A)}
		}
		b, ok := known[xb.B]
		if !ok {
			return nil, &core.InputError{Context: fmt.Sprintf("sceneformat: blend bsdf references unknown id %q", xb.B)}
		}
		inner = &bsdf.Blend{A: a, B: b, Weight: xb.Weight}
	case "null":
		inner = &bsdf.Null{}
	default:
		return nil, &core.InputError{Context: fmt.Sprintf("sceneformat: unknown bsdf type %q", xb.Type)}
	}
	if xb.TwoSided {
		return &bsdf.TwoSided{Inner: inner}, nil
	}
	return inner, nil
}

func colorSource(albedo, tex, baseDir string) (bsdf.ColorSource, error) {
	if tex != "" {
		bmp, err := texture.Load(filepath.Join(baseDir, tex))
		if err != nil {
			return nil, err
		}
		return bmp, nil
	}
	c, err := parseVec3(albedo)
	if err != nil {
		return nil, err
	}
	return bsdf.SolidColor(c), nil
}

func buildMedium(xm xmlMedium, baseDir string) (core.Medium, error) {
	switch xm.Type {
	case "homogeneous":
		sigmaA, err := parseVec3(xm.SigmaA)
		if err != nil {
			return nil, err
		}
		sigmaS, err := parseVec3(xm.SigmaS)
		if err != nil {
			return nil, err
		}
		return &medium.Homogeneous{SigmaA: sigmaA, SigmaS: sigmaS, PhaseG: xm.G}, nil
	case "heterogeneous":
		grid, bbox, err := vol.Load(filepath.Join(baseDir, xm.File))
		if err != nil {
			return nil, err
		}
		sigmaT, err := parseVec3(xm.SigmaT)
		if err != nil {
			return nil, err
		}
		return medium.NewHeterogeneous(grid, sigmaT, core.Spectrum{X: 0.9, Y: 0.9, Z: 0.9}, xm.G, bbox), nil
	default:
		return nil, &core.InputError{Context: fmt.Sprintf("sceneformat: unknown medium type %q", xm.Type)}
	}
}

func parseVec3(s string) (core.Vec3, error) {
	if s == "" {
		return core.Vec3{}, nil
	}
	var x, y, z float64
	if _, err := fmt.Sscanf(s, "%g,%g,%g", &x, &y, &z); err != nil {
		if _, err := fmt.Sscanf(s, "%g %g %g", &x, &y, &z); err != nil {
			return core.Vec3{}, &core.InputError{Context: fmt.Sprintf("sceneformat: malformed vec3 %q", s), Cause: err}
		}
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) {
		return core.Vec3{}, &core.InputError{Context: fmt.Sprintf("sceneformat: malformed vec3 %q", s)}
	}
	return core.Vec3{X: x, Y: y, Z: z}, nil
}
