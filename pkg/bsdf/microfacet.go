package bsdf

import (
	"math"

	"github.com/lucidrt/lucid/pkg/core"
)

// This file's formulas are transcribed 1:1 from
// original_source/src/materials/microfacet.rs (GGX D/G1/G, VNDF
// sampling via Heitz's method, reflect/refract, exact dielectric
// Fresnel, and Schlick's conductor approximation), re-expressed with
// core.Vec3 in place of the original's nalgebra Vector3f.

func ggxD(cosTheta, alpha float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	a := math.Max(alpha, 1e-4)
	a2 := a * a
	cos2 := cosTheta * cosTheta
	denom := cos2*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

func ggxG1(cosTheta, alpha float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	a := math.Max(alpha, 1e-4)
	cos2 := cosTheta * cosTheta
	sin2 := math.Max(0, 1-cos2)
	if sin2 <= 0 {
		return 1
	}
	tan2 := sin2 / math.Max(cos2, 1e-6)
	root := math.Sqrt(1 + a*a*tan2)
	return 2 / (1 + root)
}

func ggxG(cosI, cosO, alpha float64) float64 {
	return ggxG1(math.Abs(cosI), alpha) * ggxG1(math.Abs(cosO), alpha)
}

func pdfGGXVNDF(wi, m core.Vec3, alpha float64) float64 {
	if wi.Z <= 0 || m.Z <= 0 {
		return 0
	}
	d := ggxD(m.Z, alpha)
	g1 := ggxG1(wi.Z, alpha)
	dot := math.Abs(wi.Dot(m))
	if math.Abs(wi.Z) <= 1e-6 {
		return 0
	}
	return d * g1 * dot / math.Abs(wi.Z)
}

// sampleGGXVNDF implements Heitz's "Sampling the GGX Distribution of
// Visible Normals", building a stretched frame around wi, sampling a
// disk, and unstretching the resulting half-vector.
func sampleGGXVNDF(wi core.Vec3, u core.Vec2, alpha float64) core.Vec3 {
	a := math.Max(alpha, 1e-4)
	wiStretched := core.Vec3{X: a * wi.X, Y: a * wi.Y, Z: wi.Z}.Normalize()

	t1 := core.Vec3{X: 1, Y: 0, Z: 0}
	if wiStretched.Z < 0.9999 {
		t1 = core.Vec3{X: 0, Y: 0, Z: 1}.Cross(wiStretched).Normalize()
	}
	t2 := wiStretched.Cross(t1)

	u1 := core.Clamp(u.X, 0, 1)
	u2 := core.Clamp(u.Y, 0, 1)
	r := math.Sqrt(u1)
	phi := 2 * math.Pi * u2
	t1p := r * math.Cos(phi)
	t2p := r * math.Sin(phi)
	s := 0.5 * (1 + wiStretched.Z)
	t2p = (1-s)*math.Sqrt(math.Max(0, 1-t1p*t1p)) + s*t2p

	nh := t1.Mul(t1p).Add(t2.Mul(t2p)).Add(wiStretched.Mul(math.Sqrt(math.Max(0, 1-t1p*t1p-t2p*t2p))))
	m := core.Vec3{X: a * nh.X, Y: a * nh.Y, Z: math.Max(0, nh.Z)}
	return m.Normalize()
}

func reflectAbout(wi, m core.Vec3) core.Vec3 {
	return m.Mul(2 * wi.Dot(m)).Sub(wi)
}

// refractAbout returns wt, ok (ok=false signals total internal reflection).
func refractAbout(wi, m core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := core.Clamp(wi.Dot(m), -1, 1)
	sin2I := math.Max(0, 1-cosI*cosI)
	sin2T := eta * eta * sin2I
	if sin2T >= 1 {
		return core.Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	wt := wi.Negate().Mul(eta).Add(m.Mul(eta*cosI - cosT))
	return wt, true
}

// fresnelDielectric evaluates unpolarized Fresnel reflectance for a
// dielectric boundary, swapping etaI/etaT depending on entering/exiting.
func fresnelDielectric(cosI, etaI, etaT float64) float64 {
	cosI = core.Clamp(cosI, -1, 1)
	entering := cosI > 0
	if !entering {
		etaI, etaT = etaT, etaI
	}
	cosI = math.Abs(cosI)

	sin2I := math.Max(0, 1-cosI*cosI)
	eta := etaI / etaT
	sin2T := eta * eta * sin2I
	if sin2T >= 1 {
		return 1
	}
	cosT := math.Sqrt(1 - sin2T)
	rParl := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	rPerp := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	return 0.5 * (rParl*rParl + rPerp*rPerp)
}

// fresnelSchlick is the conductor approximation used by roughConductor,
// parameterized by the normal-incidence reflectance f0.
func fresnelSchlick(f0 core.Spectrum, cosTheta float64) core.Spectrum {
	cosTheta = core.Clamp(cosTheta, 0, 1)
	oneMinus := math.Pow(1-cosTheta, 5)
	white := core.Vec3{X: 1, Y: 1, Z: 1}
	return f0.Add(white.Sub(f0).Mul(oneMinus))
}
