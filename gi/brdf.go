package gi

import (
	"math"

	"github.com/borealis-render/borealis/types"
)

// Microfacet BRDF: Trowbridge-Reitz (GGX) normal distribution with a
// height-correlated Smith masking-shadowing term and Schlick Fresnel, plus a
// diffuse term scaled by (1 - metalness). Every factor is clamped to zero or
// above before use so floating-point error can never inject negative
// radiance.

const (
	// Dielectric reflectance at normal incidence.
	dielectricF0 = 0.04

	// Roughness floor; a perfectly smooth microfacet distribution
	// degenerates into a delta function the sampler cannot resolve.
	minRoughness = 0.03
)

// EvalBRDF evaluates the material response for light arriving along l and
// leaving toward v at a surface with normal n. All three vectors are unit
// length and point away from the surface. The cosine foreshortening term is
// not included; callers apply it with the light attenuation.
func EvalBRDF(n, l, v types.Vec3, mat MaterialSample) types.Vec3 {
	ndl := clampPos(n.Dot(l))
	ndv := clampPos(n.Dot(v))
	if ndl <= 0 || ndv <= 0 {
		return types.Vec3{}
	}

	h := l.Add(v).Normalize()
	ndh := clampPos(n.Dot(h))
	vdh := clampPos(v.Dot(h))

	rough := mat.Roughness
	if rough < minRoughness {
		rough = minRoughness
	}
	alpha := rough * rough

	metal := clamp01(mat.Metalness)
	albedo := mat.Albedo.ClampNeg()

	f0 := types.LerpVec3(types.XYZ(dielectricF0, dielectricF0, dielectricF0), albedo, metal)
	fresnel := schlickFresnel(f0, vdh)

	specular := fresnel.Mul(ggxDistribution(ndh, alpha) * smithVisibility(ndv, ndl, alpha))
	diffuse := albedo.Mul(1 - metal)

	return diffuse.Add(specular).ClampNeg()
}

// Trowbridge-Reitz normal distribution.
func ggxDistribution(ndh, alpha float32) float32 {
	a2 := alpha * alpha
	d := ndh*ndh*(a2-1) + 1
	denom := math.Pi * float64(d*d)
	if denom < 1e-8 {
		return 0
	}
	return float32(float64(a2) / denom)
}

// Height-correlated Smith visibility term. Folds in the 1/(4 ndl ndv)
// microfacet normalization.
func smithVisibility(ndv, ndl, alpha float32) float32 {
	a2 := alpha * alpha
	lv := ndl * float32(math.Sqrt(float64(ndv*ndv*(1-a2)+a2)))
	ll := ndv * float32(math.Sqrt(float64(ndl*ndl*(1-a2)+a2)))
	if lv+ll < 1e-8 {
		return 0
	}
	return 0.5 / (lv + ll)
}

func schlickFresnel(f0 types.Vec3, vdh float32) types.Vec3 {
	t := 1 - vdh
	t5 := t * t * t * t * t
	one := types.XYZ(1, 1, 1)
	return f0.Add(one.Sub(f0).Mul(t5)).ClampNeg()
}

func clampPos(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
