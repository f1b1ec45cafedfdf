// Package sampling provides the low-discrepancy sample source consumed by
// the stochastic pipeline stages. Samples come from an additive-recurrence
// (R4) sequence advanced by frame and sample index, decorrelated per pixel,
// probe and light slot with a Cranley-Patterson rotation derived from an
// integer hash. The result behaves like tiled blue noise: successive samples
// for one coordinate are well stratified, while neighboring coordinates see
// uncorrelated phases, which breaks up banding in shadow and probe rays.
package sampling

import "github.com/borealis-render/borealis/types"

// Generalized golden ratios: alpha_k = 1/phi4^k for the unique real root of
// x^5 = x + 1, expressed in fixed point as fractions of 2^32.
var r4Alphas = [4]uint32{4005985816, 3738403575, 3488739587, 3255749869}

// Source is a deterministic low-discrepancy sample generator. The zero
// value is usable; a seed decorrelates independent runs. Safe for concurrent
// use: all state is immutable after construction.
type Source struct {
	seed uint32
}

func New(seed uint32) *Source {
	return &Source{seed: seed}
}

// Sample4D returns a vector in [0,1)^4 for the integer coordinate
// (id, frame, slot, sample). The sequence index advances with frame and
// sample so repeated draws stratify over time; id and slot only rotate the
// sequence phase.
func (s *Source) Sample4D(id, frame, slot, sample uint32) types.Vec4 {
	index := frame*97 + sample
	rot := hash32(id ^ hash32(slot^s.seed))

	var out types.Vec4
	for k := 0; k < 4; k++ {
		// Fixed-point accumulate; natural u32 wraparound is the "frac".
		// Keep 24 bits so the float32 conversion is exact and the result
		// stays strictly below 1.
		v := r4Alphas[k]*index + rot
		out[k] = float32(v>>8) * (1.0 / 16777216.0)
		rot = hash32(rot)
	}
	return out
}

// hash32 is the finalizer from Wang's integer hash. Cheap and well mixed.
func hash32(v uint32) uint32 {
	v = (v ^ 61) ^ (v >> 16)
	v *= 9
	v ^= v >> 4
	v *= 0x27d4eb2d
	v ^= v >> 15
	return v
}
