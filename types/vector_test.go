package types

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	type spec struct {
		in  Vec3
		exp Vec3
	}
	specs := []spec{
		{XYZ(2, 0, 0), XYZ(1, 0, 0)},
		{XYZ(0, -3, 0), XYZ(0, -1, 0)},
		// Degenerate input must not produce NaN.
		{XYZ(0, 0, 0), XYZ(0, 0, 0)},
	}

	for index, s := range specs {
		out := s.in.Normalize()
		for c := 0; c < 3; c++ {
			if math.IsNaN(float64(out[c])) {
				t.Fatalf("[spec %d] component %d is NaN", index, c)
			}
			if math.Abs(float64(out[c]-s.exp[c])) > 1e-6 {
				t.Fatalf("[spec %d] expected component %d to be %f; got %f", index, c, s.exp[c], out[c])
			}
		}
	}
}

func TestCrossOrthogonality(t *testing.T) {
	a := XYZ(1, 2, 3)
	b := XYZ(-4, 1, 0.5)
	c := a.Cross(b)

	if d := c.Dot(a); math.Abs(float64(d)) > 1e-5 {
		t.Fatalf("expected cross product to be orthogonal to first operand; dot was %f", d)
	}
	if d := c.Dot(b); math.Abs(float64(d)) > 1e-5 {
		t.Fatalf("expected cross product to be orthogonal to second operand; dot was %f", d)
	}
}

func TestClampNeg(t *testing.T) {
	v := XYZ(-1, 0.5, -0.001).ClampNeg()
	if v[0] != 0 || v[2] != 0 {
		t.Fatalf("expected negative components to clamp to zero; got %v", v)
	}
	if v[1] != 0.5 {
		t.Fatalf("expected positive component to be preserved; got %f", v[1])
	}
}

func TestLerpVec3(t *testing.T) {
	out := LerpVec3(XYZ(0, 0, 0), XYZ(2, 4, 8), 0.5)
	exp := XYZ(1, 2, 4)
	if out != exp {
		t.Fatalf("expected %v; got %v", exp, out)
	}
}
