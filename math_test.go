package avbd

import (
	"math"
	"testing"

	"github.com/setanarut/vec"
)

func TestSolveSPD3Diagonal(t *testing.T) {
	a := diagonalMat3(2, 3, 4)
	b := vec3{4, 9, 16}
	x := solveSPD3(a, b)
	if math.Abs(x.X-2) > 1e-9 || math.Abs(x.Y-3) > 1e-9 || math.Abs(x.Z-4) > 1e-9 {
		t.Errorf("got %v, want (2,3,4)", x)
	}
}

func TestSolveSPD3IllConditioned(t *testing.T) {
	// Mirrors the worst-case conditioning the solver actually produces:
	// M/dt^2 plus a kappa near kappaMax on one row.
	a := mat3{[3]vec3{
		{kappaMax + 1, 0, 0},
		{0, kappaMin, 0},
		{0, 0, kappaMin},
	}}
	x := solveSPD3(a, vec3{kappaMax + 1, kappaMin, kappaMin})
	if math.Abs(x.X-1) > 1e-6 || math.Abs(x.Y-1) > 1e-6 || math.Abs(x.Z-1) > 1e-6 {
		t.Errorf("got %v, want (1,1,1)", x)
	}
}

func TestTransformRoundTrip(t *testing.T) {
	q := vec3{3, -2, math.Pi / 4}
	local := vec.Vec2{X: 1, Y: 0.5}
	world := transform(q, local)

	rt := rotationMat2(-q.Z)
	back := rt.mulVec(vec.Vec2{X: world.X - q.X, Y: world.Y - q.Y})

	if math.Abs(back.X-local.X) > 1e-9 || math.Abs(back.Y-local.Y) > 1e-9 {
		t.Errorf("round trip got %v, want %v", back, local)
	}
}

func TestRotationMat2Orthonormal(t *testing.T) {
	r := rotationMat2(1.234)
	rt := r.transpose()
	identity := matMul2(r, rt)
	if math.Abs(identity.Row[0].X-1) > 1e-9 || math.Abs(identity.Row[0].Y) > 1e-9 {
		t.Errorf("R*R^T not identity: %v", identity)
	}
}
