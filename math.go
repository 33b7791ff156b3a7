package avbd

import (
	"math"

	"github.com/setanarut/vec"
)

// vec3 is a 3-component tuple used throughout the solver for a body's
// (x, y, angle) pose, velocity and the per-row Jacobians of a constraint.
// The first two components are routed through vec.Vec2 wherever a routine
// only cares about the positional part.
type vec3 struct {
	X, Y, Z float64
}

// Vec3 is the exported name for vec3 (a plain type alias, not a wrapper):
// the pose/velocity tuple type that NewBody, NewJoint and friends accept
// and return. Callers outside the package construct one with NewVec3 or
// a Vec3{X, Y, Z} literal.
type Vec3 = vec3

// NewVec3 builds a Vec3 (x, y, angle) tuple — a body pose or velocity, or
// a per-row stiffness/fracture triple for NewJoint.
func NewVec3(x, y, z float64) Vec3 { return vec3{x, y, z} }

func newVec3(x, y, z float64) vec3 { return vec3{x, y, z} }

// xy returns the positional components as a vec.Vec2.
func (v vec3) xy() vec.Vec2 { return vec.Vec2{X: v.X, Y: v.Y} }

func vec3FromXY(xy vec.Vec2, z float64) vec3 { return vec3{xy.X, xy.Y, z} }

func (a vec3) add(b vec3) vec3 { return vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a vec3) sub(b vec3) vec3 { return vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a vec3) scale(s float64) vec3 { return vec3{a.X * s, a.Y * s, a.Z * s} }
func (a vec3) div(s float64) vec3   { return vec3{a.X / s, a.Y / s, a.Z / s} }

func (a vec3) dot(b vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a vec3) length() float64 { return math.Sqrt(a.dot(a)) }

// at indexes the tuple the way the spec's row arrays do: 0=x, 1=y, 2=z.
func (a vec3) at(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

// mat2 is a 2x2 matrix stored row-major as two vec.Vec2 rows.
type mat2 struct {
	Row [2]vec.Vec2
}

func (m mat2) col(i int) vec.Vec2 {
	if i == 0 {
		return vec.Vec2{X: m.Row[0].X, Y: m.Row[1].X}
	}
	return vec.Vec2{X: m.Row[0].Y, Y: m.Row[1].Y}
}

func (m mat2) mulVec(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: m.Row[0].Dot(v), Y: m.Row[1].Dot(v)}
}

func (m mat2) transpose() mat2 {
	return mat2{[2]vec.Vec2{
		{X: m.Row[0].X, Y: m.Row[1].X},
		{X: m.Row[0].Y, Y: m.Row[1].Y},
	}}
}

// matMul2 returns the matrix product a*b.
func matMul2(a, b mat2) mat2 {
	bc0, bc1 := b.col(0), b.col(1)
	return mat2{[2]vec.Vec2{
		{X: a.Row[0].Dot(bc0), Y: a.Row[0].Dot(bc1)},
		{X: a.Row[1].Dot(bc0), Y: a.Row[1].Dot(bc1)},
	}}
}

// absMat2 returns a with every element replaced by its absolute value.
func absMat2(a mat2) mat2 {
	return mat2{[2]vec.Vec2{
		{X: math.Abs(a.Row[0].X), Y: math.Abs(a.Row[0].Y)},
		{X: math.Abs(a.Row[1].X), Y: math.Abs(a.Row[1].Y)},
	}}
}

// rotationMat2 returns the 2D rotation matrix for the given angle.
func rotationMat2(angle float64) mat2 {
	s, c := math.Sincos(angle)
	return mat2{[2]vec.Vec2{
		{X: c, Y: -s},
		{X: s, Y: c},
	}}
}

// rotate rotates v by angle.
func rotate(angle float64, v vec.Vec2) vec.Vec2 {
	return rotationMat2(angle).mulVec(v)
}

// transform applies the rigid pose q = (x, y, theta) to the local point v,
// i.e. Rot(q.Z)*v + q.xy().
func transform(q vec3, v vec.Vec2) vec.Vec2 {
	r := rotate(q.Z, v)
	return vec.Vec2{X: r.X + q.X, Y: r.Y + q.Y}
}

// mat3 is a 3x3 matrix stored row-major.
type mat3 struct {
	Row [3]vec3
}

func diagonalMat3(m00, m11, m22 float64) mat3 {
	return mat3{[3]vec3{
		{m00, 0, 0},
		{0, m11, 0},
		{0, 0, m22},
	}}
}

func (m mat3) col(i int) vec3 {
	return vec3{m.Row[0].at(i), m.Row[1].at(i), m.Row[2].at(i)}
}

func (m mat3) add(o mat3) mat3 {
	return mat3{[3]vec3{m.Row[0].add(o.Row[0]), m.Row[1].add(o.Row[1]), m.Row[2].add(o.Row[2])}}
}

func (m mat3) scale(s float64) mat3 {
	return mat3{[3]vec3{m.Row[0].scale(s), m.Row[1].scale(s), m.Row[2].scale(s)}}
}

func (m mat3) mulVec(v vec3) vec3 {
	return vec3{m.Row[0].dot(v), m.Row[1].dot(v), m.Row[2].dot(v)}
}

// outer3 returns the outer product a*b^T.
func outer3(a, b vec3) mat3 {
	return mat3{[3]vec3{b.scale(a.X), b.scale(a.Y), b.scale(a.Z)}}
}

func abs3(v vec3) vec3 {
	return vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

func sign(x float64) float64 {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// solveSPD3 solves the 3x3 symmetric positive-definite system a*x = b via an
// LDL^T factorization without pivoting. The left-hand side assembled by the
// solver is always SPD: M/dt^2 has a positive diagonal, and every force
// contributes kappa*J*J^T (kappa >= kappaMin > 0) plus a PSD geometric
// stiffness term, so no pivot is ever exactly zero as long as kappaMin > 0.
func solveSPD3(a mat3, b vec3) vec3 {
	d1 := a.Row[0].X
	l21 := a.Row[1].X / d1
	l31 := a.Row[2].X / d1
	d2 := a.Row[1].Y - l21*l21*d1
	l32 := (a.Row[2].Y - l21*l31*d1) / d2
	d3 := a.Row[2].Z - (l31*l31*d1 + l32*l32*d2)

	y1 := b.X
	y2 := b.Y - l21*y1
	y3 := b.Z - l31*y1 - l32*y2

	z1 := y1 / d1
	z2 := y2 / d2
	z3 := y3 / d3

	var x vec3
	x.Z = z3
	x.Y = z2 - l32*x.Z
	x.X = z1 - l21*x.Y - l31*x.Z
	return x
}
