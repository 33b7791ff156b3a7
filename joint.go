package avbd

import (
	"math"

	"github.com/setanarut/vec"
)

// Joint rigidly (or softly, per row) connects attachment point RA on BodyA
// to attachment point RB on BodyB, plus an angle-matching row that locks
// the two bodies' relative orientation to whatever it was at construction.
// Either body may be nil, meaning the corresponding attachment is a fixed
// world-space point.
//
// Row 0 and 1 are the positional (x, y) rows; row 2 is the angular row,
// which also carries the optional fracture threshold: once the angular
// multiplier's magnitude reaches Fracture, the joint disables itself.
type Joint struct {
	constraintBase

	RA, RB vec.Vec2

	restAngle float64
	torqueArm float64
	c0        vec3
}

// NewJoint creates a joint between bodyA's local point rA and bodyB's
// local point rB (bodyA may be nil for a world anchor at rA; bodyB must
// not be nil). stiffness gives the per-row stiffness (x, y, angle); use
// math.Inf(1) for a hard row. fracture is the angular row's disable
// threshold (math.Inf(1) to make it unbreakable).
func NewJoint(s *Solver, bodyA, bodyB *Body, rA, rB vec.Vec2, stiffness vec3, fracture float64) *Joint {
	j := &Joint{
		constraintBase: newConstraintBase(s, bodyA, bodyB),
		RA:             rA,
		RB:             rB,
	}

	j.Stiffness[0] = stiffness.X
	j.Stiffness[1] = stiffness.Y
	j.Stiffness[2] = stiffness.Z
	j.Fmax[2] = fracture
	j.Fmin[2] = -fracture
	j.Fracture[2] = fracture

	angleA := 0.0
	if bodyA != nil {
		angleA = bodyA.Position.Z
	}
	j.restAngle = angleA - bodyB.Position.Z

	sizeA := vec.Vec2{}
	if bodyA != nil {
		sizeA = bodyA.Size
	}
	arm := vec.Vec2{X: sizeA.X + bodyB.Size.X, Y: sizeA.Y + bodyB.Size.Y}
	j.torqueArm = arm.Dot(arm)

	linkForce(s, j)
	return j
}

// Rows reports the joint's three constraint rows (x, y, angle).
func (j *Joint) Rows() int { return 3 }

func (j *Joint) angleConstraint() vec3 {
	var c vec3
	anchorA := j.RA
	if j.bodyA != nil {
		anchorA = transform(j.bodyA.Position, j.RA)
	}
	anchorB := transform(j.bodyB.Position, j.RB)
	c.X = anchorA.X - anchorB.X
	c.Y = anchorA.Y - anchorB.Y

	angleA := 0.0
	if j.bodyA != nil {
		angleA = j.bodyA.Position.Z
	}
	c.Z = (angleA - j.bodyB.Position.Z - j.restAngle) * j.torqueArm
	return c
}

// Initialize caches the constraint function C(x-) at the start of the
// step, used to stabilize hard rows. It requests removal only when every
// row's stiffness has been zeroed (typically via Disable on fracture).
func (j *Joint) Initialize() bool {
	j.c0 = j.angleConstraint()
	return j.Stiffness[0] != 0 || j.Stiffness[1] != 0 || j.Stiffness[2] != 0
}

// ComputeConstraint fills C(x) for the current pose, stabilized by alpha
// on any row whose stiffness is infinite (a hard row).
func (j *Joint) ComputeConstraint(alpha float64) {
	cn := j.angleConstraint()
	for i := 0; i < 3; i++ {
		if math.IsInf(j.Stiffness[i], 1) {
			j.C[i] = cn.at(i) - j.c0.at(i)*alpha
		} else {
			j.C[i] = cn.at(i)
		}
	}
}

// ComputeDerivatives fills J and H for the given body (must be BodyA or
// BodyB). Only the two positional rows have a non-zero Hessian (a single
// entry in the angle/angle slot), since their Jacobians depend on the
// body's own orientation through the rotated anchor; the angular row's
// Jacobian is constant, so its Hessian is zero.
func (j *Joint) ComputeDerivatives(body *Body) {
	if body == j.bodyA {
		r := rotate(j.bodyA.Position.Z, j.RA)
		j.J[0] = vec3{1, 0, -r.Y}
		j.J[1] = vec3{0, 1, r.X}
		j.J[2] = vec3{0, 0, j.torqueArm}
		j.H[0] = mat3{[3]vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, -r.X}}}
		j.H[1] = mat3{[3]vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, -r.Y}}}
		j.H[2] = mat3{}
	} else {
		r := rotate(j.bodyB.Position.Z, j.RB)
		j.J[0] = vec3{-1, 0, r.Y}
		j.J[1] = vec3{0, -1, -r.X}
		j.J[2] = vec3{0, 0, -j.torqueArm}
		j.H[0] = mat3{[3]vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, r.X}}}
		j.H[1] = mat3{[3]vec3{{0, 0, 0}, {0, 0, 0}, {0, 0, r.Y}}}
		j.H[2] = mat3{}
	}
}
