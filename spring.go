package avbd

import (
	"math"

	"github.com/setanarut/vec"
)

// Spring is a single-row compliant distance constraint between bodyA's
// local point RA and bodyB's local point RB. Its stiffness is always
// finite (a spring is never a hard constraint); Rest is the target
// distance, or captured at construction from the current distance when
// a negative Rest is supplied.
type Spring struct {
	constraintBase

	RA, RB vec.Vec2
	Rest   float64
}

// NewSpring creates a spring of the given stiffness between bodyA's local
// point rA and bodyB's local point rB. A negative rest captures the
// current distance between the two anchor points as the rest length.
func NewSpring(s *Solver, bodyA, bodyB *Body, rA, rB vec.Vec2, stiffness, rest float64) *Spring {
	sp := &Spring{
		constraintBase: newConstraintBase(s, bodyA, bodyB),
		RA:             rA,
		RB:             rB,
		Rest:           rest,
	}
	sp.Stiffness[0] = stiffness
	if sp.Rest < 0 {
		d := transform(bodyA.Position, rA)
		e := transform(bodyB.Position, rB)
		sp.Rest = d.Sub(e).Mag()
	}
	linkForce(s, sp)
	return sp
}

// Rows reports the spring's single distance row.
func (sp *Spring) Rows() int { return 1 }

// Initialize is a no-op: a spring has no per-step constants to cache and
// is never removed on its own.
func (sp *Spring) Initialize() bool { return true }

// ComputeConstraint fills C[0] with the current distance minus Rest.
// Springs are always soft, so alpha (stabilization) does not apply.
func (sp *Spring) ComputeConstraint(alpha float64) {
	d := transform(sp.bodyA.Position, sp.RA)
	e := transform(sp.bodyB.Position, sp.RB)
	sp.C[0] = d.Sub(e).Mag() - sp.Rest
}

// ComputeDerivatives fills J[0] and H[0] for the given body. If the two
// anchor points currently coincide the derivative is undefined, so this
// zeroes J and H, contributing nothing to this iteration
// (matches spec's zero-length fallback).
func (sp *Spring) ComputeDerivatives(body *Body) {
	d := transform(sp.bodyA.Position, sp.RA).Sub(transform(sp.bodyB.Position, sp.RB))
	dlen2 := d.Dot(d)
	if dlen2 == 0 {
		sp.J[0] = vec3{}
		sp.H[0] = mat3{}
		return
	}
	dlen := math.Sqrt(dlen2)
	n := d.Scale(1 / dlen)

	// dxx = (I - n*n^T) / dlen, the rank-1 update to the identity
	// that differentiates a unit direction with respect to its own
	// endpoint.
	dxxRow0 := vec.Vec2{X: (1 - n.X*n.X) / dlen, Y: (-n.X * n.Y) / dlen}
	dxxRow1 := vec.Vec2{X: (-n.X * n.Y) / dlen, Y: (1 - n.Y*n.Y) / dlen}
	dxx := mat2{[2]vec.Vec2{dxxRow0, dxxRow1}}

	if body == sp.bodyA {
		sr := rotate(sp.bodyA.Position.Z, vec.Vec2{X: -sp.RA.Y, Y: sp.RA.X})
		r := rotate(sp.bodyA.Position.Z, sp.RA)
		dxr := dxx.mulVec(sr)
		drr := sr.Dot(dxr) - n.Dot(r)

		sp.J[0] = vec3{n.X, n.Y, n.Dot(sr)}
		sp.H[0] = mat3{[3]vec3{
			{dxx.Row[0].X, dxx.Row[0].Y, dxr.X},
			{dxx.Row[1].X, dxx.Row[1].Y, dxr.Y},
			{dxr.X, dxr.Y, drr},
		}}
	} else {
		sr := rotate(sp.bodyB.Position.Z, vec.Vec2{X: -sp.RB.Y, Y: sp.RB.X})
		r := rotate(sp.bodyB.Position.Z, sp.RB)
		negSr := sr.Scale(-1)
		dxr := dxx.mulVec(negSr)
		drr := sr.Dot(dxr) + n.Dot(r)

		sp.J[0] = vec3{-n.X, -n.Y, n.Dot(negSr)}
		sp.H[0] = mat3{[3]vec3{
			{dxx.Row[0].X, dxx.Row[0].Y, dxr.X},
			{dxx.Row[1].X, dxx.Row[1].Y, dxr.Y},
			{dxr.X, dxr.Y, drr},
		}}
	}
}
