package avbd

import (
	"math"

	"github.com/setanarut/vec"
)

// Body is one simulated rectangle: a rigid body with a pose (x, y, angle),
// linear+angular velocity, mass properties and an axis-aligned (in its own
// frame) half-extent box. A Body with Mass == 0 and Moment == 0 is static
// or kinematic: the solver's primal update never moves it, though it can
// still act as an anchor for joints, springs and contacts.
type Body struct {
	// Position is the body's current pose (x, y, angle), mutated by
	// every primal iteration of the step it is involved in.
	Position vec3
	// Initial is the pose at the start of the current step (x-), used
	// by hard-row constraint stabilization and BDF1 velocity recovery.
	Initial vec3
	// Inertial is the unconstrained prediction x + v*dt (+ gravity*dt^2
	// for dynamic bodies), computed once per step before iterating.
	Inertial vec3

	// Velocity is the current linear+angular velocity (vx, vy, omega).
	Velocity vec3
	// PrevVelocity is the velocity at the end of the previous step,
	// used to estimate external acceleration for adaptive warmstarting.
	PrevVelocity vec3

	// Size is the body-local full width/height (not half-extents).
	Size vec.Vec2

	// Mass and Moment are this body's mass and moment of inertia.
	// Mass <= 0 (equivalently Moment <= 0) marks the body static.
	Mass, Moment float64

	// Friction is this body's own friction coefficient. Two bodies'
	// friction is combined pairwise as sqrt(muA * muB).
	Friction float64

	// Radius is the bounding radius sqrt(w^2+h^2)/2 used by the
	// broadphase's circle overlap test.
	Radius float64

	next   *Body // solver-global intrusive list link
	forces Force // head of this body's intrusive force list
}

// NewBody creates a rigid body of the given size, density and friction at
// the given initial pose, and links it into the solver. A density of 0
// produces a static body (Mass == 0, Moment == 0): the broadphase and
// every force still see it, but the primal update never displaces it.
func NewBody(s *Solver, size vec.Vec2, density, friction float64, position, velocity vec3) *Body {
	mass := size.X * size.Y * density
	moment := mass * (size.X*size.X + size.Y*size.Y) / 12
	radius := math.Sqrt(size.X*size.X+size.Y*size.Y) / 2

	body := &Body{
		Position:     position,
		Velocity:     velocity,
		PrevVelocity: velocity,
		Size:         size,
		Mass:         mass,
		Moment:       moment,
		Friction:     friction,
		Radius:       radius,
	}

	body.next = s.bodies
	s.bodies = body
	return body
}

// Next returns the next body in the solver's body list, or nil at the
// end, for external traversal by a renderer or test harness.
func (body *Body) Next() *Body { return body.next }

// constrainedTo reports whether any force currently touches both this
// body and other. The broadphase uses this to avoid spawning a redundant
// contact manifold between bodies that are already joined (or whose
// collision is explicitly ignored via IgnoreCollision).
func (body *Body) constrainedTo(other *Body) bool {
	for f := body.forces; f != nil; f = nextForceOnBody(body, f) {
		b := f.base()
		if (b.bodyA == body && b.bodyB == other) || (b.bodyA == other && b.bodyB == body) {
			return true
		}
	}
	return false
}

// localPoint converts a world point into this body's local frame, the way
// Solver.Pick needs in order to test it against the body's half-extents.
func (body *Body) localPoint(world vec.Vec2) vec.Vec2 {
	rt := rotationMat2(-body.Position.Z)
	return rt.mulVec(vec.Vec2{X: world.X - body.Position.X, Y: world.Y - body.Position.Y})
}

// containsLocal reports whether a body-local point lies within this
// body's half-extent rectangle.
func (body *Body) containsLocal(local vec.Vec2) bool {
	hw, hh := body.Size.X*0.5, body.Size.Y*0.5
	return local.X >= -hw && local.X <= hw && local.Y >= -hh && local.Y <= hh
}
