package avbd

import "math"

// maxRows is the most rows a single constraint can contribute. A contact
// manifold with two contacts (normal + friction per contact) is the widest
// concrete force.
const maxRows = 4

// kappaMin and kappaMax bound every row's penalty parameter after every
// warmstart. kappaMin must stay strictly positive: it is what keeps the
// assembled primal system's left-hand side symmetric positive definite.
const (
	kappaMin = 1.0
	kappaMax = 1e9
)

// Force is the common interface implemented by every constraint variant:
// Joint, Spring, Motor, Manifold and IgnoreCollision. The solver drives a
// step purely through this interface and the shared row data reachable via
// base(), never through a type switch.
type Force interface {
	// Rows reports how many constraint rows (0..maxRows) this force
	// currently contributes.
	Rows() int

	// Initialize is called once per step before any primal or dual
	// update. It may cache per-step constants. Returning false requests
	// that the solver remove this force (e.g. a joint with all-zero
	// stiffness, or a contact manifold that found no overlap).
	Initialize() bool

	// ComputeConstraint fills C[0:Rows()] at the force's body/bodies'
	// current position. alpha selects how much of the start-of-step
	// constraint error is retained for hard (infinite-stiffness) rows.
	ComputeConstraint(alpha float64)

	// ComputeDerivatives fills J[0:Rows()] and H[0:Rows()] with respect
	// to the given body, which must be this force's BodyA or BodyB.
	ComputeDerivatives(body *Body)

	// BodyA and BodyB are this force's endpoints; either may be nil,
	// meaning "anchored to the world".
	BodyA() *Body
	BodyB() *Body

	// Next returns the next force in the solver's global force list, or
	// nil at the end, for external traversal by a renderer or test.
	Next() Force

	// Disable clears stiffness, penalty and multiplier on every row,
	// making the force inert until the solver removes it on the next
	// Initialize call.
	Disable()

	base() *constraintBase
}

// constraintBase carries the state every concrete force shares: the
// per-row Jacobians, Hessians, residuals, stiffness/bounds/fracture
// thresholds, the persistent penalty and multiplier, and the three
// intrusive singly-linked list pointers (solver-global, bodyA-side,
// bodyB-side). Concrete forces embed this by value and get Disable,
// BodyA/BodyB and the solver-visible row arrays for free.
type constraintBase struct {
	solver       *Solver
	bodyA, bodyB *Body
	next, nextA, nextB Force

	J         [maxRows]vec3
	H         [maxRows]mat3
	C         [maxRows]float64
	Stiffness [maxRows]float64
	Fmin      [maxRows]float64
	Fmax      [maxRows]float64
	Fracture  [maxRows]float64
	Penalty   [maxRows]float64
	Lambda    [maxRows]float64
}

func newConstraintBase(s *Solver, bodyA, bodyB *Body) constraintBase {
	b := constraintBase{solver: s, bodyA: bodyA, bodyB: bodyB}
	for i := 0; i < maxRows; i++ {
		b.Stiffness[i] = math.Inf(1)
		b.Fmax[i] = math.Inf(1)
		b.Fmin[i] = math.Inf(-1)
		b.Fracture[i] = math.Inf(1)
	}
	return b
}

func (b *constraintBase) base() *constraintBase { return b }

// BodyA is this force's first endpoint, or nil if anchored to the world.
func (b *constraintBase) BodyA() *Body { return b.bodyA }

// BodyB is this force's second endpoint, or nil if anchored to the world.
func (b *constraintBase) BodyB() *Body { return b.bodyB }

// Next returns the next force in the solver's global force list.
func (b *constraintBase) Next() Force { return b.next }

// Disable makes this force inert: every row's stiffness, penalty and
// multiplier is zeroed, so it contributes nothing to the primal or dual
// update until Initialize removes it from the solver next step.
func (b *constraintBase) Disable() {
	for i := 0; i < maxRows; i++ {
		b.Stiffness[i] = 0
		b.Penalty[i] = 0
		b.Lambda[i] = 0
	}
}

// linkForce adds f to the solver's force list and, for each non-nil
// endpoint, to that body's force list.
func linkForce(s *Solver, f Force) {
	b := f.base()
	b.next = s.forces
	s.forces = f

	if b.bodyA != nil {
		b.nextA = b.bodyA.forces
		b.bodyA.forces = f
	}
	if b.bodyB != nil {
		b.nextB = b.bodyB.forces
		b.bodyB.forces = f
	}
}

// unlinkForce removes f from the solver's force list and from every body
// list it appears in. Safe to call mid-traversal provided the caller has
// already advanced its own iterator past f.
func unlinkForce(f Force) {
	b := f.base()

	p := &b.solver.forces
	for *p != nil {
		if *p == f {
			*p = b.next
			break
		}
		p = &(*p).base().next
	}

	if b.bodyA != nil {
		unlinkFromBody(b.bodyA, f)
	}
	if b.bodyB != nil {
		unlinkFromBody(b.bodyB, f)
	}
}

func unlinkFromBody(body *Body, f Force) {
	p := &body.forces
	for *p != nil {
		cur := *p
		cb := cur.base()
		var next *Force
		if cb.bodyA == body {
			next = &cb.nextA
		} else {
			next = &cb.nextB
		}
		if cur == f {
			*p = *next
			return
		}
		p = next
	}
}

// nextForceOnBody returns the next force in body's intrusive list after f,
// following the nextA or nextB link depending on which side of f body is.
func nextForceOnBody(body *Body, f Force) Force {
	b := f.base()
	if b.bodyA == body {
		return b.nextA
	}
	return b.nextB
}
