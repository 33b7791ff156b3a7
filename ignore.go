package avbd

// IgnoreCollision is a zero-row marker force: it applies no constraint at
// all, but its mere presence between bodyA and bodyB makes
// Body.constrainedTo report true, which stops the broadphase from
// spawning a contact Manifold for that pair.
type IgnoreCollision struct {
	constraintBase
}

// NewIgnoreCollision links an IgnoreCollision marker between bodyA and
// bodyB, suppressing automatic contact generation between them.
func NewIgnoreCollision(s *Solver, bodyA, bodyB *Body) *IgnoreCollision {
	ic := &IgnoreCollision{constraintBase: newConstraintBase(s, bodyA, bodyB)}
	linkForce(s, ic)
	return ic
}

// Rows is always zero: IgnoreCollision contributes nothing to the primal
// or dual update.
func (ic *IgnoreCollision) Rows() int { return 0 }

// Initialize always returns true: an IgnoreCollision marker persists
// until the caller explicitly removes it, regardless of having zero
// rows.
func (ic *IgnoreCollision) Initialize() bool { return true }

// ComputeConstraint is a no-op; there are no rows to fill.
func (ic *IgnoreCollision) ComputeConstraint(alpha float64) {}

// ComputeDerivatives is a no-op; there are no rows to fill.
func (ic *IgnoreCollision) ComputeDerivatives(body *Body) {}
