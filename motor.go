package avbd

// Motor drives the relative angular speed between bodyA and bodyB
// (bodyA may be nil, meaning "the world") towards Speed, subject to a
// torque limit. It is a single-row force whose row bounds, not its
// stiffness, implement the limit: NewMotor's maxTorque sets Fmax and
// -maxTorque sets Fmin.
type Motor struct {
	constraintBase

	Speed float64
}

// NewMotor creates a motor between bodyA and bodyB (bodyB must not be
// nil) driving their relative angular velocity towards speed, with the
// applied torque clamped to [-maxTorque, maxTorque].
func NewMotor(s *Solver, bodyA, bodyB *Body, speed, maxTorque float64) *Motor {
	m := &Motor{
		constraintBase: newConstraintBase(s, bodyA, bodyB),
		Speed:          speed,
	}
	m.Fmax[0] = maxTorque
	m.Fmin[0] = -maxTorque
	linkForce(s, m)
	return m
}

// Rows reports the motor's single torque row.
func (m *Motor) Rows() int { return 1 }

// Initialize is a no-op: a motor has no per-step constants to cache.
func (m *Motor) Initialize() bool { return true }

// ComputeConstraint fills C[0] with the angular slip relative to the
// target speed since the start of the step. A motor row is always soft
// in the stabilization sense (its stiffness is +Inf by default from
// constraintBase but carries no positional error to stabilize, since it
// constrains a rate, not a position) so alpha is unused here.
func (m *Motor) ComputeConstraint(alpha float64) {
	dAngleA := 0.0
	if m.bodyA != nil {
		dAngleA = m.bodyA.Position.Z - m.bodyA.Initial.Z
	}
	dAngleB := m.bodyB.Position.Z - m.bodyB.Initial.Z
	deltaAngle := dAngleA - dAngleB
	m.C[0] = deltaAngle - m.Speed*m.solver.Dt
}

// ComputeDerivatives fills J[0] = (0, 0, +-1); the motor's constraint is
// purely rotational, so H[0] stays zero.
func (m *Motor) ComputeDerivatives(body *Body) {
	if body == m.bodyA {
		m.J[0] = vec3{0, 0, 1}
	} else {
		m.J[0] = vec3{0, 0, -1}
	}
	m.H[0] = mat3{}
}
