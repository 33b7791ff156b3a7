package avbd

import (
	"math"

	"github.com/setanarut/vec"
)

// collisionMargin is the small separation allowed before a contact's
// normal row starts pushing back; it keeps resting contacts from
// flickering in and out of existence at exactly zero separation.
const collisionMargin = 5e-4

// stickThreshold is how close a contact's tangential error has to be to
// zero, combined with an unsaturated friction row, for the contact to be
// considered "sticking" and have its body-local anchor points preserved
// across frames (this is what makes static friction actually static).
const stickThreshold = 1e-2

// featurePair packs the four edge indices identifying a contact's
// originating features into one comparable value, used to match a new
// frame's contacts against the previous frame's for warmstarting.
type featurePair struct {
	inEdge1, outEdge1, inEdge2, outEdge2 int8
}

func (fp featurePair) flipped() featurePair {
	return featurePair{fp.inEdge2, fp.outEdge2, fp.inEdge1, fp.outEdge1}
}

// contact is a single point of a Manifold: its feature identity, its
// body-local attachment points, the world-space normal (always pointing
// from bodyB towards bodyA, so that a penetrating contact has a negative
// normal constraint value), and the derivatives precomputed at
// Initialize time from the truncated Taylor expansion the manifold uses
// for its constraint function (Sec 4 of the AVBD paper).
type contact struct {
	feature featurePair
	rA, rB  vec.Vec2
	normal  vec.Vec2

	jAn, jBn, jAt, jBt vec3
	c0                 vec.Vec2
	stick              bool
}

// Manifold is the contact force between two bodies: up to two contact
// points, each contributing a normal (non-penetration) row and a
// friction (tangent) row. Manifolds are created by the solver's
// broadphase and removed automatically once they stop overlapping.
type Manifold struct {
	constraintBase

	contacts    [2]contact
	numContacts int
	friction    float64
}

// NewManifold creates a contact force between bodyA and bodyB. Callers
// outside the solver's own broadphase should not normally call this
// directly: Solver.Step creates manifolds itself for any overlapping,
// unconstrained pair.
func NewManifold(s *Solver, bodyA, bodyB *Body) *Manifold {
	m := &Manifold{constraintBase: newConstraintBase(s, bodyA, bodyB)}
	m.Fmax[0] = 0
	m.Fmax[2] = 0
	m.Fmin[0] = math.Inf(-1)
	m.Fmin[2] = math.Inf(-1)
	linkForce(s, m)
	return m
}

// Rows reports two rows (normal, friction) per active contact point.
func (m *Manifold) Rows() int { return m.numContacts * 2 }

// Initialize runs the box-box narrow phase, carries warmstart data
// (penalty, multiplier, and for sticking contacts the body-local anchor
// points) forward by matching feature IDs against the previous frame's
// contacts, and precomputes each contact's constant Jacobians and bias.
// Returns false (remove me) when the boxes no longer overlap at all.
func (m *Manifold) Initialize() bool {
	m.friction = math.Sqrt(m.bodyA.Friction * m.bodyB.Friction)

	var oldContacts [2]contact
	var oldPenalty, oldLambda [4]float64
	var oldStick [2]bool
	copy(oldContacts[:], m.contacts[:])
	copy(oldPenalty[:], m.Penalty[:])
	copy(oldLambda[:], m.Lambda[:])
	oldStick[0], oldStick[1] = m.contacts[0].stick, m.contacts[1].stick
	oldNumContacts := m.numContacts

	m.numContacts = collideBoxes(m.bodyA, m.bodyB, m.contacts[:])

	for i := 0; i < m.numContacts; i++ {
		m.Penalty[i*2+0], m.Penalty[i*2+1] = 0, 0
		m.Lambda[i*2+0], m.Lambda[i*2+1] = 0, 0

		for j := 0; j < oldNumContacts; j++ {
			if m.contacts[i].feature == oldContacts[j].feature {
				m.Penalty[i*2+0] = oldPenalty[j*2+0]
				m.Penalty[i*2+1] = oldPenalty[j*2+1]
				m.Lambda[i*2+0] = oldLambda[j*2+0]
				m.Lambda[i*2+1] = oldLambda[j*2+1]
				m.contacts[i].stick = oldStick[j]

				if oldStick[j] {
					m.contacts[i].rA = oldContacts[j].rA
					m.contacts[i].rB = oldContacts[j].rB
				}
			}
		}
	}

	for i := 0; i < m.numContacts; i++ {
		c := &m.contacts[i]
		normal := c.normal
		tangent := vec.Vec2{X: normal.Y, Y: -normal.X}

		rAW := rotate(m.bodyA.Position.Z, c.rA)
		rBW := rotate(m.bodyB.Position.Z, c.rB)

		c.jAn = vec3{normal.X, normal.Y, rAW.Cross(normal)}
		c.jBn = vec3{-normal.X, -normal.Y, -rBW.Cross(normal)}
		c.jAt = vec3{tangent.X, tangent.Y, rAW.Cross(tangent)}
		c.jBt = vec3{-tangent.X, -tangent.Y, -rBW.Cross(tangent)}

		d := m.bodyA.Position.xy().Add(rAW).Sub(m.bodyB.Position.xy()).Sub(rBW)
		c.c0 = vec.Vec2{X: normal.Dot(d) + collisionMargin, Y: tangent.Dot(d)}
	}

	return m.numContacts > 0
}

// ComputeConstraint fills each contact's normal and friction rows with
// the truncated Taylor expansion from x- (Sec 4): the precomputed bias
// C0, scaled by (1-alpha), plus the linear term along each body's
// displacement since the start of the step. Friction bounds are
// refreshed from the current normal multiplier, and each contact's
// stick flag is updated for next step's warmstart.
func (m *Manifold) ComputeConstraint(alpha float64) {
	for i := 0; i < m.numContacts; i++ {
		c := &m.contacts[i]
		dpA := m.bodyA.Position.sub(m.bodyA.Initial)
		dpB := m.bodyB.Position.sub(m.bodyB.Initial)

		m.C[i*2+0] = c.c0.X*(1-alpha) + c.jAn.dot(dpA) + c.jBn.dot(dpB)
		m.C[i*2+1] = c.c0.Y*(1-alpha) + c.jAt.dot(dpA) + c.jBt.dot(dpB)

		frictionBound := math.Abs(m.Lambda[i*2+0]) * m.friction
		m.Fmax[i*2+1] = frictionBound
		m.Fmin[i*2+1] = -frictionBound

		c.stick = math.Abs(m.Lambda[i*2+1]) < frictionBound && math.Abs(c.c0.Y) < stickThreshold
	}
}

// ComputeDerivatives copies the precomputed per-body Jacobians into the
// shared row arrays; contacts use no second-order term (H stays zero).
func (m *Manifold) ComputeDerivatives(body *Body) {
	for i := 0; i < m.numContacts; i++ {
		c := &m.contacts[i]
		if body == m.bodyA {
			m.J[i*2+0] = c.jAn
			m.J[i*2+1] = c.jAt
		} else {
			m.J[i*2+0] = c.jBn
			m.J[i*2+1] = c.jBt
		}
	}
}
