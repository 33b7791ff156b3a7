package avbd

import (
	"math"
	"testing"

	"github.com/setanarut/vec"
)

func TestManifoldInitializeEmptyWhenSeparated(t *testing.T) {
	s := NewSolver()
	a := NewBody(s, vec.Vec2{X: 1, Y: 1}, 1, 0.5, vec3{0, 0, 0}, vec3{})
	b := NewBody(s, vec.Vec2{X: 1, Y: 1}, 1, 0.5, vec3{10, 10, 0}, vec3{})

	m := NewManifold(s, a, b)
	if m.Initialize() {
		t.Fatalf("expected Initialize to return false for non-overlapping boxes")
	}
	if m.Rows() != 0 {
		t.Errorf("expected 0 rows, got %d", m.Rows())
	}
}

func TestManifoldWarmstartCarriesPenaltyByFeature(t *testing.T) {
	s := NewSolver()
	a := NewBody(s, vec.Vec2{X: 2, Y: 2}, 0, 0.5, vec3{0, 0, 0}, vec3{})
	b := NewBody(s, vec.Vec2{X: 2, Y: 2}, 1, 0.5, vec3{0, 1.9, 0}, vec3{})

	m := NewManifold(s, a, b)
	if !m.Initialize() {
		t.Fatalf("expected overlap on first frame")
	}
	if m.numContacts != 2 {
		t.Fatalf("expected 2 contacts, got %d", m.numContacts)
	}

	m.Penalty[0] = 42
	m.Lambda[0] = -7

	// A tiny nudge that doesn't change which edges face each other should
	// preserve the feature ids, and so carry the penalty/lambda forward.
	b.Position.X += 0.01
	if !m.Initialize() {
		t.Fatalf("expected overlap to persist after a small nudge")
	}
	if m.Penalty[0] != 42 || m.Lambda[0] != -7 {
		t.Errorf("expected warmstarted penalty/lambda to carry across frames by feature id, got penalty=%v lambda=%v", m.Penalty[0], m.Lambda[0])
	}
}

func TestManifoldStickFlagRequiresBothConditions(t *testing.T) {
	s := NewSolver()
	a := NewBody(s, vec.Vec2{X: 2, Y: 2}, 0, 0.5, vec3{0, 0, 0}, vec3{})
	b := NewBody(s, vec.Vec2{X: 2, Y: 2}, 1, 0.5, vec3{0, 1.9, 0}, vec3{})

	m := NewManifold(s, a, b)
	m.Initialize()
	m.ComputeConstraint(1.0)

	for i := 0; i < m.numContacts; i++ {
		frictionBound := math.Abs(m.Lambda[i*2+0]) * m.friction
		wantStick := math.Abs(m.Lambda[i*2+1]) < frictionBound && math.Abs(m.contacts[i].c0.Y) < stickThreshold
		if m.contacts[i].stick != wantStick {
			t.Errorf("contact %d stick=%v, want %v", i, m.contacts[i].stick, wantStick)
		}
	}
}

func TestManifoldFrictionBoundsTrackNormalLambda(t *testing.T) {
	s := NewSolver()
	a := NewBody(s, vec.Vec2{X: 2, Y: 2}, 0, 0.5, vec3{0, 0, 0}, vec3{})
	b := NewBody(s, vec.Vec2{X: 2, Y: 2}, 1, 0.5, vec3{0, 1.9, 0}, vec3{})

	m := NewManifold(s, a, b)
	m.Initialize()
	m.Lambda[0] = -10
	m.ComputeConstraint(1.0)

	want := 10 * m.friction
	if math.Abs(m.Fmax[1]-want) > 1e-9 || math.Abs(m.Fmin[1]+want) > 1e-9 {
		t.Errorf("friction bounds got [%v, %v], want [%v, %v]", m.Fmin[1], m.Fmax[1], -want, want)
	}
}
