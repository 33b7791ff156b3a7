package avbd

import (
	"testing"

	"github.com/setanarut/vec"
)

func newTestBody(size vec.Vec2, pos vec3) *Body {
	s := NewSolver()
	return NewBody(s, size, 1, 0.5, pos, vec3{})
}

func TestCollideBoxesFlatStack(t *testing.T) {
	a := newTestBody(vec.Vec2{X: 2, Y: 2}, vec3{0, 0, 0})
	b := newTestBody(vec.Vec2{X: 2, Y: 2}, vec3{0, 1.9, 0})

	var contacts [2]contact
	n := collideBoxes(a, b, contacts[:])
	if n != 2 {
		t.Fatalf("expected 2 contacts for a flat overlapping stack, got %d", n)
	}
	for i := 0; i < n; i++ {
		if contacts[i].normal.Y >= 0 {
			t.Errorf("contact %d normal should point from B to A (-y), got %v", i, contacts[i].normal)
		}
	}
}

func TestCollideBoxesSeparated(t *testing.T) {
	a := newTestBody(vec.Vec2{X: 1, Y: 1}, vec3{0, 0, 0})
	b := newTestBody(vec.Vec2{X: 1, Y: 1}, vec3{10, 10, 0})

	var contacts [2]contact
	n := collideBoxes(a, b, contacts[:])
	if n != 0 {
		t.Fatalf("expected 0 contacts for separated boxes, got %d", n)
	}
}

func TestCollideBoxesSymmetry(t *testing.T) {
	a := newTestBody(vec.Vec2{X: 2, Y: 2}, vec3{0, 0, 0.1})
	b := newTestBody(vec.Vec2{X: 2, Y: 2}, vec3{1.8, 0.3, -0.05})

	var ab, ba [2]contact
	nab := collideBoxes(a, b, ab[:])
	nba := collideBoxes(b, a, ba[:])

	if nab != nba {
		t.Fatalf("collide(A,B)=%d contacts, collide(B,A)=%d contacts", nab, nba)
	}

	for i := 0; i < nab; i++ {
		sum := ab[i].normal.Add(ba[0].normal)
		for j := 1; j < nba; j++ {
			if s := ab[i].normal.Add(ba[j].normal); s.Mag() < sum.Mag() {
				sum = s
			}
		}
		if sum.Mag() > 1e-6 {
			t.Errorf("contact %d normal %v has no opposite counterpart in collide(B,A)", i, ab[i].normal)
		}
	}
}

func TestFeatureIDStableAcrossFrames(t *testing.T) {
	a := newTestBody(vec.Vec2{X: 2, Y: 2}, vec3{0, 0, 0})
	b := newTestBody(vec.Vec2{X: 2, Y: 2}, vec3{0, 1.9, 0})

	var first, second [2]contact
	n1 := collideBoxes(a, b, first[:])

	// Nudge body B slightly without changing which edges face each other.
	b.Position.X += 0.01
	n2 := collideBoxes(a, b, second[:])

	if n1 != 2 || n2 != 2 {
		t.Fatalf("expected stable 2-contact manifold, got %d then %d", n1, n2)
	}

	matched := 0
	for i := 0; i < n1; i++ {
		for j := 0; j < n2; j++ {
			if first[i].feature == second[j].feature {
				matched++
			}
		}
	}
	if matched == 0 {
		t.Errorf("expected at least one stable feature id across frames, found none")
	}
}
