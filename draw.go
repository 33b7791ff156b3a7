package avbd

import "github.com/setanarut/vec"

// DebugBody is the data an external renderer needs to draw one body's
// oriented rectangle: its four world-space corners, in order.
type DebugBody struct {
	Corners [4]vec.Vec2
}

// DebugCorners returns body's four world-space corners, counter-clockwise
// starting at (-w/2, -h/2), for a renderer's own drawing code. The core
// never draws anything itself (it has no window, no GL context); this is
// the data hook a caller's renderer is expected to consume instead.
func (body *Body) DebugCorners() DebugBody {
	half := body.Size.Scale(0.5)
	local := [4]vec.Vec2{
		{X: -half.X, Y: -half.Y},
		{X: half.X, Y: -half.Y},
		{X: half.X, Y: half.Y},
		{X: -half.X, Y: half.Y},
	}
	var d DebugBody
	for i, l := range local {
		d.Corners[i] = transform(body.Position, l)
	}
	return d
}

// DebugKind identifies which concrete Force a DebugForce describes, so a
// renderer can pick a draw style without needing a type switch over the
// unexported concrete types.
type DebugKind int

const (
	DebugKindJoint DebugKind = iota
	DebugKindSpring
	DebugKindMotor
	DebugKindIgnoreCollision
	DebugKindManifold
)

// DebugForce is the data an external renderer needs to draw one force:
// for a Joint or Spring, the two anchor endpoints of the line it draws;
// for a Manifold, the world-space contact points.
type DebugForce struct {
	Kind   DebugKind
	Points []vec.Vec2
}

// DebugView returns the data needed to draw f, dispatched by its
// concrete type. Motor and IgnoreCollision have no natural drawing (a
// motor has no anchor point, an ignore-marker has no geometry at all),
// so they report an empty Points slice.
func DebugView(f Force) DebugForce {
	switch v := f.(type) {
	case *Joint:
		a := v.RA
		if v.bodyA != nil {
			a = transform(v.bodyA.Position, v.RA)
		}
		b := transform(v.bodyB.Position, v.RB)
		return DebugForce{Kind: DebugKindJoint, Points: []vec.Vec2{a, b}}
	case *Spring:
		a := transform(v.bodyA.Position, v.RA)
		b := transform(v.bodyB.Position, v.RB)
		return DebugForce{Kind: DebugKindSpring, Points: []vec.Vec2{a, b}}
	case *Motor:
		return DebugForce{Kind: DebugKindMotor}
	case *IgnoreCollision:
		return DebugForce{Kind: DebugKindIgnoreCollision}
	case *Manifold:
		pts := make([]vec.Vec2, 0, v.numContacts*2)
		for i := 0; i < v.numContacts; i++ {
			pts = append(pts, transform(v.bodyA.Position, v.contacts[i].rA))
			pts = append(pts, transform(v.bodyB.Position, v.contacts[i].rB))
		}
		return DebugForce{Kind: DebugKindManifold, Points: pts}
	default:
		return DebugForce{}
	}
}
