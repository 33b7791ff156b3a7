package avbd

import "github.com/setanarut/vec"

// Box vertex and edge numbering, matching the feature IDs reported in
// each contact's featurePair so that consecutive frames can identify the
// same edge pair and warmstart across them:
//
//        ^ y
//        |
//        e1
//   v2 ------ v1
//    |        |
// e2 |        | e4  --> x
//    |        |
//   v3 ------ v4
//        e3
const (
	noEdge int8 = 0
	edge1  int8 = 1
	edge2  int8 = 2
	edge3  int8 = 3
	edge4  int8 = 4
)

type satAxis int

const (
	faceAX satAxis = iota
	faceAY
	faceBX
	faceBY
)

// clipVertex is a vertex produced while clipping the incident edge
// against the reference face's two side planes; it carries the feature
// ID of whichever original edge (or clip operation) produced it.
type clipVertex struct {
	v  vec.Vec2
	fp featurePair
}

// clipSegmentToLine clips the 2-point segment vIn against the half-plane
// normal.v <= offset, replacing any point on the wrong side with the
// segment/plane intersection and tagging it with clipEdge.
func clipSegmentToLine(vIn [2]clipVertex, normal vec.Vec2, offset float64, clipEdge int8) ([2]clipVertex, int) {
	var vOut [2]clipVertex
	numOut := 0

	distance0 := normal.Dot(vIn[0].v) - offset
	distance1 := normal.Dot(vIn[1].v) - offset

	if distance0 <= 0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	if distance0*distance1 < 0 {
		interp := distance0 / (distance0 - distance1)
		v := vIn[0].v.Add(vIn[1].v.Sub(vIn[0].v).Scale(interp))
		var fp featurePair
		if distance0 > 0 {
			fp = vIn[0].fp
			fp.inEdge1 = clipEdge
			fp.inEdge2 = noEdge
		} else {
			fp = vIn[1].fp
			fp.outEdge1 = clipEdge
			fp.outEdge2 = noEdge
		}
		vOut[numOut] = clipVertex{v: v, fp: fp}
		numOut++
	}

	return vOut, numOut
}

// computeIncidentEdge picks the face of the incident box (half-extents h,
// at world pose pos/rot) whose outward normal is most anti-parallel to
// the reference face's normal, and returns its two vertices in world
// space, tagged with the edge IDs of the original incident box.
func computeIncidentEdge(h, pos vec.Vec2, rot mat2, normal vec.Vec2) [2]clipVertex {
	rotT := rot.transpose()
	n := rotT.mulVec(normal).Scale(-1)

	var c [2]clipVertex
	if abs2(n.X) > abs2(n.Y) {
		if sign(n.X) > 0 {
			c[0] = clipVertex{v: vec.Vec2{X: h.X, Y: -h.Y}, fp: featurePair{inEdge2: edge3, outEdge2: edge4}}
			c[1] = clipVertex{v: vec.Vec2{X: h.X, Y: h.Y}, fp: featurePair{inEdge2: edge4, outEdge2: edge1}}
		} else {
			c[0] = clipVertex{v: vec.Vec2{X: -h.X, Y: h.Y}, fp: featurePair{inEdge2: edge1, outEdge2: edge2}}
			c[1] = clipVertex{v: vec.Vec2{X: -h.X, Y: -h.Y}, fp: featurePair{inEdge2: edge2, outEdge2: edge3}}
		}
	} else {
		if sign(n.Y) > 0 {
			c[0] = clipVertex{v: vec.Vec2{X: h.X, Y: h.Y}, fp: featurePair{inEdge2: edge4, outEdge2: edge1}}
			c[1] = clipVertex{v: vec.Vec2{X: -h.X, Y: h.Y}, fp: featurePair{inEdge2: edge1, outEdge2: edge2}}
		} else {
			c[0] = clipVertex{v: vec.Vec2{X: -h.X, Y: -h.Y}, fp: featurePair{inEdge2: edge2, outEdge2: edge3}}
			c[1] = clipVertex{v: vec.Vec2{X: h.X, Y: -h.Y}, fp: featurePair{inEdge2: edge3, outEdge2: edge4}}
		}
	}

	c[0].v = pos.Add(rot.mulVec(c[0].v))
	c[1].v = pos.Add(rot.mulVec(c[1].v))
	return c
}

func abs2(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// collideBoxes is the narrow phase: it finds the separating axis with
// the least penetration between two oriented boxes (bodies' Size read as
// full width/height, so half-extents are Size*0.5), and if they overlap
// clips the incident box's nearest edge against the reference face to
// produce up to two contact points. The separating-axis normal points from
// A towards B; each contact stores its negation, pointing from B towards
// A. Adapted from box2d-lite's Collide (Erin Catto).
func collideBoxes(bodyA, bodyB *Body, out []contact) int {
	hA := bodyA.Size.Scale(0.5)
	hB := bodyB.Size.Scale(0.5)

	posA := bodyA.Position.xy()
	posB := bodyB.Position.xy()

	rotA := rotationMat2(bodyA.Position.Z)
	rotB := rotationMat2(bodyB.Position.Z)
	rotAT := rotA.transpose()
	rotBT := rotB.transpose()

	dp := posB.Sub(posA)
	dA := rotAT.mulVec(dp)
	dB := rotBT.mulVec(dp)

	c := matMul2(rotAT, rotB)
	absC := absMat2(c)
	absCT := absC.transpose()

	faceA := vec.Vec2{X: abs2(dA.X), Y: abs2(dA.Y)}.Sub(hA).Sub(absC.mulVec(hB))
	if faceA.X > 0 || faceA.Y > 0 {
		return 0
	}

	faceB := vec.Vec2{X: abs2(dB.X), Y: abs2(dB.Y)}.Sub(absCT.mulVec(hA)).Sub(hB)
	if faceB.X > 0 || faceB.Y > 0 {
		return 0
	}

	const relativeTol = 0.95
	const absoluteTol = 0.01

	axis := faceAX
	separation := faceA.X
	var normal vec.Vec2
	if dA.X > 0 {
		normal = rotA.col(0)
	} else {
		normal = rotA.col(0).Scale(-1)
	}

	if faceA.Y > relativeTol*separation+absoluteTol*hA.Y {
		axis = faceAY
		separation = faceA.Y
		if dA.Y > 0 {
			normal = rotA.col(1)
		} else {
			normal = rotA.col(1).Scale(-1)
		}
	}

	if faceB.X > relativeTol*separation+absoluteTol*hB.X {
		axis = faceBX
		separation = faceB.X
		if dB.X > 0 {
			normal = rotB.col(0)
		} else {
			normal = rotB.col(0).Scale(-1)
		}
	}

	if faceB.Y > relativeTol*separation+absoluteTol*hB.Y {
		axis = faceBY
		separation = faceB.Y
		if dB.Y > 0 {
			normal = rotB.col(1)
		} else {
			normal = rotB.col(1).Scale(-1)
		}
	}

	var frontNormal, sideNormal vec.Vec2
	var incidentEdge [2]clipVertex
	var front, negSide, posSide float64
	var negEdge, posEdge int8

	switch axis {
	case faceAX:
		frontNormal = normal
		front = posA.Dot(frontNormal) + hA.X
		sideNormal = rotA.col(1)
		side := posA.Dot(sideNormal)
		negSide = -side + hA.Y
		posSide = side + hA.Y
		negEdge = edge3
		posEdge = edge1
		incidentEdge = computeIncidentEdge(hB, posB, rotB, frontNormal)
	case faceAY:
		frontNormal = normal
		front = posA.Dot(frontNormal) + hA.Y
		sideNormal = rotA.col(0)
		side := posA.Dot(sideNormal)
		negSide = -side + hA.X
		posSide = side + hA.X
		negEdge = edge2
		posEdge = edge4
		incidentEdge = computeIncidentEdge(hB, posB, rotB, frontNormal)
	case faceBX:
		frontNormal = normal.Scale(-1)
		front = posB.Dot(frontNormal) + hB.X
		sideNormal = rotB.col(1)
		side := posB.Dot(sideNormal)
		negSide = -side + hB.Y
		posSide = side + hB.Y
		negEdge = edge3
		posEdge = edge1
		incidentEdge = computeIncidentEdge(hA, posA, rotA, frontNormal)
	case faceBY:
		frontNormal = normal.Scale(-1)
		front = posB.Dot(frontNormal) + hB.Y
		sideNormal = rotB.col(0)
		side := posB.Dot(sideNormal)
		negSide = -side + hB.X
		posSide = side + hB.X
		negEdge = edge2
		posEdge = edge4
		incidentEdge = computeIncidentEdge(hA, posA, rotA, frontNormal)
	}

	clipPoints1, np := clipSegmentToLine(incidentEdge, sideNormal.Scale(-1), negSide, negEdge)
	if np < 2 {
		return 0
	}

	clipPoints2, np := clipSegmentToLine(clipPoints1, sideNormal, posSide, posEdge)
	if np < 2 {
		return 0
	}

	numContacts := 0
	for i := 0; i < 2; i++ {
		sep := frontNormal.Dot(clipPoints2[i].v) - front
		if sep <= 0 {
			ct := &out[numContacts]
			ct.normal = normal.Scale(-1)

			ct.rA = rotAT.mulVec(clipPoints2[i].v.Sub(frontNormal.Scale(sep)).Sub(posA))
			ct.rB = rotBT.mulVec(clipPoints2[i].v.Sub(posB))
			ct.feature = clipPoints2[i].fp

			if axis == faceBX || axis == faceBY {
				ct.feature = ct.feature.flipped()
				ct.rA = rotAT.mulVec(clipPoints2[i].v.Sub(posA))
				ct.rB = rotBT.mulVec(clipPoints2[i].v.Sub(frontNormal.Scale(sep)).Sub(posB))
			}
			numContacts++
		}
	}

	return numContacts
}
