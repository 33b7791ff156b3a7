package avbd

import (
	"math"

	"github.com/setanarut/vec"
)

// maxAngularSpeed is the hard safety clamp applied to every body's
// angular velocity before it is used to predict this step's inertial
// target, independent of how it got that fast.
const maxAngularSpeed = 50.0

// Solver owns every Body and Force in a simulation and advances them one
// fixed timestep at a time via Step, using the Augmented Vertex Block
// Descent (AVBD) primal-dual iteration: an inertial prediction, a
// Gauss-Seidel sweep of per-body primal Newton updates against a 3x3 SPD
// system, and a per-force dual update that advances Lagrange multipliers
// and ramps penalty parameters, all repeated Iterations times per step.
type Solver struct {
	// Dt is the fixed timestep advanced by one call to Step.
	Dt float64
	// Gravity is the y-axis acceleration applied to every dynamic body.
	Gravity float64
	// Iterations is the number of primal+dual sweeps per step.
	Iterations int

	// Alpha controls how much start-of-step constraint error is
	// retained (stabilized away) on hard rows each step: 1 removes
	// none, 0 removes all of it in one step. Ignored while
	// PostStabilize is true, since post-stabilization sweeps their own
	// alpha schedule instead (see Step).
	Alpha float64
	// Beta is the penalty ramp rate: how fast kappa grows per dual
	// sweep in proportion to the current constraint error.
	Beta float64
	// Gamma is the per-step warmstart decay applied to kappa (and, when
	// PostStabilize is false, to lambda).
	Gamma float64
	// PostStabilize adds one extra primal-only sweep with alpha=0 after
	// the main loop to remove residual positional error, without
	// perturbing velocity (BDF1 runs before this sweep) or persisting
	// that sweep's penalty/multiplier changes into next step.
	PostStabilize bool

	bodies *Body
	forces Force
}

// NewSolver creates a Solver with the default parameters (see
// DefaultParams), ready to have bodies and forces added to it.
func NewSolver() *Solver {
	s := &Solver{}
	s.DefaultParams()
	return s
}

// DefaultParams resets every tunable to the values the AVBD sample uses:
// 60Hz, earth-ish gravity, 10 iterations, alpha/gamma near 1, beta tuned
// for unit-scale scenes, and post-stabilization on.
func (s *Solver) DefaultParams() {
	s.Dt = 1.0 / 60.0
	s.Gravity = -10.0
	s.Iterations = 10

	// Alpha controls how much stabilization is applied. Higher values
	// give slower and smoother error correction, lower values are more
	// responsive and energetic.
	s.Alpha = 0.99

	// Beta's right value depends on the length, mass and constraint
	// function scale of the scene; out of the suggested [1, 1e6] range
	// convergence on complex scenes gets slower.
	s.Beta = 1e5

	// Gamma should always be < 1 so that penalty and lambda can decay;
	// a different penalty-update strategy might not need this.
	s.Gamma = 0.99

	s.PostStabilize = true
}

// Bodies returns the head of the solver's body list, for traversal by a
// renderer or test; follow Body.Next to walk the rest.
func (s *Solver) Bodies() *Body { return s.bodies }

// Forces returns the head of the solver's force list, for traversal by a
// renderer or test; follow the force's Next (via a type switch or the
// shared interface) to walk the rest. Most callers only need this to
// count or inspect forces, not to walk them by hand, so it is exposed
// primarily through ForEachForce.
func (s *Solver) Forces() Force { return s.forces }

// ForEachForce calls fn once for every force currently in the solver, in
// solver-list order.
func (s *Solver) ForEachForce(fn func(Force)) {
	for f := s.forces; f != nil; f = f.base().next {
		fn(f)
	}
}

// ForEachBody calls fn once for every body currently in the solver.
func (s *Solver) ForEachBody(fn func(*Body)) {
	for b := s.bodies; b != nil; b = b.next {
		fn(b)
	}
}

// Pick returns the first body (in list order) whose rectangle contains
// the given world point, and that point converted to the body's local
// frame. It reports ok=false if no body contains the point.
func (s *Solver) Pick(world vec.Vec2) (body *Body, local vec.Vec2, ok bool) {
	for b := s.bodies; b != nil; b = b.next {
		local = b.localPoint(world)
		if b.containsLocal(local) {
			return b, local, true
		}
	}
	return nil, vec.Vec2{}, false
}

// Clear removes every force, then every body, from the solver. Forces
// are torn down first so that each detaches cleanly from the body lists
// before those bodies are discarded.
func (s *Solver) Clear() {
	for s.forces != nil {
		f := s.forces
		unlinkForce(f)
	}
	for s.bodies != nil {
		b := s.bodies
		s.bodies = b.next
		b.next = nil
	}
}

// RemoveForce unlinks f from the solver and from every body it touches.
// Safe to call with a force found via ForEachForce; it does not itself
// advance any in-progress traversal, so callers iterating the solver's
// force list by hand must advance their own cursor before calling this
// (the same idiom Step's own removal loop uses).
func RemoveForce(f Force) { unlinkForce(f) }

// Step advances the simulation by Dt: broadphase, force
// initialize/warmstart, inertial prediction, the primal-dual iteration,
// BDF1 velocity recovery, and (if PostStabilize) one final stabilization
// sweep.
func (s *Solver) Step() {
	s.broadphase()
	s.initializeForces()
	s.predictBodies()

	totalIterations := s.Iterations
	if s.PostStabilize {
		totalIterations++
	}

	for it := 0; it < totalIterations; it++ {
		currentAlpha := s.Alpha
		if s.PostStabilize {
			if it < s.Iterations {
				currentAlpha = 1.0
			} else {
				currentAlpha = 0.0
			}
		}

		s.primalUpdate(currentAlpha)

		if it == s.Iterations-1 {
			s.recoverVelocities()
		}

		if it < s.Iterations {
			s.dualUpdate(currentAlpha)
		}
	}
}

// broadphase is a naive O(n^2) circle-radius overlap test over every
// ordered pair of bodies; any overlapping pair that isn't already linked
// by some other force (a joint, a spring, an explicit IgnoreCollision)
// gets a fresh Manifold.
func (s *Solver) broadphase() {
	for bodyA := s.bodies; bodyA != nil; bodyA = bodyA.next {
		for bodyB := bodyA.next; bodyB != nil; bodyB = bodyB.next {
			dp := vec.Vec2{X: bodyA.Position.X - bodyB.Position.X, Y: bodyA.Position.Y - bodyB.Position.Y}
			r := bodyA.Radius + bodyB.Radius
			if dp.Dot(dp) <= r*r && !bodyA.constrainedTo(bodyB) {
				NewManifold(s, bodyA, bodyB)
			}
		}
	}
}

// initializeForces calls Initialize on every force, removing any that
// requests it, then warmstarts the survivors' penalty (and, unless
// PostStabilize is in play, multiplier) by the configured decay.
func (s *Solver) initializeForces() {
	for f := s.forces; f != nil; {
		if !f.Initialize() {
			next := f.base().next
			unlinkForce(f)
			f = next
			continue
		}

		b := f.base()
		for i := 0; i < f.Rows(); i++ {
			if s.PostStabilize {
				b.Penalty[i] = clamp(b.Penalty[i]*s.Gamma, kappaMin, kappaMax)
			} else {
				b.Lambda[i] = b.Lambda[i] * s.Alpha * s.Gamma
				b.Penalty[i] = clamp(b.Penalty[i]*s.Gamma, kappaMin, kappaMax)
			}
			b.Penalty[i] = math.Min(b.Penalty[i], b.Stiffness[i])
		}

		f = f.base().next
	}
}

// predictBodies computes each body's inertial target for this step and
// the adaptive-warmstart-biased starting position the primal iteration
// actually begins from, after clamping angular velocity to a safe range.
func (s *Solver) predictBodies() {
	for body := s.bodies; body != nil; body = body.next {
		body.Velocity.Z = clamp(body.Velocity.Z, -maxAngularSpeed, maxAngularSpeed)

		body.Inertial = body.Position.add(body.Velocity.scale(s.Dt))
		if body.Mass > 0 {
			body.Inertial = body.Inertial.add(vec3{0, s.Gravity, 0}.scale(s.Dt * s.Dt))
		}

		accel := body.Velocity.sub(body.PrevVelocity).div(s.Dt)
		accelExt := accel.Y * sign(s.Gravity)
		accelWeight := clamp(accelExt/math.Abs(s.Gravity), 0, 1)
		if math.IsNaN(accelWeight) || math.IsInf(accelWeight, 0) {
			accelWeight = 0
		}

		body.Initial = body.Position
		body.Position = body.Position.add(body.Velocity.scale(s.Dt)).add(vec3{0, s.Gravity, 0}.scale(accelWeight * s.Dt * s.Dt))
	}
}

// primalUpdate runs one Gauss-Seidel sweep over every dynamic body: for
// each, it assembles the 3x3 SPD system from the body's inertial target
// and every force currently acting on it, solves it, and applies the
// correction.
func (s *Solver) primalUpdate(alpha float64) {
	for body := s.bodies; body != nil; body = body.next {
		if body.Mass <= 0 {
			continue
		}

		m := diagonalMat3(body.Mass, body.Mass, body.Moment)
		invDt2 := 1 / (s.Dt * s.Dt)
		lhs := m.scale(invDt2)
		rhs := m.scale(invDt2).mulVec(body.Position.sub(body.Inertial))

		for f := body.forces; f != nil; f = nextForceOnBody(body, f) {
			f.ComputeConstraint(alpha)
			f.ComputeDerivatives(body)

			b := f.base()
			for i := 0; i < f.Rows(); i++ {
				lambda := 0.0
				if math.IsInf(b.Stiffness[i], 1) {
					lambda = b.Lambda[i]
				}

				force := clamp(b.Penalty[i]*b.C[i]+lambda, b.Fmin[i], b.Fmax[i])

				h := b.H[i]
				g := diagonalMat3(h.col(0).length(), h.col(1).length(), h.col(2).length()).scale(math.Abs(force))

				rhs = rhs.add(b.J[i].scale(force))
				lhs = lhs.add(outer3(b.J[i], b.J[i].scale(b.Penalty[i]))).add(g)
			}
		}

		body.Position = body.Position.sub(solveSPD3(lhs, rhs))
	}
}

// dualUpdate runs one sweep over every force, advancing each row's
// Lagrange multiplier, disabling the force if it has fractured, and
// ramping the penalty parameter for rows that haven't saturated against
// their bounds.
func (s *Solver) dualUpdate(alpha float64) {
	for f := s.forces; f != nil; f = f.base().next {
		f.ComputeConstraint(alpha)

		b := f.base()
		for i := 0; i < f.Rows(); i++ {
			lambda := 0.0
			if math.IsInf(b.Stiffness[i], 1) {
				lambda = b.Lambda[i]
			}

			b.Lambda[i] = clamp(b.Penalty[i]*b.C[i]+lambda, b.Fmin[i], b.Fmax[i])

			if math.Abs(b.Lambda[i]) >= b.Fracture[i] {
				f.Disable()
			}

			if b.Lambda[i] > b.Fmin[i] && b.Lambda[i] < b.Fmax[i] {
				b.Penalty[i] = math.Min(b.Penalty[i]+s.Beta*math.Abs(b.C[i]), math.Min(kappaMax, b.Stiffness[i]))
			}
		}
	}
}

// recoverVelocities runs BDF1 velocity recovery: the velocity that would
// have produced this step's net displacement exactly, saving the
// previous velocity first since predictBodies' adaptive warmstart needs
// it next step.
func (s *Solver) recoverVelocities() {
	for body := s.bodies; body != nil; body = body.next {
		body.PrevVelocity = body.Velocity
		if body.Mass > 0 {
			body.Velocity = body.Position.sub(body.Initial).div(s.Dt)
		}
	}
}
