// Command avbd-demo builds one of the library's seed scenes, steps it
// headlessly for a fixed duration, and prints a settled summary. It has
// no window, no GL context and no input handling: avbd is a headless
// library, and this is a thin smoke-test harness around it, not the
// sample application the core was extracted from.
package main

import (
	"flag"
	"fmt"
	"math"

	"github.com/gophysics/avbd2d"
	"github.com/setanarut/vec"
)

func main() {
	scene := flag.String("scene", "ground", "scene to run: ground, pyramid, rope")
	seconds := flag.Float64("seconds", 2.0, "how many seconds of simulation to run")
	flag.Parse()

	s := avbd.NewSolver()

	switch *scene {
	case "ground":
		sceneGround(s)
	case "pyramid":
		scenePyramid(s)
	case "rope":
		sceneRope(s)
	default:
		fmt.Printf("unknown scene %q\n", *scene)
		return
	}

	steps := int(*seconds / s.Dt)
	for i := 0; i < steps; i++ {
		s.Step()
	}

	n := 0
	s.ForEachBody(func(b *avbd.Body) { n++ })
	fmt.Printf("scene %q settled after %d steps (%.2fs), %d bodies\n", *scene, steps, *seconds, n)

	last := s.Bodies()
	for b := last; b != nil; b = b.Next() {
		fmt.Printf("  body pos=(%.3f, %.3f, %.3f) vel=(%.3f, %.3f, %.3f)\n",
			b.Position.X, b.Position.Y, b.Position.Z,
			b.Velocity.X, b.Velocity.Y, b.Velocity.Z)
	}
}

func sceneGround(s *avbd.Solver) {
	avbd.NewBody(s, vec.Vec2{X: 100, Y: 1}, 0, 0.5, avbd.NewVec3(0, 0, 0), avbd.NewVec3(0, 0, 0))
	avbd.NewBody(s, vec.Vec2{X: 1, Y: 1}, 1, 0.5, avbd.NewVec3(0, 5, 0), avbd.NewVec3(0, 0, 0))
}

func scenePyramid(s *avbd.Solver) {
	const size = 20
	avbd.NewBody(s, vec.Vec2{X: 100, Y: 0.5}, 0, 0.5, avbd.NewVec3(0, -2, 0), avbd.NewVec3(0, 0, 0))
	for y := 0; y < size; y++ {
		for x := 0; x < size-y; x++ {
			px := float64(x)*1.1 + float64(y)*0.5 - size/2.0
			py := float64(y) * 0.85
			avbd.NewBody(s, vec.Vec2{X: 1, Y: 0.5}, 1, 0.5, avbd.NewVec3(px, py, 0), avbd.NewVec3(0, 0, 0))
		}
	}
}

func sceneRope(s *avbd.Solver) {
	var prev *avbd.Body
	for i := 0; i < 20; i++ {
		density := 1.0
		if i == 0 {
			density = 0
		}
		curr := avbd.NewBody(s, vec.Vec2{X: 1, Y: 0.5}, density, 0.5, avbd.NewVec3(float64(i), 10, 0), avbd.NewVec3(0, 0, 0))
		if prev != nil {
			avbd.NewJoint(s, prev, curr, vec.Vec2{X: 0.5, Y: 0}, vec.Vec2{X: -0.5, Y: 0},
				avbd.NewVec3(math.Inf(1), math.Inf(1), 0), math.Inf(1))
		}
		prev = curr
	}
}
