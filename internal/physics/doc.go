// Package physics is a small position-based rigid and soft body engine.
//
// The package covers what a hanging-chime scene needs:
//
//   - [RigidBody]: boxes, cylinders, cones and compounds with mass and inertia
//   - [Point2PointConstraint]: ball joints between two bodies
//   - [SoftBody]: ropes made of nodes and links, anchored to rigid bodies
//   - [World]: fixed-step integration with a sub-step cap, contacts and sleeping
//   - [DebugDrawer]: line output for wireframes, bounds, joints and contacts
//
// # Stepping
//
// [World.StepSimulation] accumulates frame time and runs whole fixed steps:
//
//	world := physics.NewWorld()
//	world.SetGravity(mgl64.Vec3{0, -9.8, 0})
//	world.AddRigidBody(body)
//	for {
//	    world.StepSimulation(frameTime, 10)
//	}
//
// Each fixed step is split into substeps. A substep predicts positions,
// projects constraints, anchors, links and contacts for a number of solver
// iterations, then derives velocities from the corrected positions.
//
// # Thread Safety
//
// A World and everything added to it must be used from one goroutine.
// Independent worlds may run in parallel.
package physics
