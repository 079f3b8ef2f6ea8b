// Package chime assembles the windchime scene and keeps it in step with the
// physics world.
//
// Build creates the ground, hook, cone, tubes, clapper, sail and the two
// ropes, joins them with point-to-point constraints and rope anchors, and
// settles the assembly. Each frame Sync steps the world and copies rope
// nodes and rigid motion states into the render objects; Impulse is the
// single user input. Strikes between the clapper and a tube are reported
// through OnStrike, and Sample exposes a fixed set of channels for
// recording.
package chime
