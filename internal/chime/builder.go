package chime

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/debugdraw"
	"github.com/san-kum/chimesim/internal/logging"
	"github.com/san-kum/chimesim/internal/physics"
	"github.com/san-kum/chimesim/internal/scene"
)

// Fixed geometry of the windchime. Masses, tube layout and rope detail come
// from config.SceneConfig.
const (
	groundHeight  = 0.1
	groundSize    = 40
	hookSize      = 0.25
	hookY         = 8.85
	coneRadius    = 3.0
	coneHeight    = 1.0
	coneSegments  = 8
	coneY         = 10.1
	clapperRadius = 1.0
	clapperHeight = 0.1
	clapperY      = 7.0
	sailHeight    = 0.5
	sailThickness = 0.01
	sailY         = 3.5
	ropeStiffness = 10
	influence     = 1.0
)

var (
	hookPivotInCone = mgl64.Vec3{0, 10.6, 0}
	hookPivotInHook = mgl64.Vec3{0, 9.975, 0}
	rope1Start      = mgl64.Vec3{0, 3.25, 0}
	rope2Start      = mgl64.Vec3{0, 7 + 0.025, 0}
	rope1Length     = 4 - sailHeight*0.5 - clapperHeight*0.5
	rope2Length     = 4.1 - clapperHeight*0.5 - coneHeight*0.5
)

// Options configures Build. MaxSubSteps 0 makes every Sync a single
// variable step of dt.
type Options struct {
	Scene            config.SceneConfig
	Gravity          float64
	FixedTimeStep    float64
	SolverIterations int
	Substeps         int
	SettleIterations int
	SettleTime       float64
	MaxSubSteps      int
	ImpulseScale     float64

	// Debug allocates a debug line buffer and attaches it to the world.
	Debug     bool
	DebugMode physics.DebugMode

	Logger *logging.Logger
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultConfig())
}

// OptionsFromConfig copies the physics and scene settings of cfg. Unknown
// debug mode names are skipped; config validation reports them.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Scene:            cfg.Scene,
		Gravity:          cfg.Gravity,
		FixedTimeStep:    cfg.FixedTimeStep,
		SolverIterations: cfg.SolverIterations,
		Substeps:         cfg.Substeps,
		SettleIterations: cfg.SettleIterations,
		SettleTime:       cfg.SettleTime,
		MaxSubSteps:      cfg.MaxSubSteps,
		ImpulseScale:     cfg.ImpulseScale,
	}
	for _, name := range cfg.DebugMode {
		if m, ok := physics.ParseDebugMode(name); ok {
			opts.DebugMode |= m
		}
	}
	return opts
}

// Windchime is the assembled scene: every render object paired with its
// physics handle, plus the world that owns them.
type Windchime struct {
	World *physics.World
	Group *scene.Group

	Ground, Hook, Cone, Clapper, Sail *scene.Mesh
	Tubes                             []*scene.Mesh
	Ropes                             []*scene.Rope

	// Dynamic lists the rigid objects with mass, synced every frame.
	Dynamic []*scene.Mesh

	Debug      *debugdraw.Drawer
	DebugLines *scene.LineBuffer

	opts      Options
	log       *logging.Logger
	tubeIndex map[*physics.RigidBody]int
	frames    int
	strikes   int
	impulses  int
	onStrike  []func(Strike)
}

// Build assembles the windchime. Joints and anchors are created after both
// of their bodies exist.
func Build(opts Options) (*Windchime, error) {
	sc := opts.Scene
	if sc.TubeCount < 1 {
		return nil, fmt.Errorf("%w: tube count %d", config.ErrInvalid, sc.TubeCount)
	}
	if sc.RopeSegments < 1 {
		return nil, fmt.Errorf("%w: rope segments %d", config.ErrInvalid, sc.RopeSegments)
	}

	w := &Windchime{
		World:     physics.NewWorld(),
		Group:     scene.NewGroup(),
		opts:      opts,
		log:       opts.Logger.Named("chime"),
		tubeIndex: make(map[*physics.RigidBody]int),
	}
	w.World.SetFixedTimeStep(opts.FixedTimeStep)
	w.World.SetSolverIterations(opts.SolverIterations)
	w.World.SetSubsteps(opts.Substeps)
	g := mgl64.Vec3{0, opts.Gravity, 0}
	w.World.SetGravity(g)
	w.World.WorldInfo().Gravity = g

	if opts.Debug {
		w.Debug = debugdraw.NewBuffered(w.World, w.log)
		w.DebugLines = scene.NewLineBuffer(w.Debug.Vertices(), w.Debug.Colors())
		w.Debug.Enable()
		w.Debug.SetDebugMode(opts.DebugMode)
	}

	w.createObjects()
	w.World.OnContact(w.detectStrike)

	if opts.SettleIterations > 0 {
		w.World.Settle(opts.SettleIterations)
	}
	if opts.SettleTime > 0 {
		sagged := w.World.Relax(opts.SettleTime)
		w.log.Debug("relaxed under gravity", logging.Float64("sim_seconds", sagged))
	}
	w.syncMeshes()

	w.log.Info("windchime assembled",
		logging.Int("tubes", len(w.Tubes)),
		logging.Int("bodies", len(w.World.RigidBodies())),
		logging.Int("ropes", len(w.Ropes)),
	)
	return w, nil
}

// Options returns the options the chime was built with.
func (w *Windchime) Options() Options { return w.opts }

func (w *Windchime) createObjects() {
	sc := w.opts.Scene
	ident := mgl64.QuatIdent()

	w.Ground = w.createParallelepiped("ground", groundSize, groundHeight, groundSize, 0,
		mgl64.Vec3{0, -groundHeight / 2, 0}, ident, scene.Material{Color: scene.White, Shading: scene.Phong})
	w.Ground.CastShadow = true
	w.Ground.ReceiveShadow = true

	w.Hook = w.createParallelepiped("hook", hookSize, hookSize, hookSize, 0,
		mgl64.Vec3{0, hookY, 0}, ident, scene.Material{Color: scene.Magenta})

	w.Cone = scene.NewMesh("cone", scene.Cone(coneRadius, coneHeight, coneSegments),
		scene.Material{Color: scene.Yellow, DoubleSide: true})
	w.createRigidBody(w.Cone, physics.NewConeShape(coneRadius, coneHeight), sc.ConeMass, mgl64.Vec3{0, coneY, 0}, ident)
	w.World.AddConstraint(physics.NewPoint2PointConstraint(w.Cone.Body, w.Hook.Body, hookPivotInCone, hookPivotInHook), true)

	angleStep := 2 * math.Pi / float64(sc.TubeCount)
	for i := 1; i <= sc.TubeCount; i++ {
		angle := float64(i) * angleStep
		x := math.Cos(angle) * sc.HangingRadius
		z := math.Sin(angle) * sc.HangingRadius

		tube := scene.NewMesh(fmt.Sprintf("tube-%d", i-1), scene.Cylinder(sc.TubeRadius, sc.TubeLength, 8),
			scene.Material{Color: scene.Cyan})
		compound := physics.NewCompoundShape()
		compound.AddChildShape(physics.IdentityTransform(),
			physics.NewCylinderShape(mgl64.Vec3{sc.TubeRadius, sc.TubeLength / 2, sc.TubeRadius}))
		w.createRigidBody(tube, compound, sc.TubeMass, mgl64.Vec3{x, 0, z}, ident)

		pivotA := mgl64.Vec3{0, sc.TubeLength / 2, 0}
		pivotB := mgl64.Vec3{x, -coneHeight / 2, z}
		w.World.AddConstraint(physics.NewPoint2PointConstraint(tube.Body, w.Cone.Body, pivotA, pivotB), true)
		w.tubeIndex[tube.Body] = len(w.Tubes)
		w.Tubes = append(w.Tubes, tube)
	}

	w.Clapper = scene.NewMesh("clapper", scene.Cylinder(clapperRadius, clapperHeight, 16), scene.Material{Color: scene.Red})
	w.createRigidBody(w.Clapper, physics.NewCylinderShape(mgl64.Vec3{clapperRadius, clapperHeight / 2, clapperRadius}),
		sc.ClapperMass, mgl64.Vec3{0, clapperY, 0}, ident)

	w.Sail = scene.NewMesh("sail", scene.Plane(sailHeight, sailHeight),
		scene.Material{Color: scene.DarkGray, Shading: scene.Phong, DoubleSide: true})
	w.Sail.CastShadow = true
	w.Sail.ReceiveShadow = true
	sailShape := physics.NewBoxShape(mgl64.Vec3{sailHeight / 2, sailHeight / 2, sailThickness})
	sailShape.SetMargin(sc.Margin)
	w.createRigidBody(w.Sail, sailShape, sc.SailMass, mgl64.Vec3{0, sailY, 0}, ident)
	w.Sail.Body.SetFriction(sc.SailFriction)

	rope1 := w.createRope("rope-1", sc.RopeSegments, rope1Length, sc.Rope1Mass, rope1Start)
	rope2 := w.createRope("rope-2", sc.RopeSegments, rope2Length, sc.Rope2Mass, rope2Start)

	last := sc.RopeSegments
	rope1.Soft.AppendAnchorAt(0, w.Sail.Body, mgl64.Vec3{0, sailHeight / 2, 0}, true, influence)
	rope1.Soft.AppendAnchor(last, w.Clapper.Body, true, influence)
	rope2.Soft.AppendAnchor(0, w.Clapper.Body, true, influence)
	rope2.Soft.AppendAnchor(last, w.Cone.Body, true, influence)
}

func (w *Windchime) createParallelepiped(name string, sx, sy, sz, mass float64, pos mgl64.Vec3, quat mgl64.Quat, mat scene.Material) *scene.Mesh {
	mesh := scene.NewMesh(name, scene.Box(sx, sy, sz), mat)
	shape := physics.NewBoxShape(mgl64.Vec3{sx / 2, sy / 2, sz / 2})
	shape.SetMargin(w.opts.Scene.Margin)
	w.createRigidBody(mesh, shape, mass, pos, quat)
	return mesh
}

func (w *Windchime) createRigidBody(mesh *scene.Mesh, shape physics.Shape, mass float64, pos mgl64.Vec3, quat mgl64.Quat) {
	mesh.Position = pos
	mesh.Quaternion = quat

	ms := physics.NewDefaultMotionState(physics.NewTransform(pos, quat))
	info := physics.NewRigidBodyConstructionInfo(mass, ms, shape, shape.CalculateLocalInertia(mass))
	body := physics.NewRigidBody(info)
	mesh.Body = body
	w.Group.AddMesh(mesh)

	if mass > 0 {
		w.Dynamic = append(w.Dynamic, mesh)
		body.SetActivationState(physics.DisableDeactivation)
	}
	w.World.AddRigidBody(body)
}

func (w *Windchime) createRope(name string, segments int, length, mass float64, start mgl64.Vec3) *scene.Rope {
	rope := scene.NewRope(name, segments, length, start.X(), start.Y(), start.Z())
	w.Group.AddRope(rope)

	end := start.Add(mgl64.Vec3{0, length, 0})
	soft := physics.CreateRope(w.World.WorldInfo(), start, end, segments-1, 0)
	soft.Config.VIterations = ropeStiffness
	soft.Config.PIterations = ropeStiffness
	soft.SetTotalMass(mass, false)
	soft.SetMargin(w.opts.Scene.Margin * 3)
	w.World.AddSoftBody(soft, 1, -1)
	soft.SetActivationState(physics.DisableDeactivation)

	rope.Soft = soft
	w.Ropes = append(w.Ropes, rope)
	return rope
}
