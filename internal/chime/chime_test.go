package chime

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chimesim/internal/config"
	"github.com/san-kum/chimesim/internal/physics"
)

var _ = Describe("Build", func() {
	var w *Windchime

	BeforeEach(func() {
		var err error
		w, err = Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates every body, joint and rope", func() {
		Expect(w.World.RigidBodies()).To(HaveLen(13))
		Expect(w.World.Constraints()).To(HaveLen(9))
		Expect(w.World.SoftBodies()).To(HaveLen(2))
		Expect(w.Tubes).To(HaveLen(8))
		Expect(w.Dynamic).To(HaveLen(11))
		Expect(w.Group.Meshes).To(HaveLen(13))
	})

	It("keeps the ground and hook static", func() {
		Expect(w.Ground.Body.IsStatic()).To(BeTrue())
		Expect(w.Hook.Body.IsStatic()).To(BeTrue())
		Expect(w.Ground.Body.Position()).To(Equal(mgl64.Vec3{0, -0.05, 0}))
	})

	It("disables deactivation on every dynamic body", func() {
		for _, m := range w.Dynamic {
			Expect(m.Body.ActivationState()).To(Equal(physics.DisableDeactivation), m.Name)
		}
		for _, r := range w.Ropes {
			Expect(r.Soft.ActivationState()).To(Equal(physics.DisableDeactivation), r.Name)
		}
	})

	It("gives each rope one node per vertex and two anchors", func() {
		for _, r := range w.Ropes {
			Expect(r.Soft.Nodes).To(HaveLen(7))
			Expect(r.NumVertices()).To(Equal(7))
			Expect(r.Soft.Anchors).To(HaveLen(2))
			Expect(r.Soft.Margin()).To(BeNumerically("~", 0.15, 1e-9))
		}
		rope1, rope2 := w.Ropes[0].Soft, w.Ropes[1].Soft
		Expect(rope1.Anchors[0].Body).To(BeIdenticalTo(w.Sail.Body))
		Expect(rope1.Anchors[0].LocalPivot).To(Equal(mgl64.Vec3{0, 0.25, 0}))
		Expect(rope1.Anchors[1].Node).To(Equal(6))
		Expect(rope1.Anchors[1].Body).To(BeIdenticalTo(w.Clapper.Body))
		Expect(rope2.Anchors[0].Body).To(BeIdenticalTo(w.Clapper.Body))
		Expect(rope2.Anchors[1].Body).To(BeIdenticalTo(w.Cone.Body))
	})

	It("sets the rope masses", func() {
		Expect(w.Ropes[0].Soft.TotalMass()).To(BeNumerically("~", 4, 1e-9))
		Expect(w.Ropes[1].Soft.TotalMass()).To(BeNumerically("~", 8, 1e-9))
	})

	It("settles the joints closed and at rest", func() {
		for _, c := range w.World.Constraints() {
			p2p := c.(*physics.Point2PointConstraint)
			Expect(p2p.Error()).To(BeNumerically("<", 0.05))
		}
		for _, m := range w.Dynamic {
			Expect(m.Body.LinearVelocity().Len()).To(BeZero())
		}
	})

	It("rejects a chime without tubes", func() {
		opts := DefaultOptions()
		opts.Scene.TubeCount = 0
		_, err := Build(opts)
		Expect(err).To(MatchError(config.ErrInvalid))
	})

	It("honors the configured tube count", func() {
		opts := DefaultOptions()
		opts.Scene.TubeCount = 5
		w, err := Build(opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Tubes).To(HaveLen(5))
		Expect(w.World.Constraints()).To(HaveLen(6))
	})
})

var _ = Describe("Sync", func() {
	var w *Windchime

	BeforeEach(func() {
		var err error
		w, err = Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
	})

	It("copies motion states into meshes", func() {
		for i := 0; i < 30; i++ {
			w.Sync(1.0 / 60.0)
		}
		for _, m := range w.Dynamic {
			t := m.Body.MotionState().WorldTransform()
			Expect(m.Position).To(Equal(t.Origin), m.Name)
			Expect(m.Quaternion).To(Equal(t.Rotation), m.Name)
		}
	})

	It("copies rope nodes into vertices", func() {
		w.Sync(1.0 / 60.0)
		for _, r := range w.Ropes {
			Expect(r.NeedsUpdate).To(BeTrue())
			for k, n := range r.Soft.Nodes {
				x, y, z := r.Vertex(k)
				Expect(x).To(Equal(float32(n.X.X())))
				Expect(y).To(Equal(float32(n.X.Y())))
				Expect(z).To(Equal(float32(n.X.Z())))
			}
		}
	})

	It("skips meshes without a motion state", func() {
		w.Sail.Body.SetMotionState(nil)
		before := w.Sail.Position
		w.Sync(1.0 / 60.0)
		Expect(w.Sail.Position).To(Equal(before))
	})

	It("runs one variable step when max sub-steps is zero", func() {
		opts := DefaultOptions()
		opts.MaxSubSteps = 0
		w, err := Build(opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Options().MaxSubSteps).To(BeZero())

		Expect(w.Sync(0.005)).To(Equal(1))
		Expect(w.Time()).To(BeNumerically("~", 0.005, 1e-12))
		Expect(w.Sync(0.02)).To(Equal(1))
		Expect(w.Time()).To(BeNumerically("~", 0.025, 1e-12))
	})

	It("reports the step count of the elapsed time", func() {
		Expect(w.Sync(1.0 / 30.0)).To(Equal(2))
		Expect(w.Sync(0.5)).To(Equal(30))
		Expect(w.Frames()).To(Equal(2))
	})

	It("stays finite and hanging", func() {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 240; i++ {
			if i%60 == 0 {
				w.Impulse(rng)
			}
			w.Sync(1.0 / 60.0)
		}
		for _, v := range w.Sample() {
			Expect(math.IsNaN(v) || math.IsInf(v, 0)).To(BeFalse())
		}
		Expect(w.Cone.Body.Position().Y()).To(BeNumerically(">", 5))
		Expect(w.Sail.Body.Position().Y()).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Idle", func() {
	It("hangs still without impulses", func() {
		w, err := Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		sailY := w.Sail.Body.Position().Y()
		clapperY := w.Clapper.Body.Position().Y()
		Expect(sailY).To(BeNumerically(">", w.Sail.Geometry.Size.Y()/2))

		for i := 0; i < 600; i++ {
			w.Sync(1.0 / 60.0)
		}

		Expect(w.Strikes()).To(BeZero())
		Expect(w.Sail.Body.Position().Y()).To(BeNumerically("~", sailY, 0.2))
		Expect(w.Clapper.Body.Position().Y()).To(BeNumerically("~", clapperY, 0.2))
		Expect(w.KineticEnergy()).To(BeNumerically("<", 0.5))
	})
})

var _ = Describe("Debug overlay", func() {
	It("draws the previous frame's lines", func() {
		opts := DefaultOptions()
		opts.Debug = true
		opts.DebugMode = physics.DrawWireframe
		w, err := Build(opts)
		Expect(err).NotTo(HaveOccurred())

		w.Sync(1.0 / 60.0)
		Expect(w.DebugLines.DrawCount).To(BeZero())
		Expect(w.DebugLines.PositionNeedsUpdate).To(BeFalse())
		written := w.Debug.Index
		Expect(written).To(BeNumerically(">", 0))

		w.Sync(1.0 / 60.0)
		Expect(w.DebugLines.DrawCount).To(Equal(written))
		Expect(w.DebugLines.PositionNeedsUpdate).To(BeTrue())
		Expect(w.DebugLines.ColorNeedsUpdate).To(BeTrue())
	})

	It("writes nothing with NoDebug", func() {
		opts := DefaultOptions()
		opts.Debug = true
		w, err := Build(opts)
		Expect(err).NotTo(HaveOccurred())
		w.Sync(1.0 / 60.0)
		w.Sync(1.0 / 60.0)
		Expect(w.Debug.Index).To(BeZero())
		Expect(w.DebugLines.DrawCount).To(BeZero())
	})
})

var _ = Describe("Impulse", func() {
	It("stays within the scale and moves the sail", func() {
		w, err := Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(7))

		for i := 0; i < 50; i++ {
			before := w.Sail.Body.LinearVelocity()
			imp := w.Impulse(rng)
			for j := 0; j < 3; j++ {
				Expect(imp[j]).To(BeNumerically(">=", -4))
				Expect(imp[j]).To(BeNumerically("<", 4))
			}
			dv := w.Sail.Body.LinearVelocity().Sub(before)
			Expect(dv.Sub(imp.Mul(w.Sail.Body.InvMass())).Len()).To(BeNumerically("<", 1e-9))
		}
		Expect(w.Impulses()).To(Equal(50))
	})
})

var _ = Describe("Strikes", func() {
	It("counts clapper-tube contacts only", func() {
		w, err := Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		var got []Strike
		w.OnStrike(func(s Strike) { got = append(got, s) })

		w.detectStrike(physics.ContactEvent{A: w.Tubes[3].Body, B: w.Clapper.Body, Speed: 1.5, Time: 2})
		w.detectStrike(physics.ContactEvent{A: w.Clapper.Body, B: w.Sail.Body})
		w.detectStrike(physics.ContactEvent{A: w.Tubes[0].Body, B: w.Tubes[1].Body})

		Expect(got).To(HaveLen(1))
		Expect(got[0].Tube).To(Equal(3))
		Expect(got[0].Speed).To(Equal(1.5))
		Expect(w.Strikes()).To(Equal(1))
		Expect(w.Sample()[StrikeCount]).To(Equal(1.0))
	})
})

var _ = Describe("Simulated strikes", func() {
	It("reports clapper-tube contacts from the world", func() {
		w, err := Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		var got []Strike
		w.OnStrike(func(s Strike) { got = append(got, s) })

		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 3600; i++ {
			if i%30 == 0 {
				w.Impulse(rng)
			}
			w.Sync(1.0 / 60.0)
		}

		Expect(got).NotTo(BeEmpty())
		Expect(w.Strikes()).To(Equal(len(got)))
		for _, s := range got {
			Expect(s.Tube).To(BeNumerically(">=", 0))
			Expect(s.Tube).To(BeNumerically("<", len(w.Tubes)))
			Expect(s.Speed).To(BeNumerically(">=", 0))
			Expect(s.Time).To(BeNumerically("<=", w.Time()))
		}
	})
})

var _ = Describe("Channels", func() {
	It("names every sampled value", func() {
		Expect(Channels()).To(HaveLen(NumChannels))
		i, ok := ChannelIndex("tube_swing")
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(TubeSwing))
		_, ok = ChannelIndex("nope")
		Expect(ok).To(BeFalse())
	})

	It("starts near rest", func() {
		w, err := Build(DefaultOptions())
		Expect(err).NotTo(HaveOccurred())
		s := w.Sample()
		Expect(s[KineticEnergy]).To(BeZero())
		Expect(s[SailY]).To(BeNumerically(">", 0))
	})
})
