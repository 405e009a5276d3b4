package world_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/arena"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/engine"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/world"
)

var _ = Describe("World", func() {
	var (
		eng *fakeEngine
		w   *world.World
	)

	BeforeEach(func() {
		eng = newFakeEngine()
		w = world.New(eng, physics.InverseSquare())
	})

	Describe("Register", func() {
		It("places bodies by role, in insertion order", func() {
			a := w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource})
			b := w.Register(world.Body{ID: eng.at(1, 0), Role: dynamo.RoleReceiver})
			c := w.Register(world.Body{ID: eng.at(2, 0), Role: dynamo.RoleBoth})
			d := w.Register(world.Body{ID: eng.at(3, 0), Role: dynamo.RoleNone})

			Expect(w.Sources()).To(Equal([]world.Handle{a, c}))
			Expect(w.Receivers()).To(Equal([]world.Handle{b, c}))
			Expect(w.Len()).To(Equal(4))

			body, ok := w.Get(d)
			Expect(ok).To(BeTrue())
			Expect(body.Role).To(Equal(dynamo.RoleNone))
		})

		It("does not deduplicate", func() {
			id := eng.at(5, 5)
			h1 := w.Register(world.Body{ID: id, Role: dynamo.RoleReceiver})
			h2 := w.Register(world.Body{ID: id, Role: dynamo.RoleReceiver})

			Expect(h1).NotTo(Equal(h2))
			Expect(w.Receivers()).To(HaveLen(2))
		})
	})

	Describe("Step", func() {
		It("pulls a receiver toward a negative-strength source", func() {
			src := eng.at(0, 0)
			rcv := eng.at(100, 0)
			w.Register(world.Body{ID: src, Role: dynamo.RoleSource, Strength: -1000})
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			w.Step()

			f := eng.totalForce(rcv)
			dir, mag := f.Normalize()
			Expect(dir.X).To(BeNumerically("~", -1, 1e-12))
			Expect(dir.Y).To(BeNumerically("~", 0, 1e-12))
			Expect(mag).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("pushes a receiver away from a positive-strength source", func() {
			src := eng.at(0, 0)
			rcv := eng.at(0, -20)
			w.Register(world.Body{ID: src, Role: dynamo.RoleSource, Strength: 400})
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			w.Step()

			f := eng.totalForce(rcv)
			Expect(f.X).To(BeNumerically("~", 0, 1e-12))
			Expect(f.Y).To(BeNumerically("~", -1, 1e-12))
		})

		It("uses the default strength for sources without one", func() {
			w.SetDefaultStrength(-200)
			w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource})
			rcv := eng.at(10, 0)
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			w.Step()

			Expect(eng.totalForce(rcv).X).To(BeNumerically("~", -2, 1e-12))
		})

		It("quadruples force when the distance halves", func() {
			src := eng.at(0, 0)
			far := eng.at(0, 80)
			near := eng.at(40, 0)
			w.Register(world.Body{ID: src, Role: dynamo.RoleSource, Strength: -5000})
			w.Register(world.Body{ID: far, Role: dynamo.RoleReceiver})
			w.Register(world.Body{ID: near, Role: dynamo.RoleReceiver})

			w.Step()

			ratio := eng.totalForce(near).Len() / eng.totalForce(far).Len()
			Expect(ratio).To(BeNumerically("~", 4, 1e-9))
		})

		It("sums the forces of every source on every receiver", func() {
			s1 := eng.at(0, 0)
			s2 := eng.at(100, 100)
			w.Register(world.Body{ID: s1, Role: dynamo.RoleSource, Strength: -1000})
			w.Register(world.Body{ID: s2, Role: dynamo.RoleSource, Strength: -3000})

			receivers := []dynamo.BodyID{eng.at(50, 0), eng.at(0, 60), eng.at(-30, -40)}
			for _, r := range receivers {
				w.Register(world.Body{ID: r, Role: dynamo.RoleReceiver})
			}
			positions := map[dynamo.BodyID]dynamo.Vec2{}
			for _, r := range receivers {
				positions[r] = eng.pos[r]
			}

			law := physics.InverseSquare()
			w.Step()

			for _, r := range receivers {
				f1, _ := law.Force(dynamo.V(0, 0), positions[r], -1000)
				f2, _ := law.Force(dynamo.V(100, 100), positions[r], -3000)
				want := f1.Add(f2)

				got := eng.totalForce(r)
				Expect(got.X).To(BeNumerically("~", want.X, 1e-12))
				Expect(got.Y).To(BeNumerically("~", want.Y, 1e-12))
				Expect(got.Sub(f2).Len()).To(BeNumerically(">", 0), "only the last source survived")
			}
		})

		It("never applies a source's force to itself", func() {
			a := eng.at(0, 0)
			b := eng.at(10, 0)
			w.Register(world.Body{ID: a, Role: dynamo.RoleBoth, Strength: -100})
			w.Register(world.Body{ID: b, Role: dynamo.RoleBoth, Strength: -100})

			frame := w.Step()

			Expect(frame.Pairs).To(Equal(2))
			Expect(eng.totalForce(a).X).To(BeNumerically(">", 0))
			Expect(eng.totalForce(b).X).To(BeNumerically("<", 0))
		})

		It("applies no force when there are no sources", func() {
			rcv := eng.at(3, 4)
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})
			eng.ApplyImpulse(rcv, dynamo.V(1, 0))

			w.Step()

			Expect(eng.calls).To(BeEmpty())
			Expect(eng.vel[rcv]).To(Equal(dynamo.V(1, 0)))
			Expect(eng.pos[rcv].X).To(BeNumerically("~", 3.1, 1e-12))
			Expect(eng.steps).To(Equal(1))
		})

		It("leaves a coincident receiver finite and untouched", func() {
			src := eng.at(7, 7)
			rcv := eng.at(7, 7)
			w.Register(world.Body{ID: src, Role: dynamo.RoleSource, Strength: -1e9})
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			var frame world.Frame
			Expect(func() { frame = w.Step() }).NotTo(Panic())

			Expect(frame.Degenerate).To(Equal(1))
			Expect(eng.calls).To(BeEmpty())
			Expect(eng.vel[rcv]).To(Equal(dynamo.Vec2{}))
			Expect(eng.pos[rcv].IsFinite()).To(BeTrue())
			Expect(math.IsNaN(frame.Samples[0].Force.X)).To(BeFalse())
			Expect(w.Stats().DegeneratePairs).To(Equal(1))
		})

		It("integrates exactly once per call, after forces", func() {
			w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource, Strength: -100})
			rcv := eng.at(10, 0)
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			w.Step()

			Expect(eng.steps).To(Equal(1))
			// force -1 over dt 0.1 at unit mass
			Expect(eng.vel[rcv].X).To(BeNumerically("~", -0.1, 1e-12))
		})

		It("reads each body's position once before forces", func() {
			src := eng.at(0, 0)
			w.Register(world.Body{ID: src, Role: dynamo.RoleSource})
			w.Register(world.Body{ID: eng.at(0, 5), Role: dynamo.RoleReceiver})
			w.Register(world.Body{ID: eng.at(0, 9), Role: dynamo.RoleReceiver})
			w.Register(world.Body{ID: eng.at(0, -3), Role: dynamo.RoleSource})

			w.Step()

			Expect(eng.posReads[src]).To(Equal(1))
		})

		It("pushes post-step positions to receiver visuals", func() {
			w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource, Strength: -100})
			rcv := eng.at(10, 0)
			vis := &recordingVisual{}
			w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver, Visual: vis, Name: "bunny"})

			frame := w.Step()

			Expect(vis.updates).To(Equal(1))
			Expect(vis.pos).To(Equal(eng.pos[rcv]))
			Expect(frame.Samples).To(HaveLen(1))
			Expect(frame.Samples[0].Name).To(Equal("bunny"))
			Expect(frame.Samples[0].Position).To(Equal(eng.pos[rcv]))
		})

		It("notifies observers with each frame", func() {
			var steps []int
			w.AddObserver(world.ObserverFunc(func(f world.Frame) { steps = append(steps, f.Step) }))

			w.Step()
			w.Step()
			w.Step()

			Expect(steps).To(Equal([]int{0, 1, 2}))
			Expect(w.Stats().Steps).To(Equal(3))
		})
	})

	Describe("Remove", func() {
		It("stops applying force to removed receivers", func() {
			w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource})
			rcv := eng.at(10, 0)
			h := w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			Expect(w.Remove(h)).To(Succeed())
			w.Step()

			Expect(eng.calls).To(BeEmpty())
			Expect(w.Receivers()).To(BeEmpty())
		})

		It("rejects stale handles", func() {
			h := w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource})
			Expect(w.Remove(h)).To(Succeed())

			Expect(w.Remove(h)).To(MatchError(arena.ErrStaleHandle))
			_, ok := w.Get(h)
			Expect(ok).To(BeFalse())

			fresh := w.Register(world.Body{ID: eng.at(1, 1), Role: dynamo.RoleSource})
			Expect(fresh.Index()).To(Equal(h.Index()))
			Expect(w.Remove(h)).To(MatchError(arena.ErrStaleHandle))
			Expect(w.Sources()).To(Equal([]world.Handle{fresh}))
		})

		It("defers removals requested during a step", func() {
			w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource})
			rcv := eng.at(10, 0)
			h := w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

			var seen int
			w.AddObserver(world.ObserverFunc(func(f world.Frame) {
				seen = len(f.Samples)
				Expect(w.Remove(h)).To(Succeed())
				_, stillThere := w.Get(h)
				Expect(stillThere).To(BeTrue())
				Expect(w.Remove(h)).To(MatchError(arena.ErrStaleHandle))
			}))

			w.Step()

			Expect(seen).To(Equal(1))
			_, ok := w.Get(h)
			Expect(ok).To(BeFalse())
			Expect(w.Receivers()).To(BeEmpty())
		})

		It("drops registrations whose engine body was destroyed", func() {
			w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleSource})
			gone := eng.at(10, 0)
			h := w.Register(world.Body{ID: gone, Role: dynamo.RoleReceiver})
			kept := eng.at(0, 10)
			w.Register(world.Body{ID: kept, Role: dynamo.RoleReceiver})

			eng.DestroyBody(gone)
			frame := w.Step()

			Expect(frame.Dropped).To(Equal(1))
			Expect(frame.Samples).To(HaveLen(1))
			Expect(frame.Samples[0].ID).To(Equal(kept))
			_, ok := w.Get(h)
			Expect(ok).To(BeFalse())
			Expect(w.Stats().DroppedBodies).To(Equal(1))
		})
	})

	Describe("Close", func() {
		It("clears every registration", func() {
			h := w.Register(world.Body{ID: eng.at(0, 0), Role: dynamo.RoleBoth})
			w.Close()

			Expect(w.Len()).To(BeZero())
			Expect(w.Sources()).To(BeEmpty())
			_, ok := w.Get(h)
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("World on Box2D", func() {
	It("accelerates a receiver toward the source", func() {
		cfg := engine.DefaultConfig()
		cfg.PixelsPerMeter = 1
		eng := engine.NewBox2D(cfg)

		def := dynamo.BodyDef{Shape: dynamo.ShapeCuboid, HalfExtents: dynamo.V(0.5, 0.5), Density: 1}
		def.Kind = dynamo.Static
		src := eng.CreateBody(def)
		def.Kind = dynamo.Dynamic
		def.Position = dynamo.V(100, 0)
		rcv := eng.CreateBody(def)

		w := world.New(eng, physics.InverseSquare())
		w.Register(world.Body{ID: src, Role: dynamo.RoleSource, Strength: -60000})
		w.Register(world.Body{ID: rcv, Role: dynamo.RoleReceiver})

		w.Step()

		// F = 60000 / 100^2 = 6 on a unit mass for one 1/60 s step
		v, _ := eng.Velocity(rcv)
		Expect(v.X).To(BeNumerically("~", -0.1, 1e-9))
		Expect(v.Y).To(BeNumerically("~", 0, 1e-12))

		p, _ := eng.Position(src)
		Expect(p).To(Equal(dynamo.V(0, 0)))
	})
})
