package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blobsim/internal/compute"
	"github.com/san-kum/blobsim/internal/dynamo"
	"github.com/san-kum/blobsim/internal/physics"
	"github.com/san-kum/blobsim/internal/sim"
)

func settings(n int, radius float64, subSteps int) sim.Settings {
	s := sim.DefaultSettings()
	s.Vertices = n
	s.Radius = radius
	s.SubSteps = subSteps
	return s
}

func newSession(s sim.Settings, opts ...sim.Option) *sim.Session {
	sess, err := sim.NewSession(s, opts...)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(sess.Teardown)
	return sess
}

func circle(n int, radius float64) []r2.Vec {
	r, err := physics.NewRing(n, radius)
	Expect(err).NotTo(HaveOccurred())
	r.Reset()
	return r.Vertices()
}

func allFinite(vs []r2.Vec) bool { return dynamo.FirstNonFinite(vs) < 0 }

func convex(vs []r2.Vec) bool {
	n := len(vs)
	sign := 0.0
	for i := 0; i < n; i++ {
		a, b, c := vs[i], vs[(i+1)%n], vs[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if sign*cross < 0 {
			return false
		}
	}
	return true
}

type counter struct{ frames, resets int }

func (c *counter) OnFrame(r dynamo.FrameReport) {
	c.frames++
	if r.Reset {
		c.resets++
	}
}

var _ = Describe("Session", func() {
	Describe("construction", func() {
		It("rejects a single particle", func() {
			_, err := sim.NewSession(settings(1, 10, 40))
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects a non-positive radius", func() {
			_, err := sim.NewSession(settings(8, 0, 40))
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects zero sub-steps", func() {
			_, err := sim.NewSession(settings(8, 10, 0))
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("starts on the canonical circle with anchors at R", func() {
			s := newSession(settings(12, 25, 40))
			vs, err := s.Vertices()
			Expect(err).NotTo(HaveOccurred())
			for i, v := range vs {
				Expect(math.Hypot(v.X, v.Y)).To(BeNumerically("~", 25, 1e-9))
				angle := math.Atan2(v.Y, v.X)
				if angle < 0 {
					angle += 2 * math.Pi
				}
				Expect(angle).To(BeNumerically("~", 2*math.Pi*float64(i)/12, 1e-9))
			}
			anchors, err := s.Anchors()
			Expect(err).NotTo(HaveOccurred())
			Expect(anchors).To(HaveEach(25.0))
			Expect(s.State()).To(Equal(sim.Running))
		})
	})

	Describe("a four particle ring under gravity", func() {
		It("sags while staying a convex quadrilateral", func() {
			s := newSession(settings(4, 10, 40))
			Expect(s.SetGravity(0, 1)).To(Succeed())
			Expect(s.AdvanceFrame()).To(Succeed())

			vs, err := s.Vertices()
			Expect(err).NotTo(HaveOccurred())
			Expect(vs).To(HaveLen(4))
			Expect(allFinite(vs)).To(BeTrue())
			Expect(convex(vs)).To(BeTrue())

			c, err := s.Centroid()
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Y).To(BeNumerically(">", 0))
			Expect(c.Y).To(BeNumerically("<", 10))
			Expect(s.Resets()).To(BeZero())
		})
	})

	Describe("centroid", func() {
		It("is the mean of the returned vertices every frame", func() {
			s := newSession(settings(30, 40, 20))
			Expect(s.SetDrag(true, 80, -30)).To(Succeed())
			for f := 0; f < 30; f++ {
				if f == 15 {
					Expect(s.SetDrag(false, 0, 0)).To(Succeed())
					Expect(s.SetGravity(-1, 0.5)).To(Succeed())
				}
				Expect(s.AdvanceFrame()).To(Succeed())
				vs, _ := s.Vertices()
				c, _ := s.Centroid()
				mean := dynamo.Centroid(vs)
				Expect(c.X).To(BeNumerically("~", mean.X, 1e-9))
				Expect(c.Y).To(BeNumerically("~", mean.Y, 1e-9))

				snap, err := s.Snapshot()
				Expect(err).NotTo(HaveOccurred())
				Expect(snap.Frame).To(Equal(f))
				Expect(snap.Centroid.X).To(BeNumerically("~", mean.X, 1e-9))
			}
		})
	})

	Describe("drag anchors", func() {
		It("records distances on grab and restores R on release", func() {
			s := newSession(settings(8, 10, 10))
			Expect(s.SetDrag(true, 10, 0)).To(Succeed())
			Expect(s.SetDrag(true, 30, 0)).To(Succeed())
			Expect(s.AdvanceFrame()).To(Succeed())

			anchors, _ := s.Anchors()
			Expect(anchors[0]).To(BeNumerically("~", 20, 1e-9))
			Expect(anchors[4]).To(BeNumerically("~", 40, 1e-9))

			Expect(s.SetDrag(false, 0, 0)).To(Succeed())
			Expect(s.AdvanceFrame()).To(Succeed())
			anchors, _ = s.Anchors()
			Expect(anchors).To(HaveEach(10.0))
		})

		It("leaves anchors alone when releasing an inactive drag", func() {
			s := newSession(settings(8, 10, 10))
			before, _ := s.Anchors()
			for i := 0; i < 3; i++ {
				Expect(s.SetDrag(false, float64(i), 5)).To(Succeed())
				Expect(s.AdvanceFrame()).To(Succeed())
			}
			after, _ := s.Anchors()
			Expect(after).To(Equal(before))
		})

		It("keeps anchors for the whole drag", func() {
			s := newSession(settings(8, 10, 10))
			Expect(s.SetDrag(true, 15, 0)).To(Succeed())
			Expect(s.AdvanceFrame()).To(Succeed())
			first, _ := s.Anchors()
			Expect(first[0]).To(BeNumerically("~", 5, 1e-9))

			Expect(s.SetDrag(true, 200, 50)).To(Succeed())
			Expect(s.AdvanceFrame()).To(Succeed())
			second, _ := s.Anchors()
			Expect(second).To(Equal(first))
		})
	})

	Describe("stability", func() {
		It("resets to the circle when the drag target sits on a particle", func() {
			s := newSession(settings(8, 10, 20))
			var obs counter
			s.AddObserver(&obs)

			vs, _ := s.Vertices()
			Expect(s.SetDrag(true, vs[0].X, vs[0].Y)).To(Succeed())
			Expect(s.AdvanceFrame()).To(Succeed())

			Expect(s.Resets()).To(Equal(1))
			Expect(obs.resets).To(Equal(1))
			after, _ := s.Vertices()
			Expect(after).To(Equal(circle(8, 10)))

			snap, _ := s.Snapshot()
			Expect(snap.Reset).To(BeTrue())
			Expect(snap.Err).To(MatchError(dynamo.ErrDiverged))
			Expect(s.State()).To(Equal(sim.Running))
		})

		It("resets once while the pointer stays on a canonical position", func() {
			s := newSession(settings(8, 10, 20))
			vs, _ := s.Vertices()
			Expect(s.SetDrag(true, vs[0].X, vs[0].Y)).To(Succeed())
			for i := 0; i < 10; i++ {
				Expect(s.AdvanceFrame()).To(Succeed())
			}

			Expect(s.Resets()).To(Equal(1))
			snap, _ := s.Snapshot()
			Expect(snap.Reset).To(BeFalse())
			Expect(snap.Vertices).NotTo(Equal(circle(8, 10)))
		})

		It("never exposes a non-finite vertex under random input", func() {
			s := newSession(settings(20, 30, 20))
			rng := rand.New(rand.NewSource(42))
			vs, _ := s.Vertices()

			for f := 0; f < 200; f++ {
				switch rng.Intn(5) {
				case 0:
					Expect(s.SetGravity(rng.NormFloat64()*5, rng.NormFloat64()*5)).To(Succeed())
				case 1:
					Expect(s.SetDrag(true, rng.Float64()*400-200, rng.Float64()*400-200)).To(Succeed())
				case 2:
					p := vs[rng.Intn(len(vs))]
					Expect(s.SetDrag(true, p.X, p.Y)).To(Succeed())
				case 3:
					Expect(s.SetDrag(false, 0, 0)).To(Succeed())
				case 4:
					Expect(s.SetDirectionalInput(rng.Intn(2) == 0, rng.Intn(2) == 0, rng.Intn(2) == 0, false)).To(Succeed())
				}
				Expect(s.AdvanceFrame()).To(Succeed())
				vs, _ = s.Vertices()
				Expect(allFinite(vs)).To(BeTrue(), "frame %d", f)
				c, _ := s.Centroid()
				Expect(dynamo.Finite(c)).To(BeTrue())
			}
		})
	})

	Describe("determinism", func() {
		script := func(s *sim.Session) [][]r2.Vec {
			var frames [][]r2.Vec
			for f := 0; f < 60; f++ {
				switch f {
				case 5:
					Expect(s.SetDrag(true, 120, -40)).To(Succeed())
				case 20:
					Expect(s.SetDrag(false, 0, 0)).To(Succeed())
				case 25:
					Expect(s.SetGravity(0.7, -0.3)).To(Succeed())
				case 40:
					Expect(s.SetDirectionalInput(true, false, true, false)).To(Succeed())
				}
				Expect(s.AdvanceFrame()).To(Succeed())
				vs, _ := s.Vertices()
				frames = append(frames, vs)
			}
			return frames
		}

		It("replays bit for bit", func() {
			a := script(newSession(settings(50, 40, 40)))
			b := script(newSession(settings(50, 40, 40)))
			Expect(a).To(Equal(b))
		})

		It("does not depend on the pressure worker count", func() {
			serial := script(newSession(settings(50, 40, 40), sim.WithBackend(compute.NewCPUBackend(1, 0))))
			parallel := script(newSession(settings(50, 40, 40), sim.WithBackend(compute.NewCPUBackend(6, 8))))
			Expect(parallel).To(Equal(serial))
		})
	})

	Describe("keyboard nudge", func() {
		It("moves the body toward the pressed direction", func() {
			s := newSession(settings(24, 20, 20))
			Expect(s.SetGravity(0, 0)).To(Succeed())
			Expect(s.SetDirectionalInput(false, true, false, false)).To(Succeed())
			for i := 0; i < 30; i++ {
				Expect(s.AdvanceFrame()).To(Succeed())
			}
			c, _ := s.Centroid()
			Expect(c.X).To(BeNumerically(">", 0))
		})
	})

	Describe("pause", func() {
		It("ignores AdvanceFrame but honours Step", func() {
			s := newSession(settings(8, 10, 10))
			s.SetPaused(true)
			Expect(s.AdvanceFrame()).To(Succeed())
			Expect(s.Frame()).To(Equal(0))
			Expect(s.Step()).To(Succeed())
			Expect(s.Frame()).To(Equal(1))
			s.SetPaused(false)
			Expect(s.AdvanceFrame()).To(Succeed())
			Expect(s.Frame()).To(Equal(2))
		})
	})

	Describe("sub-step count", func() {
		It("does not change how far the body falls per frame", func() {
			drop := func(subSteps int) float64 {
				s := newSession(settings(16, 100, subSteps))
				for i := 0; i < 30; i++ {
					Expect(s.AdvanceFrame()).To(Succeed())
				}
				c, err := s.Centroid()
				Expect(err).NotTo(HaveOccurred())
				return c.Y
			}

			coarse, fine := drop(20), drop(2000)
			Expect(fine).To(BeNumerically(">", 10))
			Expect(coarse).To(BeNumerically("~", fine, 0.02*fine))
		})
	})

	Describe("tuning", func() {
		It("applies a known param and rejects unknown or invalid ones", func() {
			s := newSession(settings(8, 10, 10))
			Expect(s.SetParam("tension", 0.07)).To(Succeed())
			Expect(s.Params().Tension).To(Equal(0.07))

			Expect(s.SetParam("stiffness", 1)).To(MatchError(dynamo.ErrUnknown))
			Expect(s.SetParam("bounce", -1)).NotTo(Succeed())
			Expect(s.Params().Bounce).To(Equal(physics.DefaultBounce))
		})
	})

	Describe("teardown", func() {
		It("fails cleanly afterwards and is idempotent", func() {
			s, err := sim.NewSession(settings(8, 10, 10))
			Expect(err).NotTo(HaveOccurred())
			s.Teardown()
			s.Teardown()

			_, err = s.Vertices()
			Expect(err).To(MatchError(dynamo.ErrTornDown))
			_, err = s.Centroid()
			Expect(err).To(MatchError(dynamo.ErrTornDown))
			_, err = s.Snapshot()
			Expect(err).To(MatchError(dynamo.ErrTornDown))
			Expect(s.AdvanceFrame()).To(MatchError(dynamo.ErrTornDown))
			Expect(s.Step()).To(MatchError(dynamo.ErrTornDown))
			Expect(s.SetGravity(0, 1)).To(MatchError(dynamo.ErrTornDown))
			Expect(s.SetDrag(true, 0, 0)).To(MatchError(dynamo.ErrTornDown))
			Expect(s.SetDirectionalInput(true, false, false, false)).To(MatchError(dynamo.ErrTornDown))
			Expect(s.Reset()).To(MatchError(dynamo.ErrTornDown))
		})
	})

	Describe("headless runs", func() {
		It("collects a centroid trace", func() {
			s := newSession(settings(16, 20, 10))
			res, err := sim.Run(context.Background(), s, sim.RunConfig{
				Frames: 25,
				Drive: func(s *sim.Session, frame int) error {
					if frame == 10 {
						return s.SetGravity(1, 0)
					}
					return nil
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(Equal(25))
			Expect(res.Centroids).To(HaveLen(25))
			Expect(res.Final).To(HaveLen(16))
			Expect(res.Resets).To(BeZero())
		})

		It("stops when the context is cancelled", func() {
			s := newSession(settings(8, 10, 10))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := sim.Run(ctx, s, sim.RunConfig{Frames: 10})
			Expect(err).To(MatchError(context.Canceled))
		})

		It("runs an ensemble of independent sessions", func() {
			e := sim.NewEnsemble(settings(12, 15, 10), 4, 1)
			results, err := e.Run(context.Background(), 20, func(seed int64) sim.Driver {
				return func(s *sim.Session, frame int) error {
					return s.SetGravity(float64(seed), 1)
				}
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(4))
			Expect(results[3].Centroids[19].X).To(BeNumerically(">", results[0].Centroids[19].X))
		})
	})
})
