package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

var _ = Describe("Lifecycle", func() {
	var (
		s *sim.Simulation
		w *sim.World
	)

	BeforeEach(func() {
		s = sim.New(sim.Config{Seed: 42})
		var err error
		w, err = s.AddWorld(sim.WorldOptions{Name: "main", Width: 400, Height: 300})
		Expect(err).NotTo(HaveOccurred())
	})

	Context("with a finite lifespan", func() {
		It("stays live for exactly lifespan steps", func() {
			e, err := s.Add("Item", w, nil, sim.WithLifespan(5))
			Expect(err).NotTo(HaveOccurred())

			for i := 1; i <= 5; i++ {
				Expect(s.Step()).To(Succeed())
				Expect(e.Live()).To(BeTrue(), "step %d", i)
				Expect(e.Life).To(Equal(i))
			}

			Expect(s.Step()).To(Succeed())
			Expect(e.Live()).To(BeFalse())
			Expect(s.Count()).To(BeZero())
			Expect(w.PoolSize("Item")).To(Equal(1))
		})

		It("honours a caller supplied starting life", func() {
			e, _ := s.Add("Item", w, nil, sim.WithLife(3), sim.WithLifespan(5))
			Expect(s.Step()).To(Succeed())
			Expect(s.Step()).To(Succeed())
			Expect(e.Live()).To(BeTrue())
			Expect(s.Step()).To(Succeed())
			Expect(e.Live()).To(BeFalse())
		})
	})

	Context("with lifespan -1", func() {
		It("never retires", func() {
			e, _ := s.Add("Item", w, nil)
			Expect(e.Lifespan).To(Equal(-1))
			for i := 0; i < 500; i++ {
				Expect(s.Step()).To(Succeed())
			}
			Expect(e.Live()).To(BeTrue())
			Expect(w.PoolSize("")).To(BeZero())
		})
	})

	Context("static entities", func() {
		It("skip integration but still age", func() {
			e, _ := s.Add("Item", w, nil,
				sim.WithStatic(true),
				sim.WithLocation(vector.New(20, 20)),
				sim.WithLifespan(2),
			)
			Expect(s.Step()).To(Succeed())
			Expect(e.Location).To(Equal(vector.New(20, 20)))
			Expect(e.Velocity.IsZero()).To(BeTrue())
			Expect(s.Step()).To(Succeed())
			Expect(s.Step()).To(Succeed())
			Expect(e.Live()).To(BeFalse())
		})
	})
})

var _ = Describe("Pooling", func() {
	var (
		s *sim.Simulation
		w *sim.World
	)

	BeforeEach(func() {
		reg := sim.NewRegistry()
		reg.MustRegister("Spark", func(e *sim.Entity, p sim.Params) {
			e.MaxSpeed = p.Get("max_speed", 3)
			e.Opacity = 0.8
		})
		s = sim.New(sim.Config{Registry: reg})
		w, _ = s.AddWorld(sim.WorldOptions{Width: 400, Height: 300})
	})

	It("reuses the slot with a new id and fresh fields", func() {
		first, err := s.Add("Spark", w, nil,
			sim.WithLocation(vector.New(10, 10)),
			sim.WithVelocity(vector.New(1, 1)),
			sim.WithAttr("charge", 4),
		)
		Expect(err).NotTo(HaveOccurred())
		first.Life = 99
		first.ZIndex = 7
		oldID, oldHandle := first.ID, first.Handle()

		Expect(s.Remove(first)).To(Succeed())
		Expect(w.PoolSize("Spark")).To(Equal(1))

		second, err := s.Add("Spark", w, sim.Params{"max_speed": 5}, sim.WithLocation(vector.New(30, 40)))
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(BeIdenticalTo(first))
		Expect(second.Handle().Index()).To(Equal(oldHandle.Index()))
		Expect(second.ID).NotTo(Equal(oldID))
		Expect(w.PoolSize("Spark")).To(BeZero())

		Expect(second.Location).To(Equal(vector.New(30, 40)))
		Expect(second.Velocity.IsZero()).To(BeTrue())
		Expect(second.Life).To(BeZero())
		Expect(second.ZIndex).To(BeZero())
		Expect(second.MaxSpeed).To(Equal(5.0))
		Expect(second.Opacity).To(Equal(0.8))
		Expect(second.Attrs).NotTo(HaveKey("charge"))
		Expect(second.Mass).To(Equal(sim.DefaultMass))
		Expect(second.World).To(BeIdenticalTo(w))
	})

	It("keeps pools partitioned by kind", func() {
		spark, _ := s.Add("Spark", w, nil)
		Expect(s.Remove(spark)).To(Succeed())

		item, _ := s.Add("Item", w, nil)
		Expect(item).NotTo(BeIdenticalTo(spark))
		Expect(w.PoolSize("Spark")).To(Equal(1))
	})

	It("keeps pools scoped to their world", func() {
		other, err := s.AddWorld(sim.WorldOptions{Name: "other", Width: 50, Height: 50})
		Expect(err).NotTo(HaveOccurred())

		spark, _ := s.Add("Spark", w, nil)
		Expect(s.Remove(spark)).To(Succeed())

		fresh, _ := s.Add("Spark", other, nil)
		Expect(fresh).NotTo(BeIdenticalTo(spark))
		Expect(w.PoolSize("Spark")).To(Equal(1))
		Expect(other.PoolSize("Spark")).To(BeZero())
	})

	It("retires entities during a step without skipping neighbours", func() {
		for i := 0; i < 6; i++ {
			lifespan := -1
			if i%2 == 0 {
				lifespan = 0
			}
			_, err := s.Add("Spark", w, nil, sim.WithLifespan(lifespan))
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(s.Step()).To(Succeed())
		Expect(s.Count()).To(Equal(3))
		Expect(w.PoolSize("Spark")).To(Equal(3))
		for _, e := range s.Live() {
			Expect(e.Lifespan).To(Equal(-1))
		}
	})
})
