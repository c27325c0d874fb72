package selector_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/panelflutter/internal/aero"
	"github.com/san-kum/panelflutter/internal/boundary"
	"github.com/san-kum/panelflutter/internal/flutter"
	"github.com/san-kum/panelflutter/internal/modal"
	"github.com/san-kum/panelflutter/internal/selector"
)

func flowAt(mach float64) aero.FlowCondition {
	return aero.FlowCondition{Mach: mach, Altitude: 0, VelocityMin: 50, VelocityMax: 300, Points: 10}
}

var _ = Describe("Choose", func() {
	var s *selector.Selector

	BeforeEach(func() {
		s = selector.New(nil)
	})

	DescribeTable("applies the Mach rule",
		func(mach float64, want selector.Method) {
			sel, err := s.Choose(flowAt(mach), boundary.SSSS, selector.Auto)
			Expect(err).NotTo(HaveOccurred())
			Expect(sel.Method).To(Equal(want))
			Expect(sel.Backend.Name()).To(Equal(want.String()))
			Expect(sel.Overridden).To(BeFalse())
			Expect(sel.Warning).To(BeEmpty())
		},
		Entry("low subsonic", 0.3, selector.DoubletLattice),
		Entry("high subsonic", 0.8, selector.DoubletLattice),
		Entry("at the boundary", 1.2, selector.Piston),
		Entry("supersonic", 2.0, selector.Piston),
	)

	It("lets an override win with a warning", func() {
		sel, err := s.Choose(flowAt(2.0), boundary.SSSS, selector.DoubletLattice)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Method).To(Equal(selector.DoubletLattice))
		Expect(sel.Overridden).To(BeTrue())
		Expect(sel.Warning).To(ContainSubstring("piston"))
	})

	It("stays quiet when the override agrees with the regime", func() {
		sel, err := s.Choose(flowAt(2.0), boundary.SSSS, selector.Piston)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Overridden).To(BeTrue())
		Expect(sel.Warning).To(BeEmpty())
	})

	It("shares backend instances between selections", func() {
		a, err := s.Choose(flowAt(0.7), boundary.SSSS, selector.Auto)
		Expect(err).NotTo(HaveOccurred())
		b, err := s.Choose(flowAt(0.5), boundary.CCCC, selector.Auto)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Backend).To(BeIdenticalTo(b.Backend))
	})

	It("passes boundary advisories through", func() {
		sel, err := s.Choose(flowAt(0.7), boundary.CFFF, selector.Auto)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Notes).NotTo(BeEmpty())
	})

	It("rejects unknown boundary codes", func() {
		_, err := s.Choose(flowAt(0.7), boundary.Code(77), selector.Auto)
		Expect(err).To(MatchError(boundary.ErrUnknownCode))
	})

	It("reports a missing external backend", func() {
		_, err := s.Choose(flowAt(0.7), boundary.SSSS, selector.External)
		Expect(err).To(MatchError(selector.ErrNoBackend))
	})

	It("uses a configured external backend", func() {
		f := selector.NewBuiltin()
		f.External = aero.NewExternal(aero.RunnerFunc(func(ctx context.Context, req aero.Request) (aero.Response, error) {
			return aero.Response{}, nil
		}))
		sel, err := selector.New(f).Choose(flowAt(0.7), boundary.SSSS, selector.External)
		Expect(err).NotTo(HaveOccurred())
		Expect(sel.Backend).To(BeIdenticalTo(f.External))
		Expect(sel.Warning).To(BeEmpty())
	})
})

var _ = Describe("ParseMethod", func() {
	It("round-trips names and aliases", func() {
		for _, m := range []selector.Method{selector.Auto, selector.Piston, selector.DoubletLattice, selector.External} {
			got, err := selector.ParseMethod(m.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(m))
		}
		got, err := selector.ParseMethod(" Doublet_Lattice ")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(selector.DoubletLattice))
	})

	It("rejects unknown names", func() {
		_, err := selector.ParseMethod("vortex")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Recommend", func() {
	s := selector.New(nil)

	It("prefers the doublet lattice for a thin subsonic panel", func() {
		rec, err := s.Recommend(flowAt(0.7), modal.Geometry{Length: 500, Width: 300, Nx: 1, Ny: 1}, 2, selector.Priorities{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Method).To(Equal(selector.DoubletLattice))
		Expect(rec.Confidence).To(BeNumerically("~", 0.8, 1e-9))
		Expect(rec.Reasons).NotTo(BeEmpty())
	})

	It("prefers piston theory for a long supersonic panel", func() {
		rec, err := s.Recommend(flowAt(2.0), modal.Geometry{Length: 600, Width: 150, Nx: 1, Ny: 1}, 1, selector.Priorities{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Method).To(Equal(selector.Piston))
		Expect(rec.Confidence).To(BeNumerically("<=", 1))
		Expect(rec.Alternatives).NotTo(ContainElement(selector.DoubletLattice))
	})

	It("never recommends a backend outside its Mach range", func() {
		rec, err := s.Recommend(flowAt(0.5), modal.Geometry{Length: 900, Width: 200, Nx: 1, Ny: 1}, 1, selector.Priorities{Speed: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Method).To(Equal(selector.DoubletLattice))
	})

	It("rejects invalid geometry", func() {
		_, err := s.Recommend(flowAt(0.5), modal.Geometry{}, 1, selector.Priorities{})
		Expect(err).To(MatchError(modal.ErrInvalidGeometry))
	})
})

var _ = Describe("Compare", func() {
	found := func(v float64) *flutter.Result {
		return &flutter.Result{Status: flutter.Found, Velocity: v, Frequency: v / 2}
	}

	DescribeTable("classes agreement",
		func(a, b float64, want selector.Confidence) {
			c, err := selector.Compare(map[selector.Method]*flutter.Result{
				selector.Piston:         found(a),
				selector.DoubletLattice: found(b),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Confidence).To(Equal(want))
		},
		Entry("within 5%", 100.0, 104.0, selector.High),
		Entry("within 15%", 100.0, 120.0, selector.Medium),
		Entry("within 30%", 100.0, 150.0, selector.Low),
		Entry("beyond", 100.0, 200.0, selector.VeryLow),
	)

	It("names the most conservative method", func() {
		c, err := selector.Compare(map[selector.Method]*flutter.Result{
			selector.Piston:         found(180),
			selector.DoubletLattice: found(150),
			selector.External:       found(165),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Conservative).To(Equal(selector.DoubletLattice))
		Expect(c.Mean).To(BeNumerically("~", 165, 1e-9))
		Expect(c.Entries).To(HaveLen(3))
	})

	It("needs two methods with flutter", func() {
		c, err := selector.Compare(map[selector.Method]*flutter.Result{
			selector.Piston:         found(180),
			selector.DoubletLattice: {Status: flutter.NoFlutter},
		})
		Expect(err).To(MatchError(selector.ErrTooFewResults))
		Expect(c.Excluded).To(ConsistOf(selector.DoubletLattice))
	})
})
