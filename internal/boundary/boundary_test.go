package boundary_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/panelflutter/internal/boundary"
)

var _ = Describe("Table", func() {
	It("lists eleven codes", func() {
		Expect(boundary.Codes()).To(HaveLen(11))
		Expect(boundary.Names()).To(ContainElements("SSSS", "CCCC", "CFFF", "FFFF"))
	})

	It("returns positive factors for every code", func() {
		for _, c := range boundary.Codes() {
			s, f, _, err := boundary.FactorsFor(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(BeNumerically(">", 0), c.String())
			Expect(f).To(BeNumerically(">", 0), c.String())
		}
	})

	It("orders clamped above cantilever", func() {
		cccc, _, tc, err := boundary.FactorsFor(boundary.CCCC)
		Expect(err).NotTo(HaveOccurred())
		cfff, _, tf, err := boundary.FactorsFor(boundary.CFFF)
		Expect(err).NotTo(HaveOccurred())
		Expect(cccc).To(BeNumerically(">", cfff))
		Expect(tc).To(Equal(boundary.Low))
		Expect(tf).To(Equal(boundary.High))
	})

	It("rejects codes outside the table", func() {
		_, _, _, err := boundary.FactorsFor(boundary.Code(42))
		Expect(err).To(MatchError(boundary.ErrUnknownCode))

		_, err = boundary.Parse("SSCX")
		var ue *boundary.UnknownBoundaryConditionError
		Expect(err).To(BeAssignableToTypeOf(ue))
		Expect(err.Error()).To(ContainSubstring("SSCX"))
	})

	DescribeTable("parses codes case-insensitively",
		func(in string, want boundary.Code) {
			got, err := boundary.Parse(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("upper", "CSSS", boundary.CSSS),
		Entry("lower", "cfcc", boundary.CFCC),
		Entry("padded", " sfss ", boundary.SFSS),
	)

	DescribeTable("reports edges in leading, trailing, left, right order",
		func(c boundary.Code, want [4]boundary.Constraint) {
			got, err := boundary.Edges(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("SSSS", boundary.SSSS, [4]boundary.Constraint{boundary.Simple, boundary.Simple, boundary.Simple, boundary.Simple}),
		Entry("CFFF", boundary.CFFF, [4]boundary.Constraint{boundary.Clamped, boundary.Free, boundary.Free, boundary.Free}),
		Entry("SFSS", boundary.SFSS, [4]boundary.Constraint{boundary.Simple, boundary.Free, boundary.Simple, boundary.Simple}),
		Entry("CFCF frees the sides", boundary.CFCF, [4]boundary.Constraint{boundary.Clamped, boundary.Clamped, boundary.Free, boundary.Free}),
		Entry("SSSF frees the trailing edge", boundary.SSSF, [4]boundary.Constraint{boundary.Simple, boundary.Free, boundary.Simple, boundary.Simple}),
		Entry("CCCF frees the trailing edge", boundary.CCCF, [4]boundary.Constraint{boundary.Clamped, boundary.Free, boundary.Clamped, boundary.Clamped}),
		Entry("CFCC", boundary.CFCC, [4]boundary.Constraint{boundary.Clamped, boundary.Free, boundary.Clamped, boundary.Clamped}),
	)

	It("gives every constrained code at least one supported edge", func() {
		for _, c := range boundary.Codes() {
			if c == boundary.FFFF {
				continue
			}
			edges, err := boundary.Edges(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(edges).To(ContainElement(Not(Equal(boundary.Free))), c.String())
		}
	})

	It("describes the free edges it reports", func() {
		for _, c := range []boundary.Code{boundary.SSSF, boundary.CCCF} {
			e, err := boundary.Lookup(c)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Description).To(ContainSubstring("trailing edge free"))
		}
		e, _ := boundary.Lookup(boundary.CFCF)
		Expect(e.Description).To(ContainSubstring("free sides"))
	})

	It("round-trips through text", func() {
		for _, c := range boundary.Codes() {
			text, err := c.MarshalText()
			Expect(err).NotTo(HaveOccurred())
			var back boundary.Code
			Expect(back.UnmarshalText(text)).To(Succeed())
			Expect(back).To(Equal(c))
		}
	})
})

var _ = Describe("Advice", func() {
	It("recommends by purpose", func() {
		c, err := boundary.Recommend("wing_panel")
		Expect(err).NotTo(HaveOccurred())
		Expect(c).To(Equal(boundary.CSSS))

		_, err = boundary.Recommend("mystery")
		Expect(err).To(HaveOccurred())
	})

	It("warns about free-free panels", func() {
		notes, err := boundary.Advise(boundary.FFFF, 1.6)
		Expect(err).NotTo(HaveOccurred())
		Expect(notes).To(ContainElement(ContainSubstring("rigid-body")))
	})

	It("stays quiet for a supported low-tendency panel", func() {
		notes, err := boundary.Advise(boundary.CCCC, 1.6)
		Expect(err).NotTo(HaveOccurred())
		Expect(notes).To(BeEmpty())
	})
})
