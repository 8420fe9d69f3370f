package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Naming", func() {
	DescribeTable("valid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).NotTo(Panic())
		},
		Entry("single element", "Mesh"),
		Entry("indexed element", "Mesh.Router[3]"),
		Entry("multi-dimensional index", "Mesh.Router[1][2].InPort[0]"),
	)

	DescribeTable("invalid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).To(Panic())
		},
		Entry("empty", ""),
		Entry("underscore", "Router_0"),
		Entry("dash", "Router-0"),
		Entry("lower case", "router"),
		Entry("unpaired open bracket", "Router[0"),
		Entry("unpaired close bracket", "Router0]"),
		Entry("empty element", "Mesh..Router"),
		Entry("trailing dot", "Mesh.Router."),
	)

	It("should build names", func() {
		Expect(BuildName("", "Mesh")).To(Equal("Mesh"))
		Expect(BuildName("Mesh", "NI")).To(Equal("Mesh.NI"))
		Expect(BuildNameWithIndex("Mesh", "Router", 4)).
			To(Equal("Mesh.Router[4]"))
		Expect(BuildNameWithIndex("", "Router", 1, 2)).
			To(Equal("Router[1][2]"))
	})
})
