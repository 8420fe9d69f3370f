package routing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hansikaweerasena/gem5-multi/noc/messaging"
)

func routeTo(destNI, destRouter int) messaging.RouteInfo {
	return messaging.RouteInfo{DestNI: destNI, DestRouter: destRouter}
}

var _ = Describe("StaticTable", func() {
	var t *StaticTable

	BeforeEach(func() {
		t = NewTable(1)
		t.DefineLocalRoute(4, 0)
		t.DefineLocalRoute(5, 1)
		t.DefineRoute(2, 3)
	})

	It("should route to local network interfaces", func() {
		Expect(t.FindPort(routeTo(4, 1))).To(Equal(0))
		Expect(t.FindPort(routeTo(5, 1))).To(Equal(1))
	})

	It("should route to other routers", func() {
		Expect(t.FindPort(routeTo(9, 2))).To(Equal(3))
	})

	It("should use the default route", func() {
		Expect(func() { t.FindPort(routeTo(9, 7)) }).To(Panic())

		t.DefineDefaultRoute(2)

		Expect(t.FindPort(routeTo(9, 7))).To(Equal(2))
	})

	It("should panic on an unknown local interface", func() {
		Expect(func() { t.FindPort(routeTo(6, 1)) }).To(Panic())
	})
})

var _ = Describe("MeshTable", func() {
	var t *MeshTable

	BeforeEach(func() {
		// Router 4 is the center of a 3x3 mesh.
		t = NewMeshTable(4, 3)
		t.DefineLocalRoute(4, 0)
		t.DefineDirection(East, 1)
		t.DefineDirection(West, 2)
		t.DefineDirection(North, 3)
		t.DefineDirection(South, 4)
	})

	DescribeTable("dimension order routing",
		func(destRouter, port int) {
			Expect(t.FindPort(routeTo(destRouter, destRouter))).To(Equal(port))
		},
		Entry("local", 4, 0),
		Entry("east", 5, 1),
		Entry("west", 3, 2),
		Entry("north", 1, 3),
		Entry("south", 7, 4),
		Entry("x before y to the north east", 2, 1),
		Entry("x before y to the south west", 6, 2),
	)

	It("should panic when a direction is missing", func() {
		corner := NewMeshTable(0, 3)

		Expect(func() { corner.FindPort(routeTo(1, 1)) }).To(Panic())
	})
})

var _ = Describe("Shortest path tables", func() {
	It("should route along shortest paths", func() {
		// 0 -> 1 -> 2 and a long direct edge 0 -> 2.
		tables := BuildShortestPathTables(3, []Edge{
			{From: 0, To: 1, Weight: 1, OutPort: 1},
			{From: 1, To: 2, Weight: 1, OutPort: 1},
			{From: 0, To: 2, Weight: 5, OutPort: 2},
			{From: 2, To: 1, Weight: 1, OutPort: 1},
			{From: 1, To: 0, Weight: 1, OutPort: 2},
		})

		Expect(tables[0].FindPort(routeTo(9, 2))).To(Equal(1))
		Expect(tables[0].FindPort(routeTo(9, 1))).To(Equal(1))
		Expect(tables[2].FindPort(routeTo(9, 0))).To(Equal(1))
		Expect(tables[1].FindPort(routeTo(9, 0))).To(Equal(2))
	})

	It("should break ties by output port", func() {
		// A ring of four routers. Router 2 is two hops away both ways.
		tables := BuildShortestPathTables(4, []Edge{
			{From: 0, To: 1, Weight: 1, OutPort: 2},
			{From: 0, To: 3, Weight: 1, OutPort: 1},
			{From: 1, To: 2, Weight: 1, OutPort: 1},
			{From: 3, To: 2, Weight: 1, OutPort: 1},
		})

		Expect(tables[0].FindPort(routeTo(9, 2))).To(Equal(1))
	})

	It("should leave unreachable routers without routes", func() {
		tables := BuildShortestPathTables(2, nil)

		Expect(func() { tables[0].FindPort(routeTo(9, 1)) }).To(Panic())
	})
})
