package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ClockPeriod", func() {
	It("should panic on a zero period", func() {
		Expect(func() { ClockPeriod(0).ThisTick(3) }).To(Panic())
	})

	It("should count cycles", func() {
		Expect(ClockPeriod(1).Cycle(7)).To(Equal(uint64(7)))
		Expect(ClockPeriod(2).Cycle(7)).To(Equal(uint64(3)))
	})

	It("should get this tick", func() {
		Expect(ClockPeriod(1).ThisTick(5)).To(Equal(VTimeInCycle(5)))
		Expect(ClockPeriod(4).ThisTick(0)).To(Equal(VTimeInCycle(0)))
		Expect(ClockPeriod(4).ThisTick(4)).To(Equal(VTimeInCycle(4)))
		Expect(ClockPeriod(4).ThisTick(5)).To(Equal(VTimeInCycle(8)))
	})

	It("should get next tick", func() {
		Expect(ClockPeriod(1).NextTick(5)).To(Equal(VTimeInCycle(6)))
		Expect(ClockPeriod(4).NextTick(4)).To(Equal(VTimeInCycle(8)))
		Expect(ClockPeriod(4).NextTick(7)).To(Equal(VTimeInCycle(8)))
	})

	It("should get n cycles later", func() {
		Expect(ClockPeriod(1).NCyclesLater(10, 3)).To(Equal(VTimeInCycle(13)))
		Expect(ClockPeriod(2).NCyclesLater(3, 3)).To(Equal(VTimeInCycle(10)))
		Expect(ClockPeriod(2).NCyclesLater(0, 4)).To(Equal(VTimeInCycle(4)))
	})

	It("should reject negative cycle counts", func() {
		Expect(func() { ClockPeriod(1).NCyclesLater(-1, 3) }).To(Panic())
	})
})
