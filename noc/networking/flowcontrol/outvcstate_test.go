package flowcontrol

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OutVCState", func() {
	var s *OutVCState

	BeforeEach(func() {
		s = NewOutVCState(3, 2)
	})

	It("should start idle with full credits", func() {
		Expect(s.ID()).To(Equal(3))
		Expect(s.IsInState(VCIdle, 0)).To(BeTrue())
		Expect(s.Credits()).To(Equal(2))
		Expect(s.MaxCredits()).To(Equal(2))
	})

	It("should not be in a state before the state starts", func() {
		s.SetState(VCActive, 10)

		Expect(s.IsInState(VCActive, 9)).To(BeFalse())
		Expect(s.IsInState(VCIdle, 9)).To(BeFalse())
		Expect(s.IsInState(VCActive, 10)).To(BeTrue())

		state, t := s.State()
		Expect(state).To(Equal(VCActive))
		Expect(int(t)).To(Equal(10))
	})

	It("should count credits", func() {
		s.DecrementCredit()
		s.DecrementCredit()

		Expect(s.HasCredit()).To(BeFalse())
		Expect(func() { s.DecrementCredit() }).To(Panic())

		s.IncrementCredit()
		Expect(s.HasCredit()).To(BeTrue())
		s.IncrementCredit()
		Expect(func() { s.IncrementCredit() }).To(Panic())
	})

	It("should reject virtual channels without buffers", func() {
		Expect(func() { NewOutVCState(0, 0) }).To(Panic())
	})
})
