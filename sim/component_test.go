package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ComponentBase", func() {
	It("should keep its name", func() {
		c := NewComponentBase("NoC.Router[3]")
		Expect(c.Name()).To(Equal("NoC.Router[3]"))
	})

	It("should refuse invalid names", func() {
		Expect(func() { NewComponentBase("NoC..Router") }).To(Panic())
	})

	It("should invoke hooks in the order they are attached", func() {
		c := NewComponentBase("NI[0]")
		order := []string{}

		c.AcceptHook(HookFunc(func(ctx HookCtx) {
			order = append(order, "first:"+ctx.Pos.String())
		}))
		c.AcceptHook(HookFunc(func(ctx HookCtx) {
			order = append(order, "second:"+ctx.Pos.String())
		}))

		c.InvokeHook(HookCtx{Domain: c, Pos: HookPosAfterEvent})

		Expect(c.NumHooks()).To(Equal(2))
		Expect(c.HookList()).To(HaveLen(2))
		Expect(order).To(Equal([]string{"first:AfterEvent", "second:AfterEvent"}))
	})
})
