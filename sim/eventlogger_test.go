package sim

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *EventLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewEventLogger(slog.New(slog.NewTextHandler(buf,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	})

	It("should log events before they are handled", func() {
		comp := NewComponentBase("Comp")
		handler := &namedHandler{ComponentBase: comp}
		evt := MakeTickEvent(handler, 12)

		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: evt})

		Expect(buf.String()).To(ContainSubstring("time=12"))
		Expect(buf.String()).To(ContainSubstring("handler=Comp"))
	})

	It("should ignore other hook positions", func() {
		evt := MakeTickEvent(nil, 12)

		logger.Func(HookCtx{Pos: HookPosAfterEvent, Item: evt})

		Expect(buf.Len()).To(Equal(0))
	})
})

type namedHandler struct {
	*ComponentBase
}

func (h *namedHandler) Handle(_ Event) error {
	return nil
}
