package messaging

import "fmt"

// Credit returns one buffer slot of a virtual channel to the upstream side.
// A credit with the free signal also tells that the virtual channel is idle.
type Credit struct {
	VC           int
	IsFreeSignal bool
}

func (c *Credit) String() string {
	return fmt.Sprintf("credit[vc=%d free=%t]", c.VC, c.IsFreeSignal)
}
