package sim

import "log"

// ClockPeriod is the number of global simulation cycles between two
// consecutive ticks of a component clock. A period of 1 means the component
// ticks on every global cycle.
type ClockPeriod uint64

func (p ClockPeriod) mustBeValid() {
	if p == 0 {
		log.Panic("clock period cannot be 0")
	}
}

// Cycle converts a time to the number of component cycles passed since time
// 0.
func (p ClockPeriod) Cycle(time VTimeInCycle) uint64 {
	p.mustBeValid()
	return uint64(time) / uint64(p)
}

// ThisTick returns the current tick time. If now is between two ticks, the
// later one is returned.
//
//	            Input
//	            (          ]
//	 |----------|----------|----------|----->
//	                       |
//	                       Output
func (p ClockPeriod) ThisTick(now VTimeInCycle) VTimeInCycle {
	p.mustBeValid()

	count := (uint64(now) + uint64(p) - 1) / uint64(p)

	return VTimeInCycle(count * uint64(p))
}

// NextTick returns the next tick time.
//
//	            Input
//	            [          )
//	 |----------|----------|----------|----->
//	                       |
//	                       Output
func (p ClockPeriod) NextTick(now VTimeInCycle) VTimeInCycle {
	p.mustBeValid()

	count := uint64(now) / uint64(p)

	return VTimeInCycle((count + 1) * uint64(p))
}

// NCyclesLater returns the time of the tick that is n component cycles after
// the current tick.
func (p ClockPeriod) NCyclesLater(n int, now VTimeInCycle) VTimeInCycle {
	if n < 0 {
		log.Panicf("cannot look %d cycles back", -n)
	}

	return p.ThisTick(now) + VTimeInCycle(uint64(n)*uint64(p))
}
