// Package flowcontrol tracks the downstream state of output virtual channels.
package flowcontrol

import (
	"log"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

// VCState tells if a virtual channel is carrying a packet.
type VCState int

// The states of a virtual channel.
const (
	VCIdle VCState = iota
	VCActive
)

func (s VCState) String() string {
	if s == VCIdle {
		return "IDLE"
	}

	return "ACTIVE"
}

// OutVCState is the upstream view of a downstream virtual channel. Credits
// count the free buffer slots of the downstream virtual channel.
type OutVCState struct {
	id         int
	state      VCState
	time       sim.VTimeInCycle
	credits    int
	maxCredits int
}

// NewOutVCState creates the state of an idle virtual channel with all its
// credits.
func NewOutVCState(id, maxCredits int) *OutVCState {
	if maxCredits <= 0 {
		log.Panicf("vc %d must have at least one buffer", id)
	}

	return &OutVCState{
		id:         id,
		state:      VCIdle,
		credits:    maxCredits,
		maxCredits: maxCredits,
	}
}

// ID returns the virtual channel id.
func (s *OutVCState) ID() int {
	return s.id
}

// IsInState tells if the virtual channel is in the state at time t. A state
// set for a future time does not hold yet.
func (s *OutVCState) IsInState(state VCState, t sim.VTimeInCycle) bool {
	return s.state == state && s.time <= t
}

// SetState moves the virtual channel to a state starting at time t.
func (s *OutVCState) SetState(state VCState, t sim.VTimeInCycle) {
	s.state = state
	s.time = t
}

// State returns the state and the time it is set for.
func (s *OutVCState) State() (VCState, sim.VTimeInCycle) {
	return s.state, s.time
}

// HasCredit tells if the downstream virtual channel has a free slot.
func (s *OutVCState) HasCredit() bool {
	return s.credits > 0
}

// Credits returns the number of credits.
func (s *OutVCState) Credits() int {
	return s.credits
}

// MaxCredits returns the number of downstream buffer slots.
func (s *OutVCState) MaxCredits() int {
	return s.maxCredits
}

// IncrementCredit returns a slot.
func (s *OutVCState) IncrementCredit() {
	if s.credits >= s.maxCredits {
		log.Panicf("vc %d receives more credits than it has buffers", s.id)
	}

	s.credits++
}

// DecrementCredit takes a slot.
func (s *OutVCState) DecrementCredit() {
	if s.credits <= 0 {
		log.Panicf("vc %d sends without credit", s.id)
	}

	s.credits--
}
