package messaging

import (
	"fmt"
	"log"
	"slices"
	"strings"
)

// MachineType identifies a kind of machine attached to the network, such as
// an L1 cache or a directory.
type MachineType int

// MachineID identifies one machine.
type MachineID struct {
	Type MachineType
	Num  int
}

func compareMachineID(a, b MachineID) int {
	if a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}

	return a.Num - b.Num
}

// MachineKind names a machine type and tells how many of them exist.
type MachineKind struct {
	Name  string
	Count int
}

// MachineLayout numbers every machine of every type with a global node id.
// Machines of the first type come first, then the ones of the second type, and
// so on.
type MachineLayout struct {
	kinds []MachineKind
	bases []int
}

// NewMachineLayout creates a layout. The index of a kind is its MachineType.
func NewMachineLayout(kinds ...MachineKind) MachineLayout {
	l := MachineLayout{
		kinds: slices.Clone(kinds),
		bases: make([]int, len(kinds)+1),
	}

	for i, k := range kinds {
		if k.Count < 0 {
			log.Panicf("machine type %s has negative count", k.Name)
		}

		l.bases[i+1] = l.bases[i] + k.Count
	}

	return l
}

// NumTypes returns the number of machine types.
func (l MachineLayout) NumTypes() int {
	return len(l.kinds)
}

// NumNodes returns the total number of machines.
func (l MachineLayout) NumNodes() int {
	return l.bases[len(l.kinds)]
}

// Count returns the number of machines of a type.
func (l MachineLayout) Count(t MachineType) int {
	return l.kinds[t].Count
}

// TypeName returns the name of a machine type.
func (l MachineLayout) TypeName(t MachineType) string {
	return l.kinds[t].Name
}

// TypeByName looks up a machine type.
func (l MachineLayout) TypeByName(name string) (MachineType, bool) {
	for i, k := range l.kinds {
		if k.Name == name {
			return MachineType(i), true
		}
	}

	return 0, false
}

// Base returns the node id of the first machine of a type.
func (l MachineLayout) Base(t MachineType) int {
	return l.bases[t]
}

// NodeID returns the global node id of a machine.
func (l MachineLayout) NodeID(m MachineID) int {
	if m.Num < 0 || m.Num >= l.kinds[m.Type].Count {
		log.Panicf("machine %s[%d] does not exist",
			l.kinds[m.Type].Name, m.Num)
	}

	return l.bases[m.Type] + m.Num
}

// MachineOf returns the machine with the given global node id.
func (l MachineLayout) MachineOf(node int) MachineID {
	for t := range l.kinds {
		if node >= l.bases[t] && node < l.bases[t+1] {
			return MachineID{Type: MachineType(t), Num: node - l.bases[t]}
		}
	}

	log.Panicf("node %d is not in the machine layout", node)

	return MachineID{}
}

// NetDest is a set of destination machines. The used mark tells that the set
// has already been expanded by the network interface and must not be
// expanded again.
type NetDest struct {
	machines []MachineID
	used     bool
}

// NewNetDest creates a destination set.
func NewNetDest(machines ...MachineID) NetDest {
	d := NetDest{}
	for _, m := range machines {
		d.Add(m)
	}

	return d
}

// Add adds a machine to the set.
func (d *NetDest) Add(m MachineID) {
	i, found := slices.BinarySearchFunc(d.machines, m, compareMachineID)
	if found {
		return
	}

	// The backing array may be shared with copies of the set.
	d.machines = slices.Insert(slices.Clip(d.machines), i, m)
}

// AddNetDest adds all the machines of another set.
func (d *NetDest) AddNetDest(o NetDest) {
	for _, m := range o.machines {
		d.Add(m)
	}
}

// Remove removes a machine from the set.
func (d *NetDest) Remove(m MachineID) {
	i, found := slices.BinarySearchFunc(d.machines, m, compareMachineID)
	if !found {
		return
	}

	machines := make([]MachineID, 0, len(d.machines)-1)
	machines = append(machines, d.machines[:i]...)
	machines = append(machines, d.machines[i+1:]...)
	d.machines = machines
}

// RemoveNetDest removes all the machines of another set.
func (d *NetDest) RemoveNetDest(o NetDest) {
	for _, m := range o.machines {
		d.Remove(m)
	}
}

// Contains tells if the machine is in the set.
func (d NetDest) Contains(m MachineID) bool {
	_, found := slices.BinarySearchFunc(d.machines, m, compareMachineID)
	return found
}

// Count returns the number of machines in the set.
func (d NetDest) Count() int {
	return len(d.machines)
}

// IsEmpty tells if the set has no machine.
func (d NetDest) IsEmpty() bool {
	return len(d.machines) == 0
}

// Machines returns the machines in ascending node id order.
func (d NetDest) Machines() []MachineID {
	return slices.Clone(d.machines)
}

// AllDest returns the global node ids of the machines in ascending order.
func (d NetDest) AllDest(layout MachineLayout) []int {
	nodes := make([]int, len(d.machines))
	for i, m := range d.machines {
		nodes[i] = layout.NodeID(m)
	}

	return nodes
}

// MachineType returns the type of the first machine in the set.
func (d NetDest) MachineType() (MachineType, bool) {
	if len(d.machines) == 0 {
		return 0, false
	}

	return d.machines[0].Type, true
}

// IsUsed tells if the set has been expanded already.
func (d NetDest) IsUsed() bool {
	return d.used
}

// SetUsed marks the set as expanded.
func (d *NetDest) SetUsed() {
	d.used = true
}

// Clone returns an independent copy of the set.
func (d NetDest) Clone() NetDest {
	return NetDest{machines: slices.Clone(d.machines), used: d.used}
}

func (d NetDest) String() string {
	parts := make([]string, len(d.machines))
	for i, m := range d.machines {
		parts[i] = fmt.Sprintf("%d:%d", m.Type, m.Num)
	}

	return "{" + strings.Join(parts, " ") + "}"
}
