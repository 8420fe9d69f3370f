package sim

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator hands out the IDs of events and messages.
type IDGenerator interface {
	Generate() string
}

var (
	idGenLock   sync.Mutex
	idGenInUse  bool
	idGenerator IDGenerator = &SequentialIDGenerator{}
)

// SetIDGenerator replaces the ID generator. It panics once an ID has been
// handed out, since mixing generators could produce duplicated IDs.
func SetIDGenerator(g IDGenerator) {
	idGenLock.Lock()
	defer idGenLock.Unlock()

	if idGenInUse {
		panic("the id generator is already in use")
	}

	idGenerator = g
}

// GetIDGenerator returns the ID generator of the simulation. Unless replaced,
// it is a SequentialIDGenerator, so that two runs with the same seed produce
// the same IDs.
func GetIDGenerator() IDGenerator {
	idGenLock.Lock()
	defer idGenLock.Unlock()

	idGenInUse = true

	return idGenerator
}

// SequentialIDGenerator numbers IDs from 1.
type SequentialIDGenerator struct {
	last atomic.Uint64
}

// Generate returns the next number.
func (g *SequentialIDGenerator) Generate() string {
	return strconv.FormatUint(g.last.Add(1), 10)
}

// UniqueIDGenerator produces globally unique, time sortable IDs.
type UniqueIDGenerator struct{}

// Generate returns a new xid.
func (UniqueIDGenerator) Generate() string {
	return xid.New().String()
}

// UniqueID returns an ID that is unique across runs. It is meant for things
// that live outside of simulated time, such as recordings and progress bars.
func UniqueID() string {
	return UniqueIDGenerator{}.Generate()
}
