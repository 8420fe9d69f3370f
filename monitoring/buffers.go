package monitoring

import (
	"cmp"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"unsafe"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

type bufferOwner interface {
	Buffers() []sim.BufferStatus
}

var bufferStatusType = reflect.TypeFor[sim.BufferStatus]()

// buffersOf lists the buffers of a component. Components that own their
// buffers through slices report them through Buffers. For the others, the
// buffer fields are found by reflection, unexported ones included.
func buffersOf(c sim.Component) []sim.BufferStatus {
	if owner, ok := c.(bufferOwner); ok {
		return owner.Buffers()
	}

	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	v = v.Elem()

	var bufs []sim.BufferStatus
	for i := range v.NumField() {
		f := v.Field(i)

		switch f.Kind() {
		case reflect.Interface, reflect.Ptr:
		default:
			continue
		}

		if f.IsNil() || !f.Type().Implements(bufferStatusType) {
			continue
		}

		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
		bufs = append(bufs, f.Interface().(sim.BufferStatus))
	}

	return bufs
}

type bufferOrder string

const (
	byPercent bufferOrder = "percent"
	byLevel   bufferOrder = "level"
)

// A bufferQuery selects a page of buffers. A zero limit means no limit.
type bufferQuery struct {
	order  bufferOrder
	limit  int
	offset int
}

func parseBufferQuery(r *http.Request) (bufferQuery, error) {
	values := r.URL.Query()
	q := bufferQuery{order: bufferOrder(values.Get("sort"))}

	switch q.order {
	case "":
		q.order = byPercent
	case byPercent, byLevel:
	default:
		return q, fmt.Errorf("sort must be %q or %q, not %q",
			byPercent, byLevel, q.order)
	}

	var err error
	if q.limit, err = countParam(values.Get("limit"), "limit"); err != nil {
		return q, err
	}

	if q.offset, err = countParam(values.Get("offset"), "offset"); err != nil {
		return q, err
	}

	return q, nil
}

func countParam(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}

	return n, nil
}

// fullness treats unbounded buffers as empty.
func fullness(b sim.BufferStatus) float64 {
	if b.Capacity() <= 0 {
		return 0
	}

	return float64(b.Size()) / float64(b.Capacity())
}

// selectBuffers returns a page of buffers, the fullest first. Ties on the
// chosen order are broken by the other one.
func (m *Monitor) selectBuffers(q bufferQuery) []sim.BufferStatus {
	level := func(a, b sim.BufferStatus) int {
		return cmp.Compare(b.Size(), a.Size())
	}
	percent := func(a, b sim.BufferStatus) int {
		return cmp.Compare(fullness(b), fullness(a))
	}

	first, second := percent, level
	if q.order == byLevel {
		first, second = level, percent
	}

	bufs := slices.Clone(m.buffers)
	slices.SortStableFunc(bufs, func(a, b sim.BufferStatus) int {
		return cmp.Or(first(a, b), second(a, b))
	})

	start := min(q.offset, len(bufs))
	end := len(bufs)
	if q.limit > 0 {
		end = min(end, start+q.limit)
	}

	return bufs[start:end]
}

type bufferLevel struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

// bufferLevels serves the fullest buffers, which is where a hung network
// shows up first.
func (m *Monitor) bufferLevels(w http.ResponseWriter, r *http.Request) {
	q, err := parseBufferQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	bufs := m.selectBuffers(q)

	rsp := make([]bufferLevel, len(bufs))
	for i, b := range bufs {
		rsp[i] = bufferLevel{b.Name(), b.Size(), b.Capacity()}
	}

	writeJSON(w, rsp)
}
