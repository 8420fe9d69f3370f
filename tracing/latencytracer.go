package tracing

import (
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/hansikaweerasena/gem5-multi/sim"
)

// A LatencyTracer measures how long the filtered tasks take from start to
// end. Samples are grouped by the What of the task, so that unicast and
// multicast packets can be told apart.
type LatencyTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock     sync.Mutex
	started  map[string]Task
	samples  map[string][]float64
	total    sim.VTimeInCycle
	finished uint64
}

// NewLatencyTracer creates a LatencyTracer that reads the time from the
// given time teller.
func NewLatencyTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *LatencyTracer {
	return &LatencyTracer{
		timeTeller: timeTeller,
		filter:     filter,
		started:    make(map[string]Task),
		samples:    make(map[string][]float64),
	}
}

// StartTask remembers when a task starts.
func (t *LatencyTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	task.StartTime = t.timeTeller.CurrentTime()

	t.lock.Lock()
	t.started[task.ID] = task
	t.lock.Unlock()
}

// StepTask is ignored.
func (t *LatencyTracer) StepTask(Task) {}

// EndTask takes a sample if the task was started under this tracer.
func (t *LatencyTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.started[task.ID]
	if !ok {
		return
	}

	delete(t.started, task.ID)

	latency := now - start.StartTime
	t.total += latency
	t.finished++
	t.samples[start.What] = append(t.samples[start.What], float64(latency))
}

// TotalCount returns the number of finished tasks.
func (t *LatencyTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.finished
}

// TotalTime returns the sum of the latencies. Overlapping tasks are added up.
func (t *LatencyTracer) TotalTime() sim.VTimeInCycle {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}

// InflightCount returns the number of tasks that started but did not end.
func (t *LatencyTracer) InflightCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.started)
}

// AverageTime returns the mean latency over every finished task.
func (t *LatencyTracer) AverageTime() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.finished == 0 {
		return 0
	}

	return float64(t.total) / float64(t.finished)
}

// Kinds returns the What values that have samples, sorted.
func (t *LatencyTracer) Kinds() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	kinds := make([]string, 0, len(t.samples))
	for k := range t.samples {
		kinds = append(kinds, k)
	}

	slices.Sort(kinds)

	return kinds
}

// AverageTimeOf returns the mean latency of the tasks with the given What.
func (t *LatencyTracer) AverageTimeOf(what string) float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	s := t.samples[what]
	if len(s) == 0 {
		return 0
	}

	return stat.Mean(s, nil)
}

// Quantile returns the p quantile of the latencies of the tasks with the
// given What, or of every task if what is empty.
func (t *LatencyTracer) Quantile(what string, p float64) float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	var s []float64
	if what == "" {
		for _, v := range t.samples {
			s = append(s, v...)
		}
	} else {
		s = slices.Clone(t.samples[what])
	}

	if len(s) == 0 {
		return 0
	}

	slices.Sort(s)

	return stat.Quantile(p, stat.Empirical, s, nil)
}
