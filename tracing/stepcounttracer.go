package tracing

import (
	"sync"
)

// StepCountTracer counts the steps of the tasks it follows. For packet tasks
// the steps are the routers a packet copy passes.
type StepCountTracer struct {
	filter        TaskFilter
	lock          sync.Mutex
	inflightTasks map[string]int
	stepNames     []string
	stepCount     map[string]uint64
	finished      uint64
	finishedSteps uint64
}

// NewStepCountTracer creates a new StepCountTracer
func NewStepCountTracer(filter TaskFilter) *StepCountTracer {
	return &StepCountTracer{
		filter:        filter,
		inflightTasks: make(map[string]int),
		stepCount:     make(map[string]uint64),
	}
}

// StepNames returns the step names in the order they were first seen.
func (t *StepCountTracer) StepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]string(nil), t.stepNames...)
}

// StepCount returns the number of steps with the given name.
func (t *StepCountTracer) StepCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepCount[stepName]
}

// AverageSteps returns the mean number of steps of the finished tasks.
func (t *StepCountTracer) AverageSteps() float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.finished == 0 {
		return 0
	}

	return float64(t.finishedSteps) / float64(t.finished)
}

// StartTask starts following a task.
func (t *StepCountTracer) StartTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.inflightTasks[task.ID] = 0
	t.lock.Unlock()
}

// StepTask counts a step of a followed task.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	steps, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	t.inflightTasks[task.ID] = steps + len(task.Steps)

	for _, s := range task.Steps {
		if _, seen := t.stepCount[s.What]; !seen {
			t.stepNames = append(t.stepNames, s.What)
		}

		t.stepCount[s.What]++
	}
}

// EndTask stops following a task.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	steps, ok := t.inflightTasks[task.ID]
	if !ok {
		return
	}

	delete(t.inflightTasks, task.ID)
	t.finished++
	t.finishedSteps += uint64(steps)
}
