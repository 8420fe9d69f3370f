package monitoring

import (
	"sync"
	"time"

	"github.com/hansikaweerasena/gem5-multi/sim"
	"github.com/hansikaweerasena/gem5-multi/tracing"
)

// A ProgressBar counts work that is in progress and work that is finished.
// A zero total means the amount of work is not known in advance.
type ProgressBar struct {
	lock       sync.Mutex
	id         string
	name       string
	startTime  time.Time
	total      uint64
	finished   uint64
	inProgress uint64
}

// ProgressStatus is a snapshot of a progress bar.
type ProgressStatus struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// Status returns a snapshot of the bar.
func (b *ProgressBar) Status() ProgressStatus {
	b.lock.Lock()
	defer b.lock.Unlock()

	return ProgressStatus{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}

// AdvanceTo moves the finished count forward to n. The count never moves
// backwards and never passes a known total.
func (b *ProgressBar) AdvanceTo(n uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.total > 0 && n > b.total {
		n = b.total
	}

	b.finished = max(b.finished, n)
}

// Start marks n items as in progress.
func (b *ProgressBar) Start(n uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inProgress += n
}

// Finish moves n items from in progress to finished.
func (b *ProgressBar) Finish(n uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	n = min(n, b.inProgress)
	b.inProgress -= n
	b.finished += n
}

// CycleProgressHook advances a progress bar to the time of every event that
// an engine handles.
type CycleProgressHook struct {
	bar    *ProgressBar
	engine sim.TimeTeller
}

// NewCycleProgressHook creates a hook that tracks the simulated cycles of the
// engine on the bar.
func NewCycleProgressHook(
	bar *ProgressBar,
	engine sim.TimeTeller,
) *CycleProgressHook {
	return &CycleProgressHook{bar: bar, engine: engine}
}

// Func moves the bar when an event has been handled.
func (h *CycleProgressHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	h.bar.AdvanceTo(uint64(h.engine.CurrentTime()))
}

// TaskProgress is a tracer that shows tasks on a progress bar. Started tasks
// are in progress until they end.
type TaskProgress struct {
	bar    *ProgressBar
	filter tracing.TaskFilter

	lock    sync.Mutex
	pending map[string]struct{}
}

// NewTaskProgress creates a tracer that moves the bar for the tasks that pass
// the filter.
func NewTaskProgress(bar *ProgressBar, filter tracing.TaskFilter) *TaskProgress {
	return &TaskProgress{
		bar:     bar,
		filter:  filter,
		pending: make(map[string]struct{}),
	}
}

// StartTask puts a task in progress.
func (p *TaskProgress) StartTask(task tracing.Task) {
	if !p.filter(task) {
		return
	}

	p.lock.Lock()
	p.pending[task.ID] = struct{}{}
	p.lock.Unlock()

	p.bar.Start(1)
}

// StepTask is ignored.
func (p *TaskProgress) StepTask(tracing.Task) {}

// EndTask finishes a task that was put in progress.
func (p *TaskProgress) EndTask(task tracing.Task) {
	p.lock.Lock()
	_, ok := p.pending[task.ID]
	delete(p.pending, task.ID)
	p.lock.Unlock()

	if ok {
		p.bar.Finish(1)
	}
}
