package datarecording

import (
	"os"
	"strings"
	"time"
)

// RunTable is the table that run information goes to.
const RunTable = "run_info"

// RunInfo is one property of a simulation run.
type RunInfo struct {
	Property string
	Value    string
}

// RunRecorder records how and when a simulation ran.
type RunRecorder struct {
	recorder DataRecorder
	entries  []RunInfo
}

// NewRunRecorder creates the run table in the recorder.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	recorder.CreateTable(RunTable, RunInfo{})

	return &RunRecorder{recorder: recorder}
}

// Start notes the start time, the command line and the working directory.
func (e *RunRecorder) Start() {
	e.Set("Start Time", time.Now().Format(time.RFC3339Nano))
	e.Set("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	e.Set("Working Directory", cwd)
}

// Set notes a property of the run.
func (e *RunRecorder) Set(property, value string) {
	e.entries = append(e.entries, RunInfo{property, value})
}

// End writes all the properties along with the end time.
func (e *RunRecorder) End() {
	e.Set("End Time", time.Now().Format(time.RFC3339Nano))

	for _, entry := range e.entries {
		e.recorder.InsertData(RunTable, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}
