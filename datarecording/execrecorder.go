package datarecording

import (
	"os"
	"strings"
	"time"
)

const timeFormat = "2006-01-02 15:04:05.000000000"

// execInfo is one property of a program execution.
type execInfo struct {
	Property string
	Value    string
}

// An ExecRecorder records when and how the program was run into the
// exec_info table.
type ExecRecorder struct {
	tableName string
	recorder  DataRecorder
	entries   []execInfo
}

// NewExecRecorder creates the exec_info table in recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		tableName: "exec_info",
		recorder:  recorder,
	}

	e.recorder.CreateTable(e.tableName, execInfo{})

	return e
}

// Start captures the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.Add("Start Time", time.Now().Format(timeFormat))
	e.Add("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	e.Add("Working Directory", cwd)
}

// Add remembers an extra property to write at End.
func (e *ExecRecorder) Add(property, value string) {
	e.entries = append(e.entries, execInfo{property, value})
}

// End writes all properties along with the end time and flushes.
func (e *ExecRecorder) End() {
	e.Add("End Time", time.Now().Format(timeFormat))

	for _, entry := range e.entries {
		e.recorder.InsertData(e.tableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}
