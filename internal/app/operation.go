package app

import "time"

// Operation status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks one CLI command run. Its ID tags every log line the run
// writes; it is summarized in the log when the App closes.
type Operation struct {
	ID        string
	Name      string
	StartedAt time.Time
	Status    string
	Err       error
}

// NewOperation creates an operation started at now. The ID is the UTC start
// time, e.g. 20240115T103000Z.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:        now.UTC().Format("20060102T150405Z"),
		Name:      name,
		StartedAt: now,
		Status:    StatusSuccess,
	}
}

// Fail marks the operation as failed. A nil err is ignored.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = StatusError
	op.Err = err
}

// Failed reports whether Fail was called with an error.
func (op *Operation) Failed() bool {
	return op.Status == StatusError
}
