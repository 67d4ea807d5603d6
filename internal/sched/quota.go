package sched

import "fmt"

// StepQuota bounds how many times a task may re-enter the same scheduling
// pass through zero-length waits. A routine that keeps returning a ready
// wait would otherwise pin the tick loop inside a single pass and blow
// the block deadline.
//
// The quota resets at the start of every pass; exceeding it terminates
// the offending task, never the pass.
type StepQuota struct {
	maxSteps int
	current  int
}

// DefaultMaxStepsPerPass is the default zero-wait re-entry limit.
const DefaultMaxStepsPerPass = 128

// NewStepQuota creates a quota with the given per-pass limit. Returned
// by value so the tick scan keeps it off the heap.
func NewStepQuota(maxSteps int) StepQuota {
	return StepQuota{maxSteps: maxSteps}
}

// Begin resets the counter for a new task scan.
func (q *StepQuota) Begin() {
	q.current = 0
}

// Check counts one re-entry and validates against the limit.
func (q *StepQuota) Check(taskName string) error {
	q.current++
	if q.current > q.maxSteps {
		return &SchedError{
			Code:     ErrCodeStepQuotaExceeded,
			Message:  fmt.Sprintf("task re-entered pass %d times > %d limit", q.current, q.maxSteps),
			TaskName: taskName,
		}
	}
	return nil
}

// Current returns the re-entry count of the scan in progress.
func (q *StepQuota) Current() int {
	return q.current
}
