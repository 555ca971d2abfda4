package folio

// TaskStatus is the state of a server-side background job.
//
// Servers may add values; anything other than [TaskCompleted] and
// [TaskFailed] is treated as still running.
type TaskStatus string

const (
	// TaskQueued is reported right after the job is enqueued.
	TaskQueued TaskStatus = "queued"

	// TaskProcessing means a worker has picked the job up.
	TaskProcessing TaskStatus = "processing"

	// TaskCompleted is terminal; the status carries a result payload.
	TaskCompleted TaskStatus = "completed"

	// TaskFailed is terminal; the status message explains why.
	TaskFailed TaskStatus = "failed"
)

// String returns the string representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further polling should occur.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}
