package poller

// JobState is the lifecycle state of a job as observed by the poller.
type JobState int

const (
	Unknown JobState = iota
	Pending
	Running
	Succeeded
	Failed
	Missing
)

func (s JobState) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Missing:
		return "missing"
	}
	return "invalid"
}

func (s JobState) IsTerminal() bool {
	return s == Succeeded || s == Failed || s == Missing
}

// nextState maps an observed job status onto a lifecycle state.
// Success takes precedence over failure, which takes precedence over activity.
// A failed pod makes the job Failed even if a retry is active, so templates are expected to set backoffLimit: 0.
func nextState(status *JobStatus) JobState {
	switch {
	case status.Succeeded >= 1:
		return Succeeded
	case status.Failed >= 1:
		return Failed
	case status.Active >= 1:
		return Running
	default:
		return Pending
	}
}
