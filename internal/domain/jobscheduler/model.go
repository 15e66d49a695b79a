package jobscheduler

import "time"

const (
	JobRecalculateElo  = "recalculate-elo"
	PathRecalculateElo = "/api/internal/jobs/recalculate-elo"
)

type DispatchStatus string

const (
	StatusSent      DispatchStatus = "sent"
	StatusCompleted DispatchStatus = "completed"
	StatusFailed    DispatchStatus = "failed"
)

// DispatchEvent is one state change of an async job, keyed by DispatchID.
// Attempts is filled by the repository on reads.
type DispatchEvent struct {
	DispatchID   string
	JobName      string
	JobPath      string
	Season       string
	Status       DispatchStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
	Attempts     int
}

// Done reports whether a redelivered job with this dispatch id can be
// acknowledged without running again.
func (e DispatchEvent) Done() bool {
	return e.Status == StatusCompleted
}
