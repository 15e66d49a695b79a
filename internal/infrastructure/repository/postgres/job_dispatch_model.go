package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/infantry-community/internal/domain/jobscheduler"
)

const jobDispatchColumns = "dispatch_id, job_name, job_path, season, payload, status, attempts, last_error, trace_id, span_id, occurred_at"

type jobDispatchInsertModel struct {
	DispatchID  string     `db:"dispatch_id"`
	JobName     string     `db:"job_name"`
	JobPath     string     `db:"job_path"`
	Season      string     `db:"season"`
	Payload     string     `db:"payload"`
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   *string    `db:"last_error"`
	TraceID     *string    `db:"trace_id"`
	SpanID      *string    `db:"span_id"`
	OccurredAt  time.Time  `db:"occurred_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

type jobDispatchTableModel struct {
	DispatchID string         `db:"dispatch_id"`
	JobName    string         `db:"job_name"`
	JobPath    string         `db:"job_path"`
	Season     string         `db:"season"`
	Payload    []byte         `db:"payload"`
	Status     string         `db:"status"`
	Attempts   int            `db:"attempts"`
	LastError  sql.NullString `db:"last_error"`
	TraceID    sql.NullString `db:"trace_id"`
	SpanID     sql.NullString `db:"span_id"`
	OccurredAt time.Time      `db:"occurred_at"`
}

func (m jobDispatchTableModel) toDomain() jobscheduler.DispatchEvent {
	return jobscheduler.DispatchEvent{
		DispatchID:   m.DispatchID,
		JobName:      m.JobName,
		JobPath:      m.JobPath,
		Season:       m.Season,
		Status:       jobscheduler.DispatchStatus(m.Status),
		Payload:      unmarshalPayload(m.Payload),
		ErrorMessage: nullStringValue(m.LastError),
		OccurredAt:   m.OccurredAt.UTC(),
		TraceID:      nullStringValue(m.TraceID),
		SpanID:       nullStringValue(m.SpanID),
		Attempts:     m.Attempts,
	}
}
