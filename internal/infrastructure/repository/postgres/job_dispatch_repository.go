package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/infantry-community/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/infantry-community/internal/platform/querybuilder"
)

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

// UpsertEvent folds an event into the dispatch row. Sent and failed events
// count as attempts; a completion clears the last error and keeps the count.
func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	dispatchID := strings.TrimSpace(event.DispatchID)
	if dispatchID == "" {
		return fmt.Errorf("dispatch id is required")
	}

	payloadJSON, err := marshalPayload(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal job dispatch payload: %w", err)
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	model := jobDispatchInsertModel{
		DispatchID: dispatchID,
		JobName:    defaultString(event.JobName, jobscheduler.JobRecalculateElo),
		JobPath:    defaultString(event.JobPath, jobscheduler.PathRecalculateElo),
		Season:     defaultString(event.Season, "current"),
		Payload:    payloadJSON,
		Status:     string(event.Status),
		TraceID:    optionalString(event.TraceID),
		SpanID:     optionalString(event.SpanID),
		OccurredAt: occurredAt,
	}
	switch event.Status {
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
	case jobscheduler.StatusFailed:
		model.Attempts = 1
		model.LastError = optionalString(event.ErrorMessage)
	default:
		model.Attempts = 1
	}

	query, args, err := qb.InsertModel("job_dispatches", model, `ON CONFLICT (dispatch_id)
DO UPDATE SET
    season = EXCLUDED.season,
    payload = EXCLUDED.payload,
    status = EXCLUDED.status,
    attempts = job_dispatches.attempts + EXCLUDED.attempts,
    last_error = EXCLUDED.last_error,
    trace_id = COALESCE(EXCLUDED.trace_id, job_dispatches.trace_id),
    span_id = COALESCE(EXCLUDED.span_id, job_dispatches.span_id),
    occurred_at = EXCLUDED.occurred_at,
    completed_at = COALESCE(EXCLUDED.completed_at, job_dispatches.completed_at),
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}
	return nil
}

func (r *JobDispatchRepository) GetEvent(ctx context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	query, args, err := qb.Select(jobDispatchColumns).
		From("job_dispatches").
		Where(qb.Eq("dispatch_id", strings.TrimSpace(dispatchID))).
		Limit(1).
		ToSQL()
	if err != nil {
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("build get job dispatch query: %w", err)
	}

	var row jobDispatchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return jobscheduler.DispatchEvent{}, false, nil
		}
		return jobscheduler.DispatchEvent{}, false, fmt.Errorf("get job dispatch dispatch_id=%s: %w", dispatchID, err)
	}
	return row.toDomain(), true, nil
}

func marshalPayload(payload map[string]any) (string, error) {
	if len(payload) == 0 {
		return "{}", nil
	}
	raw, err := sonic.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func unmarshalPayload(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]any
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
