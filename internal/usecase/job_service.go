package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/infantry-community/internal/domain/jobscheduler"
	"github.com/riskibarqy/infantry-community/internal/platform/logging"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

type JobConfig struct {
	// QueueEnabled sends recalculations through the queue; otherwise they run
	// inline in the caller.
	QueueEnabled bool
	DedupBucket  time.Duration
}

type EloJobInput struct {
	Season     string `json:"season"`
	DispatchID string `json:"dispatch_id"`
}

type eloRecalculator interface {
	RecalculateAll(ctx context.Context, season string) (RecalculationResult, error)
}

type JobService struct {
	elo          eloRecalculator
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobService(
	elo eloRecalculator,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobConfig,
	logger *logging.Logger,
) *JobService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DedupBucket <= 0 {
		cfg.DedupBucket = time.Minute
	}

	return &JobService{
		elo:          elo,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// RequestEloRecalculation schedules a season recalculation. Requests within
// the same dedup bucket collapse into one queued job.
func (s *JobService) RequestEloRecalculation(ctx context.Context, season string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.RequestEloRecalculation", seasonAttr(season))
	defer span.End()

	if !s.cfg.QueueEnabled {
		_, err := s.RunEloRecalculation(ctx, EloJobInput{Season: season})
		return err
	}

	now := s.now().UTC()
	dedupID := dedupKey(jobscheduler.JobRecalculateElo, season, now, s.cfg.DedupBucket)
	payload := map[string]any{
		"season":      season,
		"dispatch_id": dedupID,
	}
	if err := s.queue.Enqueue(ctx, jobscheduler.PathRecalculateElo, payload, 0, dedupID); err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dedupID,
			JobName:      jobscheduler.JobRecalculateElo,
			JobPath:      jobscheduler.PathRecalculateElo,
			Season:       season,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
			OccurredAt:   now,
		})
		return fmt.Errorf("enqueue recalculate-elo season=%s: %w", season, err)
	}
	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    jobscheduler.JobRecalculateElo,
		JobPath:    jobscheduler.PathRecalculateElo,
		Season:     season,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: now,
	})
	return nil
}

// RunEloRecalculation executes the job and records its outcome.
func (s *JobService) RunEloRecalculation(ctx context.Context, input EloJobInput) (RecalculationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService.RunEloRecalculation", seasonAttr(input.Season))
	defer span.End()

	now := s.now().UTC()
	dispatchID := strings.TrimSpace(input.DispatchID)
	if dispatchID == "" {
		dispatchID = dedupKey(jobscheduler.JobRecalculateElo, input.Season, now, s.cfg.DedupBucket)
	} else if s.alreadyCompleted(ctx, dispatchID) {
		s.logger.InfoContext(ctx, "skip redelivered recalculate-elo job", "dispatch_id", dispatchID, "season", input.Season)
		return RecalculationResult{Season: input.Season, Skipped: true}, nil
	}
	payload := map[string]any{"season": input.Season, "dispatch_id": dispatchID}

	result, err := s.elo.RecalculateAll(ctx, input.Season)
	if err != nil {
		s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
			DispatchID:   dispatchID,
			JobName:      jobscheduler.JobRecalculateElo,
			JobPath:      jobscheduler.PathRecalculateElo,
			Season:       input.Season,
			Status:       jobscheduler.StatusFailed,
			Payload:      payload,
			ErrorMessage: err.Error(),
		})
		return RecalculationResult{}, err
	}

	s.recordDispatchEvent(ctx, jobscheduler.DispatchEvent{
		DispatchID: dispatchID,
		JobName:    jobscheduler.JobRecalculateElo,
		JobPath:    jobscheduler.PathRecalculateElo,
		Season:     result.Season,
		Status:     jobscheduler.StatusCompleted,
		Payload:    payload,
	})
	return result, nil
}

func dedupKey(prefix, scope string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	scope = sanitizeDedupSegment(scope)
	return prefix + "-" + scope + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

// alreadyCompleted treats lookup errors as not completed so a flaky ledger
// never drops a job.
func (s *JobService) alreadyCompleted(ctx context.Context, dispatchID string) bool {
	if s.dispatchRepo == nil {
		return false
	}
	event, exists, err := s.dispatchRepo.GetEvent(ctx, dispatchID)
	if err != nil {
		s.logger.WarnContext(ctx, "lookup job dispatch failed", "dispatch_id", dispatchID, "error", err)
		return false
	}
	return exists && event.Done()
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
