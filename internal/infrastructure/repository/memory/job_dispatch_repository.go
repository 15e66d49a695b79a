package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/infantry-community/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu     sync.RWMutex
	events map[string]jobscheduler.DispatchEvent
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{events: make(map[string]jobscheduler.DispatchEvent)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.events[event.DispatchID]
	event.Attempts = prev.Attempts
	if event.Status != jobscheduler.StatusCompleted {
		event.Attempts++
	}
	r.events[event.DispatchID] = event
	return nil
}

func (r *JobDispatchRepository) GetEvent(_ context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[dispatchID]
	return event, ok, nil
}
