package jobscheduler

import "context"

// Repository is the dispatch ledger. Events for one DispatchID collapse into
// a single row holding the latest status.
type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	GetEvent(ctx context.Context, dispatchID string) (DispatchEvent, bool, error)
}
