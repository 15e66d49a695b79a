package dueling

import (
	"context"
	"time"
)

type Repository interface {
	// Create stores the match with its rounds and kills in one transaction.
	Create(ctx context.Context, match Match) error
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	List(ctx context.Context, query ListQuery) ([]Match, int, error)
	ListRankedBetween(ctx context.Context, from, to time.Time) ([]Match, error)
}
