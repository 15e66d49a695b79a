package tournament

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t Tournament) error
	GetByID(ctx context.Context, tournamentID string) (Tournament, bool, error)
	List(ctx context.Context, query ListQuery) ([]Tournament, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]Participant, error)
	ListMatches(ctx context.Context, tournamentID string) ([]BracketMatch, error)

	// Register locks the tournament row and runs check against the current
	// participant count before inserting.
	Register(ctx context.Context, p Participant, check func(t Tournament, count int) error) error
	// SaveBracket stores the generated matches and moves the tournament to
	// in_progress atomically.
	SaveBracket(ctx context.Context, tournamentID string, participants []Participant, matches []BracketMatch, at time.Time) error
	UpdateMatches(ctx context.Context, matches []BracketMatch) error
	Complete(ctx context.Context, tournamentID, winnerID, runnerUpID string, at time.Time) error
	UpdateStatus(ctx context.Context, tournamentID string, status Status, at time.Time) error
}
