package season

import "context"

type Repository interface {
	// ActiveSeason returns the newest active season of the CTFPL league when
	// ctfpl is true, otherwise of any other league.
	ActiveSeason(ctx context.Context, ctfpl bool) (Season, bool, error)
	CurrentLock(ctx context.Context, seasonID string) (RosterLock, bool, error)
}
