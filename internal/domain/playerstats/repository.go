package playerstats

import (
	"context"
	"time"
)

type LeaderboardQuery struct {
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
	GameMode  string
	MinGames  int
}

type Repository interface {
	InsertGame(ctx context.Context, rows []GameStat) error
	GameExists(ctx context.Context, gameID string) (bool, error)
	ListByGame(ctx context.Context, gameID string) ([]GameStat, error)
	ListRecentGames(ctx context.Context, limit int) ([]GameSummary, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]GameStat, error)
	ListByMode(ctx context.Context, gameMode string) ([]GameStat, error)
	GetAggregate(ctx context.Context, playerName string) (Aggregate, bool, error)
	Leaderboard(ctx context.Context, query LeaderboardQuery) ([]Aggregate, int, error)
	// UpdateSides persists side repairs in one transaction.
	UpdateSides(ctx context.Context, fixes []SideFix) error
}

var leaderboardColumns = map[string]struct{}{
	"total_games":    {},
	"wins":           {},
	"win_rate":       {},
	"kills":          {},
	"deaths":         {},
	"kill_death":     {},
	"captures":       {},
	"carrier_kills":  {},
	"avg_accuracy":   {},
	"last_game_date": {},
}

func (q LeaderboardQuery) Normalize() LeaderboardQuery {
	if _, ok := leaderboardColumns[q.SortBy]; !ok {
		q.SortBy = "kills"
		q.Ascending = false
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.MinGames < 0 {
		q.MinGames = 0
	}
	return q
}
