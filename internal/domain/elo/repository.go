package elo

import "context"

type Repository interface {
	Leaderboard(ctx context.Context, query LeaderboardQuery) (LeaderboardPage, error)
	GameModes(ctx context.Context, season string) ([]string, error)
	GetRating(ctx context.Context, season, gameMode, playerName string) (Rating, bool, error)
	ListSeason(ctx context.Context, season string) ([]Rating, error)
	CountSeason(ctx context.Context, season string) (int, error)

	// ReplaceSeason swaps every rating of the season in one transaction.
	ReplaceSeason(ctx context.Context, season string, ratings []Rating) error
	UpsertRatings(ctx context.Context, ratings []Rating) error
	// TransitionSeason archives the from-season rows and inserts the next ones
	// atomically.
	TransitionSeason(ctx context.Context, fromSeason string, next []Rating) error
}
