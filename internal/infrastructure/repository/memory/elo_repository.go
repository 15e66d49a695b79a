package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/riskibarqy/infantry-community/internal/domain/elo"
)

type EloRepository struct {
	mu       sync.RWMutex
	ratings  map[string]elo.Rating
	archived []elo.Rating
}

func NewEloRepository() *EloRepository {
	return &EloRepository{ratings: make(map[string]elo.Rating)}
}

func ratingKey(season, mode, playerName string) string {
	return season + "|" + strings.ToLower(mode) + "|" + elo.PlayerKey(playerName)
}

func (r *EloRepository) Leaderboard(_ context.Context, query elo.LeaderboardQuery) (elo.LeaderboardPage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]elo.Rating, 0)
	for _, item := range r.ratings {
		if item.Season != query.Season || !strings.EqualFold(item.GameMode, query.GameMode) {
			continue
		}
		if item.GamesPlayed < query.MinGames {
			continue
		}
		if query.PlayerName != "" && !strings.Contains(elo.PlayerKey(item.PlayerName), elo.PlayerKey(query.PlayerName)) {
			continue
		}
		items = append(items, item)
	}
	elo.SortRatings(items, query.SortBy, query.Ascending)

	page := elo.LeaderboardPage{Total: len(items)}
	if query.Offset >= len(items) {
		page.Ratings = []elo.Rating{}
		return page, nil
	}
	end := len(items)
	if query.Limit > 0 && query.Offset+query.Limit < end {
		end = query.Offset + query.Limit
	}
	page.Ratings = append([]elo.Rating(nil), items[query.Offset:end]...)
	return page, nil
}

func (r *EloRepository) GameModes(_ context.Context, season string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, item := range r.ratings {
		if item.Season == season {
			seen[item.GameMode] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for mode := range seen {
		out = append(out, mode)
	}
	sort.Strings(out)
	return out, nil
}

func (r *EloRepository) GetRating(_ context.Context, season, gameMode, playerName string) (elo.Rating, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.ratings[ratingKey(season, gameMode, playerName)]
	return item, ok, nil
}

func (r *EloRepository) ListSeason(_ context.Context, season string) ([]elo.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]elo.Rating, 0)
	for _, item := range r.ratings {
		if item.Season == season {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *EloRepository) CountSeason(ctx context.Context, season string) (int, error) {
	items, err := r.ListSeason(ctx, season)
	return len(items), err
}

func (r *EloRepository) ReplaceSeason(_ context.Context, season string, ratings []elo.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.ratings {
		if item.Season == season {
			delete(r.ratings, key)
		}
	}
	for _, item := range ratings {
		item.Season = season
		r.ratings[ratingKey(season, item.GameMode, item.PlayerName)] = item
	}
	return nil
}

func (r *EloRepository) UpsertRatings(_ context.Context, ratings []elo.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range ratings {
		r.ratings[ratingKey(item.Season, item.GameMode, item.PlayerName)] = item
	}
	return nil
}

func (r *EloRepository) TransitionSeason(_ context.Context, fromSeason string, next []elo.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.ratings {
		if item.Season == fromSeason {
			r.archived = append(r.archived, item)
		}
	}
	for _, item := range next {
		r.ratings[ratingKey(item.Season, item.GameMode, item.PlayerName)] = item
	}
	return nil
}

// Archived returns the snapshots taken by TransitionSeason.
func (r *EloRepository) Archived() []elo.Rating {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]elo.Rating(nil), r.archived...)
}
